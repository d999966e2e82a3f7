package logger

import "testing"

func TestTruncateForLog(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{name: "short", in: "hello", limit: 10, want: "hello"},
		{name: "trimmed", in: "  hello  ", limit: 5, want: "hello"},
		{name: "truncated", in: "hello world", limit: 5, want: "hello..."},
		{name: "runes", in: "привет мир", limit: 6, want: "привет..."},
		{name: "zero limit", in: "hello", limit: 0, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateForLog(tt.in, tt.limit); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	for _, json := range []bool{true, false} {
		logger, err := New(json, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !logger.Core().Enabled(-1) {
			t.Fatalf("debug logger must enable debug level")
		}
	}

	logger, err := New(false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger.Core().Enabled(-1) {
		t.Fatalf("info logger must not enable debug level")
	}
}
