package classify

import (
	"testing"

	"github.com/spigell/candidate-lens/internal/evaluation"
)

func strPtr(s string) *string { return &s }

func TestViewAdvanced(t *testing.T) {
	tests := []struct {
		name     string
		decision *string
		want     Classification
		banner   string
	}{
		{name: "yes", decision: strPtr("yes"), want: Match, banner: "Recommended"},
		{name: "no", decision: strPtr("no"), want: NoMatch, banner: "Not Recommended"},
		{name: "maybe", decision: strPtr("maybe"), want: Undetermined, banner: "Needs Review"},
		{name: "upper case is not exact", decision: strPtr("Yes"), want: Undetermined, banner: "Needs Review"},
		{name: "absent", decision: nil, want: Undetermined},
		{name: "empty", decision: strPtr(""), want: Undetermined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := evaluation.View{Mode: evaluation.ModeAdvanced, Decision: tt.decision, Explanation: "yes"}

			if got := View(v); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}

			banner, ok := Banner(v)
			if ok != (tt.banner != "") || banner != tt.banner {
				t.Fatalf("expected banner %q, got %q (%v)", tt.banner, banner, ok)
			}
		})
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		text string
		want Classification
	}{
		{text: "Yes, strong fit", want: Match},
		{text: "YES", want: Match},
		{text: "Yes, this candidate is a strong match", want: Match},
		{text: "No, insufficient experience", want: NoMatch},
		{text: "Yes, but not enough experience", want: NoMatch},
		{text: "Possibly, needs review", want: Undetermined},
		{text: "", want: Undetermined},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := Text(tt.text); got != tt.want {
				t.Fatalf("Text(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestBasicModeHasNoBanner(t *testing.T) {
	decision := "yes"
	v := evaluation.View{Mode: evaluation.ModeBasic, Decision: &decision, Explanation: "Yes"}
	if _, ok := Banner(v); ok {
		t.Fatalf("basic mode must not show a banner")
	}
	if View(v) != Match {
		t.Fatalf("basic mode classifies the text")
	}
}

func TestPayloadFollowsMode(t *testing.T) {
	p := &evaluation.Payload{Evaluation: map[string]any{"decision": "no", "explanation": "yes"}}

	if got := Payload(p, evaluation.ModeAdvanced); got != NoMatch {
		t.Fatalf("expected no-match in advanced mode, got %s", got)
	}
	// an advanced object read as basic has no narrative
	if got := Payload(p, evaluation.ModeBasic); got != Undetermined {
		t.Fatalf("expected maybe in basic mode, got %s", got)
	}
}

func TestBadges(t *testing.T) {
	if Match.Badge() != "Match" || NoMatch.Badge() != "No Match" || Undetermined.Badge() != "Maybe" {
		t.Fatalf("unexpected badges")
	}
	if Match.Color() != "green" || NoMatch.Color() != "red" || Undetermined.Color() != "yellow" {
		t.Fatalf("unexpected colors")
	}
}
