package gemini

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/candidate-lens/internal/candidates"
	"github.com/spigell/candidate-lens/internal/classify"
	"github.com/spigell/candidate-lens/internal/evaluation"
	"github.com/spigell/candidate-lens/internal/scoring"
)

type stubGenerator struct {
	mu      sync.Mutex
	replies map[string]string
	errs    map[string]error
	prompts []string
}

func (s *stubGenerator) GenerateContent(_ context.Context, _ string, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	for name, err := range s.errs {
		if strings.Contains(prompt, name) {
			return "", err
		}
	}
	for name, reply := range s.replies {
		if strings.Contains(prompt, name) {
			return reply, nil
		}
	}
	return "", errors.New("no reply")
}

func pool() []candidates.Record {
	return []candidates.Record{
		{"name": "Alice", "age": "31", "years_of_experience": "6", "skills": "Go, Kubernetes"},
		{"name": "Bob", "age": "25", "years_of_experience": "1", "skills": "PHP"},
	}
}

func TestScorerAdvanced(t *testing.T) {
	gen := &stubGenerator{replies: map[string]string{
		"Alice": "DECISION: Yes\nCONFIDENCE: 88%\nEXPLANATION: Solid Go and Kubernetes.\n\nExtra notes.",
		"Bob":   "DECISION: no\nCONFIDENCE: 70\nEXPLANATION: Too junior.",
	}}
	s := NewScorer(gen, pool(), 2, 0, zap.NewNop())

	payloads, err := s.Score(context.Background(), scoring.Query{JobDescription: "Senior Go", Model: "gemini-2.5-flash", Mode: evaluation.ModeAdvanced})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payloads) != 2 || payloads[0].Candidate.Name != "Alice" || payloads[1].Candidate.Name != "Bob" {
		t.Fatalf("results must follow pool order: %+v", payloads)
	}

	v := payloads[0].View(evaluation.ModeAdvanced)
	if classify.View(v) != classify.Match || *v.Confidence != 88 || v.Explanation != "Solid Go and Kubernetes." {
		t.Fatalf("unexpected alice view: %s %v %q", v, v.Confidence, v.Explanation)
	}
	if payloads[0].Candidate.YearsOfExperience != 6 {
		t.Fatalf("expected weakly typed candidate, got %+v", payloads[0].Candidate)
	}
	if classify.Payload(payloads[1], evaluation.ModeAdvanced) != classify.NoMatch {
		t.Fatalf("expected bob to be a no-match")
	}

	for _, prompt := range gen.prompts {
		if !strings.Contains(prompt, "Senior Go") || !strings.Contains(prompt, "DECISION: [yes/no]") {
			t.Fatalf("unexpected prompt: %s", prompt)
		}
	}
}

func TestScorerBasicKeepsNarrative(t *testing.T) {
	gen := &stubGenerator{replies: map[string]string{"Alice": "Yes, strong fit", "Bob": "No, insufficient experience"}}
	s := NewScorer(gen, pool(), 0, 0, nil)

	payloads, err := s.Score(context.Background(), scoring.Query{JobDescription: "Go", Model: "gemini-2.5-flash", Mode: evaluation.ModeBasic})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payloads[0].Evaluation != "Yes, strong fit" {
		t.Fatalf("unexpected evaluation: %v", payloads[0].Evaluation)
	}
	if classify.Payload(payloads[1], evaluation.ModeBasic) != classify.NoMatch {
		t.Fatalf("expected bob to be a no-match")
	}
}

func TestScorerToleratesCandidateFailure(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	gen := &stubGenerator{
		replies: map[string]string{"Alice": "DECISION: yes\nCONFIDENCE: 90\nEXPLANATION: Good."},
		errs:    map[string]error{"Bob": errors.New("quota exceeded")},
	}
	s := NewScorer(gen, pool(), 1, 0, zap.New(core))

	payloads, err := s.Score(context.Background(), scoring.Query{JobDescription: "Go", Model: "m", Mode: evaluation.ModeAdvanced})
	if err != nil {
		t.Fatalf("one failed candidate must not fail the batch: %v", err)
	}

	v := payloads[1].View(evaluation.ModeAdvanced)
	if v.Decision != nil || !strings.Contains(v.Explanation, "quota exceeded") {
		t.Fatalf("expected the failure as raw response, got %+v", v)
	}
	if observed.FilterMessage("AI evaluation failed").Len() != 1 {
		t.Fatalf("expected the failure to be logged")
	}
}

func TestScorerEmptyPool(t *testing.T) {
	s := NewScorer(&stubGenerator{}, nil, 1, 0, nil)

	_, err := s.Score(context.Background(), scoring.Query{JobDescription: "Go", Model: "m", Mode: evaluation.ModeBasic})
	var te *scoring.TransportError
	if !errors.As(err, &te) || !errors.Is(err, candidates.ErrNoCandidates) {
		t.Fatalf("expected transport error wrapping ErrNoCandidates, got %v", err)
	}
}

func TestScorerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &stubGenerator{errs: map[string]error{"Alice": context.Canceled, "Bob": context.Canceled}}
	s := NewScorer(gen, pool(), 1, 0, nil)

	if _, err := s.Score(ctx, scoring.Query{JobDescription: "Go", Model: "m", Mode: evaluation.ModeBasic}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestParseAdvanced(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		decision    string
		confidence  int
		explanation string
	}{
		{
			name:        "structured",
			raw:         "DECISION: YES\nCONFIDENCE: 75%\nEXPLANATION: Matches the stack.",
			decision:    "yes",
			confidence:  75,
			explanation: "Matches the stack.",
		},
		{
			name:        "explanation stops at blank line",
			raw:         "decision: no\nconfidence: 40\nexplanation: Lacks Go.\nNo cloud.\n\nIgnored footer",
			decision:    "no",
			confidence:  40,
			explanation: "Lacks Go.\nNo cloud.",
		},
		{
			name:        "unstructured",
			raw:         "I cannot decide.",
			decision:    "unknown",
			confidence:  0,
			explanation: "I cannot decide.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseAdvanced(tt.raw)
			if got["decision"] != tt.decision || got["confidence"] != tt.confidence || got["explanation"] != tt.explanation {
				t.Fatalf("unexpected result: %#v", got)
			}
		})
	}
}

func TestFailedEvaluation(t *testing.T) {
	err := errors.New("boom")
	if got := failedEvaluation(evaluation.ModeBasic, err); got != "Error: boom" {
		t.Fatalf("unexpected basic failure: %v", got)
	}
	got, ok := failedEvaluation(evaluation.ModeAdvanced, err).(map[string]any)
	if !ok || got["raw_response"] != "Error: boom" || got["error"] != "boom" {
		t.Fatalf("unexpected advanced failure: %v", got)
	}
}
