package ai

import (
	"context"

	"github.com/spigell/candidate-lens/internal/evaluation"
	"github.com/spigell/candidate-lens/internal/scoring"
)

// Scorer evaluates the candidate pool against a job description. Both the
// HTTP scoring service and the Gemini provider implement it.
type Scorer interface {
	Score(ctx context.Context, q scoring.Query) ([]*evaluation.Payload, error)
}
