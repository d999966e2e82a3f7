package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/candidate-lens/internal/candidates"
	"github.com/spigell/candidate-lens/internal/evaluation"
	"github.com/spigell/candidate-lens/internal/logger"
	"github.com/spigell/candidate-lens/internal/scoring"
)

// DefaultModels are offered when the provider is gemini and no list is configured.
var DefaultModels = []string{"gemini-2.5-flash", "gemini-2.5-pro"}

//go:embed basic_prompt.md
var basicPrompt string

//go:embed advanced_prompt.md
var advancedPrompt string

const (
	defaultMaxLogLength = 200
	defaultParallelism  = 4
	unknownDecision     = "unknown"
)

var (
	decisionRe    = regexp.MustCompile(`(?i)DECISION:\s*(yes|no)`)
	confidenceRe  = regexp.MustCompile(`(?i)CONFIDENCE:\s*(\d+)`)
	explanationRe = regexp.MustCompile(`(?is)EXPLANATION:\s*(.*?)(?:\n\n|\z)`)
)

type textGenerator interface {
	GenerateContent(ctx context.Context, model, prompt string) (string, error)
}

// Scorer evaluates a local candidate pool with Gemini, producing the same
// wire shapes as the scoring service. Phrase matches, relevance metrics and
// feature importances are not computed and stay absent.
type Scorer struct {
	generator   textGenerator
	pool        []candidates.Record
	logger      *zap.Logger
	maxLogLen   int
	parallelism int
}

// NewScorer builds a scorer over the given pool.
func NewScorer(generator textGenerator, pool []candidates.Record, parallelism, maxLogLength int, log *zap.Logger) *Scorer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if parallelism <= 0 {
		parallelism = defaultParallelism
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Scorer{
		generator:   generator,
		pool:        pool,
		logger:      log,
		maxLogLen:   maxLogLength,
		parallelism: parallelism,
	}
}

// Score evaluates every candidate of the pool. A failed model call for one
// candidate is recorded in its evaluation and does not fail the others.
func (s *Scorer) Score(ctx context.Context, q scoring.Query) ([]*evaluation.Payload, error) {
	if len(s.pool) == 0 {
		return nil, &scoring.TransportError{Message: candidates.ErrNoCandidates.Error(), Err: candidates.ErrNoCandidates}
	}

	log := logger.WithCommonFields(s.logger, "gemini", q.Model)
	results := make([]*evaluation.Payload, len(s.pool))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)

	for idx, record := range s.pool {
		g.Go(func() error {
			payload, err := s.scoreOne(gCtx, log, q, record)
			if err != nil {
				return err
			}
			results[idx] = payload
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, &scoring.TransportError{Err: err}
	}

	log.Info("gemini evaluation completed", zap.Int("count", len(results)))
	return results, nil
}

func (s *Scorer) scoreOne(ctx context.Context, log *zap.Logger, q scoring.Query, record candidates.Record) (*evaluation.Payload, error) {
	candidate, err := evaluation.DecodeCandidate(record.Attributes())
	if err != nil {
		log.Debug("tolerating malformed candidate record", zap.String("name", record["name"]), zap.Error(err))
	}

	candidateJSON, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal candidate: %w", err)
	}

	prompt := buildPrompt(q.Mode, q.JobDescription, string(candidateJSON))

	log.Debug("gemini generate content request",
		zap.String("candidate", candidate.Name),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, genErr := s.generator.GenerateContent(ctx, q.Model, prompt)
	if genErr != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn("AI evaluation failed", zap.String("candidate", candidate.Name), zap.Error(genErr))
		return &evaluation.Payload{Candidate: candidate, Evaluation: failedEvaluation(q.Mode, genErr)}, nil
	}

	log.Debug("gemini generate content response",
		zap.String("candidate", candidate.Name),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, s.maxLogLen)),
	)

	payload := &evaluation.Payload{Candidate: candidate, Evaluation: raw}
	if q.Mode == evaluation.ModeAdvanced {
		payload.Evaluation = parseAdvanced(raw)
	}
	return payload, nil
}

func buildPrompt(mode evaluation.Mode, jobDescription, candidateJSON string) string {
	template := basicPrompt
	if mode == evaluation.ModeAdvanced {
		template = advancedPrompt
	}
	prompt := strings.ReplaceAll(template, "{{JOB_DESCRIPTION}}", strings.TrimSpace(jobDescription))
	return strings.ReplaceAll(prompt, "{{CANDIDATE_JSON}}", candidateJSON)
}

// parseAdvanced turns the structured model reply into the advanced
// evaluation object. Missing parts fall back to "unknown", 0, and the whole
// reply respectively.
func parseAdvanced(raw string) map[string]any {
	decision := unknownDecision
	if m := decisionRe.FindStringSubmatch(raw); m != nil {
		decision = strings.ToLower(m[1])
	}

	confidence := 0
	if m := confidenceRe.FindStringSubmatch(raw); m != nil {
		if parsed, err := strconv.Atoi(m[1]); err == nil {
			confidence = parsed
		}
	}

	explanation := raw
	if m := explanationRe.FindStringSubmatch(raw); m != nil {
		explanation = strings.TrimSpace(m[1])
	}

	return map[string]any{
		"decision":    decision,
		"confidence":  confidence,
		"explanation": explanation,
	}
}

func failedEvaluation(mode evaluation.Mode, err error) any {
	text := fmt.Sprintf("Error: %v", err)
	if mode == evaluation.ModeAdvanced {
		return map[string]any{"raw_response": text, "error": err.Error()}
	}
	return text
}
