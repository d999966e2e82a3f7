package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/candidate-lens/internal/ai"
	"github.com/spigell/candidate-lens/internal/evaluation"
	"github.com/spigell/candidate-lens/internal/logger"
	"github.com/spigell/candidate-lens/internal/scoring"
)

// ErrBusy is returned when a submission is attempted while another one is in flight.
var ErrBusy = errors.New("a submission is already in progress")

// State is the observable state of the coordinator.
type State int

const (
	Empty State = iota
	Listed
	Detail
)

func (s State) String() string {
	switch s {
	case Listed:
		return "listed"
	case Detail:
		return "detail"
	default:
		return "empty"
	}
}

// Outcome is the terminal state of one submission.
type Outcome int

const (
	// Rejected means nothing was sent: validation failed or a submission was in flight.
	Rejected Outcome = iota
	// Loaded means results replaced the previous ones and the first is selected.
	Loaded
	// NoResults means the service answered with an empty result set.
	NoResults
	// Failed means the call failed; previous results are untouched.
	Failed
	// Stale means the response arrived after Abandon and was discarded.
	Stale
)

func (o Outcome) String() string {
	switch o {
	case Loaded:
		return "loaded"
	case NoResults:
		return "no_results"
	case Failed:
		return "failed"
	case Stale:
		return "stale"
	default:
		return "rejected"
	}
}

// Coordinator holds the evaluated candidates and the single selection.
type Coordinator struct {
	scorer    ai.Scorer
	validator *scoring.Validator
	logger    *zap.Logger

	mu          sync.Mutex
	mode        evaluation.Mode
	fetchedMode evaluation.Mode
	results     []*evaluation.Payload
	selected    *evaluation.Payload
	loading     bool
	generation  uint64
	lastErr     error
}

// New returns an empty coordinator. validator may be nil, in which case the
// default model list is accepted.
func New(scorer ai.Scorer, validator *scoring.Validator, mode evaluation.Mode, log *zap.Logger) *Coordinator {
	if validator == nil {
		validator = scoring.NewValidator(nil)
	}
	if mode == "" {
		mode = evaluation.ModeAdvanced
	}

	return &Coordinator{
		scorer:    scorer,
		validator: validator,
		logger:    logger.WithFields(log),
		mode:      mode,
	}
}

// Submit validates the query, calls the scorer and, unless the response went
// stale meanwhile, replaces the results wholesale. An empty query mode is
// filled with the current mode; a successful submission reads its results
// under the mode it was made in.
func (c *Coordinator) Submit(ctx context.Context, q scoring.Query) (Outcome, error) {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return Rejected, ErrBusy
	}
	if q.Mode == "" {
		q.Mode = c.mode
	}
	if err := c.validator.Validate(q); err != nil {
		c.lastErr = err
		c.mu.Unlock()
		return Rejected, err
	}

	c.loading = true
	c.lastErr = nil
	c.generation++
	generation := c.generation
	c.mu.Unlock()

	log := logger.WithSubmission(c.logger, uuid.NewString(), string(q.Mode))
	log.Info("submitting job description", zap.String("model", q.Model))

	results, err := c.scorer.Score(ctx, q)

	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		log.Info("discarding stale response")
		return Stale, nil
	}
	c.loading = false

	if err != nil {
		c.lastErr = err
		log.Warn("submission failed, keeping previous results", zap.Error(err))
		return Failed, err
	}

	c.results = results
	c.mode = q.Mode
	c.fetchedMode = q.Mode
	c.selected = nil

	if len(results) == 0 {
		log.Info("no candidates returned")
		return NoResults, nil
	}

	c.selected = results[0]
	log.Info("results loaded", zap.Int("count", len(results)))
	return Loaded, nil
}

// Abandon marks any in-flight submission as stale so its response is
// discarded, and allows a new submission right away.
func (c *Coordinator) Abandon() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.loading = false
}

// Select moves the selection to p. It is a no-op when p is not one of the
// current results.
func (c *Coordinator) Select(p *evaluation.Payload) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.results {
		if r == p {
			c.selected = p
			return true
		}
	}
	return false
}

// SelectIndex selects the i-th result. Out of range indexes are ignored.
func (c *Coordinator) SelectIndex(i int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.results) {
		return false
	}
	c.selected = c.results[i]
	return true
}

// SetMode changes how stored results are read. Nothing is refetched.
func (c *Coordinator) SetMode(mode evaluation.Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = mode
}

// Mode is the current interpretation mode.
func (c *Coordinator) Mode() evaluation.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Stale reports whether the shown results were fetched under another mode
// than the current one.
func (c *Coordinator) Stale() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results) > 0 && c.fetchedMode != c.mode
}

// Loading reports whether a submission is in flight.
func (c *Coordinator) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err is the error of the last submission, if any.
func (c *Coordinator) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// State reports Empty, Listed or Detail.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case len(c.results) == 0:
		return Empty
	case c.selected != nil:
		return Detail
	default:
		return Listed
	}
}

// Results returns the current results. The slice must not be modified.
func (c *Coordinator) Results() []*evaluation.Payload {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.results
}

// Selected returns the selected payload or nil.
func (c *Coordinator) Selected() *evaluation.Payload {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}
