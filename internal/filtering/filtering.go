package filtering

import (
	"go.uber.org/zap"

	"github.com/spigell/candidate-lens/internal/session"
)

// Filter represents a single step narrowing the candidate list.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Apply(rows []session.Row) ([]session.Row, Step)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// Run applies the enabled filters in order. The input slice is not modified.
func Run(steps []Filter, rows []session.Row, logger *zap.Logger) []session.Row {
	if logger == nil {
		logger = zap.NewNop()
	}

	out := append([]session.Row(nil), rows...)
	for _, step := range steps {
		if !step.IsEnabled() {
			logger.Debug("filter disabled", zap.String("name", step.Name()))
			continue
		}

		var info Step
		out, info = step.Apply(out)

		logger.Debug("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)
	}

	return out
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

func keep(rows []session.Row, pred func(session.Row) bool) ([]session.Row, Step) {
	initial := len(rows)
	kept := rows[:0]
	for _, row := range rows {
		if pred(row) {
			kept = append(kept, row)
		}
	}
	return kept, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}
}
