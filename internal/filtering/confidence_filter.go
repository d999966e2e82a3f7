package filtering

import (
	"fmt"

	"github.com/spigell/candidate-lens/internal/session"
)

type confidenceFilter struct {
	enabled bool
	reason  string
	minimum float64
}

// NewMinConfidence drops rows whose confidence is below minimum. Rows without
// a confidence (basic mode, or none reported) are kept. A non-positive
// minimum disables the filter.
func NewMinConfidence(minimum float64) Filter {
	return &confidenceFilter{enabled: minimum > 0, minimum: minimum}
}

func (f *confidenceFilter) Name() string { return "min_confidence" }

func (f *confidenceFilter) Disable(reason string) {
	f.enabled = false
	f.reason = reason
}

func (f *confidenceFilter) IsEnabled() bool { return f.enabled }

func (f *confidenceFilter) Apply(rows []session.Row) ([]session.Row, Step) {
	return keep(rows, func(r session.Row) bool {
		return r.Confidence == nil || *r.Confidence >= f.minimum
	})
}

func (f *confidenceFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.enabled,
		Reason:  f.reason,
		Details: map[string]string{"minimum": fmt.Sprintf("%.0f", f.minimum)},
	}
}
