package filtering

import (
	"fmt"
	"strings"

	"github.com/spigell/candidate-lens/internal/classify"
	"github.com/spigell/candidate-lens/internal/session"
)

type statusFilter struct {
	enabled bool
	reason  string
	allowed map[classify.Classification]bool
}

// ParseStatuses reads badge names ("match", "no-match", "maybe").
func ParseStatuses(names []string) ([]classify.Classification, error) {
	statuses := make([]classify.Classification, 0, len(names))
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "":
			continue
		case "match":
			statuses = append(statuses, classify.Match)
		case "no-match", "nomatch", "no_match":
			statuses = append(statuses, classify.NoMatch)
		case "maybe", "undetermined":
			statuses = append(statuses, classify.Undetermined)
		default:
			return nil, fmt.Errorf("unknown status %q: expected match, no-match or maybe", name)
		}
	}
	return statuses, nil
}

// NewStatus keeps only rows whose badge is one of statuses. An empty list
// disables the filter.
func NewStatus(statuses []classify.Classification) Filter {
	allowed := make(map[classify.Classification]bool, len(statuses))
	for _, s := range statuses {
		allowed[s] = true
	}
	return &statusFilter{enabled: len(allowed) > 0, allowed: allowed}
}

func (f *statusFilter) Name() string { return "status" }

func (f *statusFilter) Disable(reason string) {
	f.enabled = false
	f.reason = reason
}

func (f *statusFilter) IsEnabled() bool { return f.enabled }

func (f *statusFilter) Apply(rows []session.Row) ([]session.Row, Step) {
	return keep(rows, func(r session.Row) bool { return f.allowed[r.Status] })
}

func (f *statusFilter) Status() Status {
	names := make([]string, 0, len(f.allowed))
	for _, c := range []classify.Classification{classify.Match, classify.NoMatch, classify.Undetermined} {
		if f.allowed[c] {
			names = append(names, c.String())
		}
	}
	return Status{
		Name:    f.Name(),
		Enabled: f.enabled,
		Reason:  f.reason,
		Details: map[string]string{"statuses": strings.Join(names, ",")},
	}
}
