package view

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/spigell/candidate-lens/internal/evaluation"
	"github.com/spigell/candidate-lens/internal/parity"
	"github.com/spigell/candidate-lens/internal/session"
)

//go:embed report.html.tmpl
var reportTemplate string

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	// trusted emits markup produced by the scoring service without escaping.
	"trusted": func(h evaluation.TrustedHTML) template.HTML { return template.HTML(h) },
	"pct":     func(f float64) string { return fmt.Sprintf("%.0f%%", f) },
}).Parse(reportTemplate))

// Report is the data of the static HTML report.
type Report struct {
	Title          string
	Model          string
	Mode           evaluation.Mode
	JobDescription string
	GeneratedAt    time.Time
	Stale          bool
	Parity         parity.Summary
	Entries        []ReportEntry
}

// ReportEntry is one candidate of the report.
type ReportEntry struct {
	Row    session.Row
	Detail session.DetailView
}

// BuildReport collects a report entry for every row, rendering explanations
// highlighted or raw according to showHighlights. The parity summary covers
// every result, filtered or not.
func BuildReport(coord *session.Coordinator, rows []session.Row, showHighlights bool) Report {
	results := coord.Results()
	mode := coord.Mode()

	r := Report{
		Mode:        mode,
		GeneratedAt: time.Now(),
		Stale:       coord.Stale(),
		Parity:      parity.Compute(results, mode),
		Entries:     make([]ReportEntry, 0, len(rows)),
	}
	for _, row := range rows {
		if row.Index < 0 || row.Index >= len(results) {
			continue
		}
		r.Entries = append(r.Entries, ReportEntry{
			Row:    row,
			Detail: session.BuildDetail(results[row.Index], mode, showHighlights),
		})
	}
	return r
}

// WriteReport renders the report as a standalone HTML page.
func WriteReport(w io.Writer, r Report) error {
	if r.Title == "" {
		r.Title = "Candidate screening report"
	}
	if err := reportTmpl.Execute(w, r); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}
