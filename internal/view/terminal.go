package view

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spigell/candidate-lens/internal/evaluation"
	"github.com/spigell/candidate-lens/internal/explain"
	"github.com/spigell/candidate-lens/internal/gauge"
	"github.com/spigell/candidate-lens/internal/parity"
	"github.com/spigell/candidate-lens/internal/session"
)

const barCells = 20

// RowLabel is the one-line summary of a list row.
func RowLabel(r session.Row) string {
	skill := r.FirstSkill
	if skill != "" {
		skill += "..."
	}
	return fmt.Sprintf("%s (%s) / %d years / %s [%s]", r.Name, r.Education, r.Years, skill, r.Status.Badge())
}

// WriteList prints the candidate list with badges.
func WriteList(w io.Writer, rows []session.Row, total int) error {
	if _, err := fmt.Fprintf(w, "Candidates (%d)\n", total); err != nil {
		return err
	}
	if len(rows) < total {
		fmt.Fprintf(w, "showing %d after filters\n", len(rows))
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range rows {
		marker := " "
		if r.Selected {
			marker = ">"
		}
		fmt.Fprintf(tw, "%s %d.\t%s\t%s\t%d years\t%s\t[%s]\n",
			marker, r.Index+1, r.Name, r.Education, r.Years, r.FirstSkill, r.Status.Badge())
	}
	return tw.Flush()
}

// WriteDetail prints the detail pane. Highlighted markup is written as
// received; raw text keeps its line breaks.
func WriteDetail(w io.Writer, d session.DetailView, toggle *explain.Toggle) error {
	c := d.View.Candidate

	header := fmt.Sprintf("== %s ==", c.Name)
	if d.HasBanner {
		header += fmt.Sprintf("  [%s]", d.Banner)
	}
	fmt.Fprintln(w, header)
	if c.Education != "" {
		fmt.Fprintln(w, c.Education)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Candidate Profile")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "  Age\t%d\n", c.Age)
	fmt.Fprintf(tw, "  Gender\t%s\n", c.Gender)
	fmt.Fprintf(tw, "  Education\t%s\n", c.Education)
	fmt.Fprintf(tw, "  Experience\t%d years\n", c.YearsOfExperience)
	fmt.Fprintf(tw, "  Skills\t%s\n", strings.Join(c.SkillList(), ", "))
	if err := tw.Flush(); err != nil {
		return err
	}
	if c.Experience != "" {
		fmt.Fprintf(w, "  Work Experience\n    %s\n", c.Experience)
	}
	fmt.Fprintln(w)

	if d.HasConfidence {
		fmt.Fprintf(w, "Confidence  %s %s (%s)\n\n",
			d.Confidence.Bar(barCells), d.Confidence.Label(), d.Confidence.Band)
	}

	title := "AI Evaluation"
	if d.CanHighlight && toggle != nil {
		title += fmt.Sprintf("  [%s: %s]", d.Explanation.Kind, toggle.Label())
	}
	if d.HasRelevance {
		title += fmt.Sprintf("  Relevance: %s (%s)", d.Relevance.Label(), d.Relevance.Band)
	}
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, d.Explanation.Content())

	if d.HasRelevance {
		fmt.Fprintf(w, "\nCandidate attributes mentioned: %d  Total words: %d  Relevance score: %s\n",
			d.Relevance.MatchesCount, d.Relevance.TotalWords, d.Relevance.Label())
	}

	if len(d.MatchRows) > 0 {
		fmt.Fprintln(w, "\nMatches Found:")
		tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "  Field\tKeyword")
		for _, m := range d.MatchRows {
			fmt.Fprintf(tw, "  %s\t%s\n", m.Field, m.Keyword)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if d.View.Mode == evaluation.ModeAdvanced && len(d.Factors) > 0 {
		fmt.Fprintln(w, "\nKey Factors:")
		tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, f := range d.Factors {
			direction := "-"
			if f.SupportsHiring {
				direction = "+"
			}
			fmt.Fprintf(tw, "  %s %s\t%s\n", direction, f.Feature, f.ImportanceLabel())
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if d.HasMatches {
		fmt.Fprintln(w, "\nMatch Analysis:")
		fmt.Fprintf(w, "  Matches Found    %s %d\n", gauge.Bar(d.Matches.Width, barCells), d.Matches.Count)
		if d.HasRelevance {
			fmt.Fprintf(w, "  Relevance Ratio  %s %s\n", gauge.Bar(d.Relevance.Width, barCells), d.Relevance.Label())
		}
	}

	_, err := fmt.Fprintln(w)
	return err
}

// WriteParity prints the match rate of every gender group.
func WriteParity(w io.Writer, s parity.Summary) error {
	if s.Empty() {
		return nil
	}

	fmt.Fprintf(w, "Match rate by gender (%s mode)\n", s.Mode)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  Gender\tCandidates\tMatch\tNo Match\tMaybe\tMatch rate")
	for _, g := range s.Groups {
		fmt.Fprintf(tw, "  %s\t%d\t%d\t%d\t%d\t%.1f%%\n",
			g.Gender, g.Total, g.Matches, g.NoMatches, g.Undetermined, g.Rate())
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(s.Groups) > 1 {
		fmt.Fprintf(w, "  Parity gap: %.1f points\n", s.Gap())
	}
	_, err := fmt.Fprintln(w)
	return err
}
