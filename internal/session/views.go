package session

import (
	"github.com/spigell/candidate-lens/internal/classify"
	"github.com/spigell/candidate-lens/internal/evaluation"
	"github.com/spigell/candidate-lens/internal/explain"
	"github.com/spigell/candidate-lens/internal/gauge"
)

// Row is one entry of the candidate list.
type Row struct {
	Index      int
	Name       string
	Education  string
	Years      int
	FirstSkill string
	Status     classify.Classification
	Selected   bool
	Confidence *float64
}

// DetailView is everything the detail pane shows for one candidate.
type DetailView struct {
	Payload *evaluation.Payload
	View    evaluation.View
	Status  classify.Classification

	Banner    string
	HasBanner bool

	Confidence    gauge.ConfidenceGauge
	HasConfidence bool

	Relevance    gauge.RelevanceGauge
	HasRelevance bool

	Matches    gauge.MatchGauge
	HasMatches bool

	Explanation  explain.Rendered
	CanHighlight bool
	MatchRows    []evaluation.Match
	Factors      []evaluation.Factor
}

// Rows builds the list rows under the current mode.
func (c *Coordinator) Rows() []Row {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows := make([]Row, 0, len(c.results))
	for idx, p := range c.results {
		v := p.View(c.mode)
		rows = append(rows, Row{
			Index:      idx,
			Name:       v.Candidate.Name,
			Education:  v.Candidate.Education,
			Years:      v.Candidate.YearsOfExperience,
			FirstSkill: v.Candidate.FirstSkill(),
			Status:     classify.View(v),
			Selected:   p == c.selected,
			Confidence: v.Confidence,
		})
	}
	return rows
}

// Detail builds the detail view of the current selection.
func (c *Coordinator) Detail(showHighlights bool) (DetailView, bool) {
	c.mu.Lock()
	selected, mode := c.selected, c.mode
	c.mu.Unlock()

	if selected == nil {
		return DetailView{}, false
	}
	return BuildDetail(selected, mode, showHighlights), true
}

// BuildDetail derives the detail view of a payload. It is pure.
func BuildDetail(p *evaluation.Payload, mode evaluation.Mode, showHighlights bool) DetailView {
	v := p.View(mode)

	d := DetailView{
		Payload:      p,
		View:         v,
		Status:       classify.View(v),
		Explanation:  explain.Render(v, showHighlights),
		CanHighlight: explain.CanHighlight(v),
		MatchRows:    explain.MatchRows(v),
		Factors:      v.Factors,
	}
	d.Banner, d.HasBanner = classify.Banner(v)
	d.Confidence, d.HasConfidence = gauge.Confidence(v.Confidence)
	d.Relevance, d.HasRelevance = gauge.Relevance(v.Relevance)
	d.Matches, d.HasMatches = gauge.Matches(v.PhraseMatches)

	return d
}
