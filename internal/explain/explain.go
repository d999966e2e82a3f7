package explain

import "github.com/spigell/candidate-lens/internal/evaluation"

// Kind tells how the explanation content must be emitted.
type Kind int

const (
	// Raw is plain text with line breaks preserved.
	Raw Kind = iota
	// Highlighted is trusted markup emitted without escaping.
	Highlighted
)

func (k Kind) String() string {
	if k == Highlighted {
		return "highlighted"
	}
	return "raw"
}

// Rendered is the explanation chosen for the detail view. Exactly one of Text
// and HTML is meaningful, according to Kind.
type Rendered struct {
	Kind Kind
	Text string
	HTML evaluation.TrustedHTML
}

// Content returns the chosen content as a string.
func (r Rendered) Content() string {
	if r.Kind == Highlighted {
		return string(r.HTML)
	}
	return r.Text
}

// Highlighted reports whether the content is trusted markup.
func (r Rendered) Highlighted() bool { return r.Kind == Highlighted }

// Render picks the highlighted markup when phrase matches exist and the
// toggle is on, and the raw narrative otherwise.
func Render(v evaluation.View, showHighlights bool) Rendered {
	if showHighlights && v.PhraseMatches != nil {
		return Rendered{Kind: Highlighted, HTML: v.PhraseMatches.Highlighted}
	}
	return Rendered{Kind: Raw, Text: v.Explanation}
}

// CanHighlight reports whether the highlight toggle is meaningful for the view.
func CanHighlight(v evaluation.View) bool {
	return v.PhraseMatches != nil
}

// MatchRows returns the field/keyword table rows, or nil when there are none.
func MatchRows(v evaluation.View) []evaluation.Match {
	if v.PhraseMatches == nil || len(v.PhraseMatches.Matches) == 0 {
		return nil
	}
	return v.PhraseMatches.Matches
}

// Toggle is the show-highlights switch of a detail view. The zero value is on.
type Toggle struct {
	hidden bool
}

// On reports whether highlights are shown.
func (t *Toggle) On() bool { return !t.hidden }

// Flip switches the toggle and returns the new state.
func (t *Toggle) Flip() bool {
	t.hidden = !t.hidden
	return t.On()
}

// Label is the caption of the toggle control.
func (t *Toggle) Label() string {
	if t.On() {
		return "Hide Highlights"
	}
	return "Show Highlights"
}
