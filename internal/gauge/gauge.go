package gauge

import (
	"fmt"
	"math"
	"strings"

	"github.com/spigell/candidate-lens/internal/evaluation"
)

// Band is a severity band shared by the confidence and relevance gauges.
type Band int

const (
	Low Band = iota
	Medium
	High
)

func (b Band) String() string {
	switch b {
	case High:
		return "high"
	case Low:
		return "low"
	default:
		return "medium"
	}
}

// Color maps the band to its display color.
func (b Band) Color() string {
	switch b {
	case High:
		return "green"
	case Low:
		return "red"
	default:
		return "yellow"
	}
}

const (
	// Radius of the circular confidence gauge, in SVG units.
	Radius = 40.0

	highConfidence = 80.0
	lowConfidence  = 30.0

	highRelevance = 20.0
	lowRelevance  = 10.0

	matchScale     = 5.0
	relevanceScale = 2.0
)

// ConfidenceGauge is the geometry of the circular confidence gauge.
type ConfidenceGauge struct {
	Value         float64
	Sweep         float64
	Radius        float64
	Circumference float64
	Offset        float64
	Band          Band
}

// Confidence builds the gauge for a 0..100 score. A nil, non-finite, or zero
// score yields no gauge: the scoring service writes 0 when it could not read a
// confidence from the model reply, so zero means "unknown" rather than "low".
func Confidence(score *float64) (ConfidenceGauge, bool) {
	if score == nil {
		return ConfidenceGauge{}, false
	}
	c := *score
	if math.IsNaN(c) || math.IsInf(c, 0) || c == 0 {
		return ConfidenceGauge{}, false
	}

	sweep := clamp(c/100, 0, 1)
	circumference := 2 * math.Pi * Radius

	return ConfidenceGauge{
		Value:         c,
		Sweep:         sweep,
		Radius:        Radius,
		Circumference: circumference,
		Offset:        circumference * (1 - sweep),
		Band:          ConfidenceBand(c),
	}, true
}

// ConfidenceBand: >= 80 high, <= 30 low, medium in between.
func ConfidenceBand(c float64) Band {
	switch {
	case c >= highConfidence:
		return High
	case c <= lowConfidence:
		return Low
	default:
		return Medium
	}
}

// Label renders the score the way it is printed inside the ring.
func (g ConfidenceGauge) Label() string {
	return fmt.Sprintf("%s%%", formatNumber(g.Value))
}

// Bar renders the sweep as a fixed-width text bar.
func (g ConfidenceGauge) Bar(cells int) string {
	return Bar(g.Sweep*100, cells)
}

// RelevanceBand: >= 20 high, < 10 low, medium in between. Note the closed
// lower bound of medium at exactly 10.
func RelevanceBand(ratio float64) Band {
	switch {
	case ratio >= highRelevance:
		return High
	case ratio < lowRelevance:
		return Low
	default:
		return Medium
	}
}

// Width scales a value into a bar width percentage clamped to [0, 100].
func Width(value, scale float64) float64 {
	w := value * scale
	if math.IsNaN(w) {
		return 0
	}
	return clamp(w, 0, 100)
}

// MatchWidth is the match-count bar width: count*5, clamped.
func MatchWidth(count int) float64 {
	return Width(float64(count), matchScale)
}

// RelevanceWidth is the relevance bar width: ratio*2, clamped.
func RelevanceWidth(ratio float64) float64 {
	return Width(ratio, relevanceScale)
}

// RelevanceGauge is the display data for relevance metrics.
type RelevanceGauge struct {
	Ratio        float64
	MatchesCount int
	TotalWords   int
	Band         Band
	Width        float64
}

// Relevance builds the gauge from optional metrics.
func Relevance(m *evaluation.RelevanceMetrics) (RelevanceGauge, bool) {
	if m == nil {
		return RelevanceGauge{}, false
	}

	return RelevanceGauge{
		Ratio:        m.Ratio,
		MatchesCount: m.MatchesCount,
		TotalWords:   m.TotalWords,
		Band:         RelevanceBand(m.Ratio),
		Width:        RelevanceWidth(m.Ratio),
	}, true
}

// Label renders the ratio as a percentage.
func (g RelevanceGauge) Label() string {
	return fmt.Sprintf("%s%%", formatNumber(g.Ratio))
}

// MatchGauge is the display data for the match count.
type MatchGauge struct {
	Count int
	Width float64
}

// Matches builds the match-count gauge from optional phrase matches.
func Matches(pm *evaluation.PhraseMatches) (MatchGauge, bool) {
	if pm == nil {
		return MatchGauge{}, false
	}
	return MatchGauge{Count: pm.Count, Width: MatchWidth(pm.Count)}, true
}

// Bar renders a percentage as a text bar of the given number of cells.
func Bar(percent float64, cells int) string {
	if cells <= 0 {
		return ""
	}
	filled := int(math.Round(clamp(percent, 0, 100) / 100 * float64(cells)))
	return strings.Repeat("█", filled) + strings.Repeat("░", cells-filled)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) {
		return fmt.Sprintf("%.0f", f)
	}
	return fmt.Sprintf("%g", f)
}
