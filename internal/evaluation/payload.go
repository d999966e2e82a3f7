package evaluation

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Mode selects the scoring endpoint and the wire shape of its results.
type Mode string

const (
	ModeBasic    Mode = "basic"
	ModeAdvanced Mode = "advanced"
)

// ParseMode accepts "basic" or "advanced" in any letter case.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeBasic:
		return ModeBasic, nil
	case ModeAdvanced:
		return ModeAdvanced, nil
	default:
		return "", fmt.Errorf("unknown mode %q: expected basic or advanced", s)
	}
}

// Other returns the opposite mode.
func (m Mode) Other() Mode {
	if m == ModeBasic {
		return ModeAdvanced
	}
	return ModeBasic
}

// Candidate is the profile the scoring service evaluated. The service reads
// candidates from CSV, so numbers frequently arrive as strings.
type Candidate struct {
	Name              string `mapstructure:"name" json:"name"`
	Age               int    `mapstructure:"age" json:"age"`
	Gender            string `mapstructure:"gender" json:"gender"`
	Education         string `mapstructure:"education" json:"education"`
	YearsOfExperience int    `mapstructure:"years_of_experience" json:"years_of_experience"`
	Skills            string `mapstructure:"skills" json:"skills"`
	Experience        string `mapstructure:"experience" json:"experience"`
}

// SkillList splits the comma-separated skills and drops empty entries.
func (c Candidate) SkillList() []string {
	parts := strings.Split(c.Skills, ",")
	skills := make([]string, 0, len(parts))
	for _, part := range parts {
		if skill := strings.TrimSpace(part); skill != "" {
			skills = append(skills, skill)
		}
	}
	return skills
}

// FirstSkill returns the first listed skill or an empty string.
func (c Candidate) FirstSkill() string {
	skills := c.SkillList()
	if len(skills) == 0 {
		return ""
	}
	return skills[0]
}

// TrustedHTML is pre-sanitized markup produced by the scoring service.
// It is only ever built by the wire decoder and must be emitted unescaped.
// Locally sourced text must never be converted into it.
type TrustedHTML string

// Match is a single keyword hit between the explanation and a candidate field.
type Match struct {
	Field   string `mapstructure:"field" json:"field"`
	Keyword string `mapstructure:"keyword" json:"keyword"`
}

// PhraseMatches is the keyword overlap computed by the scoring service.
type PhraseMatches struct {
	Count       int
	Matches     []Match
	Highlighted TrustedHTML
}

// RelevanceMetrics are keyword overlap statistics for the explanation.
// MatchesCount may exceed TotalWords; nothing here enforces it.
type RelevanceMetrics struct {
	Ratio        float64 `mapstructure:"relevance_ratio" json:"relevance_ratio"`
	MatchesCount int     `mapstructure:"matches_count" json:"matches_count"`
	TotalWords   int     `mapstructure:"total_words" json:"total_words"`
}

// Factor is one feature-importance entry of the LIME explanation.
type Factor struct {
	Feature        string  `mapstructure:"feature" json:"feature"`
	Importance     float64 `mapstructure:"importance" json:"importance"`
	SupportsHiring bool    `mapstructure:"supports_hiring" json:"supports_hiring"`
}

// ImportanceLabel formats the importance with two decimals, prefixed with a
// plus sign when the factor supports hiring.
func (f Factor) ImportanceLabel() string {
	if f.SupportsHiring {
		return fmt.Sprintf("+%.2f", f.Importance)
	}
	return fmt.Sprintf("%.2f", f.Importance)
}

// Payload is one result entry as delivered by the scoring service. The
// evaluation is kept in its wire form (a string in basic mode, an object in
// advanced mode) so it can be reinterpreted when the mode selector changes.
type Payload struct {
	Candidate     Candidate
	Evaluation    any
	PhraseMatches *PhraseMatches
	Factors       []Factor

	// Notes collects decoding problems. They never fail the payload.
	Notes []string
}

// DecodeResults converts the raw "results" array into payloads. Every entry
// yields a payload, even a malformed one.
func DecodeResults(raw []any) []*Payload {
	payloads := make([]*Payload, 0, len(raw))
	for _, item := range raw {
		payloads = append(payloads, Decode(item))
	}
	return payloads
}

// Decode builds a Payload from a single raw result entry.
func Decode(raw any) *Payload {
	p := &Payload{}

	entry, ok := raw.(map[string]any)
	if !ok {
		p.note("result entry is %T, not an object", raw)
		return p
	}

	if candidate, ok := entry["candidate"].(map[string]any); ok {
		c, err := DecodeCandidate(candidate)
		if err != nil {
			p.note("candidate: %v", err)
		}
		p.Candidate = c
	} else if entry["candidate"] != nil {
		p.note("candidate is %T, not an object", entry["candidate"])
	}

	p.Evaluation = entry["evaluation"]
	pm, err := decodePhraseMatches(entry["phrase_matches"])
	if err != nil {
		p.note("phrase_matches: %v", err)
	}
	p.PhraseMatches = pm
	p.Factors = p.decodeFactors(entry["lime_explanation"])

	return p
}

// DecodeCandidate decodes a candidate record with weak typing. On error the
// fields that could be decoded are still returned.
func DecodeCandidate(raw map[string]any) (Candidate, error) {
	var c Candidate
	err := weakDecode(raw, &c)
	if c.YearsOfExperience < 0 {
		c.YearsOfExperience = 0
	}
	return c, err
}

func (p *Payload) note(format string, args ...any) {
	p.Notes = append(p.Notes, fmt.Sprintf(format, args...))
}

// decodePhraseMatches may return a partially decoded value together with an
// error.
func decodePhraseMatches(raw any) (*PhraseMatches, error) {
	if raw == nil {
		return nil, nil
	}

	data, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%T is not an object", raw)
	}

	var wire struct {
		MatchCount   *int    `mapstructure:"match_count"`
		MatchesCount *int    `mapstructure:"matches_count"`
		Matches      []Match `mapstructure:"matches"`
		Highlighted  string  `mapstructure:"highlighted_explanation_html"`
	}
	err := weakDecode(data, &wire)

	pm := &PhraseMatches{
		Matches:     wire.Matches,
		Highlighted: TrustedHTML(wire.Highlighted),
	}

	switch {
	case wire.MatchCount != nil:
		pm.Count = *wire.MatchCount
	case wire.MatchesCount != nil:
		pm.Count = *wire.MatchesCount
	default:
		pm.Count = len(wire.Matches)
	}
	if pm.Count < 0 {
		pm.Count = 0
	}

	return pm, err
}

func (p *Payload) decodeFactors(raw any) []Factor {
	if raw == nil {
		return nil
	}

	items, ok := raw.([]any)
	if !ok {
		p.note("lime_explanation is %T, not a list", raw)
		return nil
	}

	factors := make([]Factor, 0, len(items))
	for idx, item := range items {
		data, ok := item.(map[string]any)
		if !ok {
			p.note("lime_explanation[%d] is %T, not an object", idx, item)
			continue
		}
		if _, failed := data["error"]; failed {
			continue
		}

		var f Factor
		if err := weakDecode(data, &f); err != nil {
			p.note("lime_explanation[%d]: %v", idx, err)
			continue
		}
		factors = append(factors, f)
	}

	return factors
}

func decodeRelevance(raw any) (*RelevanceMetrics, error) {
	data, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("relevance_metrics is %T, not an object", raw)
	}

	var m RelevanceMetrics
	if err := weakDecode(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func weakDecode(input map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}
