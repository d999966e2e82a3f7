// Package parity summarizes how screening decisions spread across candidate
// genders: the share of Match decisions per group and the widest gap
// between groups.
package parity

import (
	"slices"
	"strings"

	"github.com/spigell/candidate-lens/internal/classify"
	"github.com/spigell/candidate-lens/internal/evaluation"
)

// Unspecified labels candidates without a gender.
const Unspecified = "unspecified"

// Group is the decision tally of one gender.
type Group struct {
	Gender       string
	Total        int
	Matches      int
	NoMatches    int
	Undetermined int
}

// Rate is the share of Match decisions in percent.
func (g Group) Rate() float64 {
	if g.Total == 0 {
		return 0
	}
	return float64(g.Matches) / float64(g.Total) * 100
}

// Summary holds the groups sorted by gender label.
type Summary struct {
	Mode   evaluation.Mode
	Groups []Group
}

// Empty reports whether there was nothing to tally.
func (s Summary) Empty() bool {
	return len(s.Groups) == 0
}

// Gap is the difference between the highest and the lowest match rate.
// It is 0 with fewer than two groups.
func (s Summary) Gap() float64 {
	if len(s.Groups) < 2 {
		return 0
	}
	lo, hi := s.Groups[0].Rate(), s.Groups[0].Rate()
	for _, g := range s.Groups[1:] {
		lo = min(lo, g.Rate())
		hi = max(hi, g.Rate())
	}
	return hi - lo
}

// Compute classifies every payload under mode and tallies the decisions by
// gender. Genders are compared case-insensitively; the first spelling seen
// becomes the label.
func Compute(results []*evaluation.Payload, mode evaluation.Mode) Summary {
	index := make(map[string]int)
	var groups []Group

	for _, p := range results {
		if p == nil {
			continue
		}

		label := strings.TrimSpace(p.Candidate.Gender)
		if label == "" {
			label = Unspecified
		}
		key := strings.ToLower(label)

		idx, ok := index[key]
		if !ok {
			idx = len(groups)
			index[key] = idx
			groups = append(groups, Group{Gender: label})
		}

		g := &groups[idx]
		g.Total++
		switch classify.Payload(p, mode) {
		case classify.Match:
			g.Matches++
		case classify.NoMatch:
			g.NoMatches++
		default:
			g.Undetermined++
		}
	}

	slices.SortFunc(groups, func(a, b Group) int {
		return strings.Compare(strings.ToLower(a.Gender), strings.ToLower(b.Gender))
	})

	return Summary{Mode: mode, Groups: groups}
}
