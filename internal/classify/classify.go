package classify

import (
	"strings"

	"github.com/spigell/candidate-lens/internal/evaluation"
)

// Classification is the tri-state outcome shown as a list badge.
type Classification int

const (
	Undetermined Classification = iota
	Match
	NoMatch
)

func (c Classification) String() string {
	switch c {
	case Match:
		return "match"
	case NoMatch:
		return "no-match"
	default:
		return "maybe"
	}
}

// Badge is the label used in the candidate list.
func (c Classification) Badge() string {
	switch c {
	case Match:
		return "Match"
	case NoMatch:
		return "No Match"
	default:
		return "Maybe"
	}
}

// Color is the severity color of the badge.
func (c Classification) Color() string {
	switch c {
	case Match:
		return "green"
	case NoMatch:
		return "red"
	default:
		return "yellow"
	}
}

// Payload classifies a stored payload under the given mode.
func Payload(p *evaluation.Payload, mode evaluation.Mode) Classification {
	return View(p.View(mode))
}

// View classifies an already normalized view.
func View(v evaluation.View) Classification {
	if v.Mode == evaluation.ModeAdvanced {
		if v.Decision == nil {
			return Undetermined
		}
		switch *v.Decision {
		case "yes":
			return Match
		case "no":
			return NoMatch
		default:
			return Undetermined
		}
	}

	return Text(v.Explanation)
}

// Text classifies a free-text narrative. "yes" wins only when "no" does not
// appear anywhere in the same lower-cased text.
func Text(narrative string) Classification {
	lower := strings.ToLower(narrative)
	hasYes := strings.Contains(lower, "yes")
	hasNo := strings.Contains(lower, "no")

	switch {
	case hasYes && !hasNo:
		return Match
	case hasNo:
		return NoMatch
	default:
		return Undetermined
	}
}

// Banner returns the detail-view recommendation banner. Only advanced
// payloads with a non-empty decision have one.
func Banner(v evaluation.View) (string, bool) {
	if v.Mode != evaluation.ModeAdvanced || v.Decision == nil || *v.Decision == "" {
		return "", false
	}

	switch *v.Decision {
	case "yes":
		return "Recommended", true
	case "no":
		return "Not Recommended", true
	default:
		return "Needs Review", true
	}
}
