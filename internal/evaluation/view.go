package evaluation

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// View is the mode-agnostic reading of a Payload. Classification,
// visualization and rendering only ever look at a View.
type View struct {
	Mode      Mode
	Candidate Candidate

	// Decision is nil when the payload carries none (always in basic mode).
	Decision *string
	// Confidence is nil when absent or not numeric. Zero is kept here;
	// deciding what zero means is left to the visualizer.
	Confidence *float64

	Explanation   string
	PhraseMatches *PhraseMatches
	Relevance     *RelevanceMetrics
	Factors       []Factor
}

// View reads the payload under the given mode. It is pure: the payload is not
// modified, and reading the same payload under another mode is allowed (the
// results are then stale relative to the selector and degrade accordingly).
func (p *Payload) View(mode Mode) View {
	v := View{Mode: mode}
	if p == nil {
		return v
	}
	v.Candidate = p.Candidate

	if mode == ModeAdvanced {
		p.readAdvanced(&v)
		return v
	}

	// basic: the whole evaluation is the narrative, matches live at the root
	if text, ok := p.Evaluation.(string); ok {
		v.Explanation = text
	}
	v.PhraseMatches = p.PhraseMatches
	return v
}

func (p *Payload) readAdvanced(v *View) {
	v.Factors = p.Factors

	data, ok := p.Evaluation.(map[string]any)
	if !ok {
		return
	}

	if decision, ok := data["decision"].(string); ok {
		v.Decision = &decision
	}

	if confidence, ok := coerceFloat(data["confidence"]); ok {
		v.Confidence = &confidence
	}

	if explanation, ok := data["explanation"].(string); ok {
		v.Explanation = explanation
	} else if raw, ok := data["raw_response"].(string); ok {
		// the service could not structure the model reply
		v.Explanation = raw
	}

	// phrase matches are nested in the evaluation object in advanced mode
	v.PhraseMatches, _ = decodePhraseMatches(data["phrase_matches"])

	if raw, present := data["relevance_metrics"]; present && raw != nil {
		if metrics, err := decodeRelevance(raw); err == nil {
			v.Relevance = metrics
		}
	}
}

// coerceFloat accepts JSON numbers, Go numeric types and numeric strings.
// NaN and infinities are rejected.
func coerceFloat(v any) (float64, bool) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		trimmed := strings.TrimSuffix(strings.TrimSpace(val), "%")
		if trimmed == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// String is a short description used in debug logs.
func (v View) String() string {
	decision := "-"
	if v.Decision != nil {
		decision = *v.Decision
	}
	return fmt.Sprintf("%s/%s decision=%s", v.Mode, v.Candidate.Name, decision)
}
