package match

import (
	"encoding/json"
	"fmt"
	"strings"

	"cv-fields/internal/field"
)

// DefaultConfidenceThreshold is the minimum score an LLM-proposed assignment
// needs to be retained. Heuristic matches bypass scoring entirely.
const DefaultConfidenceThreshold = 0.7

// Generator is the slice of the LLM service the AI matcher needs.
type Generator interface {
	Generate(prompt string) (string, error)
}

// AIMatcher asks an LLM to assign extracted scalar keys to fields when the
// identifier heuristics are not trusted (free-form templates, exotic field
// naming). Array shapes still go through the positional heuristics.
type AIMatcher struct {
	matcher   *Matcher
	gen       Generator
	threshold float64
}

func NewAIMatcher(gen Generator, threshold float64) *AIMatcher {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	return &AIMatcher{matcher: NewMatcher(), gen: gen, threshold: threshold}
}

type aiAssignment struct {
	Key        string  `json:"key"`
	FieldID    string  `json:"field_id"`
	Confidence float64 `json:"confidence"`
}

// ProposeMatches scores scalar-key assignments with the LLM, keeps those at
// or above the threshold, then falls through to the positional heuristics
// for the array shapes. Duplicate suppression and version resolution are
// shared with the heuristic path.
func (a *AIMatcher) ProposeMatches(ex Extraction, fields []field.Field, baseLanguage string) ([]Match, error) {
	var matches []Match

	if len(ex.Skills) > 0 {
		scalars := copyScalars(ex.Scalars)
		scalars["skills"] = strings.Join(ex.Skills, ", ")
		ex.Scalars = scalars
	}

	if len(ex.Scalars) > 0 {
		raw, err := a.gen.Generate(a.buildPrompt(ex, fields))
		if err != nil {
			return nil, fmt.Errorf("llm matching: %w", err)
		}

		var assignments []aiAssignment
		if err := json.Unmarshal([]byte(extractJSONArray(raw)), &assignments); err != nil {
			return nil, fmt.Errorf("llm matching: unparseable response: %w", err)
		}

		byID := make(map[string]field.Field, len(fields))
		for _, f := range fields {
			byID[f.ID] = f
		}

		for _, as := range assignments {
			if as.Confidence < a.threshold {
				continue
			}
			value, ok := ex.Scalars[as.Key]
			if !ok || value == "" {
				continue
			}
			f, ok := byID[as.FieldID]
			if !ok {
				continue
			}
			if match, ok := propose(f, as.Key, value, baseLanguage); ok {
				match.Confidence = as.Confidence
				matches = append(matches, match)
			}
		}
	}

	arrayOnly := ex
	arrayOnly.Scalars = nil
	arrayOnly.Skills = nil
	matches = append(matches, a.matcher.ProposeMatches(arrayOnly, fields, baseLanguage)...)

	return matches, nil
}

func (a *AIMatcher) buildPrompt(ex Extraction, fields []field.Field) string {
	var b strings.Builder
	b.WriteString("You map extracted CV values onto a user's field set.\n\nExtracted keys and values:\n")
	for _, key := range ex.ScalarKeys() {
		fmt.Fprintf(&b, "- %s: %q\n", key, ex.Scalars[key])
	}
	b.WriteString("\nAvailable fields (id | tag | name):\n")
	for _, f := range fields {
		fmt.Fprintf(&b, "- %s | %s | %s\n", f.ID, f.Tag, f.Name)
	}
	b.WriteString(`
Return ONLY a JSON array, no markdown, one element per extracted key that
clearly belongs to a field:
[{"key": "extracted key", "field_id": "field id", "confidence": 0.0}]
Use confidence between 0 and 1. Omit keys with no clear field.`)
	return b.String()
}

// extractJSONArray tolerates models that wrap the array in prose or fences.
func extractJSONArray(s string) string {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
