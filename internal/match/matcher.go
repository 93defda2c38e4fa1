package match

import (
	"fmt"
	"strings"

	"cv-fields/internal/field"
)

// Match is one proposed assignment of an extracted value to a field slot.
// Proposals are never committed automatically; the user confirms first.
type Match struct {
	FieldID        string  `json:"field_id"`
	ExtractedKey   string  `json:"extracted_key"`
	ExtractedValue string  `json:"extracted_value"`
	TargetLanguage string  `json:"target_language"`
	TargetVersion  int     `json:"target_version"`
	Confidence     float64 `json:"confidence"`
}

// Matcher maps extraction output onto an existing field set using
// identifier normalization and the embedded synonym table.
type Matcher struct {
	synonyms map[string][]string
}

func NewMatcher() *Matcher {
	return &Matcher{synonyms: loadSynonyms()}
}

// Sub-field keyword groups for positional array matching. Experience and
// education share date/description vocabulary, so education carries extra
// marker tokens to keep the two apart.
var (
	experienceSubfields = []struct {
		name     string
		keywords []string
	}{
		{"company", []string{"entreprise", "company", "employer", "societe", "employeur"}},
		{"title", []string{"poste", "title", "role", "fonction", "position"}},
		{"startDate", []string{"datedebut", "startdate", "debut", "start"}},
		{"endDate", []string{"datefin", "enddate", "fin", "end"}},
		{"description", []string{"mission", "description"}},
		{"results", []string{"resultat", "results", "achievement", "realisation"}},
	}

	educationSubfields = []struct {
		name     string
		keywords []string
	}{
		{"degree", []string{"diplome", "degree", "diploma"}},
		{"school", []string{"ecole", "school", "etablissement", "universit"}},
		{"startDate", []string{"datedebut", "startdate", "debut", "start"}},
		{"endDate", []string{"datefin", "enddate", "fin", "end"}},
		{"description", []string{"description"}},
	}

	educationMarkers = []string{"diplome", "degree", "ecole", "school", "etablissement", "universit", "formation", "edu"}

	languageNameKeywords  = []string{"langue", "language"}
	languageLevelKeywords = []string{"niveau", "level", "proficiency"}
)

// ProposeMatches computes the best-effort assignment of every extracted
// value to a field+version in the target language. Versions are resolved
// against the snapshot given here and deliberately not re-resolved as the
// batch is committed; two matches aimed at one field may propose the same
// slot, and the later commit wins.
func (m *Matcher) ProposeMatches(ex Extraction, fields []field.Field, baseLanguage string) []Match {
	var matches []Match

	scalars := ex.Scalars
	if len(ex.Skills) > 0 {
		scalars = copyScalars(scalars)
		scalars["skills"] = strings.Join(ex.Skills, ", ")
		ex.Scalars = scalars
	}

	for _, key := range ex.ScalarKeys() {
		value := ex.Scalars[key]
		if value == "" {
			continue
		}
		tokens := m.expandKey(normalizeIdent(key))
		for _, f := range fields {
			if !fieldMatchesTokens(f, tokens) {
				continue
			}
			if match, ok := propose(f, key, value, baseLanguage); ok {
				matches = append(matches, match)
			}
			break // first matching field wins, no fan-out for one scalar
		}
	}

	matches = append(matches, m.matchExperience(ex, fields, baseLanguage)...)
	matches = append(matches, m.matchEducation(ex, fields, baseLanguage)...)
	matches = append(matches, m.matchLanguages(ex, fields, baseLanguage)...)

	return matches
}

func (m *Matcher) matchExperience(ex Extraction, fields []field.Field, lang string) []Match {
	var matches []Match
	for i, entry := range ex.Experience {
		token := fmt.Sprintf("%02d", i+1)
		values := []string{entry.Company, entry.Title, entry.StartDate, entry.EndDate, entry.Description, entry.Results}
		for si, sub := range experienceSubfields {
			value := values[si]
			if value == "" {
				continue
			}
			key := fmt.Sprintf("experience[%d].%s", i, sub.name)
			for _, f := range fields {
				ident := combinedIdent(f)
				if !strings.Contains(ident, token) || !containsAny(ident, sub.keywords) || containsAny(ident, educationMarkers) {
					continue
				}
				if match, ok := propose(f, key, value, lang); ok {
					matches = append(matches, match)
				}
				break
			}
		}
	}
	return matches
}

func (m *Matcher) matchEducation(ex Extraction, fields []field.Field, lang string) []Match {
	var matches []Match
	for i, entry := range ex.Education {
		token := fmt.Sprintf("%02d", i+1)
		values := []string{entry.Degree, entry.School, entry.StartDate, entry.EndDate, entry.Description}
		for si, sub := range educationSubfields {
			value := values[si]
			if value == "" {
				continue
			}
			key := fmt.Sprintf("education[%d].%s", i, sub.name)
			for _, f := range fields {
				ident := combinedIdent(f)
				if !strings.Contains(ident, token) || !containsAny(ident, sub.keywords) {
					continue
				}
				// Dates and descriptions are shared vocabulary; require an
				// education marker so experience fields keep them.
				if (sub.name == "startDate" || sub.name == "endDate" || sub.name == "description") &&
					!containsAny(ident, educationMarkers) {
					continue
				}
				if match, ok := propose(f, key, value, lang); ok {
					matches = append(matches, match)
				}
				break
			}
		}
	}
	return matches
}

// matchLanguages maps only the first extracted language entry: the field set
// carries dedicated slots for the primary language and its level.
func (m *Matcher) matchLanguages(ex Extraction, fields []field.Field, lang string) []Match {
	if len(ex.Languages) == 0 {
		return nil
	}
	entry := ex.Languages[0]
	var matches []Match

	if entry.Level != "" {
		for _, f := range fields {
			if !containsAny(combinedIdent(f), languageLevelKeywords) {
				continue
			}
			if match, ok := propose(f, "languages[0].level", entry.Level, lang); ok {
				matches = append(matches, match)
			}
			break
		}
	}

	if entry.Name != "" {
		for _, f := range fields {
			ident := combinedIdent(f)
			if !containsAny(ident, languageNameKeywords) || containsAny(ident, languageLevelKeywords) {
				continue
			}
			if match, ok := propose(f, "languages[0].name", entry.Name, lang); ok {
				matches = append(matches, match)
			}
			break
		}
	}

	return matches
}

// expandKey returns the normalized key plus every synonym-group member whose
// group the key belongs to.
func (m *Matcher) expandKey(normKey string) []string {
	tokens := []string{normKey}
	for concept, members := range m.synonyms {
		inGroup := identsMatch(concept, normKey)
		if !inGroup {
			for _, member := range members {
				if identsMatch(member, normKey) {
					inGroup = true
					break
				}
			}
		}
		if inGroup {
			tokens = append(tokens, members...)
		}
	}
	return tokens
}

func fieldMatchesTokens(f field.Field, tokens []string) bool {
	idents := []string{normalizeIdent(f.Tag), normalizeIdent(f.Name), normalizeIdent(f.ID)}
	for _, token := range tokens {
		for _, ident := range idents {
			if identsMatch(token, ident) {
				return true
			}
		}
	}
	return false
}

// propose builds a Match for a field unless the value is already stored in
// the target language (trimmed, case-insensitive) in any version slot.
func propose(f field.Field, key, value, lang string) (Match, bool) {
	trimmed := strings.TrimSpace(value)
	for v := 1; v <= field.MaxVersions; v++ {
		if strings.EqualFold(strings.TrimSpace(f.ValueAt(lang, v)), trimmed) && f.ValueAt(lang, v) != "" {
			return Match{}, false
		}
	}
	return Match{
		FieldID:        f.ID,
		ExtractedKey:   key,
		ExtractedValue: value,
		TargetLanguage: lang,
		TargetVersion:  field.AvailableVersion(f, lang),
		Confidence:     1.0,
	}, true
}

func combinedIdent(f field.Field) string {
	return normalizeIdent(f.Tag) + "|" + normalizeIdent(f.Name) + "|" + normalizeIdent(f.ID)
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func copyScalars(in map[string]string) map[string]string {
	out := make(map[string]string, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}
