package match

import (
	_ "embed"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

//go:embed synonyms.yaml
var synonymsYAML []byte

// loadSynonyms parses the embedded synonym table. The table ships with the
// binary; a parse failure is a build defect, so it panics at init time.
func loadSynonyms() map[string][]string {
	table := make(map[string][]string)
	if err := yaml.Unmarshal(synonymsYAML, &table); err != nil {
		panic("match: invalid embedded synonyms.yaml: " + err.Error())
	}
	return table
}

// normalizeIdent lowers an identifier to its comparable form: lowercase with
// every non-alphanumeric rune stripped ("Code postal" -> "codepostal").
func normalizeIdent(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// identsMatch is the symmetric substring test: equal, contains, or is
// contained by.
func identsMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}
