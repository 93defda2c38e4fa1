package match

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExtractionShapes(t *testing.T) {
	var raw map[string]interface{}
	blob := `{
		"firstName": "Jean",
		"lastName": "Dupont",
		"age": 34,
		"available": true,
		"ignoredNull": null,
		"experience": [
			{"company": "Acme", "title": "Dev", "startDate": "2019-01", "endDate": "2023-06"},
			{"employer": "Globex", "role": "Lead", "mission": "Platform work"}
		],
		"education": [
			{"degree": "Master", "school": "ENSIMAG"}
		],
		"skills": ["Go", "SQL"],
		"languages": [
			{"name": "Anglais", "level": "Courant"}
		]
	}`
	require.NoError(t, json.Unmarshal([]byte(blob), &raw))

	ex, err := ParseExtraction(raw)
	require.NoError(t, err)

	assert.Equal(t, "Jean", ex.Scalars["firstName"])
	assert.Equal(t, "34", ex.Scalars["age"])
	assert.Equal(t, "true", ex.Scalars["available"])
	assert.NotContains(t, ex.Scalars, "ignoredNull")

	require.Len(t, ex.Experience, 2)
	assert.Equal(t, "Acme", ex.Experience[0].Company)
	assert.Equal(t, "2023-06", ex.Experience[0].EndDate)
	// Alternate key spellings resolve to the same sub-fields.
	assert.Equal(t, "Globex", ex.Experience[1].Company)
	assert.Equal(t, "Lead", ex.Experience[1].Title)
	assert.Equal(t, "Platform work", ex.Experience[1].Description)

	require.Len(t, ex.Education, 1)
	assert.Equal(t, "ENSIMAG", ex.Education[0].School)

	assert.Equal(t, []string{"Go", "SQL"}, ex.Skills)

	require.Len(t, ex.Languages, 1)
	assert.Equal(t, "Anglais", ex.Languages[0].Name)
}

func TestParseExtractionRejectsMalformedArrays(t *testing.T) {
	_, err := ParseExtraction(map[string]interface{}{
		"experience": "not an array",
	})
	assert.Error(t, err)

	_, err = ParseExtraction(map[string]interface{}{
		"education": []interface{}{"not an object"},
	})
	assert.Error(t, err)

	_, err = ParseExtraction(map[string]interface{}{
		"skills": map[string]interface{}{"oops": true},
	})
	assert.Error(t, err)
}

func TestParseExtractionDropsUnknownComposites(t *testing.T) {
	ex, err := ParseExtraction(map[string]interface{}{
		"firstName": "Jean",
		"metadata":  map[string]interface{}{"source": "upload"},
		"tags":      []interface{}{"a", "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"firstName": "Jean"}, ex.Scalars)
}

func TestScalarKeysDeterministic(t *testing.T) {
	ex := Extraction{Scalars: map[string]string{"b": "2", "a": "1", "c": "3"}}
	assert.Equal(t, []string{"a", "b", "c"}, ex.ScalarKeys())
}
