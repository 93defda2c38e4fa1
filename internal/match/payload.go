// Package match proposes assignments from document-extraction output to the
// user's CV fields: identifier heuristics plus a synonym table for scalar
// keys, positional token matching for experience/education/language arrays.
package match

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ExperienceEntry is one position in the extraction's experience array.
type ExperienceEntry struct {
	Company     string `json:"company"`
	Title       string `json:"title"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
	Results     string `json:"results"`
}

// EducationEntry is one diploma in the extraction's education array.
type EducationEntry struct {
	Degree      string `json:"degree"`
	School      string `json:"school"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
}

// LanguageEntry is one spoken language with its proficiency level.
type LanguageEntry struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

// Extraction is the shape-validated form of the parser/LLM output: a tagged
// union of scalar fields and the four known array shapes, instead of
// free-form dynamic traversal.
type Extraction struct {
	Scalars    map[string]string
	Experience []ExperienceEntry
	Education  []EducationEntry
	Skills     []string
	Languages  []LanguageEntry
}

// ScalarKeys returns the scalar key set in deterministic order.
func (e Extraction) ScalarKeys() []string {
	keys := make([]string, 0, len(e.Scalars))
	for k := range e.Scalars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseExtraction validates a raw JSON-like mapping into an Extraction. The
// four array keys are validated strictly; any other key must carry a scalar
// value and is coerced to its string form. Null and composite values outside
// the known shapes are dropped.
func ParseExtraction(raw map[string]interface{}) (Extraction, error) {
	ex := Extraction{Scalars: make(map[string]string)}

	for key, val := range raw {
		if val == nil {
			continue
		}
		switch key {
		case "experience":
			entries, err := toObjectList(val, key)
			if err != nil {
				return Extraction{}, err
			}
			for _, obj := range entries {
				ex.Experience = append(ex.Experience, ExperienceEntry{
					Company:     scalarString(firstOf(obj, "company", "employer")),
					Title:       scalarString(firstOf(obj, "title", "role", "position")),
					StartDate:   scalarString(firstOf(obj, "startDate", "start_date")),
					EndDate:     scalarString(firstOf(obj, "endDate", "end_date")),
					Description: scalarString(firstOf(obj, "description", "mission")),
					Results:     scalarString(firstOf(obj, "results", "achievements")),
				})
			}
		case "education":
			entries, err := toObjectList(val, key)
			if err != nil {
				return Extraction{}, err
			}
			for _, obj := range entries {
				ex.Education = append(ex.Education, EducationEntry{
					Degree:      scalarString(firstOf(obj, "degree", "diploma")),
					School:      scalarString(firstOf(obj, "school", "institution", "university")),
					StartDate:   scalarString(firstOf(obj, "startDate", "start_date")),
					EndDate:     scalarString(firstOf(obj, "endDate", "end_date")),
					Description: scalarString(firstOf(obj, "description")),
				})
			}
		case "skills":
			list, ok := val.([]interface{})
			if !ok {
				return Extraction{}, fmt.Errorf("extraction key %q: expected array, got %T", key, val)
			}
			for _, item := range list {
				if s := scalarString(item); s != "" {
					ex.Skills = append(ex.Skills, s)
				}
			}
		case "languages":
			entries, err := toObjectList(val, key)
			if err != nil {
				return Extraction{}, err
			}
			for _, obj := range entries {
				ex.Languages = append(ex.Languages, LanguageEntry{
					Name:  scalarString(firstOf(obj, "name", "language")),
					Level: scalarString(firstOf(obj, "level", "proficiency")),
				})
			}
		default:
			switch val.(type) {
			case map[string]interface{}, []interface{}:
				// Unknown composite shape: nothing to map it to.
				continue
			default:
				if s := scalarString(val); s != "" {
					ex.Scalars[key] = s
				}
			}
		}
	}

	return ex, nil
}

func toObjectList(val interface{}, key string) ([]map[string]interface{}, error) {
	list, ok := val.([]interface{})
	if !ok {
		return nil, fmt.Errorf("extraction key %q: expected array, got %T", key, val)
	}
	out := make([]map[string]interface{}, 0, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("extraction key %q[%d]: expected object, got %T", key, i, item)
		}
		out = append(out, obj)
	}
	return out, nil
}

func firstOf(obj map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func scalarString(val interface{}) string {
	switch v := val.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}
