package field

import (
	"time"

	"github.com/google/uuid"
)

// MaxVersions is the number of parallel content slots per field per language.
const MaxVersions = 3

// Type describes what kind of content a field holds. Informational only;
// the engine never enforces it.
type Type string

const (
	TypeText   Type = "text"
	TypeNumber Type = "number"
	TypeImage  Type = "image"
	TypeVideo  Type = "video"
	TypeDate   Type = "date"
	TypeURL    Type = "url"
)

// AIVersion is one content slot in the field's base language.
type AIVersion struct {
	Version   int       `json:"version"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// LanguageVersion is one translated content slot for a language other than
// the field's base language.
type LanguageVersion struct {
	Language  string    `json:"language"`
	Version   int       `json:"version"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// Field is the unit of CV content: a named, tagged value with up to three
// versions per language. Content in BaseLanguage lives in AIVersions; every
// other language lives in LanguageVersions, keyed by (language, version).
type Field struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Tag              string            `json:"tag"`
	Type             Type              `json:"type"`
	BaseLanguage     string            `json:"base_language"`
	AIVersions       []AIVersion       `json:"ai_versions"`
	LanguageVersions []LanguageVersion `json:"language_versions"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// User owns an ordered field collection and is the unit of persistence:
// saves replace the whole collection.
type User struct {
	ID           string    `json:"id"`
	BaseLanguage string    `json:"base_language"`
	Data         []Field   `json:"data"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// New creates an empty field authored in baseLanguage.
func New(name, tag string, typ Type, baseLanguage string, now time.Time) Field {
	return Field{
		ID:           uuid.New().String(),
		Name:         name,
		Tag:          tag,
		Type:         typ,
		BaseLanguage: baseLanguage,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Clone returns a deep copy, so callers can hand out snapshots without
// sharing version slices.
func (f Field) Clone() Field {
	c := f
	c.AIVersions = append([]AIVersion(nil), f.AIVersions...)
	c.LanguageVersions = append([]LanguageVersion(nil), f.LanguageVersions...)
	return c
}

// ValueAt returns the stored value for (language, version), or "" when the
// slot has never been written.
func (f Field) ValueAt(language string, version int) string {
	if language == f.BaseLanguage {
		for _, v := range f.AIVersions {
			if v.Version == version {
				return v.Value
			}
		}
		return ""
	}
	for _, v := range f.LanguageVersions {
		if v.Language == language && v.Version == version {
			return v.Value
		}
	}
	return ""
}

// FieldByID finds a field in the user's collection.
func (u User) FieldByID(id string) (Field, bool) {
	for _, f := range u.Data {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// WithField returns a copy of the user with f replacing the field of the
// same ID, or appended when no field has that ID yet.
func (u User) WithField(f Field, now time.Time) User {
	c := u
	c.Data = append([]Field(nil), u.Data...)
	c.UpdatedAt = now
	for i := range c.Data {
		if c.Data[i].ID == f.ID {
			c.Data[i] = f
			return c
		}
	}
	c.Data = append(c.Data, f)
	return c
}
