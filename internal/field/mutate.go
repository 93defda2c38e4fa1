package field

import (
	"fmt"
	"time"
)

// ValidateSlot rejects out-of-range versions and unknown language codes
// before they reach a field's version collections.
func ValidateSlot(language string, version int) error {
	if version < 1 || version > MaxVersions {
		return fmt.Errorf("version %d out of range 1..%d", version, MaxVersions)
	}
	if !IsSupportedLanguage(language) {
		return fmt.Errorf("unsupported language %q", language)
	}
	return nil
}

// SetValue upserts value at (language, version) and returns the updated
// field. The receiver's snapshot is never mutated: concurrent readers keep a
// consistent view while the caller swaps in the returned copy.
func SetValue(f Field, language string, version int, value string, now time.Time) Field {
	c := f.Clone()
	c.UpdatedAt = now

	if language == c.BaseLanguage {
		for i := range c.AIVersions {
			if c.AIVersions[i].Version == version {
				c.AIVersions[i].Value = value
				return c
			}
		}
		c.AIVersions = append(c.AIVersions, AIVersion{Version: version, Value: value, CreatedAt: now})
		return c
	}

	for i := range c.LanguageVersions {
		if c.LanguageVersions[i].Language == language && c.LanguageVersions[i].Version == version {
			c.LanguageVersions[i].Value = value
			return c
		}
	}
	c.LanguageVersions = append(c.LanguageVersions, LanguageVersion{
		Language: language, Version: version, Value: value, CreatedAt: now,
	})
	return c
}

// ClearVersion erases the slot at version across every language, both the
// base language entry and all translated entries.
func ClearVersion(f Field, version int, now time.Time) Field {
	c := f.Clone()
	c.UpdatedAt = now

	ai := c.AIVersions[:0]
	for _, v := range c.AIVersions {
		if v.Version != version {
			ai = append(ai, v)
		}
	}
	c.AIVersions = ai

	lv := c.LanguageVersions[:0]
	for _, v := range c.LanguageVersions {
		if v.Version != version {
			lv = append(lv, v)
		}
	}
	c.LanguageVersions = lv
	return c
}

// Normalize repairs loaded data: duplicate versions in AIVersions and
// duplicate (language, version) pairs in LanguageVersions are collapsed
// keeping the last-seen entry.
func Normalize(f Field) Field {
	c := f.Clone()

	seenAI := make(map[int]int, len(c.AIVersions))
	ai := c.AIVersions[:0]
	for _, v := range c.AIVersions {
		if i, ok := seenAI[v.Version]; ok {
			ai[i] = v
			continue
		}
		seenAI[v.Version] = len(ai)
		ai = append(ai, v)
	}
	c.AIVersions = ai

	type slot struct {
		lang string
		ver  int
	}
	seenLV := make(map[slot]int, len(c.LanguageVersions))
	lv := c.LanguageVersions[:0]
	for _, v := range c.LanguageVersions {
		k := slot{v.Language, v.Version}
		if i, ok := seenLV[k]; ok {
			lv[i] = v
			continue
		}
		seenLV[k] = len(lv)
		lv = append(lv, v)
	}
	c.LanguageVersions = lv
	return c
}
