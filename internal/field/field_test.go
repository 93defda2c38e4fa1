package field

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func testField() Field {
	f := New("First name", "PRENOM", TypeText, "fr", t0)
	f.ID = "prenom"
	return f
}

func TestAvailableVersion(t *testing.T) {
	tests := []struct {
		name   string
		filled []int
		lang   string
		want   int
	}{
		{"empty field", nil, "fr", 1},
		{"v1 filled", []int{1}, "fr", 2},
		{"v1 and v2 filled", []int{1, 2}, "fr", 3},
		{"all filled overwrites first", []int{1, 2, 3}, "fr", 1},
		{"gap at v2", []int{1, 3}, "fr", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testField()
			for _, v := range tt.filled {
				f = SetValue(f, tt.lang, v, "x", t0)
			}
			assert.Equal(t, tt.want, AvailableVersion(f, tt.lang))
		})
	}
}

func TestAvailableVersionPerLanguage(t *testing.T) {
	f := testField()
	f = SetValue(f, "fr", 1, "Bonjour", t0)
	f = SetValue(f, "fr", 2, "Salut", t0)

	// Base language slots are full up to 3, English is untouched.
	assert.Equal(t, 3, AvailableVersion(f, "fr"))
	assert.Equal(t, 1, AvailableVersion(f, "en"))
}

func TestSetValueRoundTrip(t *testing.T) {
	f := testField()

	f = SetValue(f, "fr", 2, "Jean", t0)
	assert.Equal(t, "Jean", f.ValueAt("fr", 2))

	f = SetValue(f, "de", 1, "Hans", t0)
	assert.Equal(t, "Hans", f.ValueAt("de", 1))

	// Base-language content lives in AIVersions only.
	require.Len(t, f.AIVersions, 1)
	require.Len(t, f.LanguageVersions, 1)
	assert.Equal(t, "de", f.LanguageVersions[0].Language)
}

func TestSetValueDoesNotMutateSnapshot(t *testing.T) {
	f := testField()
	f = SetValue(f, "fr", 1, "avant", t0)

	snapshot := f
	updated := SetValue(f, "fr", 1, "après", t0.Add(time.Minute))

	assert.Equal(t, "avant", snapshot.ValueAt("fr", 1))
	assert.Equal(t, "après", updated.ValueAt("fr", 1))
	assert.True(t, updated.UpdatedAt.After(snapshot.UpdatedAt))
}

func TestSetValueUpsertsExistingSlot(t *testing.T) {
	f := testField()
	f = SetValue(f, "en", 1, "one", t0)
	f = SetValue(f, "en", 1, "two", t0)

	require.Len(t, f.LanguageVersions, 1)
	assert.Equal(t, "two", f.ValueAt("en", 1))
}

func TestClearVersionErasesAllLanguages(t *testing.T) {
	f := testField()
	f = SetValue(f, "fr", 1, "Bonjour", t0)
	f = SetValue(f, "fr", 2, "Salut", t0)
	f = SetValue(f, "en", 1, "Hello", t0)
	f = SetValue(f, "es", 1, "Hola", t0)

	f = ClearVersion(f, 1, t0)

	assert.Empty(t, f.ValueAt("fr", 1))
	assert.Empty(t, f.ValueAt("en", 1))
	assert.Empty(t, f.ValueAt("es", 1))
	for _, v := range f.AIVersions {
		assert.NotEqual(t, 1, v.Version)
	}
	for _, v := range f.LanguageVersions {
		assert.NotEqual(t, 1, v.Version)
	}

	// Other versions stay put.
	assert.Equal(t, "Salut", f.ValueAt("fr", 2))
}

func TestNormalizeKeepsLastSeenDuplicate(t *testing.T) {
	f := testField()
	f.AIVersions = []AIVersion{
		{Version: 1, Value: "old", CreatedAt: t0},
		{Version: 1, Value: "new", CreatedAt: t0},
	}
	f.LanguageVersions = []LanguageVersion{
		{Language: "en", Version: 1, Value: "stale", CreatedAt: t0},
		{Language: "en", Version: 1, Value: "fresh", CreatedAt: t0},
		{Language: "de", Version: 1, Value: "keep", CreatedAt: t0},
	}

	f = Normalize(f)

	require.Len(t, f.AIVersions, 1)
	assert.Equal(t, "new", f.AIVersions[0].Value)
	require.Len(t, f.LanguageVersions, 2)
	assert.Equal(t, "fresh", f.ValueAt("en", 1))
	assert.Equal(t, "keep", f.ValueAt("de", 1))
}

func TestValidateSlot(t *testing.T) {
	assert.NoError(t, ValidateSlot("fr", 1))
	assert.NoError(t, ValidateSlot("uk", 3))
	assert.Error(t, ValidateSlot("fr", 0))
	assert.Error(t, ValidateSlot("fr", 4))
	assert.Error(t, ValidateSlot("xx", 1))
}

func TestUserWithField(t *testing.T) {
	u := User{ID: "u1", BaseLanguage: "fr"}
	f := testField()

	u = u.WithField(f, t0)
	require.Len(t, u.Data, 1)

	f = SetValue(f, "fr", 1, "Jean", t0)
	u2 := u.WithField(f, t0)

	got, ok := u2.FieldByID("prenom")
	require.True(t, ok)
	assert.Equal(t, "Jean", got.ValueAt("fr", 1))

	// The previous user snapshot is untouched.
	old, _ := u.FieldByID("prenom")
	assert.Empty(t, old.ValueAt("fr", 1))
}
