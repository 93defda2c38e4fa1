package engine

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-fields/internal/field"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// stubTranslator upper-cases the text and appends the target language, so
// every expected translation is computable in the test.
type stubTranslator struct {
	calls int64
	fail  map[string]bool
}

func (s *stubTranslator) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	atomic.AddInt64(&s.calls, 1)
	if s.fail[targetLang] {
		return "", errors.New("provider down")
	}
	return strings.ToUpper(text) + "-" + targetLang, nil
}

func (s *stubTranslator) callCount() int64 {
	return atomic.LoadInt64(&s.calls)
}

func newTestField() field.Field {
	f := field.New("Greeting", "GREETING", field.TypeText, "fr", t0)
	f.ID = "greeting"
	return f
}

func TestPropagateFansOutToAllSupportedLanguages(t *testing.T) {
	stub := &stubTranslator{}
	r := NewReconciler(stub, nil)

	f := newTestField()
	f = field.SetValue(f, "fr", 1, "Bonjour", t0)

	f = r.Propagate(context.Background(), f, "fr", 1, "Bonjour", t0)

	for _, lang := range field.SupportedLanguages {
		if lang == "fr" {
			continue
		}
		assert.Equal(t, "BONJOUR-"+lang, f.ValueAt(lang, 1), "language %s", lang)
	}
	// The source slot itself is untouched.
	assert.Equal(t, "Bonjour", f.ValueAt("fr", 1))
	assert.Len(t, f.LanguageVersions, len(field.SupportedLanguages)-1)
}

func TestPropagateIdempotent(t *testing.T) {
	stub := &stubTranslator{}
	r := NewReconciler(stub, []string{"fr", "en", "es"})

	f := newTestField()
	f = r.Propagate(context.Background(), f, "fr", 1, "Bonjour", t0)
	first := stub.callCount()
	require.EqualValues(t, 2, first)

	// Same source text again: every slot already equals its marker, so the
	// provider is not called a second time.
	f = r.Propagate(context.Background(), f, "fr", 1, "Bonjour", t0)
	assert.Equal(t, first, stub.callCount())

	// A changed source text does retranslate.
	f = r.Propagate(context.Background(), f, "fr", 1, "Salut", t0)
	assert.EqualValues(t, first+2, stub.callCount())
	assert.Equal(t, "SALUT-en", f.ValueAt("en", 1))
}

func TestManualOverrideProtected(t *testing.T) {
	stub := &stubTranslator{}
	r := NewReconciler(stub, []string{"fr", "en", "es"})

	f := newTestField()
	f = r.Propagate(context.Background(), f, "fr", 1, "Bonjour", t0)
	require.Equal(t, "BONJOUR-en", f.ValueAt("en", 1))

	// User rewrites the English slot by hand.
	var err error
	f, err = r.SetValue(f, "en", 1, "Good morning", t0)
	require.NoError(t, err)

	// A new source edit must not clobber the manual text, while the
	// untouched Spanish slot follows the new source.
	f = r.Propagate(context.Background(), f, "fr", 1, "Bonjour à tous", t0)
	assert.Equal(t, "Good morning", f.ValueAt("en", 1))
	assert.Equal(t, "BONJOUR À TOUS-es", f.ValueAt("es", 1))
}

func TestResetToAutoTranslationRestoresMarker(t *testing.T) {
	stub := &stubTranslator{}
	r := NewReconciler(stub, []string{"fr", "en"})

	f := newTestField()
	f = r.Propagate(context.Background(), f, "fr", 1, "Bonjour", t0)

	f, err := r.SetValue(f, "en", 1, "manually edited", t0)
	require.NoError(t, err)

	calls := stub.callCount()
	f, err = r.ResetToAutoTranslation(context.Background(), f, "fr", "en", 1, t0)
	require.NoError(t, err)
	assert.Equal(t, "BONJOUR-en", f.ValueAt("en", 1))
	// Marker restore needs no provider call.
	assert.Equal(t, calls, stub.callCount())
}

func TestResetToAutoTranslationWithoutMarkerRetranslates(t *testing.T) {
	stub := &stubTranslator{}
	r := NewReconciler(stub, []string{"fr", "en"})

	f := newTestField()
	f = field.SetValue(f, "fr", 2, "Au revoir", t0)
	f = field.SetValue(f, "en", 2, "hand written", t0)

	f, err := r.ResetToAutoTranslation(context.Background(), f, "fr", "en", 2, t0)
	require.NoError(t, err)
	assert.Equal(t, "AU REVOIR-en", f.ValueAt("en", 2))
	assert.EqualValues(t, 1, stub.callCount())
}

func TestResetToAutoTranslationNoSource(t *testing.T) {
	r := NewReconciler(&stubTranslator{}, []string{"fr", "en"})

	f := newTestField()
	_, err := r.ResetToAutoTranslation(context.Background(), f, "fr", "en", 1, t0)
	assert.ErrorIs(t, err, ErrNoSource)
}

func TestPropagateEmptySourceLeavesTranslations(t *testing.T) {
	stub := &stubTranslator{}
	r := NewReconciler(stub, []string{"fr", "en"})

	f := newTestField()
	f = r.Propagate(context.Background(), f, "fr", 1, "Bonjour", t0)
	require.Equal(t, "BONJOUR-en", f.ValueAt("en", 1))

	calls := stub.callCount()
	f = r.Propagate(context.Background(), f, "fr", 1, "", t0)
	assert.Equal(t, "BONJOUR-en", f.ValueAt("en", 1))
	assert.Equal(t, calls, stub.callCount())
}

func TestPropagateProviderFailureLeavesSlotUntouched(t *testing.T) {
	stub := &stubTranslator{fail: map[string]bool{"en": true}}
	r := NewReconciler(stub, []string{"fr", "en", "es"})

	f := newTestField()
	f = r.Propagate(context.Background(), f, "fr", 1, "Bonjour", t0)

	// The failing language stays empty, the others land.
	assert.Empty(t, f.ValueAt("en", 1))
	assert.Equal(t, "BONJOUR-es", f.ValueAt("es", 1))

	// Once the provider recovers, the slot is retried (no marker was set).
	stub.fail = nil
	f = r.Propagate(context.Background(), f, "fr", 1, "Bonjour", t0)
	assert.Equal(t, "BONJOUR-en", f.ValueAt("en", 1))
}

func TestClearVersionDropsMarkers(t *testing.T) {
	stub := &stubTranslator{}
	r := NewReconciler(stub, []string{"fr", "en"})

	f := newTestField()
	f = field.SetValue(f, "fr", 1, "Bonjour", t0)
	f = r.Propagate(context.Background(), f, "fr", 1, "Bonjour", t0)

	f = r.ClearVersion(f, 1, t0)
	assert.Empty(t, f.AIVersions)
	assert.Empty(t, f.LanguageVersions)

	// With markers gone, a fresh value in the cleared slot propagates again
	// instead of being skipped as converged.
	f = field.SetValue(f, "fr", 1, "Rebonjour", t0)
	f = r.Propagate(context.Background(), f, "fr", 1, "Rebonjour", t0)
	assert.Equal(t, "REBONJOUR-en", f.ValueAt("en", 1))
}

func TestChangeWorkingLanguage(t *testing.T) {
	stub := &stubTranslator{}
	r := NewReconciler(stub, []string{"fr", "en"})

	u := field.User{ID: "u1", BaseLanguage: "fr"}
	u, err := r.ChangeWorkingLanguage(u, "en", t0)
	require.NoError(t, err)
	assert.Equal(t, "en", u.BaseLanguage)
	// No retranslation happens on a language switch.
	assert.EqualValues(t, 0, stub.callCount())

	_, err = r.ChangeWorkingLanguage(u, "klingon", t0)
	assert.Error(t, err)
}
