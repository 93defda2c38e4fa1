// Package engine implements the field/version/translation reconciliation
// rules: auto-translating a source-language value into every other supported
// language, detecting manual overrides and never clobbering them, and
// re-deriving translations on demand.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"cv-fields/internal/field"
	"cv-fields/internal/translate"
)

// ErrNoSource is returned by ResetToAutoTranslation when neither a marker
// nor a source-language value exists for the slot.
var ErrNoSource = errors.New("no source content to translate")

type slotKey struct {
	FieldID  string
	Language string
	Version  int
}

// marker records the last auto-translation the engine wrote to a slot,
// together with the source text that produced it. A stored value differing
// from the marker means the user edited the slot by hand.
type marker struct {
	Translated string
	Source     string
}

// Reconciler owns the auto-translation markers for one process. Markers are
// in-memory only: on a fresh start, stored values are treated as auto until
// the user touches them. "Never translated" and "manually edited to exactly
// what the translator would produce" are indistinguishable; accepted.
type Reconciler struct {
	translator translate.Translator
	languages  []string

	mu      sync.RWMutex
	markers map[slotKey]marker
}

func NewReconciler(tr translate.Translator, languages []string) *Reconciler {
	if languages == nil {
		languages = field.SupportedLanguages
	}
	return &Reconciler{
		translator: tr,
		languages:  languages,
		markers:    make(map[slotKey]marker),
	}
}

// SetValue validates the slot and writes value, returning the updated field
// snapshot. The caller's field is never mutated in place.
func (r *Reconciler) SetValue(f field.Field, language string, version int, value string, now time.Time) (field.Field, error) {
	if err := field.ValidateSlot(language, version); err != nil {
		return f, err
	}
	return field.SetValue(f, language, version, value, now), nil
}

// Propagate fans sourceText out from workingLang into every other supported
// language at the given version. Slots the user has manually overridden are
// skipped; provider failures are logged per language and leave their slot
// untouched; an empty source translates nothing and clears nothing.
// Provider calls run concurrently, one goroutine per target language.
func (r *Reconciler) Propagate(ctx context.Context, f field.Field, workingLang string, version int, sourceText string, now time.Time) field.Field {
	if sourceText == "" {
		return f
	}

	type outcome struct {
		lang       string
		translated string
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []outcome
	)

	for _, lang := range r.languages {
		if lang == workingLang {
			continue
		}
		if r.skipSlot(f, lang, version, sourceText) {
			continue
		}

		wg.Add(1)
		go func(lang string) {
			defer wg.Done()
			translated, err := r.translator.Translate(ctx, sourceText, lang, workingLang)
			if err != nil {
				log.Printf("[Reconciler] translate %s v%d field %s: %v", lang, version, f.ID, err)
				return
			}
			mu.Lock()
			results = append(results, outcome{lang: lang, translated: translated})
			mu.Unlock()
		}(lang)
	}
	wg.Wait()

	r.mu.Lock()
	for _, res := range results {
		f = field.SetValue(f, res.lang, version, res.translated, now)
		r.markers[slotKey{f.ID, res.lang, version}] = marker{Translated: res.translated, Source: sourceText}
	}
	r.mu.Unlock()

	return f
}

// skipSlot decides whether propagation leaves a target slot alone: either
// the user overrode it manually, or it already holds the translation of
// this exact source text.
func (r *Reconciler) skipSlot(f field.Field, lang string, version int, sourceText string) bool {
	stored := f.ValueAt(lang, version)

	r.mu.RLock()
	m, marked := r.markers[slotKey{f.ID, lang, version}]
	r.mu.RUnlock()

	if !marked {
		return false
	}
	if stored != "" && stored != m.Translated {
		return true // manual override
	}
	if stored == m.Translated && sourceText == m.Source {
		return true // already converged
	}
	return false
}

// ClearVersion erases the version slot in every language and drops all its
// auto-translation markers.
func (r *Reconciler) ClearVersion(f field.Field, version int, now time.Time) field.Field {
	cleared := field.ClearVersion(f, version, now)

	r.mu.Lock()
	for k := range r.markers {
		if k.FieldID == f.ID && k.Version == version {
			delete(r.markers, k)
		}
	}
	r.mu.Unlock()

	return cleared
}

// ResetToAutoTranslation reverts a manually-modified slot to machine output.
// With a marker present the stored text is restored directly; otherwise the
// provider is re-invoked against the working-language value at that version.
func (r *Reconciler) ResetToAutoTranslation(ctx context.Context, f field.Field, workingLang, language string, version int, now time.Time) (field.Field, error) {
	if err := field.ValidateSlot(language, version); err != nil {
		return f, err
	}

	r.mu.RLock()
	m, marked := r.markers[slotKey{f.ID, language, version}]
	r.mu.RUnlock()

	if marked {
		return field.SetValue(f, language, version, m.Translated, now), nil
	}

	sourceText := f.ValueAt(workingLang, version)
	if sourceText == "" {
		return f, ErrNoSource
	}

	translated, err := r.translator.Translate(ctx, sourceText, language, workingLang)
	if err != nil {
		return f, fmt.Errorf("retranslate %s v%d: %w", language, version, err)
	}

	f = field.SetValue(f, language, version, translated, now)
	r.mu.Lock()
	r.markers[slotKey{f.ID, language, version}] = marker{Translated: translated, Source: sourceText}
	r.mu.Unlock()
	return f, nil
}

// ChangeWorkingLanguage switches which language subsequent edits propagate
// from. Nothing is retranslated; existing content in every language stays
// as it is until the next edit fires a propagation.
func (r *Reconciler) ChangeWorkingLanguage(u field.User, newLanguage string, now time.Time) (field.User, error) {
	if !field.IsSupportedLanguage(newLanguage) {
		return u, fmt.Errorf("unsupported language %q", newLanguage)
	}
	u.BaseLanguage = newLanguage
	u.UpdatedAt = now
	return u, nil
}
