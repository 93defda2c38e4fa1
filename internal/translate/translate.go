// Package translate provides machine-translation backends behind a single
// interface. The reconciliation engine only cares about success or failure;
// the error classes exist for logging and operator diagnostics.
package translate

import (
	"context"
	"errors"
	"strings"
)

// Translator is the contract the reconciliation engine depends on.
// Language codes are ISO 639-1 ("en", "fr", ...).
type Translator interface {
	Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error)
}

// Provider failure classes. Callers match with errors.Is; the engine treats
// every one of them as a plain failure and leaves the slot untouched.
var (
	ErrRateLimited   = errors.New("translation provider rate limited")
	ErrQuotaExceeded = errors.New("translation quota exceeded")
	ErrInvalidKey    = errors.New("invalid translation API key")
	ErrNetwork       = errors.New("translation provider unreachable")
	ErrDisabled      = errors.New("translation provider not configured")
)

// BackendCode lowers a BCP 47 tag to the base ISO 639-1 code the REST
// backends expect ("fr-CA" -> "fr", "EN" -> "en").
func BackendCode(lang string) string {
	l := strings.ToLower(lang)
	if i := strings.IndexAny(l, "-_"); i >= 0 {
		l = l[:i]
	}
	return l
}
