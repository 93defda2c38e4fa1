package translate

import (
	"context"
	"fmt"
)

type Provider string

const (
	ProviderDeepL          Provider = "deepl"
	ProviderLibreTranslate Provider = "libretranslate"
	ProviderNone           Provider = "none"
)

// NewTranslator builds the configured backend. With provider "none" (or
// empty) it returns a disabled translator: every call fails with
// ErrDisabled, which the engine logs and skips.
func NewTranslator(provider, apiKey, baseURL string) (Translator, error) {
	switch Provider(provider) {
	case ProviderDeepL:
		if apiKey == "" {
			return nil, fmt.Errorf("deepl: missing API key")
		}
		return NewDeepL(apiKey), nil
	case ProviderLibreTranslate:
		if baseURL == "" {
			baseURL = "http://localhost:5000"
		}
		return NewLibreTranslate(baseURL, apiKey), nil
	case ProviderNone, "":
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown translation provider: %s", provider)
	}
}

// Disabled is the no-provider translator.
type Disabled struct{}

func (Disabled) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	return "", ErrDisabled
}
