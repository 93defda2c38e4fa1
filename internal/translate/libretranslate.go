package translate

import (
	"context"
	"strings"
	"time"

	"cv-fields/pkg/httpx"
)

// LibreTranslate is a Translator backed by a LibreTranslate instance
// (self-hosted or libretranslate.com with an API key).
type LibreTranslate struct {
	baseURL string
	apiKey  string
	client  *httpx.Client
}

func NewLibreTranslate(baseURL, apiKey string) *LibreTranslate {
	return &LibreTranslate{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  httpx.NewClient(30 * time.Second),
	}
}

func (l *LibreTranslate) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	body := map[string]string{
		"q":      text,
		"source": BackendCode(sourceLang),
		"target": BackendCode(targetLang),
		"format": "text",
	}
	if l.apiKey != "" {
		body["api_key"] = l.apiKey
	}
	if body["source"] == "" {
		body["source"] = "auto"
	}

	var result struct {
		TranslatedText string `json:"translatedText"`
	}
	if err := l.client.PostJSON(ctx, l.baseURL+"/translate", nil, body, &result); err != nil {
		return "", classify(err, "libretranslate")
	}
	return result.TranslatedText, nil
}
