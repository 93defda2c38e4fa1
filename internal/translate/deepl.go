package translate

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"cv-fields/pkg/httpx"
)

const (
	deeplFreeURL = "https://api-free.deepl.com/v2/translate"
	deeplProURL  = "https://api.deepl.com/v2/translate"
)

// DeepL is a Translator backed by the DeepL REST API. Free-tier keys end in
// ":fx" and are routed to the free endpoint.
type DeepL struct {
	apiKey   string
	endpoint string
	client   *httpx.Client
}

func NewDeepL(apiKey string) *DeepL {
	endpoint := deeplProURL
	if strings.HasSuffix(apiKey, ":fx") {
		endpoint = deeplFreeURL
	}
	return &DeepL{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   httpx.NewClient(30 * time.Second),
	}
}

func (d *DeepL) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	form := url.Values{}
	form.Set("text", text)
	form.Set("target_lang", strings.ToUpper(BackendCode(targetLang)))
	if sourceLang != "" {
		form.Set("source_lang", strings.ToUpper(BackendCode(sourceLang)))
	}

	headers := map[string]string{
		"Authorization": "DeepL-Auth-Key " + d.apiKey,
	}

	var result struct {
		Translations []struct {
			Text string `json:"text"`
		} `json:"translations"`
	}

	if err := d.client.PostForm(ctx, d.endpoint, headers, form, &result); err != nil {
		return "", classify(err, "deepl")
	}
	if len(result.Translations) == 0 {
		return "", fmt.Errorf("deepl: empty response")
	}
	return result.Translations[0].Text, nil
}

// classify maps transport and status failures onto the provider error
// classes. DeepL uses 456 for exhausted quota.
func classify(err error, provider string) error {
	var se *httpx.StatusError
	if !errors.As(err, &se) {
		return fmt.Errorf("%s: %w: %v", provider, ErrNetwork, err)
	}
	switch {
	case se.StatusCode == 429:
		return fmt.Errorf("%s: %w", provider, ErrRateLimited)
	case se.StatusCode == 456:
		return fmt.Errorf("%s: %w", provider, ErrQuotaExceeded)
	case se.StatusCode == 401 || se.StatusCode == 403:
		return fmt.Errorf("%s: %w", provider, ErrInvalidKey)
	default:
		return fmt.Errorf("%s: %w", provider, err)
	}
}
