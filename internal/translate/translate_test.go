package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendCode(t *testing.T) {
	assert.Equal(t, "en", BackendCode("EN"))
	assert.Equal(t, "fr", BackendCode("fr-CA"))
	assert.Equal(t, "zh", BackendCode("zh_Hans"))
	assert.Equal(t, "de", BackendCode("de"))
}

func TestLibreTranslateSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/translate", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"translatedText":"Hello"}`))
	}))
	defer srv.Close()

	tr := NewLibreTranslate(srv.URL, "")
	got, err := tr.Translate(context.Background(), "Bonjour", "en", "fr")
	require.NoError(t, err)
	assert.Equal(t, "Hello", got)
}

func TestLibreTranslateErrorClassification(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusTooManyRequests, ErrRateLimited},
		{456, ErrQuotaExceeded},
		{http.StatusForbidden, ErrInvalidKey},
		{http.StatusUnauthorized, ErrInvalidKey},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))
		tr := NewLibreTranslate(srv.URL, "key")
		_, err := tr.Translate(context.Background(), "x", "en", "fr")
		assert.ErrorIs(t, err, tt.want, "status %d", tt.status)
		srv.Close()
	}
}

func TestLibreTranslateNetworkError(t *testing.T) {
	tr := NewLibreTranslate("http://127.0.0.1:1", "")
	_, err := tr.Translate(context.Background(), "x", "en", "fr")
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestNewTranslator(t *testing.T) {
	tr, err := NewTranslator("none", "", "")
	require.NoError(t, err)
	_, err = tr.Translate(context.Background(), "x", "en", "fr")
	assert.ErrorIs(t, err, ErrDisabled)

	_, err = NewTranslator("deepl", "", "")
	assert.Error(t, err)

	_, err = NewTranslator("carrier-pigeon", "", "")
	assert.Error(t, err)
}

func TestDeepLEndpointSelection(t *testing.T) {
	assert.Equal(t, deeplFreeURL, NewDeepL("abc:fx").endpoint)
	assert.Equal(t, deeplProURL, NewDeepL("abc").endpoint)
}
