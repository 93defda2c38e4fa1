package cv

import (
	"log"
	"regexp"
	"strings"

	"cv-fields/internal/llm"
	"cv-fields/internal/match"
)

// Extractor turns parsed CV text into the shape-validated extraction the
// matcher consumes. With the LLM disabled it falls back to a regex pass that
// recovers at least contact details.
type Extractor struct {
	llmService *llm.Service
	useLLM     bool
}

func NewExtractor(llmService *llm.Service, useLLM bool) *Extractor {
	return &Extractor{
		llmService: llmService,
		useLLM:     useLLM && llmService != nil,
	}
}

// Extract produces the extraction mapping for text and validates its shape.
func (e *Extractor) Extract(text string) (match.Extraction, error) {
	if !e.useLLM {
		log.Println("[Extractor] LLM disabled, using basic extraction")
		return match.ParseExtraction(basicExtraction(text))
	}

	raw, err := e.llmService.ExtractFields(text)
	if err != nil {
		log.Printf("[Extractor] LLM extraction failed: %v", err)
		return match.Extraction{}, err
	}

	ex, err := match.ParseExtraction(raw)
	if err != nil {
		log.Printf("[Extractor] LLM returned malformed shape: %v", err)
		return match.Extraction{}, err
	}
	return ex, nil
}

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRe = regexp.MustCompile(`(?:\+?\d[\d .\-]{7,}\d)`)
)

// basicExtraction recovers contact scalars without any model: enough for the
// matcher to propose email/phone assignments when no provider is configured.
func basicExtraction(text string) map[string]interface{} {
	out := make(map[string]interface{})
	if m := emailRe.FindString(text); m != "" {
		out["email"] = m
	}
	if m := phoneRe.FindString(text); m != "" {
		out["phone"] = strings.TrimSpace(m)
	}
	return out
}
