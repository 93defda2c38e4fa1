package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"cv-fields/pkg/httpx"
)

type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderOllama Provider = "ollama"
	ProviderGroq   Provider = "groq"
	ProviderNone   Provider = "none"
)

const (
	openAIURL = "https://api.openai.com/v1/chat/completions"
	groqURL   = "https://api.groq.com/openai/v1/chat/completions"
	ollamaURL = "http://localhost:11434/api/generate"
)

// Service calls a chat-completion LLM to turn raw CV text into the
// extraction mapping the matcher consumes, and to score field assignments.
type Service struct {
	provider Provider
	apiKey   string
	model    string
	client   *httpx.Client
}

func NewService(provider, apiKey, model string) *Service {
	return &Service{
		provider: Provider(provider),
		apiKey:   apiKey,
		model:    model,
		client:   httpx.NewClient(600 * time.Second), // large CVs on slow local models
	}
}

// Generate sends a prompt and returns the raw model output.
func (s *Service) Generate(prompt string) (string, error) {
	switch s.provider {
	case ProviderOpenAI:
		return s.callChatCompletions(openAIURL, prompt)
	case ProviderGroq:
		return s.callChatCompletions(groqURL, prompt)
	case ProviderOllama:
		return s.callOllama(prompt)
	case ProviderNone, "":
		return "", fmt.Errorf("LLM provider not configured")
	default:
		return "", fmt.Errorf("unknown provider: %s", s.provider)
	}
}

// ExtractFields parses CV text into the key/value mapping keyed by English
// field names (firstName, lastName, experience[], ...). The result is raw
// JSON shape; callers validate it into the matcher's tagged union.
func (s *Service) ExtractFields(cvText string) (map[string]interface{}, error) {
	response, err := s.Generate(s.buildExtractionPrompt(cvText))
	if err != nil {
		return nil, err
	}

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(response), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}
	return raw, nil
}

func (s *Service) buildExtractionPrompt(cvText string) string {
	return fmt.Sprintf(`You are an expert CV parser. Extract structured information from this CV.

CV Text:
"""
%s
"""

Extract and return ONLY valid JSON (no markdown, no explanation) with this exact structure:
{
  "firstName": "",
  "lastName": "",
  "email": "",
  "phone": "",
  "address": "",
  "postalCode": "",
  "city": "",
  "country": "",
  "birthDate": "",
  "title": "Current job title",
  "summary": "Short professional summary",
  "experience": [
    {
      "company": "",
      "title": "",
      "startDate": "",
      "endDate": "",
      "description": "",
      "results": ""
    }
  ],
  "education": [
    {
      "degree": "",
      "school": "",
      "startDate": "",
      "endDate": "",
      "description": ""
    }
  ],
  "skills": ["skill names"],
  "languages": [
    {"name": "", "level": ""}
  ]
}

Important:
- Keep values in the CV's original language, do not translate them
- Order experience entries most recent first
- Use "" for missing string values and [] for missing arrays
- Dates as YYYY-MM when known, otherwise as written
- Do not invent information that is not in the CV`, cvText)
}

func (s *Service) callChatCompletions(endpoint, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model": s.model,
		"messages": []map[string]string{
			{
				"role":    "system",
				"content": "You are a CV parser. Return only valid JSON.",
			},
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"temperature": 0.1,
		"response_format": map[string]string{
			"type": "json_object",
		},
	}

	headers := map[string]string{
		"Authorization": "Bearer " + s.apiKey,
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	start := time.Now()
	err := s.client.PostJSON(context.Background(), endpoint, headers, reqBody, &result)
	log.Printf("[LLM] %s request took %v", s.provider, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("%s API error: %w", s.provider, err)
	}

	if result.Error.Message != "" {
		return "", fmt.Errorf("%s error: %s", s.provider, result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no response from %s", s.provider)
	}
	return result.Choices[0].Message.Content, nil
}

func (s *Service) callOllama(prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model":  s.model,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	}

	var result struct {
		Response string `json:"response"`
		Error    string `json:"error"`
	}

	start := time.Now()
	err := s.client.PostJSON(context.Background(), ollamaURL, nil, reqBody, &result)
	log.Printf("[LLM] ollama request took %v", time.Since(start))
	if err != nil {
		return "", fmt.Errorf("Ollama connection failed (is Ollama running?): %w", err)
	}

	if result.Error != "" {
		return "", fmt.Errorf("Ollama error: %s", result.Error)
	}
	return result.Response, nil
}
