package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	Port        string
	UploadsDir  string

	// Translation provider configuration
	TranslatorProvider string // "deepl", "libretranslate", or "none"
	TranslatorAPIKey   string
	TranslatorBaseURL  string // LibreTranslate instance URL

	// LLM configuration (CV extraction + optional AI matching)
	LLMProvider string // "openai", "groq", "ollama", or "none"
	LLMModel    string
	LLMAPIKey   string

	// PropagationDelay is the quiescence window before an edited source
	// value fans out to the other languages.
	PropagationDelay time.Duration
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	translatorProvider := getEnv("TRANSLATOR_PROVIDER", "none")
	translatorAPIKey := ""
	switch translatorProvider {
	case "deepl":
		translatorAPIKey = os.Getenv("DEEPL_API_KEY")
	case "libretranslate":
		translatorAPIKey = os.Getenv("LIBRETRANSLATE_API_KEY")
	}

	llmProvider := getEnv("LLM_PROVIDER", "none")
	llmAPIKey := ""
	switch llmProvider {
	case "openai":
		llmAPIKey = os.Getenv("OPENAI_API_KEY")
	case "groq":
		llmAPIKey = os.Getenv("GROQ_API_KEY")
	}

	delay := time.Second
	if v := os.Getenv("PROPAGATION_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			delay = d
		} else {
			log.Printf("Warning: invalid PROPAGATION_DELAY %q, using %v", v, delay)
		}
	}

	return &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		Port:               getEnv("PORT", "8080"),
		UploadsDir:         getEnv("UPLOADS_DIR", "./uploads"),
		TranslatorProvider: translatorProvider,
		TranslatorAPIKey:   translatorAPIKey,
		TranslatorBaseURL:  os.Getenv("LIBRETRANSLATE_URL"),
		LLMProvider:        llmProvider,
		LLMModel:           getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMAPIKey:          llmAPIKey,
		PropagationDelay:   delay,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
