package config

import (
	"os"
	"strconv"
	"time"
)

const (
	ScorerLexicon     = "lexicon"
	ScorerVader       = "vader"
	ScorerOpenAI      = "openai"
	ScorerHuggingFace = "huggingface"
	ScorerTransformer = "transformer"
)

const (
	AnalysisModeInline = "inline"
	AnalysisModeAsync  = "async"
)

type AppConfig struct {
	AppEnv   string
	Port       string
	LogLevel   string
	CORSOrigin string

	// Scorer selects the primary scoring strategy. The lexicon engine is
	// always the fallback.
	Scorer       string
	AnalysisMode string

	OpenAIAPIKey string
	OpenAIModel  string

	HuggingFaceEndpoint string
	TransformerModel    string
	TransformerModelDir string

	CacheEnabled bool
	CacheTTL     time.Duration

	EntriesTable      string
	AnalyzeBatchLimit int
	SchedulerSpec     string
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

// AppEnv returns APP_ENV, defaulting to "dev".
func AppEnv() string {
	return getEnv("APP_ENV", "dev")
}

// Load builds the application config from the environment. Call LoadEnv first.
func Load() AppConfig {
	return AppConfig{
		AppEnv:     AppEnv(),
		Port:       getEnv("PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		CORSOrigin: getEnv("CORS_ORIGIN", "http://localhost:3001"),

		Scorer:       getEnv("SENTIMENT_SCORER", ScorerLexicon),
		AnalysisMode: getEnv("ANALYSIS_MODE", AnalysisModeInline),

		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		HuggingFaceEndpoint: getEnv("HF_SENTIMENT_ENDPOINT", "https://spacesedan-sentiment-analyzer.hf.space"),
		TransformerModel:    getEnv("TRANSFORMER_MODEL", "j-hartmann/emotion-english-distilroberta-base"),
		TransformerModelDir: getEnv("TRANSFORMER_MODEL_DIR", "./models"),

		CacheEnabled: getEnv("VALKEY_INIT_ADDRESS", "") != "",
		CacheTTL:     time.Duration(getEnvInt("ANALYSIS_CACHE_TTL", 86400)) * time.Second,

		EntriesTable:      getEnv("ENTRIES_TABLE_NAME", "JournalEntries"),
		AnalyzeBatchLimit: getEnvInt("ANALYZE_BATCH_LIMIT", 20),
		SchedulerSpec:     getEnv("SCHEDULER_SPEC", "*/15 * * * *"),
	}
}

// AIAvailable reports whether an OpenAI key is configured.
func (c AppConfig) AIAvailable() bool {
	return c.OpenAIAPIKey != ""
}
