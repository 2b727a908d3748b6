package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Text-generation backend (OpenAI-compatible chat completions endpoint)
	LLMAPIURL      string
	LLMModel       string
	LLMAPIKey      string
	LLMTimeout     time.Duration
	LLMMaxTokens   int
	LLMTemperature float64

	// Gemini fallback provider
	GeminiAPIKey  string
	GeminiModelID string

	// Enable LLM fallback for ambiguous intent classification
	IntentLLMFallback bool

	// SMSA provider APIs
	TrackingBaseURL  string
	TrackingUsername string
	TrackingPassword string
	RatesBaseURL     string
	RatesPasskey     string
	RetailBaseURL    string

	// Uploaded-file metadata storage (Huawei OBS, S3-compatible)
	OBSEndpoint  string
	OBSRegion    string
	OBSBucket    string
	OBSAccessKey string
	OBSSecretKey string

	// Conversation context
	HistoryLimit int
	FAQDataPath  string

	CORSAllowedOrigins string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		LLMAPIURL:      getEnv("LLM_TEXT_API_URL", ""),
		LLMModel:       getEnv("LLM_TEXT_MODEL", "qwen3-32b"),
		LLMAPIKey:      getEnv("LLM_API_KEY", ""),
		LLMTimeout:     getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
		LLMMaxTokens:   getEnvAsInt("LLM_MAX_TOKENS", 2000),
		LLMTemperature: getEnvAsFloat("LLM_TEMPERATURE", 0.7),

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModelID: getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),

		IntentLLMFallback: getEnvAsBool("INTENT_LLM_FALLBACK", true),

		TrackingBaseURL:  getEnv("SMSA_TRACKING_BASE_URL", "http://smsaweb.cloudapp.net:8080/track.svc"),
		TrackingUsername: getEnv("SMSA_TRACKING_USERNAME", ""),
		TrackingPassword: getEnv("SMSA_TRACKING_PASSWORD", ""),
		RatesBaseURL:     getEnv("SMSA_RATES_BASE_URL", ""),
		RatesPasskey:     getEnv("SMSA_RATES_PASSKEY", ""),
		RetailBaseURL:    getEnv("SMSA_RETAIL_BASE_URL", ""),

		OBSEndpoint:  getEnv("OBS_ENDPOINT", ""),
		OBSRegion:    getEnv("OBS_REGION", "me-east-1"),
		OBSBucket:    getEnv("OBS_BUCKET", ""),
		OBSAccessKey: getEnv("OBS_ACCESS_KEY_ID", ""),
		OBSSecretKey: getEnv("OBS_SECRET_ACCESS_KEY", ""),

		HistoryLimit: getEnvAsInt("HISTORY_LIMIT", 10),
		FAQDataPath:  getEnv("FAQ_DATA_PATH", "data_for_faq/smsa_chunks.jsonl"),

		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
