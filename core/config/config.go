package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"pressroom.app/pressroom/core/db"
)

type Config struct {
	OTel          OTelConfig
	Press         PressConfig
	JournalistLLM LLMConfig
	NewsroomLLM   LLMConfig
	Classifier    ClassifierConfig
	Sessions      SessionConfig
	Pipeline      PipelineConfig
	Env           string
	Port          string
	PersonasFile  string
	DB            db.Config
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
	SampleRatio    float64
}

// PressConfig points the journalist pipeline at its remote collaborators.
// The generate/explain/analyze endpoints are usually a hosted notebook behind a
// tunnel, so timeouts are generous.
type PressConfig struct {
	Backend         string // "tunnel" or "llm"
	GenerateURL     string
	ExplainURL      string
	AnalyzeURL      string
	MessagesPayload bool // send {messages} instead of a merged {prompt}
	GenerateTimeout time.Duration
	ExplainTimeout  time.Duration
	AnalyzeTimeout  time.Duration
	MaxAttempts     int
	RetryBackoff    time.Duration
	ExplainModes    []string
	PrimaryMode     string
	HistoryBudget   int
}

type LLMConfig struct {
	Provider  string // "openai" or "anthropic"
	APIKey    string
	BaseURL   string // Optional: for custom endpoints
	Model     string
	MaxTokens int
}

type ClassifierConfig struct {
	URL                 string
	Timeout             time.Duration
	ConfidenceThreshold float64 // percent; below it the detector asks the web verifier
}

type SessionConfig struct {
	Store   string // "memory" or "redis"
	TTL     time.Duration
	LockTTL time.Duration
}

type PipelineConfig struct {
	RedisURL       string
	RedisStream    string
	RedisGroup     string
	RedisDLQStream string
	RedisConsumer  string
}

type ServiceType string

const (
	ServiceTypeServer ServiceType = "server"
	ServiceTypeWorker ServiceType = "worker"
	ServiceTypeCLI    ServiceType = "cli"
)

const (
	BackendTunnel = "tunnel"
	BackendLLM    = "llm"

	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// Load loads configuration from environment variables.
// In development, it loads from service-specific .env files:
//   - .env.server for the API server
//   - .env.worker for the archive worker
//
// Falls back to .env if service-specific file doesn't exist.
func Load(serviceType ServiceType) (Config, error) {
	if getEnv("PRESSROOM_ENV", "development") == "development" {
		envFile := fmt.Sprintf(".env.%s", serviceType)
		if err := godotenv.Load(envFile); err != nil {
			_ = godotenv.Load(".env")
		}
	}

	cfg := Config{
		Env:          getEnv("PRESSROOM_ENV", "development"),
		Port:         getEnv("PORT", "7860"),
		PersonasFile: getEnv("PERSONAS_FILE", ""),
		DB: db.Config{
			DSN:      getEnv("DATABASE_URL", ""),
			MaxConns: getEnvInt32("DB_MAX_CONNS", 10),
			MinConns: getEnvInt32("DB_MIN_CONNS", 2),
		},
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "pressroom"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			SampleRatio:    getEnvFloat("OTEL_TRACES_SAMPLE_RATIO", 1.0),
		},
		Press: PressConfig{
			Backend:         getEnv("PRESS_BACKEND", BackendTunnel),
			GenerateURL:     getEnv("PRESS_GENERATE_URL", ""),
			ExplainURL:      getEnv("PRESS_EXPLAIN_URL", ""),
			AnalyzeURL:      getEnv("PRESS_ANALYZE_URL", ""),
			MessagesPayload: getEnvBool("PRESS_MESSAGES_PAYLOAD", false),
			GenerateTimeout: getEnvDuration("PRESS_GENERATE_TIMEOUT", 90*time.Second),
			ExplainTimeout:  getEnvDuration("PRESS_EXPLAIN_TIMEOUT", 120*time.Second),
			AnalyzeTimeout:  getEnvDuration("PRESS_ANALYZE_TIMEOUT", 180*time.Second),
			MaxAttempts:     getEnvInt("PRESS_GENERATE_MAX_ATTEMPTS", 2),
			RetryBackoff:    getEnvDuration("PRESS_RETRY_BACKOFF", 2*time.Second),
			ExplainModes:    getEnvList("PRESS_EXPLAIN_MODES", nil),
			PrimaryMode:     getEnv("PRESS_EXPLAIN_PRIMARY_MODE", "shap"),
			HistoryBudget:   getEnvInt("PRESS_HISTORY_BUDGET", 800),
		},
		JournalistLLM: LLMConfig{
			Provider:  getEnv("JOURNALIST_LLM_PROVIDER", "openai"),
			APIKey:    getEnv("JOURNALIST_LLM_API_KEY", ""),
			BaseURL:   getEnv("JOURNALIST_LLM_BASE_URL", ""),
			Model:     getEnv("JOURNALIST_LLM_MODEL", "gpt-4o-mini"),
			MaxTokens: getEnvInt("JOURNALIST_LLM_MAX_TOKENS", 512),
		},
		NewsroomLLM: LLMConfig{
			Provider:  getEnv("NEWSROOM_LLM_PROVIDER", "openai"),
			APIKey:    getEnv("NEWSROOM_LLM_API_KEY", getEnv("OPENAI_API_KEY", "")),
			BaseURL:   getEnv("NEWSROOM_LLM_BASE_URL", ""),
			Model:     getEnv("NEWSROOM_LLM_MODEL", "gpt-4o-mini"),
			MaxTokens: getEnvInt("NEWSROOM_LLM_MAX_TOKENS", 1024),
		},
		Classifier: ClassifierConfig{
			URL:                 getEnv("CLASSIFIER_URL", ""),
			Timeout:             getEnvDuration("CLASSIFIER_TIMEOUT", 30*time.Second),
			ConfidenceThreshold: getEnvFloat("CLASSIFIER_CONFIDENCE_THRESHOLD", 85),
		},
		Sessions: SessionConfig{
			Store:   getEnv("SESSION_STORE", SessionStoreMemory),
			TTL:     getEnvDuration("SESSION_TTL", 2*time.Hour),
			LockTTL: getEnvDuration("SESSION_LOCK_TTL", 15*time.Minute),
		},
		Pipeline: PipelineConfig{
			RedisURL:       getEnv("REDIS_URL", ""),
			RedisStream:    getEnv("REDIS_STREAM", "pressroom_events"),
			RedisGroup:     getEnv("REDIS_CONSUMER_GROUP", "pressroom_archive"),
			RedisDLQStream: getEnv("REDIS_DLQ_STREAM", "pressroom_events_dlq"),
			RedisConsumer:  getEnv("REDIS_CONSUMER_NAME", "archive-worker"),
		},
	}

	if err := cfg.validate(serviceType); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate(serviceType ServiceType) error {
	switch c.Press.Backend {
	case BackendTunnel, BackendLLM:
	default:
		return fmt.Errorf("PRESS_BACKEND must be %q or %q, got %q", BackendTunnel, BackendLLM, c.Press.Backend)
	}

	switch c.Sessions.Store {
	case SessionStoreMemory, SessionStoreRedis:
	default:
		return fmt.Errorf("SESSION_STORE must be %q or %q, got %q", SessionStoreMemory, SessionStoreRedis, c.Sessions.Store)
	}

	if serviceType == ServiceTypeServer {
		if c.Press.Backend == BackendTunnel && c.Press.GenerateURL == "" {
			return fmt.Errorf("PRESS_GENERATE_URL is required for the tunnel backend")
		}
		if c.Press.Backend == BackendLLM && !c.JournalistLLM.Enabled() {
			return fmt.Errorf("JOURNALIST_LLM_API_KEY is required for the llm backend")
		}
		if c.Sessions.Store == SessionStoreRedis && c.Pipeline.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when SESSION_STORE=redis")
		}
	}

	if serviceType == ServiceTypeWorker {
		if c.Pipeline.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the worker")
		}
		if c.DB.DSN == "" {
			return fmt.Errorf("DATABASE_URL is required for the worker")
		}
	}

	if c.Press.MaxAttempts < 1 {
		return fmt.Errorf("PRESS_GENERATE_MAX_ATTEMPTS must be at least 1")
	}

	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c LLMConfig) Enabled() bool {
	return c.APIKey != "" && (c.Provider == "openai" || c.Provider == "anthropic")
}

func (c ClassifierConfig) Enabled() bool {
	return c.URL != ""
}

func (c PipelineConfig) Enabled() bool {
	return c.RedisURL != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt32(key string, fallback int32) int32 {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(i)
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
