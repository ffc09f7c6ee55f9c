package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v10"

	"resume-builder/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string   `env:"PORT" envDefault:"8080"`
	Env             string   `env:"ENV" envDefault:"dev"`
	LogLevel        string   `env:"LOG_LEVEL" envDefault:"info"`
	CORSAllowOrigin []string `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`

	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	JWTSecret    string        `env:"JWT_SECRET"`
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	CookieSecure bool          `env:"COOKIE_SECURE"`

	LLMProvider       string        `env:"LLM_PROVIDER" envDefault:"openai"`
	LLMModel          string        `env:"LLM_MODEL"`
	OpenAIAPIKey      string        `env:"OPENAI_API_KEY"`
	VertexProject     string        `env:"VERTEX_PROJECT"`
	VertexLocation    string        `env:"VERTEX_LOCATION" envDefault:"us-central1"`
	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT" envDefault:"30s"`
	GenerationRate    float64       `env:"GENERATION_RATE" envDefault:"0.2"`
	GenerationBurst   int           `env:"GENERATION_BURST" envDefault:"3"`

	ObjectStoreType string `env:"OBJECT_STORE" envDefault:"local"`
	LocalStoreDir   string `env:"LOCAL_STORE_DIR" envDefault:"./data"`
	AWSRegion       string `env:"AWS_REGION"`
	S3Bucket        string `env:"S3_BUCKET"`
	S3Prefix        string `env:"S3_PREFIX"`
	SSEKMSKeyID     string `env:"SSE_KMS_KEY_ID"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		telemetry.Error("config.parse_failed", map[string]any{"err": err})
	}
	cfg.normalize()

	if cfg.Env == "production" && cfg.DatabaseURL == "" {
		telemetry.Error("config.missing", map[string]any{"key": "DATABASE_URL"})
	}
	if cfg.Env == "production" && cfg.JWTSecret == "" {
		telemetry.Error("config.missing", map[string]any{"key": "JWT_SECRET"})
	}
	return cfg
}

func (c *Config) normalize() {
	c.Env = normalizeEnv(c.Env)
	c.ObjectStoreType = normalizeStoreType(c.ObjectStoreType)
	c.LLMProvider = normalizeProvider(c.LLMProvider)
	c.CORSAllowOrigin = trimAll(c.CORSAllowOrigin)
	if c.GenerationTimeout <= 0 {
		c.GenerationTimeout = 30 * time.Second
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = 7 * 24 * time.Hour
	}
}

// IsDevLike reports whether the environment allows in-memory fallbacks.
func (c Config) IsDevLike() bool {
	return c.Env == "dev" || c.Env == "local" || c.Env == "test"
}

func trimAll(parts []string) []string {
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "test":
		return "test"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "vertex", "gemini":
		return "vertex"
	case "none", "":
		return "none"
	default:
		return "openai"
	}
}
