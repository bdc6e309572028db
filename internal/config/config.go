package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	VectorBackendPostgres = "postgres"
	VectorBackendChromem  = "chromem"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL      string `envconfig:"DATABASE_URL" required:"true"`
	DatabaseMaxConns int32  `envconfig:"DATABASE_MAX_CONNS" default:"10"`

	ModelProvider        string  `envconfig:"MODEL_PROVIDER" default:"gemini"`
	GeminiAPIKey         string  `envconfig:"GEMINI_API_KEY"`
	GeminiModel          string  `envconfig:"GEMINI_MODEL" default:"gemini-1.5-pro"`
	GeminiEmbeddingModel string  `envconfig:"GEMINI_EMBEDDING_MODEL" default:"text-embedding-004"`
	OpenAIAPIKey         string  `envconfig:"OPENAI_API_KEY"`
	OpenAIChatModel      string  `envconfig:"OPENAI_CHAT_MODEL" default:"gpt-4o-mini"`
	OpenAIEmbeddingModel string  `envconfig:"OPENAI_EMBEDDING_MODEL" default:"text-embedding-3-small"`
	EmbeddingDimensions  int     `envconfig:"EMBEDDING_DIMENSIONS" default:"768"`
	QueryEmbeddingTask   string  `envconfig:"QUERY_EMBEDDING_TASK" default:"RETRIEVAL_DOCUMENT"`
	Language             string  `envconfig:"LANGUAGE" default:"Brazilian Portuguese"`
	ModelRPS             float64 `envconfig:"MODEL_RPS" default:"0"`

	VectorBackend string `envconfig:"VECTOR_BACKEND" default:"postgres"`
	ChromemPath   string `envconfig:"CHROMEM_PATH"`

	MaxAudioBytes int64 `envconfig:"MAX_AUDIO_BYTES" default:"26214400"`
	ArchiveAudio  bool  `envconfig:"ARCHIVE_AUDIO" default:"false"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"lectern-audio"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("LECTERN", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	cfg.ModelProvider = strings.ToLower(strings.TrimSpace(cfg.ModelProvider))
	cfg.VectorBackend = strings.ToLower(strings.TrimSpace(cfg.VectorBackend))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	switch c.ModelProvider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("invalid MODEL_PROVIDER %q (expected %q or %q)", c.ModelProvider, ProviderGemini, ProviderOpenAI)
	}

	switch c.VectorBackend {
	case VectorBackendPostgres, VectorBackendChromem:
	default:
		return fmt.Errorf("invalid VECTOR_BACKEND %q (expected %q or %q)", c.VectorBackend, VectorBackendPostgres, VectorBackendChromem)
	}

	if c.EmbeddingDimensions <= 0 {
		return fmt.Errorf("EMBEDDING_DIMENSIONS must be positive, got %d", c.EmbeddingDimensions)
	}

	if c.ModelRPS < 0 {
		return fmt.Errorf("MODEL_RPS cannot be negative")
	}

	if c.ArchiveAudio && !c.HasS3() {
		return fmt.Errorf("ARCHIVE_AUDIO requires S3_ENDPOINT, S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY")
	}

	return nil
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasGemini() bool {
	return c.GeminiAPIKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

// HasModel reports whether the selected provider has credentials.
func (c *Config) HasModel() bool {
	if c.ModelProvider == ProviderOpenAI {
		return c.HasOpenAI()
	}
	return c.HasGemini()
}
