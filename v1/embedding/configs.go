package embedding

import (
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/Aleph-Alpha/seekdb/v1/seekdb"
)

// EMBEDDING_ENDPOINT must point to the root of the OpenAI-compatible
// inference service, for example "https://api.openai.com/v1". The client
// appends "/embeddings" itself.

// Config holds the settings of an OpenAI-compatible embedding endpoint.
type Config struct {
	// Endpoint is the base URL of the embeddings API.
	Endpoint string `yaml:"endpoint" envconfig:"EMBEDDING_ENDPOINT"`

	// APIKey is sent as a bearer token. Some self-hosted endpoints accept an empty key.
	APIKey string `yaml:"api_key" envconfig:"EMBEDDING_API_KEY"`

	Model string `yaml:"model" envconfig:"EMBEDDING_MODEL"`

	// Dimension is the length of the vectors the model returns. It is also
	// sent as the "dimensions" request field, so models supporting
	// shortened embeddings return vectors of exactly this length.
	Dimension uint32 `yaml:"dimension" envconfig:"EMBEDDING_DIMENSION"`

	HTTPTimeoutS int `yaml:"http_timeout_seconds" envconfig:"EMBEDDING_HTTP_TIMEOUT_SECONDS" default:"30"`

	// BatchSize caps the number of documents per request. Zero sends everything at once.
	BatchSize int `yaml:"batch_size" envconfig:"EMBEDDING_BATCH_SIZE" default:"64"`

	// OmitDimensions drops the "dimensions" request field for models that reject it.
	OmitDimensions bool `yaml:"omit_dimensions" envconfig:"EMBEDDING_OMIT_DIMENSIONS"`
}

// NewConfig reads the configuration from EMBEDDING_* environment variables.
func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, seekdb.NewError(seekdb.CategoryConfig, err, "embedding: read environment")
	}
	return cfg, nil
}

// Validate ensures required fields are present.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return seekdb.NewError(seekdb.CategoryConfig, nil, "embedding: missing EMBEDDING_ENDPOINT")
	}
	if c.Model == "" {
		return seekdb.NewError(seekdb.CategoryConfig, nil, "embedding: missing EMBEDDING_MODEL")
	}
	if c.Dimension == 0 {
		return seekdb.NewError(seekdb.CategoryConfig, nil, "embedding: EMBEDDING_DIMENSION must be positive")
	}
	if c.HTTPTimeoutS < 0 {
		return seekdb.NewError(seekdb.CategoryConfig, nil, "embedding: negative EMBEDDING_HTTP_TIMEOUT_SECONDS %d", c.HTTPTimeoutS)
	}
	if c.BatchSize < 0 {
		return seekdb.NewError(seekdb.CategoryConfig, nil, "embedding: negative EMBEDDING_BATCH_SIZE %d", c.BatchSize)
	}
	return nil
}

func (c *Config) httpTimeout() time.Duration {
	if c.HTTPTimeoutS == 0 {
		return 30 * time.Second
	}
	return time.Duration(c.HTTPTimeoutS) * time.Second
}
