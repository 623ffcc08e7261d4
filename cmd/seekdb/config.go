package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/Aleph-Alpha/seekdb/v1/embedding"
	"github.com/Aleph-Alpha/seekdb/v1/logger"
	"github.com/Aleph-Alpha/seekdb/v1/metrics"
	"github.com/Aleph-Alpha/seekdb/v1/seekdb"
	"github.com/Aleph-Alpha/seekdb/v1/server"
	"github.com/Aleph-Alpha/seekdb/v1/tracer"
)

// Config is the CLI configuration. Values come from the environment first;
// a YAML file, when given, overrides the keys it sets.
type Config struct {
	Server    server.Config    `yaml:"server"`
	Embedding embedding.Config `yaml:"embedding"`
	Logger    logger.Config    `yaml:"logger"`
	Metrics   metrics.Config   `yaml:"metrics"`
	Tracer    tracer.Config    `yaml:"tracer"`
	Client    ClientConfig     `yaml:"client"`
}

// ClientConfig tunes the seekdb client.
type ClientConfig struct {
	MaxConcurrentQueries int `yaml:"max_concurrent_queries" envconfig:"SEEKDB_MAX_CONCURRENT_QUERIES" default:"4"`
}

// embeddingEnabled reports whether an embedding endpoint is configured.
func (c *Config) embeddingEnabled() bool {
	return c.Embedding.Endpoint != ""
}

// loadConfig reads the environment and then the optional YAML file at path.
func loadConfig(path string) (*Config, error) {
	srv, err := server.NewConfigFromEnv()
	if err != nil {
		return nil, err
	}
	cfg := &Config{Server: srv}

	for _, section := range []any{&cfg.Embedding, &cfg.Logger, &cfg.Metrics, &cfg.Tracer, &cfg.Client} {
		if err := envconfig.Process("", section); err != nil {
			return nil, seekdb.NewError(seekdb.CategoryConfig, err, "reading environment")
		}
	}

	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, seekdb.NewError(seekdb.CategoryConfig, err, "reading config %s", path)
		}
		if err := yaml.Unmarshal(expandEnvVars(data), cfg); err != nil {
			return nil, seekdb.NewError(seekdb.CategoryConfig, err, "parsing config %s", path)
		}
	}

	if err := cfg.Server.Validate(); err != nil {
		return nil, err
	}
	if cfg.embeddingEnabled() {
		if err := cfg.Embedding.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment values.
func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		name, def, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(name)
		if val == "" && hasDefault {
			val = def
		}
		return []byte(val)
	})
}

func (c *Config) String() string {
	return fmt.Sprintf("server=%s:%d tenant=%s database=%s embedding=%t",
		c.Server.Connection.Host, c.Server.Connection.Port, c.Server.Connection.Tenant,
		c.Server.Connection.DbName, c.embeddingEnabled())
}
