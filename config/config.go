// Package config loads service configuration from an optional config file
// and PARLEY_* environment variables using viper. Provider credentials
// bind to their conventional variables (OPENAI_API_KEY, ELEVENLABS_API_KEY)
// so operators do not have to duplicate them.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/parley-ai/parley/pdf"
	"github.com/parley-ai/parley/provider"
	"github.com/parley-ai/parley/retrieval"
	"github.com/parley-ai/parley/session"
)

// Config is the full service configuration.
type Config struct {
	Server     ServerConfig              `mapstructure:"server"`
	Log        LogConfig                 `mapstructure:"log"`
	Session    session.Config            `mapstructure:"session"`
	OpenAI     provider.OpenAIConfig     `mapstructure:"openai"`
	ElevenLabs provider.ElevenLabsConfig `mapstructure:"elevenlabs"`
	Embedder   retrieval.EmbedderConfig  `mapstructure:"embedder"`
	Chunking   pdf.ChunkConfig           `mapstructure:"chunking"`

	// Synthesis enables the ElevenLabs synthesizer. When true the
	// ElevenLabs API key becomes a required credential.
	Synthesis bool `mapstructure:"synthesis"`
	// Retrieval enables the embedding index and retrieval context.
	Retrieval bool `mapstructure:"retrieval"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Format is "json" or "text".
	Format string `mapstructure:"format"`
	// Observers names additional registered observers to fan events out
	// to alongside the slog observer.
	Observers []string `mapstructure:"observers"`
}

// Load reads configuration from the given file (optional, "" skips it),
// overlaying PARLEY_* environment variables on the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("session.backend", session.BackendFile)
	v.SetDefault("session.path", "sessions")
	v.SetDefault("chunking.min_length", pdf.DefaultMinChunkLength)
	v.SetDefault("chunking.max_length", pdf.DefaultMaxChunkLength)
	v.SetDefault("chunking.overlap", pdf.DefaultChunkOverlap)
	v.SetDefault("synthesis", true)
	v.SetDefault("retrieval", true)

	v.SetEnvPrefix("PARLEY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Credentials follow provider conventions rather than the PARLEY
	// prefix.
	v.BindEnv("openai.api_key", "OPENAI_API_KEY", "PARLEY_OPENAI_API_KEY")
	v.BindEnv("elevenlabs.api_key", "ELEVENLABS_API_KEY", "PARLEY_ELEVENLABS_API_KEY")
	v.BindEnv("embedder.api_key", "OPENAI_API_KEY", "PARLEY_OPENAI_API_KEY")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate reports missing required settings. Startup treats a non-nil
// result as fatal.
func (c *Config) Validate() error {
	var errs []error

	if c.OpenAI.APIKey == "" {
		errs = append(errs, errors.New("openai api key is required (OPENAI_API_KEY)"))
	}
	if c.Synthesis && c.ElevenLabs.APIKey == "" {
		errs = append(errs, errors.New("elevenlabs api key is required when synthesis is enabled (ELEVENLABS_API_KEY)"))
	}
	if c.Session.Backend == session.BackendRedis && c.Session.Redis.Addr == "" {
		errs = append(errs, errors.New("session.redis.addr is required for the redis backend"))
	}

	return errors.Join(errs...)
}
