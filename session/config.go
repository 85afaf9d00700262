package session

import "fmt"

// Store backend names accepted by Config.Backend.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

const defaultSessionsDir = "sessions"

// Config holds session store initialization parameters.
type Config struct {
	// Backend selects the store implementation: "file", "redis" or "memory".
	Backend string `json:"backend,omitempty" mapstructure:"backend"`
	// Path is the file store root directory.
	Path string `json:"path,omitempty" mapstructure:"path"`
	// Redis holds connection parameters for the Redis backend.
	Redis RedisConfig `json:"redis,omitempty" mapstructure:"redis"`
}

// DefaultConfig returns the default session store configuration: a file
// store rooted at ./sessions.
func DefaultConfig() Config {
	return Config{
		Backend: BackendFile,
		Path:    defaultSessionsDir,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Backend != "" {
		c.Backend = source.Backend
	}
	if source.Path != "" {
		c.Path = source.Path
	}
	if source.Redis.Addr != "" {
		c.Redis = source.Redis
	}
}

// NewStore creates a Store from configuration.
func NewStore(cfg *Config) (Store, error) {
	switch cfg.Backend {
	case BackendFile, "":
		path := cfg.Path
		if path == "" {
			path = defaultSessionsDir
		}
		return NewFileStore(path), nil
	case BackendRedis:
		return NewRedisStore(cfg.Redis)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown session store backend: %q", cfg.Backend)
	}
}
