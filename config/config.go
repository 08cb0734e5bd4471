package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for monu.
type Config struct {
	Oracle  OracleConfig  `yaml:"oracle"`
	Server  ServerConfig  `yaml:"server"`
	Web     WebConfig     `yaml:"web"`
	Cache   CacheConfig   `yaml:"cache"`
	Batch   BatchConfig   `yaml:"batch"`
	Logging LoggingConfig `yaml:"logging"`
}

// OracleConfig describes the correction model endpoint.
type OracleConfig struct {
	Provider       string  `yaml:"provider"`        // "ollama" or "openai"
	BaseURL        string  `yaml:"base_url"`        // e.g. http://localhost:11434
	Model          string  `yaml:"model"`           // e.g. gemma3:4b
	APIKeyEnv      string  `yaml:"api_key_env"`     // Environment variable for a bearer key (openai provider)
	TimeoutSeconds int     `yaml:"timeout_seconds"` // Bound on a single oracle call
	Temperature    float64 `yaml:"temperature"`
	JSONMode       bool    `yaml:"json_mode"` // Ask the model for JSON-only output
}

// ServerConfig holds backend API configuration.
type ServerConfig struct {
	Addr         string `yaml:"addr"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
	MaxTextChars int    `yaml:"max_text_chars"`
	EnableWS     bool   `yaml:"enable_ws"`
	EnableMetric bool   `yaml:"enable_metrics"`
}

// WebConfig holds frontend configuration.
type WebConfig struct {
	Addr           string `yaml:"addr"`
	BackendURL     string `yaml:"backend_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// CacheConfig holds correction cache configuration.
type CacheConfig struct {
	Backend    string `yaml:"backend"` // "memory", "bolt" or "none"
	Path       string `yaml:"path"`    // bolt database path
	MaxEntries int    `yaml:"max_entries"`
	TTLMinutes int    `yaml:"ttl_minutes"`
}

// BatchConfig holds batch checking configuration.
type BatchConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
	Workers  int      `yaml:"workers"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Oracle: OracleConfig{
			Provider:       "ollama",
			BaseURL:        "http://localhost:11434",
			Model:          "gemma3:4b",
			APIKeyEnv:      "OPENAI_API_KEY",
			TimeoutSeconds: 120,
			Temperature:    0,
			JSONMode:       true,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			MaxBodyBytes: 1 << 20,
			MaxTextChars: 10000,
			EnableWS:     true,
			EnableMetric: true,
		},
		Web: WebConfig{
			Addr:           ":5000",
			BackendURL:     "http://localhost:8080",
			TimeoutSeconds: 120,
		},
		Cache: CacheConfig{
			Backend:    "memory",
			Path:       filepath.Join(".monu", "cache.db"),
			MaxEntries: 500,
			TTLMinutes: 60,
		},
		Batch: BatchConfig{
			Includes: []string{"**/*.txt", "**/*.md"},
			Excludes: []string{"**/.git/**", "**/node_modules/**", "**/vendor/**", "**/.monu/**"},
			Workers:  2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for monu.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "monu.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".monu", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// ApplyEnv overrides oracle settings from the process environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("OLLAMA_MODEL"); v != "" {
		c.Oracle.Model = v
	}
	if v := os.Getenv("MONU_ORACLE_URL"); v != "" {
		c.Oracle.BaseURL = v
	}
	if v := os.Getenv("MONU_ORACLE_PROVIDER"); v != "" {
		c.Oracle.Provider = v
	}
}

// Validate reports configuration that cannot work.
func (c *Config) Validate() error {
	switch c.Oracle.Provider {
	case "ollama", "openai":
	default:
		return fmt.Errorf("unsupported oracle provider: %s", c.Oracle.Provider)
	}
	if c.Oracle.BaseURL == "" {
		return fmt.Errorf("oracle base_url is required")
	}
	if c.Oracle.Model == "" {
		return fmt.Errorf("oracle model is required")
	}
	if c.Oracle.TimeoutSeconds <= 0 {
		return fmt.Errorf("oracle timeout_seconds must be positive")
	}
	switch c.Cache.Backend {
	case "memory", "bolt", "none":
	default:
		return fmt.Errorf("unsupported cache backend: %s", c.Cache.Backend)
	}
	if c.Batch.Workers <= 0 {
		return fmt.Errorf("batch workers must be positive")
	}
	return nil
}

// Timeout returns the oracle call bound.
func (o OracleConfig) Timeout() time.Duration {
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// Timeout returns the frontend's bound on a backend call.
func (w WebConfig) Timeout() time.Duration {
	return time.Duration(w.TimeoutSeconds) * time.Second
}

// TTL returns the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// CacheDBPath resolves the bolt cache path against dir.
func CacheDBPath(dir string, cfg *Config) string {
	if filepath.IsAbs(cfg.Cache.Path) {
		return cfg.Cache.Path
	}
	return filepath.Join(dir, cfg.Cache.Path)
}

// EnsureDir ensures the parent directory of path exists.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0755)
}
