package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete archscope configuration (v1 schema)
type Config struct {
	Version       int    `json:"version" mapstructure:"version"`
	WorkspaceRoot string `json:"workspaceRoot" mapstructure:"workspaceRoot"`

	Scoring   ScoringConfig   `json:"scoring" mapstructure:"scoring"`
	Discovery DiscoveryConfig `json:"discovery" mapstructure:"discovery"`
	Storage   StorageConfig   `json:"storage" mapstructure:"storage"`
	Export    ExportConfig    `json:"export" mapstructure:"export"`
	Logging   LoggingConfig   `json:"logging" mapstructure:"logging"`
}

// ScoringConfig contains the scoring thresholds. RULES.toml overrides in the
// workspace take precedence over these values.
type ScoringConfig struct {
	HighThreshold  float64 `json:"highThreshold" mapstructure:"highThreshold"`
	OwnershipBonus float64 `json:"ownershipBonus" mapstructure:"ownershipBonus"`

	// DefaultTriggerWeight applies to trigger phrases declared without a weight
	DefaultTriggerWeight float64 `json:"defaultTriggerWeight" mapstructure:"defaultTriggerWeight"`
}

// DiscoveryConfig selects and tunes the discovery backend
type DiscoveryConfig struct {
	// Backend is "memory" or "fts"
	Backend string `json:"backend" mapstructure:"backend"`

	NameWeight     int `json:"nameWeight" mapstructure:"nameWeight"`
	DomainWeight   int `json:"domainWeight" mapstructure:"domainWeight"`
	FragmentWeight int `json:"fragmentWeight" mapstructure:"fragmentWeight"`
}

// StorageConfig contains session persistence configuration
type StorageConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// Path is the SQLite database path, relative to the workspace root
	Path string `json:"path" mapstructure:"path"`
}

// ExportConfig contains hypothesis export configuration
type ExportConfig struct {
	// Compress wraps exported bundles in zstd
	Compress bool `json:"compress" mapstructure:"compress"`

	// Dir is the default export directory, relative to the workspace root
	Dir string `json:"dir" mapstructure:"dir"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:       1,
		WorkspaceRoot: ".",
		Scoring: ScoringConfig{
			HighThreshold:        5.0,
			OwnershipBonus:       5.0,
			DefaultTriggerWeight: 1.0,
		},
		Discovery: DiscoveryConfig{
			Backend:        "memory",
			NameWeight:     3,
			DomainWeight:   2,
			FragmentWeight: 1,
		},
		Storage: StorageConfig{
			Enabled: true,
			Path:    ".archscope/sessions.db",
		},
		Export: ExportConfig{
			Compress: false,
			Dir:      ".archscope/exports",
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from .archscope/config.json
func LoadConfig(workspaceRoot string) (*Config, error) {
	v := viper.New()

	v.SetDefault("version", 1)
	v.SetDefault("workspaceRoot", ".")

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(workspaceRoot, ".archscope"))

	if err := v.ReadInConfig(); err != nil {
		// No config file is not an error: run with defaults.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			cfg := DefaultConfig()
			cfg.WorkspaceRoot = workspaceRoot
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if cfg.WorkspaceRoot == "." {
		cfg.WorkspaceRoot = workspaceRoot
	}

	return cfg, nil
}

// Save writes the configuration to .archscope/config.json
func (c *Config) Save(workspaceRoot string) error {
	dir := filepath.Join(workspaceRoot, ".archscope")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Scoring.HighThreshold <= 0 {
		return &ConfigError{Field: "scoring.highThreshold", Message: "must be positive"}
	}
	if c.Scoring.OwnershipBonus < 0 {
		return &ConfigError{Field: "scoring.ownershipBonus", Message: "must not be negative"}
	}
	if c.Scoring.DefaultTriggerWeight < 0 {
		return &ConfigError{Field: "scoring.defaultTriggerWeight", Message: "must not be negative"}
	}
	switch c.Discovery.Backend {
	case "memory", "fts":
	default:
		return &ConfigError{Field: "discovery.backend", Message: "must be \"memory\" or \"fts\""}
	}
	if c.Discovery.NameWeight < 0 || c.Discovery.DomainWeight < 0 || c.Discovery.FragmentWeight < 0 {
		return &ConfigError{Field: "discovery", Message: "weights must not be negative"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
