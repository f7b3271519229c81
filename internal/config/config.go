package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultIndexFile is the index location relative to the tracking root.
const DefaultIndexFile = ".trackd/index.yaml"

// Config represents the trackd configuration structure. It defines the
// tracking root, ignore patterns, defaults applied to add operations, and
// the optional post-add hook.
type Config struct {
	Root      string `yaml:"root"`       // Tracking root directory
	IndexFile string `yaml:"index_file"` // Index location, relative to root
	Ignore    struct {
		Patterns []string `yaml:"patterns"` // Base ignore glob patterns
	} `yaml:"ignore"`
	DistDir  string `yaml:"dist_dir"` // Custom build-output directory (empty = none configured)
	Defaults struct {
		TestPatterns []string `yaml:"test_patterns"` // Test-file patterns applied when the request has none
		MainFile     string   `yaml:"main_file"`     // Main-file pattern applied when the request has none
		Namespace    string   `yaml:"namespace"`     // Namespace override applied when the request has none
	} `yaml:"defaults"`
	Hook struct {
		Command string   `yaml:"command"` // Post-add command, spawned detached
		Args    []string `yaml:"args"`    // Extra arguments before component id and root
	} `yaml:"hook"`
	Watch struct {
		DebounceMillis int `yaml:"debounce_millis"` // Delay before a changed root is re-added
	} `yaml:"watch"`
}

// LoadConfig loads configuration from the default location
// (~/.config/trackd/config.yaml).
func LoadConfig() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(home, ".config", "trackd", "config.yaml")
	return LoadConfigFile(configPath)
}

// LoadConfigFile loads configuration from a specific file path.
// If the file doesn't exist, returns default configuration.
func LoadConfigFile(path string) (*Config, error) {
	// Start with default configuration
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if file doesn't exist
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Unmarshal into a temporary config to preserve defaults for unset fields
	var tempCfg Config
	if err := yaml.Unmarshal(data, &tempCfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if tempCfg.Root != "" {
		cfg.Root = tempCfg.Root
	}
	if tempCfg.IndexFile != "" {
		cfg.IndexFile = tempCfg.IndexFile
	}
	if len(tempCfg.Ignore.Patterns) > 0 {
		cfg.Ignore.Patterns = tempCfg.Ignore.Patterns
	}
	if tempCfg.DistDir != "" {
		cfg.DistDir = tempCfg.DistDir
	}
	if len(tempCfg.Defaults.TestPatterns) > 0 {
		cfg.Defaults.TestPatterns = tempCfg.Defaults.TestPatterns
	}
	if tempCfg.Defaults.MainFile != "" {
		cfg.Defaults.MainFile = tempCfg.Defaults.MainFile
	}
	if tempCfg.Defaults.Namespace != "" {
		cfg.Defaults.Namespace = tempCfg.Defaults.Namespace
	}
	cfg.Hook.Command = tempCfg.Hook.Command
	cfg.Hook.Args = tempCfg.Hook.Args
	if tempCfg.Watch.DebounceMillis > 0 {
		cfg.Watch.DebounceMillis = tempCfg.Watch.DebounceMillis
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns the default configuration with safe defaults.
func defaultConfig() *Config {
	cfg := &Config{
		Root:      ".",
		IndexFile: DefaultIndexFile,
	}
	// Each pattern needs both forms: with the `**/` prefix the glob only
	// matches below a leading segment, so root-level paths need the bare
	// variant.
	cfg.Ignore.Patterns = []string{
		"node_modules/**",
		"**/node_modules/**",
		".git/**",
		"**/.git/**",
		"*.log",
		"**/*.log",
		".DS_Store",
		"**/.DS_Store",
	}
	cfg.Defaults.TestPatterns = []string{}
	cfg.Watch.DebounceMillis = 500
	return cfg
}

// SaveConfig saves the configuration to the specified file.
// It creates parent directories if they don't exist.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
// Returns error if any settings are invalid.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("nil config")
	}

	if c.Root == "" {
		return fmt.Errorf("tracking root is required")
	}
	if c.IndexFile == "" {
		return fmt.Errorf("index file location is required")
	}

	for i, pattern := range c.Ignore.Patterns {
		if pattern == "" {
			return fmt.Errorf("ignore pattern %d: pattern cannot be empty", i)
		}
	}
	for i, pattern := range c.Defaults.TestPatterns {
		if pattern == "" {
			return fmt.Errorf("test pattern %d: pattern cannot be empty", i)
		}
	}

	if c.Watch.DebounceMillis < 0 {
		return fmt.Errorf("watch debounce must be >= 0 milliseconds")
	}

	return nil
}

// IndexPath returns the absolute index file location for this config.
func (c *Config) IndexPath() string {
	if filepath.IsAbs(c.IndexFile) {
		return c.IndexFile
	}
	return filepath.Join(c.Root, c.IndexFile)
}

// NewTestConfig creates a configuration instance for testing purposes,
// rooted at the given directory.
func NewTestConfig(root string) *Config {
	cfg := defaultConfig()
	cfg.Root = root
	return cfg
}

// New creates a new configuration instance with default values.
func New() *Config {
	return defaultConfig()
}
