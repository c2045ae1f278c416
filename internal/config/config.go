package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for VulnExplain
type Config struct {
	// Storage configuration
	StorageDir string `mapstructure:"storage_dir"`

	// Threshold for CI/CD failure (number of vulnerabilities)
	FailThreshold int `mapstructure:"fail_threshold"`

	// Output format (text, json, both)
	Format string `mapstructure:"format"`

	// Number of stored audits shown by history
	LastRuns int `mapstructure:"last_runs"`

	// Verbose output
	Verbose bool `mapstructure:"verbose"`

	// Debug mode
	Debug bool `mapstructure:"debug"`

	// Audit service root (from config or VULNEXPLAIN_API_URL)
	APIURL string `mapstructure:"api_url"`

	// Upper bound for a single audit or report request
	Timeout time.Duration `mapstructure:"timeout"`

	// Subscription plan: starter, pro, enterprise
	Plan string `mapstructure:"plan"`

	// Dashboard palette: light or dark
	Theme string `mapstructure:"theme"`

	// Reserved for authenticated repository access; not sent anywhere yet
	GitHubToken string `mapstructure:"github_token"`

	// File the configuration was read from; empty when none was found
	Source string `mapstructure:"-"`
}

const configFileName = "vulnexplain.yaml"

// searchDirs lists the directories searched for vulnexplain.yaml, in the
// order the first match wins.
func searchDirs() []string {
	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, home)
	}
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		dirs = append(dirs, filepath.Join(xdgConfig, "vulnexplain"))
	}
	return dirs
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		StorageDir:    ".vulnexplain",
		FailThreshold: 0, // 0 means no threshold check
		Format:        "text",
		LastRuns:      7,
		Verbose:       false,
		Debug:         false,
		APIURL:        "http://localhost:8001",
		Timeout:       120 * time.Second,
		Plan:          "starter",
		Theme:         "light",
	}
}

// Load loads configuration with the following precedence (lowest to highest):
// 1. Default values
// 2. Config file (~/vulnexplain.yaml or ./vulnexplain.yaml)
// 3. Environment variables (VULNEXPLAIN_*)
// 4. CLI flags (handled by caller)
func Load() (*Config, error) {
	return LoadFromFile("")
}

// LoadFromFile loads configuration from a specific file path
// If path is empty, it searches for config in standard locations
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("storage_dir", defaults.StorageDir)
	v.SetDefault("fail_threshold", defaults.FailThreshold)
	v.SetDefault("format", defaults.Format)
	v.SetDefault("last_runs", defaults.LastRuns)
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("debug", defaults.Debug)
	v.SetDefault("api_url", defaults.APIURL)
	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("plan", defaults.Plan)
	v.SetDefault("theme", defaults.Theme)
	v.SetDefault("github_token", "")

	v.SetConfigName("vulnexplain")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		for _, dir := range searchDirs() {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix("VULNEXPLAIN")
	v.AutomaticEnv()

	source := ""
	if err := v.ReadInConfig(); err != nil {
		// An explicit path that does not exist yet is treated like no file,
		// so preferences can be written to it later.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(configPath != "" && errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		source = v.ConfigFileUsed()
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Source = source

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	validFormats := map[string]bool{
		"text": true,
		"json": true,
		"both": true,
	}
	if !validFormats[c.Format] {
		return fmt.Errorf("invalid format: %s (must be text, json, or both)", c.Format)
	}

	if c.FailThreshold < 0 {
		return fmt.Errorf("fail_threshold cannot be negative")
	}

	if c.LastRuns <= 0 {
		return fmt.Errorf("last_runs must be positive")
	}

	if c.StorageDir == "" {
		return fmt.Errorf("storage_dir cannot be empty")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	switch c.Plan {
	case "starter", "pro", "enterprise":
	default:
		return fmt.Errorf("invalid plan: %s (must be starter, pro, or enterprise)", c.Plan)
	}

	switch c.Theme {
	case "light", "dark":
	default:
		return fmt.Errorf("invalid theme: %s (must be light or dark)", c.Theme)
	}

	return nil
}

// GetStoragePath returns the absolute path to the storage directory
func (c *Config) GetStoragePath() (string, error) {
	if strings.HasPrefix(c.StorageDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, c.StorageDir[2:]), nil
	}

	absPath, err := filepath.Abs(c.StorageDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	return absPath, nil
}

// ShouldFailOnThreshold checks if the vulnerability count exceeds the threshold
func (c *Config) ShouldFailOnThreshold(vulnCount int) bool {
	if c.FailThreshold == 0 {
		return false // No threshold check
	}
	return vulnCount > c.FailThreshold
}

// ConfigPath returns the file preferences are written to when no --config
// flag is given. It is the first vulnexplain.yaml LoadFromFile would read
// (./, then ~/, then $XDG_CONFIG_HOME/vulnexplain/); when none exists it is
// the last of those locations, which the loader reaches only after finding
// nothing earlier.
func ConfigPath() string {
	dirs := searchDirs()
	for _, dir := range dirs {
		path := filepath.Join(dir, configFileName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return filepath.Join(dirs[len(dirs)-1], configFileName)
}

// WritePreference sets a single key in the YAML config file at path,
// keeping every other key. The file is created with mode 0600 if missing.
func WritePreference(key, value, path string) error {
	if key == "" {
		return fmt.Errorf("preference key cannot be empty")
	}

	values := map[string]interface{}{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &values); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
		if values == nil {
			values = map[string]interface{}{}
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return fmt.Errorf("failed to read config file: %w", err)
	}

	values[key] = value

	out, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, out, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	// WriteFile keeps the mode of an existing file
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config permissions: %w", err)
	}

	return nil
}

// GenerateSampleConfig generates a sample configuration file content
func GenerateSampleConfig() string {
	return `# VulnExplain Configuration
# Save this file as ~/vulnexplain.yaml or ./vulnexplain.yaml

# Audit service root
api_url: http://localhost:8001

# Upper bound for a single audit or report request
timeout: 120s

# Directory to store audit history and downloaded reports
storage_dir: .vulnexplain

# Fail threshold for CI/CD (exit code 1 if vulnerabilities exceed this number)
# Set to 0 to disable threshold checking
fail_threshold: 0

# Output format: text, json, or both
format: text

# Number of stored audits shown by history
last_runs: 7

# Subscription plan: starter, pro, enterprise
plan: starter

# Dashboard theme: light or dark
theme: light

# Enable verbose output
verbose: false

# Enable debug mode
debug: false

# GitHub token for private repositories (reserved)
# Can also be set via VULNEXPLAIN_GITHUB_TOKEN env var
# github_token: ghp_your_token_here
`
}
