// Package config handles loading and managing gitpulse configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for gitpulse.
type Config struct {
	GitHub  GitHubConfig  `yaml:"github"`
	Badge   BadgeConfig   `yaml:"badge"`
	Hooks   HooksConfig   `yaml:"hooks"`
	Storage StorageConfig `yaml:"storage"`
}

// GitHubConfig controls access to the GitHub API. The access token itself is
// never read from YAML; both binaries take it from the GH_PAT environment
// variable so it cannot end up committed alongside the config file.
type GitHubConfig struct {
	APIBaseURL        string  `yaml:"api_url"`
	Username          string  `yaml:"username"`
	Timeout           int     `yaml:"timeout"` // seconds
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// BadgeConfig controls badge generation.
type BadgeConfig struct {
	Output     string `yaml:"output"`
	WindowDays int    `yaml:"window_days"`
}

// HooksConfig controls webhook registration. The hook secret comes from the
// WEBHOOK_SECRET environment variable for the same reason the token does.
type HooksConfig struct {
	URL         string   `yaml:"url"`
	Events      []string `yaml:"events"`
	TrackerRepo string   `yaml:"tracker_repo"`
}

// StorageConfig selects where rendered badges are published.
type StorageConfig struct {
	Backend   string   `yaml:"backend"` // local, s3, or gcs
	LocalDir  string   `yaml:"local_dir"`
	S3        S3Config `yaml:"s3"`
	GCSBucket string   `yaml:"gcs_bucket"`
}

// S3Config holds settings for the S3 storage backend.
type S3Config struct {
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			APIBaseURL:        "https://api.github.com",
			Timeout:           30,
			RequestsPerSecond: 5,
		},
		Badge: BadgeConfig{
			Output:     "streak.svg",
			WindowDays: 365,
		},
		Hooks: HooksConfig{
			Events: []string{"push", "pull_request", "issues", "issue_comment"},
		},
		Storage: StorageConfig{
			Backend:  "local",
			LocalDir: BadgeDir(),
		},
	}
}

// Load reads a config file from the given path.
// If the file does not exist, it returns the default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// FindConfigFile looks for .gitpulse/config.yaml in the given directory
// and its parents, returning the path if found, or "" if not.
func FindConfigFile(dir string) string {
	for {
		candidate := filepath.Join(dir, ".gitpulse", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// BadgeDir returns the default local directory for rendered badges.
// Uses ~/.cache/gitpulse/badges to avoid polluting the working directory.
func BadgeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to temp dir if HOME isn't available
		home = os.TempDir()
	}
	return filepath.Join(home, ".cache", "gitpulse", "badges")
}
