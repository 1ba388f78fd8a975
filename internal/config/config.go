package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// FileName is looked up in the workdir and, when present, overrides the
// built-in defaults. Flags override both.
const FileName = ".vibe.yaml"

// Config holds tunables shared by the edit engine and the auxiliary tools.
type Config struct {
	MinConfidence float64 `yaml:"min_confidence"`
	MaxFileSize   int64   `yaml:"max_file_size"`
	ContextLines  int     `yaml:"context_lines"`
	CreateBackup  *bool   `yaml:"create_backup"`

	MaxEntries int      `yaml:"max_entries"`
	MaxResults int      `yaml:"max_results"`
	Excludes   []string `yaml:"excludes"`

	TestTimeoutSeconds int `yaml:"test_timeout_seconds"`
}

// Default returns the built-in configuration.
func Default() *Config {
	backup := true
	return &Config{
		MinConfidence: 0.85,
		MaxFileSize:   1_000_000,
		ContextLines:  3,
		CreateBackup:  &backup,
		MaxEntries:    200,
		MaxResults:    100,
		Excludes: []string{
			".git", "node_modules", "vendor", "__pycache__",
			".venv", "venv", ".pytest_cache", "*.pyc", ".DS_Store",
		},
		TestTimeoutSeconds: 120,
	}
}

// Load returns the defaults merged with the workdir's .vibe.yaml, if any.
func Load(workdir string) (*Config, error) {
	cfg := Default()
	path := filepath.Join(workdir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.MinConfidence <= 0 || cfg.MinConfidence > 1 {
		return nil, fmt.Errorf("%s: min_confidence must be in (0,1], got %v", path, cfg.MinConfidence)
	}
	return cfg, nil
}

// BackupEnabled resolves the optional create_backup setting.
func (c *Config) BackupEnabled() bool {
	return c.CreateBackup == nil || *c.CreateBackup
}
