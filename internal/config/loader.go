package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the project-level configuration file name.
const FileName = ".detektlint.yaml"

// Defaults applied by Load to unset fields.
const (
	DefaultBinary     = "java"
	DefaultFormat     = "structured"
	DefaultReportName = "result"
	DefaultTimeout    = "2m"
)

// DefaultExtensions are the Kotlin source extensions linted when none are configured.
var DefaultExtensions = []string{".kt", ".kts"}

// Load reads and parses a configuration from the given YAML file path and
// applies defaults to unset fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault searches for a configuration in standard locations and loads the
// first one found. Search order: <root>/.detektlint.yaml, ./.detektlint.yaml,
// ~/.detektlint/config.yaml
func LoadDefault(root string) (*Config, error) {
	var candidates []string
	if root != "" {
		candidates = append(candidates, filepath.Join(root, FileName))
	}
	candidates = append(candidates, FileName)

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append(candidates, filepath.Join(home, ".detektlint", "config.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	return nil, fmt.Errorf("no detektlint config found (searched: %v)", candidates)
}

func applyDefaults(cfg *Config) {
	l := &cfg.Linter
	if l.Binary == "" {
		l.Binary = DefaultBinary
	}
	if l.Format == "" {
		l.Format = DefaultFormat
	}
	if l.ReportName == "" {
		l.ReportName = DefaultReportName
	}
	if l.Timeout == "" {
		l.Timeout = DefaultTimeout
	}
	if len(l.Extensions) == 0 {
		l.Extensions = append([]string(nil), DefaultExtensions...)
	}
}
