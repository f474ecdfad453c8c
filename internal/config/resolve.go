package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Configuration keys accepted from the host configuration.
const (
	KeyJar          = "jar"
	KeyDetektConfig = "detektConfig"
)

// DefaultRulesScope is handed to detekt's -c flag when no rules config resolves.
const DefaultRulesScope = "."

var (
	ErrJarNotFound         = errors.New("the detekt JAR could not be found, check the jar path in your config")
	ErrRulesConfigNotFound = errors.New("the detekt rules config could not be found, check the detektConfig path in your config")
	ErrNotFound            = errors.New("no configured path exists")
)

// ConfigurationError reports a configuration key none of whose candidate
// paths exist, either as given or relative to the project root.
type ConfigurationError struct {
	Key        string
	Candidates []string
	Err        error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %v (tried %s)", e.Key, e.Err, strings.Join(e.Candidates, ", "))
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Resolve returns the first candidate that exists, trying each one as given and
// then relative to root. The result is always absolute, since detekt runs with
// root as its working directory rather than the current one.
func Resolve(key string, candidates []string, root string) (string, error) {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if pathExists(c) {
			if abs, err := filepath.Abs(c); err == nil {
				return abs, nil
			}
		}
		if filepath.IsAbs(c) || root == "" {
			continue
		}
		p := filepath.Join(root, c)
		if pathExists(p) {
			if abs, err := filepath.Abs(p); err == nil {
				return abs, nil
			}
		}
	}
	return "", &ConfigurationError{Key: key, Candidates: candidates, Err: notFoundErr(key)}
}

func notFoundErr(key string) error {
	switch key {
	case KeyJar:
		return ErrJarNotFound
	case KeyDetektConfig:
		return ErrRulesConfigNotFound
	}
	return ErrNotFound
}

func pathExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// Resolved is the linter configuration with every path verified. It is built
// once at load time and read-only afterwards.
type Resolved struct {
	Binary          string
	JarPath         string
	RulesConfigPath string
	ReportBaseName  string
	OutputDir       string
	Format          string
	Timeout         time.Duration
	Extensions      []string
}

// ResolveLinter pins down the paths detekt needs. An unresolved jar is fatal.
// An unresolved rules config is not: detekt falls back to its default rule
// set, so a warning is logged and DefaultRulesScope is used.
func ResolveLinter(cfg *Config, root string, logger *slog.Logger) (*Resolved, error) {
	if logger == nil {
		logger = slog.Default()
	}
	l := cfg.Linter

	jar, err := Resolve(KeyJar, l.Jar, root)
	if err != nil {
		return nil, err
	}

	rules := DefaultRulesScope
	if len(l.DetektConfig) > 0 {
		p, err := Resolve(KeyDetektConfig, l.DetektConfig, root)
		if err != nil {
			logger.Warn("using default detekt rules", "error", err)
		} else {
			rules = p
		}
	}

	timeout, err := time.ParseDuration(l.Timeout)
	if err != nil || timeout <= 0 {
		timeout = 2 * time.Minute
	}

	outDir := l.OutputDir
	if outDir != "" && !filepath.IsAbs(outDir) && root != "" {
		outDir = filepath.Join(root, outDir)
	}

	return &Resolved{
		Binary:          l.Binary,
		JarPath:         jar,
		RulesConfigPath: rules,
		ReportBaseName:  l.ReportName,
		OutputDir:       outDir,
		Format:          l.Format,
		Timeout:         timeout,
		Extensions:      l.Extensions,
	}, nil
}
