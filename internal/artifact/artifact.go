// Package artifact keeps the raw output of detekt runs on disk.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasnoah/detektlint/internal/runner"
)

// Dir returns the directory under base that holds the artifacts for an
// analyzed path. Separators are flattened so every path gets one directory.
func Dir(base, analyzedPath string) string {
	name := filepath.ToSlash(filepath.Clean(analyzedPath))
	name = strings.TrimLeft(name, "/")
	name = strings.ReplaceAll(name, "../", "")
	name = strings.ReplaceAll(name, "/", "__")
	if name == "" || name == "." {
		name = "_"
	}
	return filepath.Join(base, name)
}

// Save writes stdout.txt, stderr.txt and result.json for one run. The files
// are written to a staging directory next to the run's directory and swapped
// in together, so a run directory never mixes files from two runs and stale
// files from an earlier run of the same path are dropped.
func Save(base string, r *runner.Result) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	files := []struct {
		name string
		data []byte
	}{
		{"stdout.txt", []byte(r.Stdout)},
		{"stderr.txt", []byte(r.Stderr)},
		{"result.json", append(data, '\n')},
	}

	if err := os.MkdirAll(base, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", base, err)
	}
	staging, err := os.MkdirTemp(base, ".staging-*")
	if err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	for _, f := range files {
		if err := os.WriteFile(filepath.Join(staging, f.name), f.data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}

	dir := Dir(base, r.Path)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove old artifacts %s: %w", dir, err)
	}
	if err := os.Rename(staging, dir); err != nil {
		return fmt.Errorf("rename %s -> %s: %w", staging, dir, err)
	}
	return nil
}
