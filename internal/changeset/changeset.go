// Package changeset selects the Kotlin sources touched by a unified diff.
package changeset

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

const devNull = "/dev/null"

// PathsFromDiff returns the new-side path of every file a multi-file unified
// diff adds or modifies, filtered to the given extensions. Deleted files are
// skipped. Paths are returned once each, in diff order.
func PathsFromDiff(patch []byte, exts []string) ([]string, error) {
	fileDiffs, err := diff.ParseMultiFileDiff(patch)
	if err != nil {
		return nil, fmt.Errorf("parse diff: %w", err)
	}

	seen := make(map[string]bool)
	var paths []string
	for _, fd := range fileDiffs {
		name := fd.NewName
		if name == "" || name == devNull {
			continue
		}
		name = stripPrefix(name)
		if !HasExtension(name, exts) || seen[name] {
			continue
		}
		seen[name] = true
		paths = append(paths, name)
	}
	return paths, nil
}

// HasExtension reports whether path ends in one of exts. An empty exts
// accepts every path.
func HasExtension(path string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// stripPrefix drops the a/ or b/ prefix git puts on diff paths.
func stripPrefix(name string) string {
	if i := strings.IndexAny(name, "\t"); i >= 0 {
		name = name[:i]
	}
	for _, p := range []string{"b/", "a/"} {
		if strings.HasPrefix(name, p) {
			return strings.TrimPrefix(name, p)
		}
	}
	return name
}
