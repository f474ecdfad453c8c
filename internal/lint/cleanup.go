package lint

import (
	"os"
	"path/filepath"
)

// ReportExtensions are the renderings detekt writes next to each other under
// one --output-name.
var ReportExtensions = []string{".xml", ".txt", ".html", ".md", ".sarif"}

// ReportPath is where detekt writes the checkstyle report for baseName.
func ReportPath(dir, baseName string) string {
	return filepath.Join(dir, baseName+".xml")
}

// Cleanup removes every report artifact generated under baseName in dir.
// Files that are already gone, or cannot be removed, are ignored.
func Cleanup(dir, baseName string) {
	for _, ext := range ReportExtensions {
		_ = os.Remove(filepath.Join(dir, baseName+ext))
	}
}
