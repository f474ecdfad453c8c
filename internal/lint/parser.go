package lint

import (
	"fmt"
	"log/slog"
	"sort"
)

// Output carries everything a ReportFormat may need from one detekt invocation.
type Output struct {
	Path       string // analyzed path, as given by the host
	ExitCode   int
	Stdout     string
	Stderr     string
	ReportPath string // structured report location; empty for line-oriented runs
}

// ReportFormat converts raw detekt output into findings.
// Parse never fails: unreadable output degrades to no findings.
type ReportFormat interface {
	Name() string
	// Structured reports are written to a file and need --output flags and cleanup.
	Structured() bool
	Parse(out Output) []Finding
}

// FormatFor returns the ReportFormat registered under name.
func FormatFor(name string, logger *slog.Logger) (ReportFormat, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch name {
	case "text":
		return &LineFormat{}, nil
	case "structured", "xml", "":
		return &StructuredFormat{Logger: logger}, nil
	}
	return nil, fmt.Errorf("unknown report format %q (known: %v)", name, FormatNames())
}

// FormatNames lists the recognized format names.
func FormatNames() []string {
	names := []string{"text", "structured", "xml"}
	sort.Strings(names)
	return names
}
