package lint

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// RulePrefix is the namespace detekt puts in front of every rule id.
const RulePrefix = "detekt."

// ErrMalformedReport is returned when a report exists but is not a checkstyle document.
var ErrMalformedReport = errors.New("malformed detekt report")

// StructuredFormat parses the checkstyle XML report written via --output.
type StructuredFormat struct {
	Logger *slog.Logger
}

func (p *StructuredFormat) Name() string     { return "structured" }
func (p *StructuredFormat) Structured() bool { return true }

// Parse reads out.ReportPath. A missing or malformed report yields no findings.
func (p *StructuredFormat) Parse(out Output) []Finding {
	findings, err := ParseReport(out.ReportPath, out.Path)
	if err != nil {
		logger := p.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("ignoring unreadable detekt report",
			"report", out.ReportPath, "path", out.Path, "error", err)
		return nil
	}
	return findings
}

type checkstyleReport struct {
	XMLName xml.Name         `xml:"checkstyle"`
	Files   []checkstyleFile `xml:"file"`
}

type checkstyleFile struct {
	Name   string            `xml:"name,attr"`
	Errors []checkstyleError `xml:"error"`
}

type checkstyleError struct {
	Line     string `xml:"line,attr"`
	Column   string `xml:"column,attr"`
	Severity string `xml:"severity,attr"`
	Message  string `xml:"message,attr"`
	Source   string `xml:"source,attr"`
}

// ParseReport loads the report at reportPath and returns the violations recorded
// for analyzedPath, in document order. A report that does not exist is not an
// error: detekt may skip writing it when there is nothing to say.
func ParseReport(reportPath string, analyzedPath string) ([]Finding, error) {
	data, err := os.ReadFile(reportPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrMalformedReport, reportPath, err)
	}

	var report checkstyleReport
	if err := xml.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedReport, reportPath, err)
	}

	file := findFile(report.Files, analyzedPath)
	if file == nil || len(file.Errors) == 0 {
		return nil, nil
	}

	findings := make([]Finding, 0, len(file.Errors))
	for _, e := range file.Errors {
		findings = append(findings, Finding{
			Path:     analyzedPath,
			Line:     atoiOrZero(e.Line),
			Column:   atoiOrZero(e.Column),
			Code:     LinterName,
			RuleID:   strings.TrimPrefix(e.Source, RulePrefix),
			Message:  e.Message,
			Severity: MapSeverity(e.Severity),
		})
	}
	return findings, nil
}

// findFile returns the first file record naming analyzedPath.
func findFile(files []checkstyleFile, analyzedPath string) *checkstyleFile {
	for i := range files {
		if samePath(files[i].Name, analyzedPath) {
			return &files[i]
		}
	}
	return nil
}

// samePath reports whether a report file name refers to path. detekt records
// absolute paths while hosts usually pass paths relative to the project root,
// so a relative path also matches an absolute one ending in it.
func samePath(name, path string) bool {
	if name == path {
		return true
	}
	a, b := filepath.Clean(name), filepath.Clean(path)
	if a == b {
		return true
	}
	if filepath.IsAbs(a) == filepath.IsAbs(b) {
		return false
	}
	abs, rel := a, b
	if filepath.IsAbs(b) {
		abs, rel = b, a
	}
	if strings.HasPrefix(rel, "..") {
		return false
	}
	return strings.HasSuffix(abs, string(filepath.Separator)+rel)
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
