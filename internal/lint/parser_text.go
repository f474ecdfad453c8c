package lint

import (
	"regexp"
	"strconv"
	"strings"
)

// LineFormat parses the line-oriented stdout of older detekt releases.
type LineFormat struct{}

func (p *LineFormat) Name() string     { return "text" }
func (p *LineFormat) Structured() bool { return false }

func (p *LineFormat) Parse(out Output) []Finding {
	return ParseText(out.Stdout, out.Path)
}

// detekt console output, e.g.:
//
//	LongMethod - 42/20 - [foo] at src/Foo.kt:42:10
var detektLineRe = regexp.MustCompile(`^\s*(?P<rule>[A-Za-z]+?)\s-(.+\s-)*?\s\[.+?\]\sat\s(.*?):(?P<line>\d*?):\d*?$`)

// ParseText extracts one warning per diagnostic line of stdout. Lines that are
// not diagnostics (progress output, summaries) are skipped.
func ParseText(stdout string, path string) []Finding {
	output := strings.TrimSpace(stdout)
	if output == "" {
		return nil
	}

	ruleIdx := detektLineRe.SubexpIndex("rule")
	lineIdx := detektLineRe.SubexpIndex("line")

	var findings []Finding
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		m := detektLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		lineNum, _ := strconv.Atoi(strings.TrimSpace(m[lineIdx]))
		findings = append(findings, Finding{
			Path:     path,
			Line:     lineNum,
			Code:     LinterName,
			RuleID:   strings.TrimSpace(m[ruleIdx]),
			Message:  strings.TrimSpace(line),
			Severity: SeverityWarning,
		})
	}
	return findings
}
