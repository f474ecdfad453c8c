package lint

// LinterName is the code attached to every finding produced by this adapter.
const LinterName = "detekt"

// Severity is the normalized severity of a finding.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityAdvice
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityAdvice:
		return "advice"
	default:
		return "warning"
	}
}

// MarshalText lets findings serialize severities by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts the names produced by String.
func (s *Severity) UnmarshalText(b []byte) error {
	*s = ParseSeverity(string(b))
	return nil
}

// ParseSeverity converts a normalized severity name back into a Severity.
// Unknown names are treated as warnings.
func ParseSeverity(name string) Severity {
	switch name {
	case "error":
		return SeverityError
	case "advice":
		return SeverityAdvice
	default:
		return SeverityWarning
	}
}

// Finding is one normalized diagnostic surfaced to the review tool.
type Finding struct {
	Path     string   `json:"path"`
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	Code     string   `json:"code"`
	RuleID   string   `json:"rule"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// CountBySeverity tallies findings per severity.
func CountBySeverity(findings []Finding) map[Severity]int {
	counts := make(map[Severity]int)
	for _, f := range findings {
		counts[f.Severity]++
	}
	return counts
}
