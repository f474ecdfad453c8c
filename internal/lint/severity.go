package lint

// detekt severity tokens, matched case-sensitively.
var severityTable = map[string]Severity{
	"error":   SeverityError,
	"warning": SeverityWarning,
	"info":    SeverityAdvice,
}

// MapSeverity maps a detekt severity token to a normalized Severity.
// Anything not in the table, including the empty string, is a warning.
func MapSeverity(token string) Severity {
	if sev, ok := severityTable[token]; ok {
		return sev
	}
	return SeverityWarning
}
