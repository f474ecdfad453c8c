package config

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError represents a single validation issue with a config.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// recognizedFormats is the set of valid report format names.
var recognizedFormats = map[string]bool{
	"structured": true,
	"xml":        true,
	"text":       true,
}

// Validate checks a Config for structural errors. It does not touch the
// filesystem; path resolution happens in ResolveLinter.
func Validate(cfg *Config) []ValidationError {
	var errs []ValidationError
	l := cfg.Linter

	if len(l.Jar) == 0 {
		errs = append(errs, ValidationError{Field: "linter.jar", Message: "is required"})
	}
	for i, c := range l.Jar {
		if strings.TrimSpace(c) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("linter.jar[%d]", i),
				Message: "is empty",
			})
		}
	}

	if l.Format != "" && !recognizedFormats[l.Format] {
		errs = append(errs, ValidationError{
			Field:   "linter.format",
			Message: fmt.Sprintf("unrecognized format %q", l.Format),
		})
	}

	if l.ReportName == "" {
		errs = append(errs, ValidationError{Field: "linter.report_name", Message: "is required"})
	} else if strings.ContainsAny(l.ReportName, `/\`) {
		errs = append(errs, ValidationError{
			Field:   "linter.report_name",
			Message: fmt.Sprintf("%q must be a file name, not a path", l.ReportName),
		})
	}

	if l.Timeout != "" {
		d, err := time.ParseDuration(l.Timeout)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   "linter.timeout",
				Message: fmt.Sprintf("invalid duration %q", l.Timeout),
			})
		} else if d <= 0 {
			errs = append(errs, ValidationError{Field: "linter.timeout", Message: "must be positive"})
		}
	}

	for i, ext := range l.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("linter.extensions[%d]", i),
				Message: fmt.Sprintf("%q must start with a dot", ext),
			})
		}
	}

	return errs
}
