package validation

import (
	"errors"
	"strings"
)

// Violation describes a single failed validation rule.
type Violation struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Violations is the outcome of a failed validation. It is never empty when returned as error.
type Violations []Violation

func (v Violations) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}

	parts := make([]string, 0, len(v))
	for _, violation := range v {
		if violation.Field == "" {
			parts = append(parts, violation.Message)
			continue
		}
		parts = append(parts, violation.Field+": "+violation.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ForField returns the violations reported for the given field path.
func (v Violations) ForField(field string) Violations {
	var result Violations
	for _, violation := range v {
		if violation.Field == field {
			result = append(result, violation)
		}
	}
	return result
}

func (v Violations) Codes() []string {
	codes := make([]string, 0, len(v))
	for _, violation := range v {
		codes = append(codes, violation.Code)
	}
	return codes
}

// AsViolations extracts violations from an error chain.
func AsViolations(err error) (Violations, bool) {
	var violations Violations
	if errors.As(err, &violations) && len(violations) > 0 {
		return violations, true
	}
	return nil, false
}

// Merge concatenates violation lists and returns nil when all are empty.
func Merge(lists ...Violations) Violations {
	var result Violations
	for _, list := range lists {
		result = append(result, list...)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
