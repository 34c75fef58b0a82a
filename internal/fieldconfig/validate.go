package fieldconfig

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError reports every problem found in one submission so the
// client can surface them all at once instead of one per round trip.
type ValidationError struct {
	Missing  []string `json:"missing_fields,omitempty"`
	Problems []string `json:"problems,omitempty"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, 2)
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", ")))
	}
	if len(e.Problems) > 0 {
		parts = append(parts, strings.Join(e.Problems, "; "))
	}
	return strings.Join(parts, "; ")
}

// Validate checks a submission against the field catalog: required fields
// must be present and non-empty, dropdown answers must be one of the
// configured options, and number answers must be numeric and within range.
// Fields not in the catalog are ignored. Returns nil when the submission is
// acceptable.
func Validate(fields []Field, answers map[string]any) error {
	verr := &ValidationError{}

	for _, field := range fields {
		value := answers[field.Name]

		if isEmpty(value) {
			if field.Required {
				verr.Missing = append(verr.Missing, field.Name)
			}
			continue
		}

		switch field.Type {
		case TypeDropdown:
			s, ok := value.(string)
			if !ok {
				verr.Problems = append(verr.Problems, fmt.Sprintf("%s: expected one of the configured options", field.Name))
				continue
			}
			if len(field.Options) > 0 && !containsOption(field.Options, s) {
				verr.Problems = append(verr.Problems, fmt.Sprintf("%s: %q is not a valid option", field.Name, s))
			}
		case TypeNumber:
			f, ok := asFloat(value)
			if !ok {
				verr.Problems = append(verr.Problems, fmt.Sprintf("%s: expected a number", field.Name))
				continue
			}
			if field.MinValue != nil && f < *field.MinValue {
				verr.Problems = append(verr.Problems, fmt.Sprintf("%s: %v is below the minimum %v", field.Name, f, *field.MinValue))
			}
			if field.MaxValue != nil && f > *field.MaxValue {
				verr.Problems = append(verr.Problems, fmt.Sprintf("%s: %v is above the maximum %v", field.Name, f, *field.MaxValue))
			}
		case TypeCheckbox:
			if _, ok := value.(bool); !ok {
				verr.Problems = append(verr.Problems, fmt.Sprintf("%s: expected true or false", field.Name))
			}
		}
	}

	if len(verr.Missing) > 0 || len(verr.Problems) > 0 {
		return verr
	}
	return nil
}

// isEmpty treats nil and blank strings as "not answered". A zero number or
// false checkbox is a real answer.
func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func containsOption(options []string, value string) bool {
	for _, opt := range options {
		if opt == value {
			return true
		}
	}
	return false
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
