package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to user-friendly labels
var FieldLabels = map[string]string{
	// Job fields
	"Title":           "Title",
	"Description":     "Description",
	"RequiredSkills":  "Required skills",
	"Location":        "Location",
	"JobType":         "Job type",
	"CompanyName":     "Company name",
	"Status":          "Status",
	"ExpiresAt":       "Expiration date",
	"ExperienceLevel": "Experience level",
	"SalaryRange":     "Salary range",
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

// Message joins every formatted error into one sentence list.
func Message(err error) string {
	return strings.Join(FormatValidationErrors(err), "; ")
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.StructField())

	switch e.Tag() {
	case "required", "notblank":
		if e.Kind().String() == "slice" {
			return fmt.Sprintf("At least one entry is required for %s", strings.ToLower(label))
		}
		return fmt.Sprintf("%s is required", label)
	case "min":
		return fmt.Sprintf("%s must have at least %s item(s)", label, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(e.Param(), " ", ", "))
	case "future":
		return fmt.Sprintf("%s must be in the future", label)
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

func getFieldLabel(field string) string {
	// Slice elements are reported as e.g. RequiredSkills[0]
	if i := strings.IndexByte(field, '['); i > 0 {
		field = field[:i]
	}
	if label, ok := FieldLabels[field]; ok {
		return label
	}
	return field
}
