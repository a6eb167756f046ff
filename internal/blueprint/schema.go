package blueprint

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// FieldError is one failed rule from Schema.Validate.
type FieldError struct {
	FieldID string `json:"fieldId"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.FieldID, e.Message)
}

// rule validates the value supplied for a single field. present is false when
// the answer map has no entry for the field at all.
type rule func(value any, present bool) *FieldError

// Schema validates an answer map against a blueprint's flattened fields.
type Schema struct {
	rules       []schemaRule
	unsupported []string
}

type schemaRule struct {
	fieldID string
	check   rule
}

var emailShape = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// DeriveSchema builds a validation schema from an ordered field list. Each
// declared field type maps to a fixed rule constructor; undeclared types are
// accepted without validation and reported via Unsupported so the form
// surface can skip rendering them.
func DeriveSchema(fields []Field) *Schema {
	schema := &Schema{}
	for _, field := range fields {
		var check rule
		switch field.Type {
		case FieldText, FieldTextarea, FieldAddress, FieldDate:
			check = stringRule(field)
		case FieldEmail:
			check = emailRule(field)
		case FieldSelect:
			check = selectRule(field)
		case FieldCheckbox:
			check = checkboxRule(field)
		case FieldNumber:
			check = numberRule(field)
		default:
			schema.unsupported = append(schema.unsupported, field.ID)
			continue
		}
		schema.rules = append(schema.rules, schemaRule{fieldID: field.ID, check: check})
	}
	return schema
}

// Unsupported lists field ids whose declared type this build does not know.
func (s *Schema) Unsupported() []string {
	return s.unsupported
}

// Validate checks an answer map and returns every failed rule. A nil or empty
// answer map against a schema with no required fields validates cleanly.
func (s *Schema) Validate(answers map[string]any) []FieldError {
	var failures []FieldError
	for _, r := range s.rules {
		value, present := answers[r.fieldID]
		if fe := r.check(value, present); fe != nil {
			failures = append(failures, *fe)
		}
	}
	return failures
}

func stringRule(field Field) rule {
	return func(value any, present bool) *FieldError {
		text, ok := asString(value)
		if present && !ok {
			return fieldError(field, "must be text")
		}
		if field.Required && strings.TrimSpace(text) == "" {
			return fieldError(field, "is required")
		}
		return nil
	}
}

func emailRule(field Field) rule {
	return func(value any, present bool) *FieldError {
		text, ok := asString(value)
		if present && !ok {
			return fieldError(field, "must be text")
		}
		if strings.TrimSpace(text) == "" {
			if field.Required {
				return fieldError(field, "is required")
			}
			return nil
		}
		if !emailShape.MatchString(strings.TrimSpace(text)) {
			return fieldError(field, "must be a valid email address")
		}
		return nil
	}
}

func selectRule(field Field) rule {
	return func(value any, present bool) *FieldError {
		text, ok := asString(value)
		if present && !ok {
			return fieldError(field, "must be text")
		}
		if strings.TrimSpace(text) == "" {
			if field.Required {
				return fieldError(field, "is required")
			}
			return nil
		}
		for _, option := range field.Options {
			if option.Value == text {
				return nil
			}
		}
		return fieldError(field, "must be one of the listed options")
	}
}

func checkboxRule(field Field) rule {
	return func(value any, present bool) *FieldError {
		checked, ok := value.(bool)
		if present && !ok {
			return fieldError(field, "must be true or false")
		}
		// A required checkbox left unchecked fails.
		if field.Required && !checked {
			return fieldError(field, "must be checked")
		}
		return nil
	}
}

func numberRule(field Field) rule {
	return func(value any, present bool) *FieldError {
		if !present || value == nil {
			if field.Required {
				return fieldError(field, "is required")
			}
			return nil
		}
		switch v := value.(type) {
		case float64, int, int64:
			return nil
		case string:
			if strings.TrimSpace(v) == "" {
				if field.Required {
					return fieldError(field, "is required")
				}
				return nil
			}
			if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
				return fieldError(field, "must be a number")
			}
			return nil
		default:
			return fieldError(field, "must be a number")
		}
	}
}

func fieldError(field Field, message string) *FieldError {
	return &FieldError{FieldID: field.ID, Message: message}
}

func asString(value any) (string, bool) {
	if value == nil {
		return "", true
	}
	text, ok := value.(string)
	return text, ok
}
