package schema

import (
	"fmt"
	"strconv"
	"strings"

	"tabletalk/internal/models"
)

// ValidationCode classifies why an input was rejected.
type ValidationCode string

const (
	CodeTypeMismatch        ValidationCode = "type_mismatch"
	CodeConstraintViolation ValidationCode = "constraint_violation"
	CodeInvalidRule         ValidationCode = "invalid_rule"
)

// ValidationError reports a rejected input for one field. It is a
// per-turn, recoverable condition: callers re-prompt, never abort.
type ValidationError struct {
	Code   ValidationCode
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

// Validate checks a raw input against one field spec and returns the
// typed value. Pure function; no side effects.
func Validate(spec models.FieldSpec, raw string) (models.TypedValue, error) {
	var value models.TypedValue
	switch spec.Type {
	case models.FieldNumber:
		n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return models.TypedValue{}, &ValidationError{
				Code:   CodeTypeMismatch,
				Field:  spec.Name,
				Reason: fmt.Sprintf("%q is not a number", raw),
			}
		}
		value = models.NumberValue(n)
	default:
		value = models.TextValue(raw)
	}

	if spec.Validation == "" {
		return value, nil
	}

	ok, err := evalRule(spec.Validation, value)
	if err != nil {
		return models.TypedValue{}, &ValidationError{
			Code:   CodeInvalidRule,
			Field:  spec.Name,
			Reason: fmt.Sprintf("rule %q: %v", spec.Validation, err),
		}
	}
	if !ok {
		return models.TypedValue{}, &ValidationError{
			Code:   CodeConstraintViolation,
			Field:  spec.Name,
			Reason: fmt.Sprintf("%q does not satisfy %q", raw, spec.Validation),
		}
	}
	return value, nil
}
