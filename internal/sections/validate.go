package sections

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"dossier-backend/internal/templates"
)

// coerceValue validates a raw JSON value against the input spec and returns
// the typed value to store. File inputs are not handled here; the service
// resolves the file reference first and calls fileValue.
func coerceValue(spec templates.InputSpec, raw any) (InputValue, error) {
	switch spec.Type {
	case templates.InputText:
		return coerceText(spec, raw)
	case templates.InputNumber:
		return coerceNumber(spec, raw)
	case templates.InputDate:
		return coerceDate(spec, raw)
	case templates.InputBoolean:
		return coerceBool(spec, raw)
	default:
		return InputValue{}, fmt.Errorf("input spec %q has unsupported type %q", spec.Key, spec.Type)
	}
}

func coerceText(spec templates.InputSpec, raw any) (InputValue, error) {
	s, ok := raw.(string)
	if !ok {
		return InputValue{}, &ValidationError{InputKey: spec.Key, Constraint: ConstraintType, Message: "expected a string"}
	}
	s = strings.TrimSpace(s)
	length := utf8.RuneCountInString(s)
	v := spec.Validation
	if v.MinLength != nil && length < *v.MinLength {
		return InputValue{}, &ValidationError{
			InputKey:   spec.Key,
			Constraint: ConstraintMinLength,
			Message:    fmt.Sprintf("must be at least %d characters, got %d", *v.MinLength, length),
		}
	}
	if v.MaxLength != nil && length > *v.MaxLength {
		return InputValue{}, &ValidationError{
			InputKey:   spec.Key,
			Constraint: ConstraintMaxLength,
			Message:    fmt.Sprintf("must be at most %d characters, got %d", *v.MaxLength, length),
		}
	}
	if length == 0 {
		return InputValue{}, &ValidationError{InputKey: spec.Key, Constraint: ConstraintRequired, Message: "value is empty"}
	}
	return InputValue{Type: templates.InputText, Text: s}, nil
}

func coerceNumber(spec templates.InputSpec, raw any) (InputValue, error) {
	var n float64
	switch val := raw.(type) {
	case float64:
		n = val
	case int:
		n = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return InputValue{}, &ValidationError{InputKey: spec.Key, Constraint: ConstraintType, Message: "expected a number"}
		}
		n = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return InputValue{}, &ValidationError{InputKey: spec.Key, Constraint: ConstraintType, Message: "expected a number"}
		}
		n = parsed
	default:
		return InputValue{}, &ValidationError{InputKey: spec.Key, Constraint: ConstraintType, Message: "expected a number"}
	}

	v := spec.Validation
	if v.Min != nil && n < *v.Min {
		return InputValue{}, &ValidationError{
			InputKey:   spec.Key,
			Constraint: ConstraintMin,
			Message:    fmt.Sprintf("must be at least %v", *v.Min),
		}
	}
	if v.Max != nil && n > *v.Max {
		return InputValue{}, &ValidationError{
			InputKey:   spec.Key,
			Constraint: ConstraintMax,
			Message:    fmt.Sprintf("must be at most %v", *v.Max),
		}
	}
	return InputValue{Type: templates.InputNumber, Number: n}, nil
}

func coerceDate(spec templates.InputSpec, raw any) (InputValue, error) {
	s, ok := raw.(string)
	if !ok {
		return InputValue{}, &ValidationError{InputKey: spec.Key, Constraint: ConstraintType, Message: "expected a date string"}
	}
	s = strings.TrimSpace(s)
	d, err := time.Parse(DateFormat, s)
	if err != nil {
		// Accept a full timestamp and keep the date part.
		t, rfcErr := time.Parse(time.RFC3339, s)
		if rfcErr != nil {
			return InputValue{}, &ValidationError{
				InputKey:   spec.Key,
				Constraint: ConstraintType,
				Message:    fmt.Sprintf("expected %s date", DateFormat),
			}
		}
		d = t.UTC().Truncate(24 * time.Hour)
	}
	return InputValue{Type: templates.InputDate, Date: d}, nil
}

func coerceBool(spec templates.InputSpec, raw any) (InputValue, error) {
	b, ok := raw.(bool)
	if !ok {
		// Booleans must be explicit; strings and numbers are not coerced so
		// an untouched toggle never counts as resolved.
		return InputValue{}, &ValidationError{InputKey: spec.Key, Constraint: ConstraintType, Message: "expected true or false"}
	}
	return InputValue{Type: templates.InputBoolean, Bool: b}, nil
}

// checkFileType validates a file name extension against the spec's accepted
// types. An empty accept list allows any file.
func checkFileType(spec templates.InputSpec, fileName string) error {
	accepted := spec.Validation.FileTypes
	if len(accepted) == 0 {
		return nil
	}
	lower := strings.ToLower(fileName)
	for _, ext := range accepted {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return nil
		}
	}
	return &ValidationError{
		InputKey:   spec.Key,
		Constraint: ConstraintFileTypes,
		Message:    fmt.Sprintf("file must be one of %s", strings.Join(accepted, ", ")),
	}
}

// fileValue builds the stored value for a resolved file input.
func fileValue(fileName string) InputValue {
	return InputValue{Type: templates.InputFile, FileName: fileName}
}
