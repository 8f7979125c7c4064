package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	// MaxSchemaNameBytes is the longest accepted schema identifier.
	MaxSchemaNameBytes = 30
	// MaxTableNameBytes is the longest accepted table identifier.
	MaxTableNameBytes = 128
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_$#]*$`)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s' (value: '%s'): %s", e.Field, e.Value, e.Message)
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validator accumulates validation errors so callers can report all of them at once.
type Validator struct {
	errors []*ValidationError
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		errors: make([]*ValidationError, 0),
	}
}

// AddError adds a validation error
func (v *Validator) AddError(field, value, message string) {
	v.errors = append(v.errors, &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors
func (v *Validator) Errors() []*ValidationError {
	return v.errors
}

// Error returns nil when nothing failed, the single error when exactly one
// check failed, and an Errors value otherwise.
func (v *Validator) Error() error {
	if !v.HasErrors() {
		return nil
	}
	if len(v.errors) == 1 {
		return v.errors[0]
	}

	return Errors(append([]*ValidationError(nil), v.errors...))
}

// Errors is returned by Validator.Error when more than one check failed.
type Errors []*ValidationError

func (e Errors) Error() string {
	messages := make([]string, 0, len(e))
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed:\n%s", strings.Join(messages, "\n"))
}

func (e Errors) Unwrap() []error {
	errs := make([]error, 0, len(e))
	for _, err := range e {
		errs = append(errs, err)
	}
	return errs
}

// ValidateIdentifier checks an Oracle-style identifier: a leading letter,
// then letters, digits, '_', '$' or '#', at most maxBytes bytes long.
func (v *Validator) ValidateIdentifier(field, value string, maxBytes int) {
	if value == "" {
		v.AddError(field, value, "identifier cannot be empty")
		return
	}

	if len(value) > maxBytes {
		v.AddError(field, value, fmt.Sprintf("identifier too long (max %d bytes)", maxBytes))
		return
	}

	if !identifierPattern.MatchString(value) {
		v.AddError(field, value, "identifier must start with a letter and contain only letters, digits, '_', '$' or '#'")
	}
}

// ValidatePositive records an error when value is not strictly positive.
func (v *Validator) ValidatePositive(field string, value int) {
	if value <= 0 {
		v.AddError(field, fmt.Sprintf("%d", value), "must be positive")
	}
}

// ValidateOneOf records an error when value is not one of allowed.
func (v *Validator) ValidateOneOf(field, value string, allowed ...string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.AddError(field, value, fmt.Sprintf("must be one of %s", strings.Join(allowed, ", ")))
}

// SchemaName validates a schema identifier and returns a *ValidationError on failure.
func SchemaName(name string) error {
	v := NewValidator()
	v.ValidateIdentifier("schema_name", name, MaxSchemaNameBytes)
	return v.Error()
}

// TableName validates a table identifier and returns a *ValidationError on failure.
func TableName(name string) error {
	v := NewValidator()
	v.ValidateIdentifier("table_name", name, MaxTableNameBytes)
	return v.Error()
}
