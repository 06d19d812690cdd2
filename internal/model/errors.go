package model

import (
	"fmt"
	"strings"
)

// EntityFieldPrefix marks errors that need a settings change on the issuing entity
const EntityFieldPrefix = "entity."

// ValidationError is a field-scoped validation failure. Field is either
// entity.<name> or a form path such as customer.name or items.0.price.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsEntity reports whether the error can only be fixed in entity settings
func (e ValidationError) IsEntity() bool {
	return strings.HasPrefix(e.Field, EntityFieldPrefix)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

// ItemField builds the form path of a line item field
func ItemField(index int, field string) string {
	return fmt.Sprintf("items.%d.%s", index, field)
}

// ValidationErrors is a list of validation failures
type ValidationErrors []ValidationError

func (es ValidationErrors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// SplitErrors partitions errors into entity-level and document-level ones,
// preserving order. Both results are non-nil.
func SplitErrors(errs []ValidationError) (entity, document []ValidationError) {
	entity = []ValidationError{}
	document = []ValidationError{}
	for _, e := range errs {
		if e.IsEntity() {
			entity = append(entity, e)
		} else {
			document = append(document, e)
		}
	}
	return entity, document
}

// DecodeError represents a request body that could not be decoded
type DecodeError struct {
	Source  string
	Message string
	Cause   error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s (%v)", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Source, e.Message)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// NewDecodeError creates a new decode error
func NewDecodeError(source, message string, cause error) *DecodeError {
	return &DecodeError{
		Source:  source,
		Message: message,
		Cause:   cause,
	}
}
