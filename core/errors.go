package core

import (
	"errors"
	"strings"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrTaskInvalid  = errors.New("task is invalid")
)

const (
	CodeBlank           = "blank"
	CodeBeforeStartTime = "before_start_time"
)

// FieldError is a single failed rule on one form field.
type FieldError struct {
	Field string `json:"field"`
	Code  string `json:"code"`
}

type ValidationError struct {
	Fields []FieldError `json:"fields,omitempty"`
}

func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrTaskInvalid.Error()
	}

	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Code)
	}

	return ErrTaskInvalid.Error() + ": " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrTaskInvalid
}

// For returns the errors attached to field, in the order they were found.
func (e *ValidationError) For(field string) []FieldError {
	if e == nil {
		return nil
	}

	var out []FieldError

	for _, f := range e.Fields {
		if f.Field == field {
			out = append(out, f)
		}
	}

	return out
}

// Messages renders every field error as "<label> <message>" in the translator's locale.
func (e *ValidationError) Messages(tr Translator) []string {
	if e == nil {
		return nil
	}

	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, FullMessage(tr, f))
	}

	return msgs
}

// FullMessage renders one field error with its human-readable label.
func FullMessage(tr Translator, f FieldError) string {
	return tr.T("errors.format",
		"attribute", tr.T("attributes.task."+f.Field),
		"message", tr.T("errors.messages."+f.Code))
}
