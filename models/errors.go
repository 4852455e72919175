package models

import (
	"fmt"
	"strings"
)

// IOError reports a failure to read or write a file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io: %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// SchemaError reports a pipeline step referencing a column the table does not have.
type SchemaError struct {
	Step   string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: step %q: missing column %q", e.Step, e.Column)
}

// ValidationError reports prediction input that does not match the feature schema.
type ValidationError struct {
	Missing    []string
	Unexpected []string
	Msg        string
}

func (e *ValidationError) Error() string {
	var parts []string
	if e.Msg != "" {
		parts = append(parts, e.Msg)
	}
	if len(e.Missing) > 0 {
		parts = append(parts, "missing columns: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unexpected) > 0 {
		parts = append(parts, "unexpected columns: "+strings.Join(e.Unexpected, ", "))
	}
	if len(parts) == 0 {
		return "validation: invalid input"
	}
	return "validation: " + strings.Join(parts, "; ")
}
