package errors

import (
	"fmt"
)

// InputNotFoundError is returned when an exchange's input file does not
// exist on disk.
type InputNotFoundError struct {
	Path  string
	Cause error
}

func (e *InputNotFoundError) Error() string {
	return fmt.Sprintf("input file not found: %s", e.Path)
}

func (e *InputNotFoundError) Unwrap() error   { return e.Cause }
func (e *InputNotFoundError) Kind() ErrorType { return ErrTypeNotFound }

// MalformedRowError is returned when a source row has fewer columns than
// the exchange layout requires. Row is the 0-based source row index.
type MalformedRowError struct {
	Row      int
	Columns  int
	Required int
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("row %d: malformed row: has %d columns, layout requires %d", e.Row, e.Columns, e.Required)
}

func (e *MalformedRowError) Kind() ErrorType { return ErrTypeParsing }

// NumericParseError is returned when an open/high/low/close cell is not a
// finite decimal number.
type NumericParseError struct {
	Row   int
	Field string
	Value string
	Cause error
}

func (e *NumericParseError) Error() string {
	return fmt.Sprintf("row %d: field %s: cannot parse %q as a decimal number", e.Row, e.Field, e.Value)
}

func (e *NumericParseError) Unwrap() error   { return e.Cause }
func (e *NumericParseError) Kind() ErrorType { return ErrTypeParsing }

// DuplicateClientNameError is returned when two registry entries share a
// client name, or when two client names map to the same sheet name.
type DuplicateClientNameError struct {
	Name string
	// SheetName is set when the collision happened after sanitizing.
	SheetName string
}

func (e *DuplicateClientNameError) Error() string {
	if e.SheetName != "" && e.SheetName != e.Name {
		return fmt.Sprintf("duplicate client name: %q collides on sheet name %q", e.Name, e.SheetName)
	}
	return fmt.Sprintf("duplicate client name: %q", e.Name)
}

func (e *DuplicateClientNameError) Kind() ErrorType { return ErrTypeConflict }

// RegistryMissingError reports that the client registry did not exist and a
// template was created in its place. It is informational only.
type RegistryMissingError struct {
	Path string
}

func (e *RegistryMissingError) Error() string {
	return fmt.Sprintf("client registry %s not found: created a template, report will contain only the %q sheet", e.Path, "ALL SCRIPS")
}

func (e *RegistryMissingError) Kind() ErrorType { return ErrTypeNotFound }
