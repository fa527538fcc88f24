package importer

import (
	"errors"
	"fmt"
)

// ErrUnknownStage is returned when the requested stage key has no schema
// definition.
var ErrUnknownStage = errors.New("unknown import stage")

// ErrNoMapping is returned when a known stage has no header mappings
// configured. This is a configuration error, not a row-level error.
var ErrNoMapping = errors.New("no header mapping configured for stage")

// ErrEmptyFile is returned when the file has no header row.
var ErrEmptyFile = errors.New("csv file is empty")

// HeaderNotFoundError reports the first canonical field whose configured
// source header is absent from the file's header row. Validation is
// all-or-nothing: no rows are processed after this failure.
type HeaderNotFoundError struct {
	Field    string   // canonical field name
	Header   string   // configured source header text that was not found
	Required []string // full configured header list, for user correction
}

func (e *HeaderNotFoundError) Error() string {
	return fmt.Sprintf("csv file header [%s] not found", e.Header)
}
