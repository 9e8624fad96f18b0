package export

import "errors"

var (
	// ErrSchemaViolation indicates an output file that does not match the
	// entry schema.
	ErrSchemaViolation = errors.New("output does not match entry schema")

	// ErrUnknownFormat indicates an unsupported output format.
	ErrUnknownFormat = errors.New("unknown output format")
)
