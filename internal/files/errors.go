package files

import "errors"

var (
	// ErrNotFound indicates the file does not exist.
	ErrNotFound = errors.New("file not found")
	// ErrInvalidInput indicates missing or malformed request fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrCorruptPDF indicates an uploaded PDF could not be parsed.
	ErrCorruptPDF = errors.New("uploaded PDF is not readable")
)
