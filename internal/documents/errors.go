package documents

import "errors"

var (
	// ErrNotFound indicates the document does not exist or is deleted.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidInput indicates missing or malformed request fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrForbidden indicates the caller does not own the document.
	ErrForbidden = errors.New("document not owned by caller")
)
