package files

import "time"

// File is an uploaded evidence attachment, referenced by file-typed inputs.
type File struct {
	ID              string
	OwnerID         string
	FileName        string
	MimeType        string
	SizeBytes       int64
	StorageProvider string
	StorageKey      string
	CreatedAt       time.Time
}
