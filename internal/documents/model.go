package documents

import "time"

const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
)

// Document is one permitting dossier for a storage project, owned by a
// single caller.
type Document struct {
	ID          string
	OwnerID     string
	ProjectName string
	Region      string
	Status      string
	CreatedAt   time.Time
}
