package sections

import (
	"context"
	"time"
)

// Repo defines persistence operations for sections and their input requests.
type Repo interface {
	// CreateSection stores a section with its input requests atomically.
	CreateSection(ctx context.Context, section Section, inputs []InputRequest) error
	GetSection(ctx context.Context, sectionID string) (Section, error)
	GetSectionByKey(ctx context.Context, documentID, sectionKey string) (Section, error)
	// ListSections returns a document's sections in creation order.
	ListSections(ctx context.Context, documentID string) ([]Section, error)
	// ListInputs returns a section's input requests in spec order.
	ListInputs(ctx context.Context, sectionID string) ([]InputRequest, error)
	UpdateInput(ctx context.Context, input InputRequest) error
	UpdateSectionState(ctx context.Context, sectionID string, state State) error
	// UpdateRender persists render output and moves the section to rendered.
	UpdateRender(ctx context.Context, sectionID, content, html string, renderedAt time.Time) error
}
