package sections

import (
	"time"

	"dossier-backend/internal/templates"
)

// State is the lifecycle state of a section. It is always derivable from
// the section's input requests plus whether the section has ever rendered.
type State string

const (
	StatePendingInputs State = "pending_inputs"
	StateReadyToRender State = "ready_to_render"
	StateRendered      State = "rendered"
)

// Section is one addressable unit of a dossier, bound to a template.
type Section struct {
	ID              string
	DocumentID      string
	SectionKey      string
	State           State
	RenderedContent string
	RenderedHTML    string
	RenderedAt      *time.Time
	CreatedAt       time.Time
}

// InputRequest tracks whether one input for one section has been supplied.
type InputRequest struct {
	ID         string
	SectionID  string
	InputKey   string
	Type       templates.InputType
	Required   bool
	IsResolved bool
	Value      *InputValue
	FileID     string
	ResolvedAt *time.Time
	CreatedAt  time.Time
}
