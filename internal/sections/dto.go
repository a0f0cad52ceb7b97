package sections

import (
	"time"

	"dossier-backend/internal/templates"
)

// InputResponse is the outward-facing representation of an input request.
type InputResponse struct {
	InputKey   string      `json:"inputKey"`
	Label      string      `json:"label"`
	Type       string      `json:"type"`
	Required   bool        `json:"required"`
	IsResolved bool        `json:"isResolved"`
	Value      *InputValue `json:"value,omitempty"`
	FileID     string      `json:"fileId,omitempty"`
	ResolvedAt *time.Time  `json:"resolvedAt,omitempty"`
}

// SectionResponse is the outward-facing representation of a section.
type SectionResponse struct {
	SectionID       string          `json:"sectionId"`
	DocumentID      string          `json:"documentId"`
	SectionKey      string          `json:"sectionKey"`
	Title           string          `json:"title"`
	Category        string          `json:"category"`
	State           string          `json:"state"`
	InputsResolved  int             `json:"inputsResolved"`
	InputsRequired  int             `json:"inputsRequired"`
	Inputs          []InputResponse `json:"inputs"`
	RenderedContent string          `json:"renderedContent,omitempty"`
	RenderedHTML    string          `json:"renderedHtml,omitempty"`
	RenderedAt      *time.Time      `json:"renderedAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

func toSectionResponse(d Detail) SectionResponse {
	tpl, _ := templates.Get(d.Section.SectionKey)

	inputs := make([]InputResponse, 0, len(d.Inputs))
	for _, in := range d.Inputs {
		label := in.InputKey
		if spec, ok := tpl.Input(in.InputKey); ok {
			label = spec.Label
		}
		inputs = append(inputs, InputResponse{
			InputKey:   in.InputKey,
			Label:      label,
			Type:       string(in.Type),
			Required:   in.Required,
			IsResolved: in.IsResolved,
			Value:      in.Value,
			FileID:     in.FileID,
			ResolvedAt: in.ResolvedAt,
		})
	}

	return SectionResponse{
		SectionID:       d.Section.ID,
		DocumentID:      d.Section.DocumentID,
		SectionKey:      d.Section.SectionKey,
		Title:           tpl.Title,
		Category:        string(tpl.Category),
		State:           string(d.Section.State),
		InputsResolved:  d.Resolved,
		InputsRequired:  d.Required,
		Inputs:          inputs,
		RenderedContent: d.Section.RenderedContent,
		RenderedHTML:    d.Section.RenderedHTML,
		RenderedAt:      d.Section.RenderedAt,
		CreatedAt:       d.Section.CreatedAt,
	}
}
