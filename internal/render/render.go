package render

import (
	"context"
	"errors"
)

// Renderer produces dossier section content from a template and its
// resolved inputs.
type Renderer interface {
	RenderSection(ctx context.Context, req Request) (Result, error)
}

// Input is a resolved input ready for rendering, with its display value.
type Input struct {
	Key   string
	Label string
	Value string
}

// Request captures everything needed to render one section.
type Request struct {
	SectionKey  string
	Title       string
	Description string
	Category    string
	ProjectName string
	Region      string
	Inputs      []Input
}

// Result holds the render output in both stored formats.
type Result struct {
	Content string
	HTML    string
}

// ErrNotImplemented is returned by the placeholder renderer.
var ErrNotImplemented = errors.New("renderer not implemented")

// PlaceholderRenderer is a stub implementation for wiring tests.
type PlaceholderRenderer struct{}

// RenderSection returns ErrNotImplemented.
func (PlaceholderRenderer) RenderSection(ctx context.Context, req Request) (Result, error) {
	_ = ctx
	_ = req
	return Result{}, ErrNotImplemented
}
