package sections

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu       sync.RWMutex
	sections map[string]Section        // sectionID -> section
	byDoc    map[string][]string       // documentID -> sectionIDs in creation order
	inputs   map[string][]InputRequest // sectionID -> input requests in spec order
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		sections: make(map[string]Section),
		byDoc:    make(map[string][]string),
		inputs:   make(map[string][]InputRequest),
	}
}

// CreateSection stores a section with its input requests.
func (r *MemoryRepo) CreateSection(ctx context.Context, section Section, inputs []InputRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sections[section.ID] = section
	r.byDoc[section.DocumentID] = append(r.byDoc[section.DocumentID], section.ID)
	r.inputs[section.ID] = append([]InputRequest(nil), inputs...)
	return nil
}

// GetSection returns a section by ID.
func (r *MemoryRepo) GetSection(ctx context.Context, sectionID string) (Section, error) {
	if err := ctx.Err(); err != nil {
		return Section{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	sec, ok := r.sections[sectionID]
	if !ok {
		return Section{}, ErrNotFound
	}
	return sec, nil
}

// GetSectionByKey returns a document's section with the given template key.
func (r *MemoryRepo) GetSectionByKey(ctx context.Context, documentID, sectionKey string) (Section, error) {
	if err := ctx.Err(); err != nil {
		return Section{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.byDoc[documentID] {
		if sec := r.sections[id]; sec.SectionKey == sectionKey {
			return sec, nil
		}
	}
	return Section{}, ErrNotFound
}

// ListSections returns a document's sections in creation order.
func (r *MemoryRepo) ListSections(ctx context.Context, documentID string) ([]Section, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.byDoc[documentID]
	out := make([]Section, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.sections[id])
	}
	return out, nil
}

// ListInputs returns a section's input requests in spec order.
func (r *MemoryRepo) ListInputs(ctx context.Context, sectionID string) ([]InputRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.sections[sectionID]; !ok {
		return nil, ErrNotFound
	}
	return append([]InputRequest(nil), r.inputs[sectionID]...), nil
}

// UpdateInput overwrites a stored input request.
func (r *MemoryRepo) UpdateInput(ctx context.Context, input InputRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	reqs := r.inputs[input.SectionID]
	for i := range reqs {
		if reqs[i].ID == input.ID {
			reqs[i] = input
			return nil
		}
	}
	return ErrNotFound
}

// UpdateSectionState stores a new derived state for a section.
func (r *MemoryRepo) UpdateSectionState(ctx context.Context, sectionID string, state State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sec, ok := r.sections[sectionID]
	if !ok {
		return ErrNotFound
	}
	sec.State = state
	r.sections[sectionID] = sec
	return nil
}

// UpdateRender persists render output and marks the section rendered.
func (r *MemoryRepo) UpdateRender(ctx context.Context, sectionID, content, html string, renderedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sec, ok := r.sections[sectionID]
	if !ok {
		return ErrNotFound
	}
	sec.RenderedContent = content
	sec.RenderedHTML = html
	sec.RenderedAt = &renderedAt
	sec.State = StateRendered
	r.sections[sectionID] = sec
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
