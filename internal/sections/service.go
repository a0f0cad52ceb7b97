package sections

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"dossier-backend/internal/documents"
	"dossier-backend/internal/queue"
	"dossier-backend/internal/render"
	"dossier-backend/internal/shared/metrics"
	"dossier-backend/internal/shared/telemetry"
	"dossier-backend/internal/templates"
)

// FileResolver confirms an evidence file exists and is owned by the caller,
// returning its display name.
type FileResolver interface {
	ResolveFile(ctx context.Context, ownerID, fileID string) (string, error)
}

// Service contains business logic for dossier sections and their inputs.
type Service struct {
	Repo     Repo
	DocRepo  documents.DocumentsRepo
	Files    FileResolver
	Renderer render.Renderer
	Queue    queue.Client

	locks *sectionLocks
}

// NewService constructs a Service.
func NewService(repo Repo, docRepo documents.DocumentsRepo, files FileResolver, renderer render.Renderer, q queue.Client) *Service {
	return &Service{
		Repo:     repo,
		DocRepo:  docRepo,
		Files:    files,
		Renderer: renderer,
		Queue:    q,
		locks:    newSectionLocks(),
	}
}

// Detail bundles a section with its input requests and resolution counts.
type Detail struct {
	Section  Section
	Inputs   []InputRequest
	Resolved int
	Required int
}

// CreateResult reports what a bulk creation actually created.
type CreateResult struct {
	SectionsCreated      int
	InputRequestsCreated int
	Sections             []Detail
}

// ResolveResult reports the outcome of resolving one input.
type ResolveResult struct {
	Input       InputRequest
	Section     Section
	Resolved    int
	Required    int
	AllResolved bool
	BecameReady bool
}

// RenderResult reports the outcome of a render request.
type RenderResult struct {
	Section  Section
	Rendered bool
}

// CreateSections instantiates sections for a document from template keys.
// An empty key list means the full catalog. Creation is idempotent: keys
// whose section already exists are skipped.
func (s *Service) CreateSections(ctx context.Context, callerID, documentID string, keys []string) (CreateResult, error) {
	doc, err := s.ownedDocument(ctx, callerID, documentID)
	if err != nil {
		return CreateResult{}, err
	}

	if len(keys) == 0 {
		keys = templates.Keys()
	}
	specs := make([]templates.Template, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		tpl, ok := templates.Get(key)
		if !ok {
			return CreateResult{}, &ValidationError{
				InputKey:   key,
				Constraint: ConstraintType,
				Message:    fmt.Sprintf("unknown section template %q", key),
			}
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		specs = append(specs, tpl)
	}

	var result CreateResult
	now := time.Now().UTC()
	for _, tpl := range specs {
		if existing, err := s.Repo.GetSectionByKey(ctx, doc.ID, tpl.Key); err == nil {
			inputs, err := s.Repo.ListInputs(ctx, existing.ID)
			if err != nil {
				return CreateResult{}, err
			}
			result.Sections = append(result.Sections, detailOf(existing, inputs))
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return CreateResult{}, err
		}

		section := Section{
			ID:         uuid.NewString(),
			DocumentID: doc.ID,
			SectionKey: tpl.Key,
			CreatedAt:  now,
		}
		inputs := make([]InputRequest, 0, len(tpl.Inputs))
		for _, spec := range tpl.Inputs {
			inputs = append(inputs, InputRequest{
				ID:        uuid.NewString(),
				SectionID: section.ID,
				InputKey:  spec.Key,
				Type:      spec.Type,
				Required:  spec.Required,
				CreatedAt: now,
			})
		}
		section.State = InitialState(inputs)

		if err := s.Repo.CreateSection(ctx, section, inputs); err != nil {
			return CreateResult{}, err
		}
		if section.State == StateReadyToRender {
			metrics.IncSectionsReady()
		}
		result.SectionsCreated++
		result.InputRequestsCreated += len(inputs)
		result.Sections = append(result.Sections, detailOf(section, inputs))
	}
	return result, nil
}

// ListSections returns a document's sections with inputs, in catalog
// assembly order.
func (s *Service) ListSections(ctx context.Context, callerID, documentID string) ([]Detail, error) {
	doc, err := s.ownedDocument(ctx, callerID, documentID)
	if err != nil {
		return nil, err
	}

	secs, err := s.Repo.ListSections(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	out := make([]Detail, 0, len(secs))
	for _, sec := range secs {
		inputs, err := s.Repo.ListInputs(ctx, sec.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, detailOf(sec, inputs))
	}
	sortDetails(out)
	return out, nil
}

// GetSection returns one section with its inputs.
func (s *Service) GetSection(ctx context.Context, callerID, sectionID string) (Detail, error) {
	sec, _, err := s.ownedSection(ctx, callerID, sectionID)
	if err != nil {
		return Detail{}, err
	}
	inputs, err := s.Repo.ListInputs(ctx, sec.ID)
	if err != nil {
		return Detail{}, err
	}
	return detailOf(sec, inputs), nil
}

// ResolveInput validates and stores a value for one input, then recomputes
// the section state. Re-resolving overwrites the previous value; an input
// never transitions back to unresolved. Validation failures leave all state
// untouched.
func (s *Service) ResolveInput(ctx context.Context, callerID, sectionID, inputKey string, rawValue any, fileID string) (ResolveResult, error) {
	unlock := s.locks.Lock(sectionID)
	defer unlock()

	sec, _, err := s.ownedSection(ctx, callerID, sectionID)
	if err != nil {
		return ResolveResult{}, err
	}
	tpl, ok := templates.Get(sec.SectionKey)
	if !ok {
		return ResolveResult{}, fmt.Errorf("section %s references unknown template %q", sec.ID, sec.SectionKey)
	}
	spec, ok := tpl.Input(inputKey)
	if !ok {
		return ResolveResult{}, ErrNotFound
	}

	inputs, err := s.Repo.ListInputs(ctx, sec.ID)
	if err != nil {
		return ResolveResult{}, err
	}
	idx := -1
	for i := range inputs {
		if inputs[i].InputKey == inputKey {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ResolveResult{}, ErrNotFound
	}

	var value InputValue
	if spec.Type == templates.InputFile {
		if fileID == "" {
			metrics.IncInputsRejected()
			return ResolveResult{}, &ValidationError{InputKey: spec.Key, Constraint: ConstraintRequired, Message: "fileId is required"}
		}
		fileName, err := s.Files.ResolveFile(ctx, callerID, fileID)
		if err != nil {
			metrics.IncInputsRejected()
			return ResolveResult{}, &ValidationError{InputKey: spec.Key, Constraint: ConstraintType, Message: "referenced file not found"}
		}
		if err := checkFileType(spec, fileName); err != nil {
			metrics.IncInputsRejected()
			return ResolveResult{}, err
		}
		value = fileValue(fileName)
	} else {
		coerced, err := coerceValue(spec, rawValue)
		if err != nil {
			metrics.IncInputsRejected()
			return ResolveResult{}, err
		}
		value = coerced
	}

	now := time.Now().UTC()
	updated := inputs[idx]
	updated.IsResolved = true
	updated.Value = &value
	updated.FileID = fileID
	updated.ResolvedAt = &now
	if err := s.Repo.UpdateInput(ctx, updated); err != nil {
		return ResolveResult{}, err
	}
	inputs[idx] = updated
	metrics.IncInputsResolved()

	newState := ComputeState(sec.State, inputs)
	becameReady := newState == StateReadyToRender && sec.State == StatePendingInputs
	if newState != sec.State {
		if err := s.Repo.UpdateSectionState(ctx, sec.ID, newState); err != nil {
			return ResolveResult{}, err
		}
		s.logTransition(ctx, sec, newState)
		if becameReady {
			metrics.IncSectionsReady()
		}
		sec.State = newState
	}

	resolved, required := ResolvedCounts(inputs)
	return ResolveResult{
		Input:       updated,
		Section:     sec,
		Resolved:    resolved,
		Required:    required,
		AllResolved: resolved == required,
		BecameReady: becameReady,
	}, nil
}

// RenderSection produces dossier content for a ready section. A section
// that already rendered returns its cached content unless force is set;
// force also renders a still-pending section from its resolved subset.
func (s *Service) RenderSection(ctx context.Context, callerID, sectionID string, force bool) (RenderResult, error) {
	unlock := s.locks.Lock(sectionID)
	defer unlock()

	sec, doc, err := s.ownedSection(ctx, callerID, sectionID)
	if err != nil {
		return RenderResult{}, err
	}
	return s.renderLocked(ctx, doc, sec, force)
}

// renderLocked renders a section. Callers must hold the section lock.
func (s *Service) renderLocked(ctx context.Context, doc documents.Document, sec Section, force bool) (RenderResult, error) {
	if sec.State == StatePendingInputs && !force {
		return RenderResult{}, ErrNotReady
	}
	if sec.State == StateRendered && !force {
		return RenderResult{Section: sec, Rendered: false}, nil
	}

	tpl, ok := templates.Get(sec.SectionKey)
	if !ok {
		return RenderResult{}, fmt.Errorf("section %s references unknown template %q", sec.ID, sec.SectionKey)
	}
	inputs, err := s.Repo.ListInputs(ctx, sec.ID)
	if err != nil {
		return RenderResult{}, err
	}

	req := render.Request{
		SectionKey:  tpl.Key,
		Title:       tpl.Title,
		Description: tpl.Description,
		Category:    string(tpl.Category),
		ProjectName: doc.ProjectName,
		Region:      doc.Region,
	}
	for _, in := range inputs {
		if !in.IsResolved || in.Value == nil {
			continue
		}
		label := in.InputKey
		if spec, ok := tpl.Input(in.InputKey); ok {
			label = spec.Label
		}
		req.Inputs = append(req.Inputs, render.Input{
			Key:   in.InputKey,
			Label: label,
			Value: in.Value.Display(),
		})
	}

	startedAt := time.Now().UTC()
	out, err := s.Renderer.RenderSection(ctx, req)
	if err != nil {
		metrics.IncRenderFailed()
		return RenderResult{}, fmt.Errorf("%w: render %s: %v", ErrDependencyUnavailable, sec.SectionKey, err)
	}

	renderedAt := time.Now().UTC()
	if err := s.Repo.UpdateRender(ctx, sec.ID, out.Content, out.HTML, renderedAt); err != nil {
		return RenderResult{}, err
	}
	metrics.IncSectionsRendered()
	metrics.ObserveRenderDurationMs(float64(renderedAt.Sub(startedAt).Microseconds()) / 1000.0)
	s.logTransition(ctx, sec, StateRendered)

	sec.State = StateRendered
	sec.RenderedContent = out.Content
	sec.RenderedHTML = out.HTML
	sec.RenderedAt = &renderedAt
	return RenderResult{Section: sec, Rendered: true}, nil
}

// RefreshStates recomputes every section state for a document and persists
// any corrections. It returns how many sections changed; a consistent
// document reports zero.
func (s *Service) RefreshStates(ctx context.Context, callerID, documentID string) (int, error) {
	doc, err := s.ownedDocument(ctx, callerID, documentID)
	if err != nil {
		return 0, err
	}
	secs, err := s.Repo.ListSections(ctx, doc.ID)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, sec := range secs {
		unlock := s.locks.Lock(sec.ID)
		current, err := s.Repo.GetSection(ctx, sec.ID)
		if err != nil {
			unlock()
			return changed, err
		}
		inputs, err := s.Repo.ListInputs(ctx, current.ID)
		if err != nil {
			unlock()
			return changed, err
		}
		newState := ComputeState(current.State, inputs)
		if newState != current.State {
			if err := s.Repo.UpdateSectionState(ctx, current.ID, newState); err != nil {
				unlock()
				return changed, err
			}
			s.logTransition(ctx, current, newState)
			changed++
		}
		unlock()
	}
	return changed, nil
}

// EnqueueRenderAll queues a render job for every ready section. Without a
// queue client the sections render inline instead.
func (s *Service) EnqueueRenderAll(ctx context.Context, callerID, documentID string, force bool) (int, error) {
	doc, err := s.ownedDocument(ctx, callerID, documentID)
	if err != nil {
		return 0, err
	}
	secs, err := s.Repo.ListSections(ctx, doc.ID)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, sec := range secs {
		if sec.State == StatePendingInputs {
			continue
		}
		if sec.State == StateRendered && !force {
			continue
		}
		if s.Queue != nil {
			job := queue.Job{
				SectionID:  sec.ID,
				DocumentID: doc.ID,
				RequestID:  requestIDFromContext(ctx),
				Force:      force,
				EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
				Version:    1,
			}
			if err := s.Queue.Send(ctx, job); err != nil {
				return count, fmt.Errorf("%w: enqueue render: %v", ErrDependencyUnavailable, err)
			}
			count++
			continue
		}

		unlock := s.locks.Lock(sec.ID)
		res, err := s.renderLocked(ctx, doc, sec, force)
		unlock()
		if err != nil {
			return count, err
		}
		if res.Rendered {
			count++
		}
	}
	return count, nil
}

// ProcessRenderJob renders one section from a queued job. It is called by
// the worker, which trusts the job rather than a caller identity.
func (s *Service) ProcessRenderJob(ctx context.Context, job queue.Job) error {
	unlock := s.locks.Lock(job.SectionID)
	defer unlock()

	sec, err := s.Repo.GetSection(ctx, job.SectionID)
	if err != nil {
		return err
	}
	doc, err := s.DocRepo.GetByID(ctx, sec.DocumentID)
	if err != nil {
		return err
	}
	_, err = s.renderLocked(ctx, doc, sec, job.Force)
	return err
}

func (s *Service) ownedDocument(ctx context.Context, callerID, documentID string) (documents.Document, error) {
	if callerID == "" || documentID == "" {
		return documents.Document{}, ErrNotFound
	}
	doc, err := s.DocRepo.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			return documents.Document{}, ErrNotFound
		}
		return documents.Document{}, err
	}
	if doc.OwnerID != callerID {
		return documents.Document{}, ErrNotFound
	}
	return doc, nil
}

func (s *Service) ownedSection(ctx context.Context, callerID, sectionID string) (Section, documents.Document, error) {
	if callerID == "" || sectionID == "" {
		return Section{}, documents.Document{}, ErrNotFound
	}
	sec, err := s.Repo.GetSection(ctx, sectionID)
	if err != nil {
		return Section{}, documents.Document{}, err
	}
	doc, err := s.ownedDocument(ctx, callerID, sec.DocumentID)
	if err != nil {
		return Section{}, documents.Document{}, err
	}
	return sec, doc, nil
}

func (s *Service) logTransition(ctx context.Context, sec Section, to State) {
	telemetry.Info("section.state", map[string]any{
		"request_id":       requestIDFromContext(ctx),
		"document_id":      sec.DocumentID,
		"section_id":       sec.ID,
		"section_key":      sec.SectionKey,
		"state_transition": string(sec.State) + "->" + string(to),
	})
}

func detailOf(sec Section, inputs []InputRequest) Detail {
	resolved, required := ResolvedCounts(inputs)
	return Detail{Section: sec, Inputs: inputs, Resolved: resolved, Required: required}
}

func sortDetails(details []Detail) {
	sort.SliceStable(details, func(i, j int) bool {
		return templates.Position(details[i].Section.SectionKey) < templates.Position(details[j].Section.SectionKey)
	})
}
