package sections

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"dossier-backend/internal/documents"
	"dossier-backend/internal/queue"
	"dossier-backend/internal/render"
	"dossier-backend/internal/templates"
)

type fakeResolver struct {
	files map[string]string // fileID -> fileName
}

func (f *fakeResolver) ResolveFile(ctx context.Context, ownerID, fileID string) (string, error) {
	name, ok := f.files[fileID]
	if !ok {
		return "", errors.New("file not found")
	}
	return name, nil
}

type fakeRenderer struct {
	calls int
	fail  bool
}

func (r *fakeRenderer) RenderSection(ctx context.Context, req render.Request) (render.Result, error) {
	r.calls++
	if r.fail {
		return render.Result{}, errors.New("backend down")
	}
	return render.Result{
		Content: "# " + req.Title + fmt.Sprintf("\ninputs=%d", len(req.Inputs)),
		HTML:    "<h1>" + req.Title + "</h1>",
	}, nil
}

type fakeQueue struct {
	jobs []queue.Job
}

func (q *fakeQueue) Send(ctx context.Context, job queue.Job) error {
	q.jobs = append(q.jobs, job)
	return nil
}

const testCaller = "caller-1"

func newTestService(t *testing.T) (*Service, *fakeRenderer, *fakeResolver, string) {
	t.Helper()
	docRepo := documents.NewMemoryRepo()
	docSvc := &documents.Service{Repo: docRepo}
	doc, err := docSvc.Create(context.Background(), testCaller, "BESS Atacama Norte", "Antofagasta")
	if err != nil {
		t.Fatalf("create document: %v", err)
	}

	renderer := &fakeRenderer{}
	resolver := &fakeResolver{files: map[string]string{
		"file-1": "certificado.pdf",
		"file-2": "plano.pdf",
	}}
	svc := NewService(NewMemoryRepo(), docRepo, resolver, renderer, nil)
	return svc, renderer, resolver, doc.ID
}

func createSection(t *testing.T, svc *Service, documentID, key string) Detail {
	t.Helper()
	result, err := svc.CreateSections(context.Background(), testCaller, documentID, []string{key})
	if err != nil {
		t.Fatalf("create section %s: %v", key, err)
	}
	if len(result.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(result.Sections))
	}
	return result.Sections[0]
}

func mustResolve(t *testing.T, svc *Service, sectionID, key string, value any) ResolveResult {
	t.Helper()
	res, err := svc.ResolveInput(context.Background(), testCaller, sectionID, key, value, "")
	if err != nil {
		t.Fatalf("resolve %s: %v", key, err)
	}
	return res
}

func TestCreateSectionsFullCatalogIdempotent(t *testing.T) {
	svc, _, _, docID := newTestService(t)
	ctx := context.Background()

	result, err := svc.CreateSections(ctx, testCaller, docID, nil)
	if err != nil {
		t.Fatalf("create sections: %v", err)
	}
	wantSections := len(templates.Keys())
	if result.SectionsCreated != wantSections {
		t.Fatalf("expected %d sections created, got %d", wantSections, result.SectionsCreated)
	}
	if result.InputRequestsCreated == 0 {
		t.Fatal("expected input requests created")
	}

	// Repeating the call creates nothing and fails nothing.
	again, err := svc.CreateSections(ctx, testCaller, docID, nil)
	if err != nil {
		t.Fatalf("repeat create: %v", err)
	}
	if again.SectionsCreated != 0 || again.InputRequestsCreated != 0 {
		t.Fatalf("repeat create must be a no-op, got %d/%d", again.SectionsCreated, again.InputRequestsCreated)
	}
	if len(again.Sections) != wantSections {
		t.Fatalf("repeat create must still report all sections, got %d", len(again.Sections))
	}
}

func TestCreateSectionsNoRequiredInputsStartsReady(t *testing.T) {
	svc, _, _, docID := newTestService(t)

	detail := createSection(t, svc, docID, "annexes")
	if detail.Section.State != StateReadyToRender {
		t.Fatalf("section without required inputs must start ready, got %s", detail.Section.State)
	}
	if detail.Required != 0 {
		t.Fatalf("expected 0 required inputs, got %d", detail.Required)
	}
}

func TestCreateSectionsUnknownKey(t *testing.T) {
	svc, _, _, docID := newTestService(t)

	_, err := svc.CreateSections(context.Background(), testCaller, docID, []string{"tidal-generator"})
	if _, ok := AsValidationError(err); !ok {
		t.Fatalf("expected validation error for unknown key, got %v", err)
	}
}

func TestResolveInputsUntilReady(t *testing.T) {
	svc, _, _, docID := newTestService(t)
	detail := createSection(t, svc, docID, "technical-specifications")
	id := detail.Section.ID

	res := mustResolve(t, svc, id, "capacityMW", float64(120))
	if res.BecameReady || res.AllResolved {
		t.Fatalf("section must stay pending after first input: %+v", res)
	}
	if res.Section.State != StatePendingInputs {
		t.Fatalf("expected pending_inputs, got %s", res.Section.State)
	}

	mustResolve(t, svc, id, "storageMWh", float64(480))
	mustResolve(t, svc, id, "batteryChemistry", "LFP")
	last := mustResolve(t, svc, id, "commissioningDate", "2027-06-01")

	if !last.BecameReady || !last.AllResolved {
		t.Fatalf("final input must complete the section: %+v", last)
	}
	if last.Section.State != StateReadyToRender {
		t.Fatalf("expected ready_to_render, got %s", last.Section.State)
	}
	if last.Resolved != 4 || last.Required != 4 {
		t.Fatalf("expected 4/4, got %d/%d", last.Resolved, last.Required)
	}
}

func TestResolveInputValidationFailureLeavesStateUntouched(t *testing.T) {
	svc, _, _, docID := newTestService(t)
	detail := createSection(t, svc, docID, "technical-specifications")
	id := detail.Section.ID

	_, err := svc.ResolveInput(context.Background(), testCaller, id, "capacityMW", float64(99999), "")
	ve, ok := AsValidationError(err)
	if !ok || ve.Constraint != ConstraintMax {
		t.Fatalf("expected max violation, got %v", err)
	}

	after, err := svc.GetSection(context.Background(), testCaller, id)
	if err != nil {
		t.Fatalf("get section: %v", err)
	}
	if after.Section.State != StatePendingInputs {
		t.Fatalf("failed resolve must not change state, got %s", after.Section.State)
	}
	if after.Resolved != 0 {
		t.Fatalf("failed resolve must not mark anything resolved, got %d", after.Resolved)
	}
}

func TestResolveInputOverwriteKeepsResolved(t *testing.T) {
	svc, _, _, docID := newTestService(t)
	detail := createSection(t, svc, docID, "technical-specifications")
	id := detail.Section.ID

	mustResolve(t, svc, id, "capacityMW", float64(120))
	res := mustResolve(t, svc, id, "capacityMW", float64(150))

	if !res.Input.IsResolved {
		t.Fatal("overwritten input must stay resolved")
	}
	if res.Input.Value.Number != 150 {
		t.Fatalf("expected overwritten value 150, got %v", res.Input.Value.Number)
	}
	if res.Resolved != 1 {
		t.Fatalf("overwrite must not double-count, got %d", res.Resolved)
	}
}

func TestResolveInputUnknownKey(t *testing.T) {
	svc, _, _, docID := newTestService(t)
	detail := createSection(t, svc, docID, "annexes")

	_, err := svc.ResolveInput(context.Background(), testCaller, detail.Section.ID, "nonexistent", "x", "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveFileInput(t *testing.T) {
	svc, _, _, docID := newTestService(t)
	detail := createSection(t, svc, docID, "land-use-permit")
	id := detail.Section.ID

	mustResolve(t, svc, id, "zoningClassification", "Zona industrial exclusiva")

	res, err := svc.ResolveInput(context.Background(), testCaller, id, "municipalCertificate", nil, "file-1")
	if err != nil {
		t.Fatalf("resolve file input: %v", err)
	}
	if res.Input.Value.FileName != "certificado.pdf" {
		t.Fatalf("expected resolved file name, got %q", res.Input.Value.FileName)
	}
	if !res.BecameReady {
		t.Fatal("section must become ready after its last required input")
	}
}

func TestResolveFileInputRejectsWrongExtension(t *testing.T) {
	svc, _, resolver, docID := newTestService(t)
	resolver.files["file-3"] = "certificado.docx"
	detail := createSection(t, svc, docID, "land-use-permit")

	_, err := svc.ResolveInput(context.Background(), testCaller, detail.Section.ID, "municipalCertificate", nil, "file-3")
	ve, ok := AsValidationError(err)
	if !ok || ve.Constraint != ConstraintFileTypes {
		t.Fatalf("expected fileTypes violation, got %v", err)
	}
}

func TestResolveFileInputMissingFile(t *testing.T) {
	svc, _, _, docID := newTestService(t)
	detail := createSection(t, svc, docID, "land-use-permit")

	_, err := svc.ResolveInput(context.Background(), testCaller, detail.Section.ID, "municipalCertificate", nil, "missing")
	if _, ok := AsValidationError(err); !ok {
		t.Fatalf("expected validation error for missing file, got %v", err)
	}
}

func TestRenderLifecycle(t *testing.T) {
	svc, renderer, _, docID := newTestService(t)
	detail := createSection(t, svc, docID, "technical-specifications")
	id := detail.Section.ID
	ctx := context.Background()

	// Pending sections refuse to render.
	if _, err := svc.RenderSection(ctx, testCaller, id, false); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}

	mustResolve(t, svc, id, "capacityMW", float64(120))
	mustResolve(t, svc, id, "storageMWh", float64(480))
	mustResolve(t, svc, id, "batteryChemistry", "LFP")
	mustResolve(t, svc, id, "commissioningDate", "2027-06-01")

	res, err := svc.RenderSection(ctx, testCaller, id, false)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !res.Rendered {
		t.Fatal("expected a fresh render")
	}
	if res.Section.State != StateRendered {
		t.Fatalf("expected rendered, got %s", res.Section.State)
	}
	if !strings.Contains(res.Section.RenderedContent, "Especificaciones Técnicas") {
		t.Fatalf("rendered content missing title: %s", res.Section.RenderedContent)
	}
	if res.Section.RenderedAt == nil {
		t.Fatal("expected renderedAt timestamp")
	}

	// Second render without force serves the cached content.
	cached, err := svc.RenderSection(ctx, testCaller, id, false)
	if err != nil {
		t.Fatalf("cached render: %v", err)
	}
	if cached.Rendered {
		t.Fatal("expected cached result, not a re-render")
	}
	if renderer.calls != 1 {
		t.Fatalf("renderer called %d times, want 1", renderer.calls)
	}

	// Force always re-renders.
	forced, err := svc.RenderSection(ctx, testCaller, id, true)
	if err != nil {
		t.Fatalf("forced render: %v", err)
	}
	if !forced.Rendered || renderer.calls != 2 {
		t.Fatalf("force must re-render (rendered=%v calls=%d)", forced.Rendered, renderer.calls)
	}
}

func TestForceRenderBypassesPendingState(t *testing.T) {
	svc, renderer, _, docID := newTestService(t)
	detail := createSection(t, svc, docID, "technical-specifications")
	id := detail.Section.ID
	ctx := context.Background()

	mustResolve(t, svc, id, "capacityMW", float64(120))

	// Still pending, but force renders with whatever has resolved so far.
	res, err := svc.RenderSection(ctx, testCaller, id, true)
	if err != nil {
		t.Fatalf("forced render on pending section: %v", err)
	}
	if !res.Rendered || renderer.calls != 1 {
		t.Fatalf("expected a forced render (rendered=%v calls=%d)", res.Rendered, renderer.calls)
	}
	if res.Section.State != StateRendered {
		t.Fatalf("expected rendered, got %s", res.Section.State)
	}
	if !strings.Contains(res.Section.RenderedContent, "inputs=1") {
		t.Fatalf("forced render must use the resolved subset: %s", res.Section.RenderedContent)
	}
}

func TestRenderFailureKeepsSectionReady(t *testing.T) {
	svc, renderer, _, docID := newTestService(t)
	detail := createSection(t, svc, docID, "annexes")
	id := detail.Section.ID
	renderer.fail = true

	_, err := svc.RenderSection(context.Background(), testCaller, id, false)
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}

	after, err := svc.GetSection(context.Background(), testCaller, id)
	if err != nil {
		t.Fatalf("get section: %v", err)
	}
	if after.Section.State != StateReadyToRender {
		t.Fatalf("failed render must keep section ready, got %s", after.Section.State)
	}
	if after.Section.RenderedContent != "" {
		t.Fatal("failed render must not store content")
	}
}

func TestRenderedSectionSurvivesReResolve(t *testing.T) {
	svc, _, _, docID := newTestService(t)
	detail := createSection(t, svc, docID, "annexes")
	id := detail.Section.ID
	ctx := context.Background()

	if _, err := svc.RenderSection(ctx, testCaller, id, false); err != nil {
		t.Fatalf("render: %v", err)
	}

	// Resolving an optional input afterwards leaves the section rendered;
	// the stored content is simply stale until the next forced render.
	res := mustResolve(t, svc, id, "notes", "Anexo fotográfico actualizado")
	if res.Section.State != StateRendered {
		t.Fatalf("rendered section must stay rendered, got %s", res.Section.State)
	}
}

func TestRefreshStatesConsistentDocumentReportsZero(t *testing.T) {
	svc, _, _, docID := newTestService(t)
	ctx := context.Background()
	if _, err := svc.CreateSections(ctx, testCaller, docID, nil); err != nil {
		t.Fatalf("create sections: %v", err)
	}

	changed, err := svc.RefreshStates(ctx, testCaller, docID)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if changed != 0 {
		t.Fatalf("consistent document must report 0 changes, got %d", changed)
	}
}

func TestRefreshStatesRepairsDrift(t *testing.T) {
	svc, _, _, docID := newTestService(t)
	ctx := context.Background()
	detail := createSection(t, svc, docID, "annexes")

	// Inject a stale state directly through the repo.
	if err := svc.Repo.UpdateSectionState(ctx, detail.Section.ID, StatePendingInputs); err != nil {
		t.Fatalf("inject stale state: %v", err)
	}

	changed, err := svc.RefreshStates(ctx, testCaller, docID)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if changed != 1 {
		t.Fatalf("expected 1 repaired section, got %d", changed)
	}

	again, err := svc.RefreshStates(ctx, testCaller, docID)
	if err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	if again != 0 {
		t.Fatalf("refresh must be idempotent, got %d", again)
	}
}

func TestListSectionsAssemblyOrder(t *testing.T) {
	svc, _, _, docID := newTestService(t)
	ctx := context.Background()

	// Create out of catalog order.
	for _, key := range []string{"annexes", "project-overview", "grid-connection"} {
		createSection(t, svc, docID, key)
	}

	details, err := svc.ListSections(ctx, testCaller, docID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := make([]string, 0, len(details))
	for _, d := range details {
		got = append(got, d.Section.SectionKey)
	}
	want := []string{"project-overview", "grid-connection", "annexes"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestOwnershipEnforced(t *testing.T) {
	svc, _, _, docID := newTestService(t)
	detail := createSection(t, svc, docID, "annexes")
	ctx := context.Background()

	if _, err := svc.GetSection(ctx, "intruder", detail.Section.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign caller, got %v", err)
	}
	if _, err := svc.ListSections(ctx, "intruder", docID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign caller, got %v", err)
	}
	if _, err := svc.RenderSection(ctx, "intruder", detail.Section.ID, false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign caller, got %v", err)
	}
}

func TestEnqueueRenderAllInline(t *testing.T) {
	svc, renderer, _, docID := newTestService(t)
	ctx := context.Background()
	if _, err := svc.CreateSections(ctx, testCaller, docID, nil); err != nil {
		t.Fatalf("create sections: %v", err)
	}

	// Only the annexes section is ready out of the box.
	count, err := svc.EnqueueRenderAll(ctx, testCaller, docID, false)
	if err != nil {
		t.Fatalf("render all: %v", err)
	}
	if count != 1 || renderer.calls != 1 {
		t.Fatalf("expected 1 inline render, got count=%d calls=%d", count, renderer.calls)
	}

	// Already rendered; nothing to do without force.
	count, err = svc.EnqueueRenderAll(ctx, testCaller, docID, false)
	if err != nil {
		t.Fatalf("second render all: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 renders, got %d", count)
	}
}

func TestEnqueueRenderAllQueuesJobs(t *testing.T) {
	svc, renderer, _, docID := newTestService(t)
	q := &fakeQueue{}
	svc.Queue = q
	ctx := context.Background()
	if _, err := svc.CreateSections(ctx, testCaller, docID, nil); err != nil {
		t.Fatalf("create sections: %v", err)
	}

	count, err := svc.EnqueueRenderAll(ctx, testCaller, docID, false)
	if err != nil {
		t.Fatalf("render all: %v", err)
	}
	if count != 1 || len(q.jobs) != 1 {
		t.Fatalf("expected 1 queued job, got count=%d jobs=%d", count, len(q.jobs))
	}
	if renderer.calls != 0 {
		t.Fatal("queued render-all must not render inline")
	}
	if q.jobs[0].DocumentID != docID {
		t.Fatalf("job document mismatch: %s", q.jobs[0].DocumentID)
	}

	// Worker path renders the queued job.
	if err := svc.ProcessRenderJob(ctx, q.jobs[0]); err != nil {
		t.Fatalf("process job: %v", err)
	}
	if renderer.calls != 1 {
		t.Fatalf("expected worker render, calls=%d", renderer.calls)
	}
}
