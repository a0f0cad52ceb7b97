package sections_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"dossier-backend/internal/bootstrap"
	"dossier-backend/internal/shared/config"
)

func newTestApp(t *testing.T) *bootstrap.App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:            "0",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		LocalStoreDir:   t.TempDir(),
		Env:             "dev",
		ObjectStoreType: "local",
	}
	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	return app
}

func addCallerHeader(req *http.Request) {
	req.Header.Set("X-Caller-Id", "test-caller")
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("encode payload: %v", err)
		}
		body = bytes.NewBuffer(encoded)
	} else {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	addCallerHeader(req)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decode(t *testing.T, resp *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func createDocument(t *testing.T, router *gin.Engine) string {
	t.Helper()
	resp := doJSON(t, router, http.MethodPost, "/api/v1/documents", map[string]string{
		"projectName": "BESS Atacama Norte",
		"region":      "Antofagasta",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create document: status %d: %s", resp.Code, resp.Body.String())
	}
	var created struct {
		DocumentID string `json:"documentId"`
	}
	decode(t, resp, &created)
	if created.DocumentID == "" {
		t.Fatal("expected documentId")
	}
	return created.DocumentID
}

func TestSectionLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)
	router := app.Router
	docID := createDocument(t, router)

	// Create one section with required inputs.
	resp := doJSON(t, router, http.MethodPost, "/api/v1/documents/"+docID+"/sections", map[string]any{
		"sectionKeys": []string{"technical-specifications"},
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create sections: status %d: %s", resp.Code, resp.Body.String())
	}
	var created struct {
		SectionsCreated int `json:"sectionsCreated"`
		Sections        []struct {
			SectionID string `json:"sectionId"`
			State     string `json:"state"`
		} `json:"sections"`
	}
	decode(t, resp, &created)
	if created.SectionsCreated != 1 || len(created.Sections) != 1 {
		t.Fatalf("unexpected create result: %+v", created)
	}
	sectionID := created.Sections[0].SectionID
	if created.Sections[0].State != "pending_inputs" {
		t.Fatalf("expected pending_inputs, got %s", created.Sections[0].State)
	}

	// Rendering before the inputs resolve is refused.
	resp = doJSON(t, router, http.MethodPost, "/api/v1/sections/"+sectionID+"/render", nil)
	if resp.Code != http.StatusConflict {
		t.Fatalf("premature render: status %d: %s", resp.Code, resp.Body.String())
	}

	// Resolve all four required inputs.
	inputs := []struct {
		key   string
		value any
	}{
		{"capacityMW", 120},
		{"storageMWh", 480},
		{"batteryChemistry", "LFP"},
		{"commissioningDate", "2027-06-01"},
	}
	var last struct {
		SectionState string `json:"sectionState"`
		BecameReady  bool   `json:"becameReady"`
		AllResolved  bool   `json:"allResolved"`
	}
	for _, in := range inputs {
		resp = doJSON(t, router, http.MethodPost,
			"/api/v1/sections/"+sectionID+"/inputs/"+in.key,
			map[string]any{"value": in.value})
		if resp.Code != http.StatusOK {
			t.Fatalf("resolve %s: status %d: %s", in.key, resp.Code, resp.Body.String())
		}
		decode(t, resp, &last)
	}
	if !last.BecameReady || !last.AllResolved || last.SectionState != "ready_to_render" {
		t.Fatalf("expected ready section after last input: %+v", last)
	}

	// Render.
	resp = doJSON(t, router, http.MethodPost, "/api/v1/sections/"+sectionID+"/render", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("render: status %d: %s", resp.Code, resp.Body.String())
	}
	var rendered struct {
		State           string `json:"state"`
		Rendered        bool   `json:"rendered"`
		RenderedContent string `json:"renderedContent"`
	}
	decode(t, resp, &rendered)
	if !rendered.Rendered || rendered.State != "rendered" {
		t.Fatalf("unexpected render result: %+v", rendered)
	}
	if rendered.RenderedContent == "" {
		t.Fatal("expected rendered content")
	}

	// Progress reflects the rendered section.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+docID+"/progress", nil)
	addCallerHeader(req)
	progressResp := httptest.NewRecorder()
	router.ServeHTTP(progressResp, req)
	if progressResp.Code != http.StatusOK {
		t.Fatalf("progress: status %d", progressResp.Code)
	}
	var report struct {
		Sections         int     `json:"sections"`
		SectionsRendered int     `json:"sectionsRendered"`
		Percent          float64 `json:"percent"`
	}
	if err := json.NewDecoder(progressResp.Body).Decode(&report); err != nil {
		t.Fatalf("decode progress: %v", err)
	}
	if report.Sections != 1 || report.SectionsRendered != 1 || report.Percent != 100 {
		t.Fatalf("unexpected progress: %+v", report)
	}
}

func TestResolveInputValidationErrorShape(t *testing.T) {
	app := newTestApp(t)
	router := app.Router
	docID := createDocument(t, router)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/documents/"+docID+"/sections", map[string]any{
		"sectionKeys": []string{"project-overview"},
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create sections: status %d", resp.Code)
	}
	var created struct {
		Sections []struct {
			SectionID string `json:"sectionId"`
		} `json:"sections"`
	}
	decode(t, resp, &created)
	sectionID := created.Sections[0].SectionID

	// projectDescription requires at least 50 characters.
	resp = doJSON(t, router, http.MethodPost,
		"/api/v1/sections/"+sectionID+"/inputs/projectDescription",
		map[string]any{"value": "muy corto"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
	}
	var failure struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				InputKey   string `json:"inputKey"`
				Constraint string `json:"constraint"`
			} `json:"details"`
		} `json:"error"`
	}
	decode(t, resp, &failure)
	if failure.Error.Code != "validation_error" {
		t.Fatalf("code = %q", failure.Error.Code)
	}
	if failure.Error.Details.InputKey != "projectDescription" || failure.Error.Details.Constraint != "minLength" {
		t.Fatalf("details = %+v", failure.Error.Details)
	}
}

func TestSectionRoutesRequireIdentity(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/any/sections", nil)
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without X-Caller-Id, got %d", resp.Code)
	}
}

func TestForeignDocumentHiddenAsNotFound(t *testing.T) {
	app := newTestApp(t)
	router := app.Router
	docID := createDocument(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+docID+"/sections", nil)
	req.Header.Set("X-Caller-Id", "someone-else")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign caller, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestListSectionsReportsTotals(t *testing.T) {
	app := newTestApp(t)
	router := app.Router
	docID := createDocument(t, router)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/documents/"+docID+"/sections", map[string]any{
		"sectionKeys": []string{"annexes", "technical-specifications"},
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create sections: status %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+docID+"/sections", nil)
	addCallerHeader(req)
	listResp := httptest.NewRecorder()
	router.ServeHTTP(listResp, req)
	if listResp.Code != http.StatusOK {
		t.Fatalf("list: status %d", listResp.Code)
	}

	var listed struct {
		TotalSections     int `json:"totalSections"`
		CompletedSections int `json:"completedSections"`
		PendingSections   int `json:"pendingSections"`
	}
	if err := json.NewDecoder(listResp.Body).Decode(&listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	// annexes is ready_to_render: neither completed nor pending.
	if listed.TotalSections != 2 || listed.CompletedSections != 0 || listed.PendingSections != 1 {
		t.Fatalf("totals = %+v", listed)
	}
}

func TestUnresolvedInputsRequiredOnly(t *testing.T) {
	app := newTestApp(t)
	router := app.Router
	docID := createDocument(t, router)

	// construction-permit carries an optional contractorName input.
	resp := doJSON(t, router, http.MethodPost, "/api/v1/documents/"+docID+"/sections", map[string]any{
		"sectionKeys": []string{"construction-permit"},
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create sections: status %d", resp.Code)
	}
	var created struct {
		Sections []struct {
			SectionID string `json:"sectionId"`
		} `json:"sections"`
	}
	decode(t, resp, &created)
	sectionID := created.Sections[0].SectionID

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sections/"+sectionID+"/inputs/unresolved", nil)
	addCallerHeader(req)
	unresolvedResp := httptest.NewRecorder()
	router.ServeHTTP(unresolvedResp, req)
	if unresolvedResp.Code != http.StatusOK {
		t.Fatalf("unresolved: status %d", unresolvedResp.Code)
	}

	var unresolved struct {
		Inputs []struct {
			InputKey string `json:"inputKey"`
			Required bool   `json:"required"`
		} `json:"inputs"`
	}
	if err := json.NewDecoder(unresolvedResp.Body).Decode(&unresolved); err != nil {
		t.Fatalf("decode unresolved: %v", err)
	}
	if len(unresolved.Inputs) != 2 {
		t.Fatalf("expected the 2 required inputs, got %d", len(unresolved.Inputs))
	}
	for _, in := range unresolved.Inputs {
		if !in.Required {
			t.Fatalf("optional input %q leaked into unresolved list", in.InputKey)
		}
		if in.InputKey == "contractorName" {
			t.Fatal("contractorName is optional and must not appear")
		}
	}
}

func TestRenderAllQueuesReadySections(t *testing.T) {
	app := newTestApp(t)
	router := app.Router
	docID := createDocument(t, router)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/documents/"+docID+"/sections", map[string]any{
		"sectionKeys": []string{"annexes", "technical-specifications"},
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create sections: status %d", resp.Code)
	}

	resp = doJSON(t, router, http.MethodPost, "/api/v1/documents/"+docID+"/render-all", nil)
	if resp.Code != http.StatusAccepted {
		t.Fatalf("render-all: status %d: %s", resp.Code, resp.Body.String())
	}
	var result struct {
		SectionsQueued int `json:"sectionsQueued"`
	}
	decode(t, resp, &result)
	if result.SectionsQueued != 1 {
		t.Fatalf("expected only the ready section queued, got %d", result.SectionsQueued)
	}
}
