package sections

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dossier-backend/internal/progress"
	"dossier-backend/internal/shared/server/middleware"
	"dossier-backend/internal/shared/server/respond"
	"dossier-backend/internal/templates"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches section routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/documents/:documentId/sections", h.list)
	rg.POST("/documents/:documentId/sections", h.create)
	rg.POST("/documents/:documentId/sections/refresh", h.refresh)
	rg.GET("/documents/:documentId/progress", h.progress)
	rg.POST("/documents/:documentId/render-all", h.renderAll)
	rg.GET("/sections/:sectionId", h.get)
	rg.POST("/sections/:sectionId/inputs/:inputKey", h.resolveInput)
	rg.GET("/sections/:sectionId/inputs/unresolved", h.unresolvedInputs)
	rg.POST("/sections/:sectionId/render", h.render)
}

type createSectionsRequest struct {
	SectionKeys []string `json:"sectionKeys"`
}

func (h *Handler) create(c *gin.Context) {
	callerID := middleware.CallerIDFromContext(c)
	documentID := c.Param("documentId")

	var req createSectionsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
	}

	result, err := h.Svc.CreateSections(requestCtx(c), callerID, documentID, req.SectionKeys)
	if err != nil {
		h.writeError(c, err, "failed to create sections")
		return
	}

	resp := make([]SectionResponse, 0, len(result.Sections))
	for _, d := range result.Sections {
		resp = append(resp, toSectionResponse(d))
	}
	respond.JSON(c, http.StatusCreated, gin.H{
		"sectionsCreated":      result.SectionsCreated,
		"inputRequestsCreated": result.InputRequestsCreated,
		"sections":             resp,
	})
}

func (h *Handler) list(c *gin.Context) {
	callerID := middleware.CallerIDFromContext(c)
	documentID := c.Param("documentId")

	details, err := h.Svc.ListSections(requestCtx(c), callerID, documentID)
	if err != nil {
		h.writeError(c, err, "failed to list sections")
		return
	}

	resp := make([]SectionResponse, 0, len(details))
	totalResolved, totalRequired := 0, 0
	completed, pending := 0, 0
	for _, d := range details {
		resp = append(resp, toSectionResponse(d))
		totalResolved += d.Resolved
		totalRequired += d.Required
		switch d.Section.State {
		case StateRendered:
			completed++
		case StatePendingInputs:
			pending++
		}
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"sections":          resp,
		"totalSections":     len(details),
		"completedSections": completed,
		"pendingSections":   pending,
		"inputsResolved":    totalResolved,
		"inputsRequired":    totalRequired,
	})
}

func (h *Handler) get(c *gin.Context) {
	callerID := middleware.CallerIDFromContext(c)

	detail, err := h.Svc.GetSection(requestCtx(c), callerID, c.Param("sectionId"))
	if err != nil {
		h.writeError(c, err, "failed to fetch section")
		return
	}
	respond.JSON(c, http.StatusOK, toSectionResponse(detail))
}

type resolveInputRequest struct {
	Value  any    `json:"value"`
	FileID string `json:"fileId"`
}

func (h *Handler) resolveInput(c *gin.Context) {
	callerID := middleware.CallerIDFromContext(c)

	var req resolveInputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	result, err := h.Svc.ResolveInput(requestCtx(c), callerID, c.Param("sectionId"), c.Param("inputKey"), req.Value, req.FileID)
	if err != nil {
		h.writeError(c, err, "failed to resolve input")
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"inputKey":       result.Input.InputKey,
		"isResolved":     result.Input.IsResolved,
		"value":          result.Input.Value,
		"sectionState":   string(result.Section.State),
		"inputsResolved": result.Resolved,
		"inputsRequired": result.Required,
		"allResolved":    result.AllResolved,
		"becameReady":    result.BecameReady,
	})
}

func (h *Handler) unresolvedInputs(c *gin.Context) {
	callerID := middleware.CallerIDFromContext(c)

	detail, err := h.Svc.GetSection(requestCtx(c), callerID, c.Param("sectionId"))
	if err != nil {
		h.writeError(c, err, "failed to fetch section")
		return
	}

	// Only required inputs block state transitions; unresolved optional
	// inputs are not actionable here.
	tpl, _ := templates.Get(detail.Section.SectionKey)
	out := make([]InputResponse, 0)
	for _, in := range detail.Inputs {
		if in.IsResolved || !in.Required {
			continue
		}
		label := in.InputKey
		if spec, ok := tpl.Input(in.InputKey); ok {
			label = spec.Label
		}
		out = append(out, InputResponse{
			InputKey: in.InputKey,
			Label:    label,
			Type:     string(in.Type),
			Required: in.Required,
		})
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"sectionId": detail.Section.ID,
		"state":     string(detail.Section.State),
		"inputs":    out,
	})
}

func (h *Handler) render(c *gin.Context) {
	callerID := middleware.CallerIDFromContext(c)
	force := parseBool(c.Query("force"))

	result, err := h.Svc.RenderSection(requestCtx(c), callerID, c.Param("sectionId"), force)
	if err != nil {
		h.writeError(c, err, "failed to render section")
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"sectionId":       result.Section.ID,
		"state":           string(result.Section.State),
		"rendered":        result.Rendered,
		"renderedContent": result.Section.RenderedContent,
		"renderedHtml":    result.Section.RenderedHTML,
		"renderedAt":      result.Section.RenderedAt,
	})
}

func (h *Handler) refresh(c *gin.Context) {
	callerID := middleware.CallerIDFromContext(c)

	changed, err := h.Svc.RefreshStates(requestCtx(c), callerID, c.Param("documentId"))
	if err != nil {
		h.writeError(c, err, "failed to refresh states")
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"sectionsChanged": changed})
}

func (h *Handler) renderAll(c *gin.Context) {
	callerID := middleware.CallerIDFromContext(c)
	force := parseBool(c.Query("force"))

	count, err := h.Svc.EnqueueRenderAll(requestCtx(c), callerID, c.Param("documentId"), force)
	if err != nil {
		h.writeError(c, err, "failed to render sections")
		return
	}
	respond.JSON(c, http.StatusAccepted, gin.H{"sectionsQueued": count})
}

func (h *Handler) progress(c *gin.Context) {
	callerID := middleware.CallerIDFromContext(c)

	details, err := h.Svc.ListSections(requestCtx(c), callerID, c.Param("documentId"))
	if err != nil {
		h.writeError(c, err, "failed to compute progress")
		return
	}

	snapshot := make([]progress.SectionProgress, 0, len(details))
	for _, d := range details {
		tpl, _ := templates.Get(d.Section.SectionKey)
		snapshot = append(snapshot, progress.SectionProgress{
			SectionID:  d.Section.ID,
			SectionKey: d.Section.SectionKey,
			Title:      tpl.Title,
			Category:   string(tpl.Category),
			State:      string(d.Section.State),
			Resolved:   d.Resolved,
			Required:   d.Required,
			Position:   templates.Position(d.Section.SectionKey),
		})
	}
	respond.JSON(c, http.StatusOK, progress.Compute(snapshot))
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	if ve, ok := AsValidationError(err); ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", ve.Message, gin.H{
			"inputKey":   ve.InputKey,
			"constraint": ve.Constraint,
		})
		return
	}
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "resource not found", nil)
	case errors.Is(err, ErrNotReady):
		respond.Error(c, http.StatusConflict, "not_ready", err.Error(), nil)
	case errors.Is(err, ErrDependencyUnavailable):
		respond.Error(c, http.StatusBadGateway, "dependency_unavailable", "render backend unavailable", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}

func parseBool(raw string) bool {
	b, err := strconv.ParseBool(raw)
	return err == nil && b
}

func requestCtx(c *gin.Context) context.Context {
	return WithRequestID(c.Request.Context(), c.GetString("requestId"))
}
