package handler

import (
	"encoding/json"
	"net/http"

	"studysphere/internal/auth"
	"studysphere/internal/materials/service"
	apperrors "studysphere/pkg/errors"
	httputil "studysphere/pkg/http"
	"studysphere/pkg/logger"
	"studysphere/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type MaterialHandler struct {
	service  service.MaterialService
	verifier auth.Verifier
	log      *logger.Logger
}

func NewMaterialHandler(service service.MaterialService, verifier auth.Verifier, log *logger.Logger) *MaterialHandler {
	return &MaterialHandler{
		service:  service,
		verifier: verifier,
		log:      log,
	}
}

func (h *MaterialHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var material model.Material
	if err := json.NewDecoder(r.Body).Decode(&material); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	principal, _ := auth.PrincipalFromContext(r.Context())
	material.TutorEmail = principal.Email

	if err := h.service.Create(r.Context(), &material); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, material); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *MaterialHandler) ListBySession(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListBySession", err)
		return
	}

	materials, err := h.service.ListBySession(r.Context(), ps.ByName("id"), limit, offset)
	if err != nil {
		h.writeError(w, "ListBySession", err)
		return
	}

	if err := httputil.WriteSuccess(w, materials); err != nil {
		h.log.Error("failed to write success response", "handler", "ListBySession", "error", err)
	}
}

func (h *MaterialHandler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	principal, _ := auth.PrincipalFromContext(r.Context())
	materials, err := h.service.ListByTutor(r.Context(), principal.Email, limit, offset)
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	if err := httputil.WriteSuccess(w, materials); err != nil {
		h.log.Error("failed to write success response", "handler", "ListMine", "error", err)
	}
}

func (h *MaterialHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	if err := h.service.Delete(r.Context(), ps.ByName("id"), principal.Email); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *MaterialHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func (h *MaterialHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/sessions/id/:id/materials", auth.RequireAuth(h.verifier, h.log, h.ListBySession))

	router.POST("/api/v1/materials", auth.RequireRole(h.verifier, h.log, model.RoleTutor, h.Create))
	router.GET("/api/v1/materials/mine", auth.RequireRole(h.verifier, h.log, model.RoleTutor, h.ListMine))
	router.DELETE("/api/v1/materials/id/:id", auth.RequireRole(h.verifier, h.log, model.RoleTutor, h.Delete))
}
