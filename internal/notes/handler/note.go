package handler

import (
	"encoding/json"
	"net/http"

	"studysphere/internal/auth"
	"studysphere/internal/notes/service"
	apperrors "studysphere/pkg/errors"
	httputil "studysphere/pkg/http"
	"studysphere/pkg/logger"
	"studysphere/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type NoteHandler struct {
	service  service.NoteService
	verifier auth.Verifier
	log      *logger.Logger
}

func NewNoteHandler(service service.NoteService, verifier auth.Verifier, log *logger.Logger) *NoteHandler {
	return &NoteHandler{
		service:  service,
		verifier: verifier,
		log:      log,
	}
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var note model.Note
	if err := json.NewDecoder(r.Body).Decode(&note); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	principal, _ := auth.PrincipalFromContext(r.Context())
	note.Email = principal.Email

	if err := h.service.Create(r.Context(), &note); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, note); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *NoteHandler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	principal, _ := auth.PrincipalFromContext(r.Context())
	notes, err := h.service.ListByEmail(r.Context(), principal.Email, limit, offset)
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	if err := httputil.WriteSuccess(w, notes); err != nil {
		h.log.Error("failed to write success response", "handler", "ListMine", "error", err)
	}
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.NoteUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeError(w, "Update", apperrors.InvalidInput("Invalid request body"))
		return
	}

	principal, _ := auth.PrincipalFromContext(r.Context())
	if err := h.service.Update(r.Context(), ps.ByName("id"), principal.Email, &updates); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	if err := h.service.Delete(r.Context(), ps.ByName("id"), principal.Email); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *NoteHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func (h *NoteHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/notes", auth.RequireAuth(h.verifier, h.log, h.Create))
	router.GET("/api/v1/notes/mine", auth.RequireAuth(h.verifier, h.log, h.ListMine))
	router.PATCH("/api/v1/notes/id/:id", auth.RequireAuth(h.verifier, h.log, h.Update))
	router.DELETE("/api/v1/notes/id/:id", auth.RequireAuth(h.verifier, h.log, h.Delete))
}
