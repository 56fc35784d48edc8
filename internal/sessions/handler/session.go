package handler

import (
	"encoding/json"
	"net/http"

	"studysphere/internal/auth"
	"studysphere/internal/sessions/service"
	apperrors "studysphere/pkg/errors"
	httputil "studysphere/pkg/http"
	"studysphere/pkg/logger"
	"studysphere/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type SessionHandler struct {
	service  service.SessionService
	verifier auth.Verifier
	log      *logger.Logger
}

func NewSessionHandler(service service.SessionService, verifier auth.Verifier, log *logger.Logger) *SessionHandler {
	return &SessionHandler{
		service:  service,
		verifier: verifier,
		log:      log,
	}
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var session model.Session
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	// A tutor can only submit sessions under their own identity.
	principal, _ := auth.PrincipalFromContext(r.Context())
	session.TutorEmail = principal.Email

	if err := h.service.Create(r.Context(), &session); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, session); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *SessionHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, session); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	status := r.URL.Query().Get("status")
	sessions, total, err := h.service.List(r.Context(), status, limit, offset)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, sessions, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "error", err)
	}
}

func (h *SessionHandler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	principal, _ := auth.PrincipalFromContext(r.Context())
	sessions, err := h.service.ListByTutor(r.Context(), principal.Email, limit, offset)
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	if err := httputil.WriteSuccess(w, sessions); err != nil {
		h.log.Error("failed to write success response", "handler", "ListMine", "error", err)
	}
}

type approveRequest struct {
	RegistrationFee int `json:"registration_fee"`
}

func (h *SessionHandler) Approve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req approveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Approve", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Approve(r.Context(), ps.ByName("id"), req.RegistrationFee); err != nil {
		h.writeError(w, "Approve", err)
		return
	}

	httputil.WriteNoContent(w)
}

type rejectRequest struct {
	Reason  string `json:"reason"`
	Comment string `json:"comment"`
}

func (h *SessionHandler) Reject(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Reject", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Reject(r.Context(), ps.ByName("id"), req.Reason, req.Comment); err != nil {
		h.writeError(w, "Reject", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *SessionHandler) Resubmit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Resubmit(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Resubmit", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.SessionUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeError(w, "Update", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Update(r.Context(), ps.ByName("id"), &updates); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *SessionHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func (h *SessionHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/sessions", h.List)
	router.GET("/api/v1/sessions/id/:id", h.GetByID)

	router.POST("/api/v1/sessions", auth.RequireRole(h.verifier, h.log, model.RoleTutor, h.Create))
	router.GET("/api/v1/sessions/mine", auth.RequireRole(h.verifier, h.log, model.RoleTutor, h.ListMine))
	router.PATCH("/api/v1/sessions/id/:id", auth.RequireRole(h.verifier, h.log, model.RoleTutor, h.Update))
	router.DELETE("/api/v1/sessions/id/:id", auth.RequireRole(h.verifier, h.log, model.RoleTutor, h.Delete))
	router.PATCH("/api/v1/sessions/id/:id/resubmit", auth.RequireRole(h.verifier, h.log, model.RoleTutor, h.Resubmit))

	router.PATCH("/api/v1/sessions/id/:id/approve", auth.RequireRole(h.verifier, h.log, model.RoleAdmin, h.Approve))
	router.PATCH("/api/v1/sessions/id/:id/reject", auth.RequireRole(h.verifier, h.log, model.RoleAdmin, h.Reject))
}
