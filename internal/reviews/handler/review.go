package handler

import (
	"encoding/json"
	"net/http"

	"studysphere/internal/auth"
	"studysphere/internal/reviews/service"
	apperrors "studysphere/pkg/errors"
	httputil "studysphere/pkg/http"
	"studysphere/pkg/logger"
	"studysphere/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ReviewHandler struct {
	service  service.ReviewService
	verifier auth.Verifier
	log      *logger.Logger
}

func NewReviewHandler(service service.ReviewService, verifier auth.Verifier, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{
		service:  service,
		verifier: verifier,
		log:      log,
	}
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var review model.Review
	if err := json.NewDecoder(r.Body).Decode(&review); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	principal, _ := auth.PrincipalFromContext(r.Context())
	review.StudentEmail = principal.Email

	if err := h.service.Create(r.Context(), &review); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, review); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *ReviewHandler) ListBySession(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListBySession", err)
		return
	}

	reviews, err := h.service.ListBySession(r.Context(), ps.ByName("id"), limit, offset)
	if err != nil {
		h.writeError(w, "ListBySession", err)
		return
	}

	if err := httputil.WriteSuccess(w, reviews); err != nil {
		h.log.Error("failed to write success response", "handler", "ListBySession", "error", err)
	}
}

func (h *ReviewHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func (h *ReviewHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/sessions/id/:id/reviews", h.ListBySession)
	router.POST("/api/v1/reviews", auth.RequireRole(h.verifier, h.log, model.RoleStudent, h.Create))
}
