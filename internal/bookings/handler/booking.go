package handler

import (
	"encoding/json"
	"net/http"

	"studysphere/internal/auth"
	"studysphere/internal/bookings/service"
	apperrors "studysphere/pkg/errors"
	httputil "studysphere/pkg/http"
	"studysphere/pkg/logger"
	"studysphere/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service  service.BookingService
	verifier auth.Verifier
	log      *logger.Logger
}

func NewBookingHandler(service service.BookingService, verifier auth.Verifier, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service:  service,
		verifier: verifier,
		log:      log,
	}
}

type createBookingRequest struct {
	SessionID string `json:"session_id"`
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	principal, _ := auth.PrincipalFromContext(r.Context())
	booking, err := h.service.Create(r.Context(), req.SessionID, principal.Email)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	principal, _ := auth.PrincipalFromContext(r.Context())
	bookings, err := h.service.ListByStudent(r.Context(), principal.Email, limit, offset)
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "ListMine", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", auth.RequireRole(h.verifier, h.log, model.RoleStudent, h.Create))
	router.GET("/api/v1/bookings/mine", auth.RequireRole(h.verifier, h.log, model.RoleStudent, h.ListMine))
	router.GET("/api/v1/bookings/id/:id", auth.RequireAuth(h.verifier, h.log, h.GetByID))
}
