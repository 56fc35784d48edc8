package handler

import (
	"encoding/json"
	"net/http"

	"studysphere/internal/auth"
	"studysphere/internal/users/service"
	apperrors "studysphere/pkg/errors"
	httputil "studysphere/pkg/http"
	"studysphere/pkg/logger"
	"studysphere/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type UserHandler struct {
	service  service.UserService
	verifier auth.Verifier
	log      *logger.Logger
}

func NewUserHandler(service service.UserService, verifier auth.Verifier, log *logger.Logger) *UserHandler {
	return &UserHandler{
		service:  service,
		verifier: verifier,
		log:      log,
	}
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input service.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, "Login", apperrors.InvalidInput("Invalid request body"))
		return
	}

	result, err := h.service.Login(r.Context(), input)
	if err != nil {
		h.writeError(w, "Login", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Login", "error", err)
	}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	user, err := h.service.GetByEmail(r.Context(), principal.Email)
	if err != nil {
		h.writeError(w, "Me", err)
		return
	}

	if err := httputil.WriteSuccess(w, user); err != nil {
		h.log.Error("failed to write success response", "handler", "Me", "error", err)
	}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	search := r.URL.Query().Get("search")
	users, total, err := h.service.List(r.Context(), search, limit, offset)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, users, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "error", err)
	}
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "UpdateRole", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.UpdateRole(r.Context(), ps.ByName("email"), req.Role); err != nil {
		h.writeError(w, "UpdateRole", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *UserHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func (h *UserHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/auth/login", h.Login)
	router.GET("/api/v1/users/me", auth.RequireAuth(h.verifier, h.log, h.Me))

	router.GET("/api/v1/users", auth.RequireRole(h.verifier, h.log, model.RoleAdmin, h.List))
	router.PATCH("/api/v1/users/email/:email/role", auth.RequireRole(h.verifier, h.log, model.RoleAdmin, h.UpdateRole))
}
