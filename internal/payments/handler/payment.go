package handler

import (
	"encoding/json"
	"net/http"

	"studysphere/internal/auth"
	"studysphere/internal/payments/service"
	apperrors "studysphere/pkg/errors"
	httputil "studysphere/pkg/http"
	"studysphere/pkg/logger"
	"studysphere/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type PaymentHandler struct {
	service  service.PaymentService
	verifier auth.Verifier
	log      *logger.Logger
}

func NewPaymentHandler(service service.PaymentService, verifier auth.Verifier, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		service:  service,
		verifier: verifier,
		log:      log,
	}
}

type createIntentRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type createIntentResponse struct {
	ClientSecret string `json:"client_secret"`
}

func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req createIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "CreateIntent", apperrors.InvalidInput("Invalid request body"))
		return
	}

	clientSecret, err := h.service.CreateIntent(r.Context(), req.Amount, req.Currency)
	if err != nil {
		h.writeError(w, "CreateIntent", err)
		return
	}

	if err := httputil.WriteSuccess(w, createIntentResponse{ClientSecret: clientSecret}); err != nil {
		h.log.Error("failed to write success response", "handler", "CreateIntent", "error", err)
	}
}

type recordPaymentRequest struct {
	SessionID     string `json:"session_id"`
	Amount        int    `json:"amount"`
	Method        string `json:"method"`
	TransactionID string `json:"transaction_id"`
}

type recordPaymentResponse struct {
	PaymentID string `json:"payment_id"`
}

func (h *PaymentHandler) Record(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req recordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Record", apperrors.InvalidInput("Invalid request body"))
		return
	}

	// The payer is whoever the token says it is.
	principal, _ := auth.PrincipalFromContext(r.Context())

	paymentID, err := h.service.ReconcilePayment(r.Context(), service.ReconcileInput{
		SessionID:     req.SessionID,
		StudentEmail:  principal.Email,
		Amount:        req.Amount,
		Method:        req.Method,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		h.writeError(w, "Record", err)
		return
	}

	if err := httputil.WriteCreated(w, recordPaymentResponse{PaymentID: paymentID}); err != nil {
		h.log.Error("failed to write created response", "handler", "Record", "error", err)
	}
}

func (h *PaymentHandler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	principal, _ := auth.PrincipalFromContext(r.Context())
	payments, err := h.service.ListByStudent(r.Context(), principal.Email, limit, offset)
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	if err := httputil.WriteSuccess(w, payments); err != nil {
		h.log.Error("failed to write success response", "handler", "ListMine", "error", err)
	}
}

func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	payments, total, err := h.service.ListAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, payments, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "error", err)
	}
}

func (h *PaymentHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func (h *PaymentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/payments/intent", auth.RequireRole(h.verifier, h.log, model.RoleStudent, h.CreateIntent))
	router.POST("/api/v1/payments", auth.RequireRole(h.verifier, h.log, model.RoleStudent, h.Record))
	router.GET("/api/v1/payments/mine", auth.RequireRole(h.verifier, h.log, model.RoleStudent, h.ListMine))
	router.GET("/api/v1/payments", auth.RequireRole(h.verifier, h.log, model.RoleAdmin, h.List))
}
