package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"studysphere/internal/auth"
	"studysphere/internal/payments/service"
	apperrors "studysphere/pkg/errors"
	"studysphere/pkg/logger"
	"studysphere/pkg/model"
)

type mockPaymentService struct {
	reconcileFunc     func(ctx context.Context, input service.ReconcileInput) (string, error)
	createIntentFunc  func(ctx context.Context, amount float64, currency string) (string, error)
	listByStudentFunc func(ctx context.Context, studentEmail string, limit int, offset int64) ([]*model.Payment, error)
}

func (m *mockPaymentService) ReconcilePayment(ctx context.Context, input service.ReconcileInput) (string, error) {
	return m.reconcileFunc(ctx, input)
}

func (m *mockPaymentService) CreateIntent(ctx context.Context, amount float64, currency string) (string, error) {
	return m.createIntentFunc(ctx, amount, currency)
}

func (m *mockPaymentService) ListByStudent(ctx context.Context, studentEmail string, limit int, offset int64) ([]*model.Payment, error) {
	if m.listByStudentFunc != nil {
		return m.listByStudentFunc(ctx, studentEmail, limit, offset)
	}
	return []*model.Payment{}, nil
}

func (m *mockPaymentService) ListAll(_ context.Context, _ int, _ int64) ([]*model.Payment, int64, error) {
	return []*model.Payment{}, 0, nil
}

func testHandler(svc service.PaymentService) (*PaymentHandler, string) {
	authority := auth.NewJWTAuthority("test-secret", time.Hour)
	token, _ := authority.Issue("student@example.com", model.RoleStudent)

	log := logger.New(logger.Config{Output: io.Discard})
	return NewPaymentHandler(svc, authority, log), token
}

func TestRecordPayment(t *testing.T) {
	var gotInput service.ReconcileInput
	svc := &mockPaymentService{
		reconcileFunc: func(_ context.Context, input service.ReconcileInput) (string, error) {
			gotInput = input
			return "6651f0000000000000000042", nil
		},
	}
	h, token := testHandler(svc)

	body := `{"session_id":"6651f0000000000000000001","amount":500,"method":"card","transaction_id":"tx_1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	auth.RequireRole(h.verifier, h.log, model.RoleStudent, h.Record)(rec, req, nil)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotInput.StudentEmail != "student@example.com" {
		t.Errorf("expected payer from token, got %q", gotInput.StudentEmail)
	}
	if gotInput.SessionID != "6651f0000000000000000001" || gotInput.Amount != 500 {
		t.Errorf("unexpected reconcile input: %+v", gotInput)
	}
}

func TestRecordPaymentRequiresToken(t *testing.T) {
	h, _ := testHandler(&mockPaymentService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	auth.RequireRole(h.verifier, h.log, model.RoleStudent, h.Record)(rec, req, nil)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestCreateIntentGatewayErrorMapsTo502(t *testing.T) {
	svc := &mockPaymentService{
		createIntentFunc: func(_ context.Context, _ float64, _ string) (string, error) {
			return "", apperrors.Gateway("card network unavailable", nil)
		},
	}
	h, token := testHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/intent", strings.NewReader(`{"amount":250}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	auth.RequireRole(h.verifier, h.log, model.RoleStudent, h.CreateIntent)(rec, req, nil)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}

	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Code != apperrors.CodeGateway {
		t.Errorf("expected GATEWAY_ERROR code, got %q", resp.Code)
	}
}

func TestCreateIntentInvalidBody(t *testing.T) {
	h, token := testHandler(&mockPaymentService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/intent", strings.NewReader(`{`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	auth.RequireRole(h.verifier, h.log, model.RoleStudent, h.CreateIntent)(rec, req, nil)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
