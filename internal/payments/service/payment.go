package service

import (
	"context"
	"errors"
	"math"

	bookingserrors "studysphere/internal/bookings/errors"
	"studysphere/internal/payments/gateway"
	"studysphere/internal/payments/repository"
	sessionserrors "studysphere/internal/sessions/errors"
	"studysphere/pkg/config"
	apperrors "studysphere/pkg/errors"
	"studysphere/pkg/events"
	"studysphere/pkg/model"
	"studysphere/pkg/sanitizer"
)

// SessionFinder is the slice of the session store the reconciliator reads
// when it has to create a booking implicitly.
type SessionFinder interface {
	FindByID(ctx context.Context, id string) (*model.Session, error)
}

// BookingStore is the slice of the booking store the reconciliator writes.
type BookingStore interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByPair(ctx context.Context, sessionID, studentEmail string) (*model.Booking, error)
	MarkPaid(ctx context.Context, sessionID, studentEmail, transactionID string) (int64, error)
}

// EventPublisher is satisfied by events.Producer. A nil publisher disables
// event emission without disabling payments.
type EventPublisher interface {
	Publish(ctx context.Context, msg events.Message) error
}

type ReconcileInput struct {
	SessionID     string `json:"session_id"`
	StudentEmail  string `json:"student_email"`
	Amount        int    `json:"amount"`
	Method        string `json:"method"`
	TransactionID string `json:"transaction_id"`
}

type paymentRecordedEvent struct {
	PaymentID     string `json:"payment_id"`
	SessionID     string `json:"session_id"`
	StudentEmail  string `json:"student_email"`
	Amount        int    `json:"amount"`
	Method        string `json:"method"`
	TransactionID string `json:"transaction_id"`
}

type PaymentService interface {
	ReconcilePayment(ctx context.Context, input ReconcileInput) (string, error)
	CreateIntent(ctx context.Context, amount float64, currency string) (string, error)
	ListByStudent(ctx context.Context, studentEmail string, limit int, offset int64) ([]*model.Payment, error)
	ListAll(ctx context.Context, limit int, offset int64) ([]*model.Payment, int64, error)
}

type paymentService struct {
	ledger    repository.PaymentRepository
	bookings  BookingStore
	sessions  SessionFinder
	gateway   gateway.Gateway
	publisher EventPublisher
	cfg       *config.Config
}

func NewPaymentService(
	ledger repository.PaymentRepository,
	bookings BookingStore,
	sessions SessionFinder,
	gw gateway.Gateway,
	publisher EventPublisher,
	cfg *config.Config,
) PaymentService {
	return &paymentService{
		ledger:    ledger,
		bookings:  bookings,
		sessions:  sessions,
		gateway:   gw,
		publisher: publisher,
		cfg:       cfg,
	}
}

// ReconcilePayment brings the booking for (session, student) in line with a
// gateway-confirmed charge, then appends one ledger entry. The booking is
// created on the spot when payment arrives before any explicit booking.
//
// Exactly one booking write and one ledger insert happen per call. The two
// writes are not atomic: if the ledger insert fails after the booking write,
// the gap is logged with full correlation fields for operator review rather
// than rolled back.
func (s *paymentService) ReconcilePayment(ctx context.Context, input ReconcileInput) (string, error) {
	if input.SessionID == "" || input.StudentEmail == "" {
		return "", apperrors.InvalidInput("Session ID and student email are required")
	}
	input.StudentEmail = sanitizer.NormalizeEmail(input.StudentEmail)

	existing, err := s.bookings.FindByPair(ctx, input.SessionID, input.StudentEmail)
	if err != nil && !errors.Is(err, bookingserrors.ErrNotFound) {
		s.cfg.Log.Error("Failed to look up booking for reconciliation",
			"session_id", input.SessionID,
			"student_email", input.StudentEmail,
			"error", err,
		)
		return "", apperrors.Internal("Failed to look up booking", err)
	}

	if existing == nil {
		if err := s.createPaidBooking(ctx, input); err != nil {
			return "", err
		}
	} else {
		if _, err := s.bookings.MarkPaid(ctx, input.SessionID, input.StudentEmail, input.TransactionID); err != nil {
			s.cfg.Log.Error("Failed to mark booking paid",
				"session_id", input.SessionID,
				"student_email", input.StudentEmail,
				"transaction_id", input.TransactionID,
				"error", err,
			)
			return "", apperrors.Internal("Failed to update booking", err)
		}
	}

	payment := &model.Payment{
		SessionID:     input.SessionID,
		StudentEmail:  input.StudentEmail,
		Amount:        input.Amount,
		Method:        input.Method,
		TransactionID: input.TransactionID,
	}

	paymentID, err := s.ledger.Insert(ctx, payment)
	if err != nil {
		// The booking write already happened; surface the gap loudly so an
		// operator can backfill the ledger entry from these fields.
		s.cfg.Log.Error("Ledger insert failed after booking write",
			"session_id", input.SessionID,
			"student_email", input.StudentEmail,
			"amount", input.Amount,
			"method", input.Method,
			"transaction_id", input.TransactionID,
			"error", err,
		)
		return "", apperrors.Internal("Failed to record payment", err)
	}

	s.publishRecorded(ctx, paymentID, input)

	s.cfg.Log.Info("Payment reconciled",
		"payment_id", paymentID,
		"session_id", input.SessionID,
		"student_email", input.StudentEmail,
		"transaction_id", input.TransactionID,
		"booking_created", existing == nil,
	)
	return paymentID, nil
}

func (s *paymentService) createPaidBooking(ctx context.Context, input ReconcileInput) error {
	session, err := s.sessions.FindByID(ctx, input.SessionID)
	if err != nil {
		if errors.Is(err, sessionserrors.ErrNotFound) || errors.Is(err, sessionserrors.ErrInvalidID) {
			return apperrors.NotFoundWithID("Session", input.SessionID)
		}
		s.cfg.Log.Error("Failed to look up session for implicit booking",
			"session_id", input.SessionID,
			"error", err,
		)
		return apperrors.Internal("Failed to look up session", err)
	}

	booking := &model.Booking{
		SessionID:     session.ID,
		SessionTitle:  session.Title,
		TutorEmail:    session.TutorEmail,
		StudentEmail:  input.StudentEmail,
		FeePaid:       input.Amount,
		PaymentStatus: model.PaymentStatusPaid,
		TransactionID: input.TransactionID,
	}

	err = s.bookings.Create(ctx, booking)
	if err == nil {
		return nil
	}

	// A concurrent reconciliation or explicit booking won the insert; the
	// unique pair index turned the race into a duplicate-key error, so
	// converge by updating the winner's record instead.
	if errors.Is(err, bookingserrors.ErrDuplicatePair) {
		if _, updErr := s.bookings.MarkPaid(ctx, input.SessionID, input.StudentEmail, input.TransactionID); updErr != nil {
			s.cfg.Log.Error("Failed to converge on concurrently created booking",
				"session_id", input.SessionID,
				"student_email", input.StudentEmail,
				"error", updErr,
			)
			return apperrors.Internal("Failed to update booking", updErr)
		}
		return nil
	}

	s.cfg.Log.Error("Failed to create booking during reconciliation",
		"session_id", input.SessionID,
		"student_email", input.StudentEmail,
		"error", err,
	)
	return apperrors.Internal("Failed to create booking", err)
}

func (s *paymentService) publishRecorded(ctx context.Context, paymentID string, input ReconcileInput) {
	if s.publisher == nil {
		return
	}

	msg, err := events.NewMessage().
		WithKey(input.SessionID + ":" + input.StudentEmail).
		WithEventType("payment.recorded").
		WithSource("payments").
		WithValue(paymentRecordedEvent{
			PaymentID:     paymentID,
			SessionID:     input.SessionID,
			StudentEmail:  input.StudentEmail,
			Amount:        input.Amount,
			Method:        input.Method,
			TransactionID: input.TransactionID,
		}).
		Build()
	if err != nil {
		s.cfg.Log.Warn("Failed to build payment event", "payment_id", paymentID, "error", err)
		return
	}

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish payment event", "payment_id", paymentID, "error", err)
	}
}

// CreateIntent asks the gateway for a charge intent in the configured
// currency and hands the client secret back verbatim. Amounts arrive in
// major units and go to the gateway in minor units.
func (s *paymentService) CreateIntent(ctx context.Context, amount float64, currency string) (string, error) {
	if amount <= 0 {
		return "", apperrors.InvalidInput("Amount must be a positive number")
	}
	if currency == "" {
		currency = s.cfg.PaymentCurrency
	}

	amountMinor := int64(math.Round(amount * 100))
	clientSecret, err := s.gateway.CreateIntent(ctx, amountMinor, currency)
	if err != nil {
		s.cfg.Log.Error("Payment gateway rejected intent",
			"amount_minor", amountMinor,
			"currency", currency,
			"error", err,
		)
		return "", apperrors.Gateway(err.Error(), err)
	}

	return clientSecret, nil
}

func (s *paymentService) ListByStudent(ctx context.Context, studentEmail string, limit int, offset int64) ([]*model.Payment, error) {
	if studentEmail == "" {
		return nil, apperrors.InvalidInput("Student email cannot be empty")
	}

	payments, err := s.ledger.FindByStudent(ctx, sanitizer.NormalizeEmail(studentEmail), limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list payments", "student_email", studentEmail, "error", err)
		return nil, apperrors.Internal("Failed to retrieve payments", err)
	}

	return payments, nil
}

func (s *paymentService) ListAll(ctx context.Context, limit int, offset int64) ([]*model.Payment, int64, error) {
	count, err := s.ledger.Count(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to count payments", "error", err)
		return nil, 0, apperrors.Internal("Failed to count payments", err)
	}

	payments, err := s.ledger.FindAll(ctx, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list payments", "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve payments", err)
	}

	return payments, count, nil
}
