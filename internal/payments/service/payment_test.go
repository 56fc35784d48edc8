package service

import (
	"context"
	"errors"
	"io"
	"testing"

	bookingserrors "studysphere/internal/bookings/errors"
	sessionserrors "studysphere/internal/sessions/errors"
	"studysphere/pkg/config"
	apperrors "studysphere/pkg/errors"
	"studysphere/pkg/events"
	"studysphere/pkg/logger"
	"studysphere/pkg/model"
)

type mockLedger struct {
	insertFunc        func(ctx context.Context, payment *model.Payment) (string, error)
	findByStudentFunc func(ctx context.Context, studentEmail string, limit int, offset int64) ([]*model.Payment, error)
	findAllFunc       func(ctx context.Context, limit int, offset int64) ([]*model.Payment, error)
	countFunc         func(ctx context.Context) (int64, error)
}

func (m *mockLedger) Insert(ctx context.Context, payment *model.Payment) (string, error) {
	return m.insertFunc(ctx, payment)
}

func (m *mockLedger) FindByStudent(ctx context.Context, studentEmail string, limit int, offset int64) ([]*model.Payment, error) {
	return m.findByStudentFunc(ctx, studentEmail, limit, offset)
}

func (m *mockLedger) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Payment, error) {
	return m.findAllFunc(ctx, limit, offset)
}

func (m *mockLedger) Count(ctx context.Context) (int64, error) {
	return m.countFunc(ctx)
}

type mockBookingStore struct {
	createFunc     func(ctx context.Context, booking *model.Booking) error
	findByPairFunc func(ctx context.Context, sessionID, studentEmail string) (*model.Booking, error)
	markPaidFunc   func(ctx context.Context, sessionID, studentEmail, transactionID string) (int64, error)
}

func (m *mockBookingStore) Create(ctx context.Context, booking *model.Booking) error {
	return m.createFunc(ctx, booking)
}

func (m *mockBookingStore) FindByPair(ctx context.Context, sessionID, studentEmail string) (*model.Booking, error) {
	return m.findByPairFunc(ctx, sessionID, studentEmail)
}

func (m *mockBookingStore) MarkPaid(ctx context.Context, sessionID, studentEmail, transactionID string) (int64, error) {
	return m.markPaidFunc(ctx, sessionID, studentEmail, transactionID)
}

type mockSessionFinder struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Session, error)
}

func (m *mockSessionFinder) FindByID(ctx context.Context, id string) (*model.Session, error) {
	return m.findByIDFunc(ctx, id)
}

type mockGateway struct {
	createIntentFunc func(ctx context.Context, amountMinor int64, currency string) (string, error)
}

func (m *mockGateway) CreateIntent(ctx context.Context, amountMinor int64, currency string) (string, error) {
	return m.createIntentFunc(ctx, amountMinor, currency)
}

type mockPublisher struct {
	published []events.Message
	err       error
}

func (m *mockPublisher) Publish(_ context.Context, msg events.Message) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, msg)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		PaymentCurrency: "usd",
		Log:             logger.New(logger.Config{Output: io.Discard}),
	}
}

func approvedSession() *model.Session {
	return &model.Session{
		ID:         "6651f0000000000000000001",
		Title:      "Calculus Crash Course",
		TutorEmail: "tutor@example.com",
		Status:     model.SessionStatusApproved,
	}
}

func paidInput() ReconcileInput {
	return ReconcileInput{
		SessionID:     "6651f0000000000000000001",
		StudentEmail:  "Student@Example.com",
		Amount:        500,
		Method:        "card",
		TransactionID: "tx_1",
	}
}

func TestReconcilePaymentCreatesBookingWhenAbsent(t *testing.T) {
	var createdBooking *model.Booking
	var inserted *model.Payment

	bookings := &mockBookingStore{
		findByPairFunc: func(_ context.Context, _, _ string) (*model.Booking, error) {
			return nil, bookingserrors.ErrNotFound
		},
		createFunc: func(_ context.Context, booking *model.Booking) error {
			createdBooking = booking
			return nil
		},
	}
	ledger := &mockLedger{
		insertFunc: func(_ context.Context, payment *model.Payment) (string, error) {
			inserted = payment
			return "payment-1", nil
		},
	}
	sessions := &mockSessionFinder{
		findByIDFunc: func(_ context.Context, _ string) (*model.Session, error) {
			return approvedSession(), nil
		},
	}
	publisher := &mockPublisher{}

	svc := NewPaymentService(ledger, bookings, sessions, nil, publisher, testConfig())

	paymentID, err := svc.ReconcilePayment(context.Background(), paidInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if paymentID != "payment-1" {
		t.Errorf("expected payment id payment-1, got %q", paymentID)
	}

	if createdBooking == nil {
		t.Fatal("expected a booking to be created")
	}
	if createdBooking.SessionTitle != "Calculus Crash Course" {
		t.Errorf("expected denormalized session title, got %q", createdBooking.SessionTitle)
	}
	if createdBooking.TutorEmail != "tutor@example.com" {
		t.Errorf("expected denormalized tutor email, got %q", createdBooking.TutorEmail)
	}
	if createdBooking.StudentEmail != "student@example.com" {
		t.Errorf("expected normalized student email, got %q", createdBooking.StudentEmail)
	}
	if createdBooking.PaymentStatus != model.PaymentStatusPaid {
		t.Errorf("expected paid status, got %q", createdBooking.PaymentStatus)
	}
	if createdBooking.FeePaid != 500 {
		t.Errorf("expected fee 500, got %d", createdBooking.FeePaid)
	}
	if createdBooking.TransactionID != "tx_1" {
		t.Errorf("expected transaction tx_1, got %q", createdBooking.TransactionID)
	}

	if inserted == nil {
		t.Fatal("expected a ledger entry")
	}
	if inserted.Amount != 500 || inserted.Method != "card" || inserted.TransactionID != "tx_1" {
		t.Errorf("unexpected ledger entry: %+v", inserted)
	}

	if len(publisher.published) != 1 {
		t.Errorf("expected one published event, got %d", len(publisher.published))
	}
}

func TestReconcilePaymentUpdatesExistingBooking(t *testing.T) {
	createCalled := false
	var markedTx string
	var inserted *model.Payment

	bookings := &mockBookingStore{
		findByPairFunc: func(_ context.Context, _, _ string) (*model.Booking, error) {
			return &model.Booking{
				SessionID:    "6651f0000000000000000001",
				StudentEmail: "student@example.com",
			}, nil
		},
		createFunc: func(_ context.Context, _ *model.Booking) error {
			createCalled = true
			return nil
		},
		markPaidFunc: func(_ context.Context, _, _, transactionID string) (int64, error) {
			markedTx = transactionID
			return 1, nil
		},
	}
	ledger := &mockLedger{
		insertFunc: func(_ context.Context, payment *model.Payment) (string, error) {
			inserted = payment
			return "payment-2", nil
		},
	}

	svc := NewPaymentService(ledger, bookings, nil, nil, nil, testConfig())

	input := paidInput()
	input.TransactionID = "tx_2"
	if _, err := svc.ReconcilePayment(context.Background(), input); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if createCalled {
		t.Error("expected no booking insert for existing booking")
	}
	if markedTx != "tx_2" {
		t.Errorf("expected transaction reference tx_2, got %q", markedTx)
	}
	if inserted == nil {
		t.Fatal("expected a ledger entry even for an existing booking")
	}
}

func TestReconcilePaymentIsRepeatable(t *testing.T) {
	var bookingCreates, ledgerInserts int

	booking := &model.Booking{
		SessionID:    "6651f0000000000000000001",
		StudentEmail: "student@example.com",
	}
	bookings := &mockBookingStore{
		findByPairFunc: func(_ context.Context, _, _ string) (*model.Booking, error) {
			if bookingCreates == 0 {
				return nil, bookingserrors.ErrNotFound
			}
			return booking, nil
		},
		createFunc: func(_ context.Context, b *model.Booking) error {
			bookingCreates++
			booking.PaymentStatus = b.PaymentStatus
			booking.TransactionID = b.TransactionID
			return nil
		},
		markPaidFunc: func(_ context.Context, _, _, transactionID string) (int64, error) {
			booking.PaymentStatus = model.PaymentStatusPaid
			booking.TransactionID = transactionID
			return 1, nil
		},
	}
	ledger := &mockLedger{
		insertFunc: func(_ context.Context, _ *model.Payment) (string, error) {
			ledgerInserts++
			return "payment", nil
		},
	}
	sessions := &mockSessionFinder{
		findByIDFunc: func(_ context.Context, _ string) (*model.Session, error) {
			return approvedSession(), nil
		},
	}

	svc := NewPaymentService(ledger, bookings, sessions, nil, nil, testConfig())

	first := paidInput()
	if _, err := svc.ReconcilePayment(context.Background(), first); err != nil {
		t.Fatalf("first call failed: %v", err)
	}

	second := paidInput()
	second.TransactionID = "tx_2"
	if _, err := svc.ReconcilePayment(context.Background(), second); err != nil {
		t.Fatalf("second call failed: %v", err)
	}

	if bookingCreates != 1 {
		t.Errorf("expected exactly one booking insert, got %d", bookingCreates)
	}
	if ledgerInserts != 2 {
		t.Errorf("expected one ledger entry per call, got %d", ledgerInserts)
	}
	if booking.PaymentStatus != model.PaymentStatusPaid {
		t.Errorf("expected booking to stay paid, got %q", booking.PaymentStatus)
	}
	if booking.TransactionID != "tx_2" {
		t.Errorf("expected last transaction reference to win, got %q", booking.TransactionID)
	}
}

func TestReconcilePaymentConvergesOnConcurrentInsert(t *testing.T) {
	markPaidCalled := false

	bookings := &mockBookingStore{
		findByPairFunc: func(_ context.Context, _, _ string) (*model.Booking, error) {
			return nil, bookingserrors.ErrNotFound
		},
		createFunc: func(_ context.Context, _ *model.Booking) error {
			return bookingserrors.ErrDuplicatePair
		},
		markPaidFunc: func(_ context.Context, _, _, _ string) (int64, error) {
			markPaidCalled = true
			return 1, nil
		},
	}
	ledger := &mockLedger{
		insertFunc: func(_ context.Context, _ *model.Payment) (string, error) {
			return "payment", nil
		},
	}
	sessions := &mockSessionFinder{
		findByIDFunc: func(_ context.Context, _ string) (*model.Session, error) {
			return approvedSession(), nil
		},
	}

	svc := NewPaymentService(ledger, bookings, sessions, nil, nil, testConfig())

	if _, err := svc.ReconcilePayment(context.Background(), paidInput()); err != nil {
		t.Fatalf("expected convergence, got %v", err)
	}
	if !markPaidCalled {
		t.Error("expected duplicate insert to fall through to the update path")
	}
}

func TestReconcilePaymentValidation(t *testing.T) {
	svc := NewPaymentService(nil, nil, nil, nil, nil, testConfig())

	tests := []struct {
		name  string
		input ReconcileInput
	}{
		{"missing session id", ReconcileInput{StudentEmail: "s@example.com"}},
		{"missing student email", ReconcileInput{SessionID: "6651f0000000000000000001"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ReconcilePayment(context.Background(), tt.input)
			appErr, ok := err.(*apperrors.AppError)
			if !ok || appErr.Code != apperrors.CodeInvalidInput {
				t.Errorf("expected INVALID_INPUT, got %v", err)
			}
		})
	}
}

func TestReconcilePaymentUnknownSession(t *testing.T) {
	bookings := &mockBookingStore{
		findByPairFunc: func(_ context.Context, _, _ string) (*model.Booking, error) {
			return nil, bookingserrors.ErrNotFound
		},
	}
	sessions := &mockSessionFinder{
		findByIDFunc: func(_ context.Context, _ string) (*model.Session, error) {
			return nil, sessionserrors.ErrNotFound
		},
	}

	svc := NewPaymentService(nil, bookings, sessions, nil, nil, testConfig())

	_, err := svc.ReconcilePayment(context.Background(), paidInput())
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestReconcilePaymentLedgerFailure(t *testing.T) {
	bookings := &mockBookingStore{
		findByPairFunc: func(_ context.Context, _, _ string) (*model.Booking, error) {
			return &model.Booking{SessionID: "6651f0000000000000000001"}, nil
		},
		markPaidFunc: func(_ context.Context, _, _, _ string) (int64, error) {
			return 1, nil
		},
	}
	ledger := &mockLedger{
		insertFunc: func(_ context.Context, _ *model.Payment) (string, error) {
			return "", errors.New("write concern failed")
		},
	}

	svc := NewPaymentService(ledger, bookings, nil, nil, nil, testConfig())

	_, err := svc.ReconcilePayment(context.Background(), paidInput())
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeInternal {
		t.Errorf("expected INTERNAL, got %v", err)
	}
}

func TestReconcilePaymentPublishFailureDoesNotFail(t *testing.T) {
	bookings := &mockBookingStore{
		findByPairFunc: func(_ context.Context, _, _ string) (*model.Booking, error) {
			return &model.Booking{SessionID: "6651f0000000000000000001"}, nil
		},
		markPaidFunc: func(_ context.Context, _, _, _ string) (int64, error) {
			return 1, nil
		},
	}
	ledger := &mockLedger{
		insertFunc: func(_ context.Context, _ *model.Payment) (string, error) {
			return "payment", nil
		},
	}
	publisher := &mockPublisher{err: errors.New("broker down")}

	svc := NewPaymentService(ledger, bookings, nil, nil, publisher, testConfig())

	if _, err := svc.ReconcilePayment(context.Background(), paidInput()); err != nil {
		t.Errorf("expected publish failure to be swallowed, got %v", err)
	}
}

func TestCreateIntent(t *testing.T) {
	var gotAmount int64
	var gotCurrency string

	gw := &mockGateway{
		createIntentFunc: func(_ context.Context, amountMinor int64, currency string) (string, error) {
			gotAmount = amountMinor
			gotCurrency = currency
			return "pi_secret", nil
		},
	}

	svc := NewPaymentService(nil, nil, nil, gw, nil, testConfig())

	secret, err := svc.CreateIntent(context.Background(), 250, "bdt")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if secret != "pi_secret" {
		t.Errorf("expected client secret passthrough, got %q", secret)
	}
	if gotAmount != 25000 {
		t.Errorf("expected minor units 25000, got %d", gotAmount)
	}
	if gotCurrency != "bdt" {
		t.Errorf("expected currency bdt, got %q", gotCurrency)
	}
}

func TestCreateIntentDefaultsCurrency(t *testing.T) {
	var gotCurrency string

	gw := &mockGateway{
		createIntentFunc: func(_ context.Context, _ int64, currency string) (string, error) {
			gotCurrency = currency
			return "pi_secret", nil
		},
	}

	svc := NewPaymentService(nil, nil, nil, gw, nil, testConfig())

	if _, err := svc.CreateIntent(context.Background(), 19.99, ""); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotCurrency != "usd" {
		t.Errorf("expected configured currency usd, got %q", gotCurrency)
	}
}

func TestCreateIntentRejectsNonPositiveAmount(t *testing.T) {
	svc := NewPaymentService(nil, nil, nil, nil, nil, testConfig())

	for _, amount := range []float64{0, -5} {
		_, err := svc.CreateIntent(context.Background(), amount, "usd")
		appErr, ok := err.(*apperrors.AppError)
		if !ok || appErr.Code != apperrors.CodeInvalidInput {
			t.Errorf("amount %v: expected INVALID_INPUT, got %v", amount, err)
		}
	}
}

func TestCreateIntentGatewayError(t *testing.T) {
	gw := &mockGateway{
		createIntentFunc: func(_ context.Context, _ int64, _ string) (string, error) {
			return "", errors.New("card network unavailable")
		},
	}

	svc := NewPaymentService(nil, nil, nil, gw, nil, testConfig())

	_, err := svc.CreateIntent(context.Background(), 100, "usd")
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeGateway {
		t.Errorf("expected GATEWAY_ERROR, got %v", err)
	}
}
