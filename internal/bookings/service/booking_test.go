package service

import (
	"context"
	"io"
	"testing"

	bookingserrors "studysphere/internal/bookings/errors"
	sessionserrors "studysphere/internal/sessions/errors"
	userserrors "studysphere/internal/users/errors"
	"studysphere/pkg/config"
	apperrors "studysphere/pkg/errors"
	"studysphere/pkg/logger"
	"studysphere/pkg/model"
)

type mockBookingRepo struct {
	createFunc        func(ctx context.Context, booking *model.Booking) error
	findByIDFunc      func(ctx context.Context, id string) (*model.Booking, error)
	findByPairFunc    func(ctx context.Context, sessionID, studentEmail string) (*model.Booking, error)
	findByStudentFunc func(ctx context.Context, studentEmail string, limit int, offset int64) ([]*model.Booking, error)
	markPaidFunc      func(ctx context.Context, sessionID, studentEmail, transactionID string) (int64, error)
}

func (m *mockBookingRepo) EnsureIndexes(_ context.Context) error { return nil }

func (m *mockBookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	return m.createFunc(ctx, booking)
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockBookingRepo) FindByPair(ctx context.Context, sessionID, studentEmail string) (*model.Booking, error) {
	return m.findByPairFunc(ctx, sessionID, studentEmail)
}

func (m *mockBookingRepo) FindByStudent(ctx context.Context, studentEmail string, limit int, offset int64) ([]*model.Booking, error) {
	return m.findByStudentFunc(ctx, studentEmail, limit, offset)
}

func (m *mockBookingRepo) MarkPaid(ctx context.Context, sessionID, studentEmail, transactionID string) (int64, error) {
	return m.markPaidFunc(ctx, sessionID, studentEmail, transactionID)
}

type mockSessionFinder struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Session, error)
}

func (m *mockSessionFinder) FindByID(ctx context.Context, id string) (*model.Session, error) {
	return m.findByIDFunc(ctx, id)
}

type mockUserFinder struct {
	findByEmailFunc func(ctx context.Context, email string) (*model.User, error)
}

func (m *mockUserFinder) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.findByEmailFunc(ctx, email)
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{Output: io.Discard}),
	}
}

func studentFinder() *mockUserFinder {
	return &mockUserFinder{
		findByEmailFunc: func(_ context.Context, email string) (*model.User, error) {
			return &model.User{Email: email, Role: model.RoleStudent}, nil
		},
	}
}

func knownSessionFinder() *mockSessionFinder {
	return &mockSessionFinder{
		findByIDFunc: func(_ context.Context, id string) (*model.Session, error) {
			return &model.Session{
				ID:         id,
				Title:      "Intro to Go",
				TutorEmail: "tutor@example.com",
				Status:     model.SessionStatusApproved,
			}, nil
		},
	}
}

func TestCreateBooking(t *testing.T) {
	var created *model.Booking
	repo := &mockBookingRepo{
		createFunc: func(_ context.Context, booking *model.Booking) error {
			booking.ID = "6651f0000000000000000009"
			created = booking
			return nil
		},
	}

	svc := NewBookingService(repo, knownSessionFinder(), studentFinder(), testConfig())

	booking, err := svc.Create(context.Background(), "6651f0000000000000000001", "Student@Example.com")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if booking.ID == "" {
		t.Error("expected booking id to be set")
	}
	if created.SessionTitle != "Intro to Go" || created.TutorEmail != "tutor@example.com" {
		t.Errorf("expected denormalized session fields, got %+v", created)
	}
	if created.StudentEmail != "student@example.com" {
		t.Errorf("expected normalized student email, got %q", created.StudentEmail)
	}
	if created.PaymentStatus != "" {
		t.Errorf("expected unpaid booking, got status %q", created.PaymentStatus)
	}
	if created.FeePaid != 0 {
		t.Errorf("expected no fee on unpaid booking, got %d", created.FeePaid)
	}
}

func TestCreateBookingDuplicatePair(t *testing.T) {
	repo := &mockBookingRepo{
		createFunc: func(_ context.Context, _ *model.Booking) error {
			return bookingserrors.ErrDuplicatePair
		},
	}

	svc := NewBookingService(repo, knownSessionFinder(), studentFinder(), testConfig())

	_, err := svc.Create(context.Background(), "6651f0000000000000000001", "student@example.com")
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected CONFLICT, got %v", err)
	}
}

func TestCreateBookingRoleGate(t *testing.T) {
	tests := []struct {
		name  string
		users *mockUserFinder
	}{
		{
			"unknown user",
			&mockUserFinder{
				findByEmailFunc: func(_ context.Context, _ string) (*model.User, error) {
					return nil, userserrors.ErrNotFound
				},
			},
		},
		{
			"tutor cannot book",
			&mockUserFinder{
				findByEmailFunc: func(_ context.Context, email string) (*model.User, error) {
					return &model.User{Email: email, Role: model.RoleTutor}, nil
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewBookingService(nil, knownSessionFinder(), tt.users, testConfig())

			_, err := svc.Create(context.Background(), "6651f0000000000000000001", "someone@example.com")
			appErr, ok := err.(*apperrors.AppError)
			if !ok || appErr.Code != apperrors.CodeForbidden {
				t.Errorf("expected FORBIDDEN, got %v", err)
			}
		})
	}
}

func TestCreateBookingUnknownSession(t *testing.T) {
	sessions := &mockSessionFinder{
		findByIDFunc: func(_ context.Context, _ string) (*model.Session, error) {
			return nil, sessionserrors.ErrNotFound
		},
	}

	svc := NewBookingService(nil, sessions, studentFinder(), testConfig())

	_, err := svc.Create(context.Background(), "6651f0000000000000000001", "student@example.com")
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	svc := NewBookingService(nil, nil, nil, testConfig())

	tests := []struct {
		name      string
		sessionID string
		email     string
	}{
		{"missing session id", "", "student@example.com"},
		{"missing email", "6651f0000000000000000001", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.sessionID, tt.email)
			appErr, ok := err.(*apperrors.AppError)
			if !ok || appErr.Code != apperrors.CodeInvalidInput {
				t.Errorf("expected INVALID_INPUT, got %v", err)
			}
		})
	}
}

func TestGetByID(t *testing.T) {
	repo := &mockBookingRepo{
		findByIDFunc: func(_ context.Context, id string) (*model.Booking, error) {
			if id == "missing" {
				return nil, bookingserrors.ErrNotFound
			}
			return &model.Booking{ID: id}, nil
		},
	}

	svc := NewBookingService(repo, nil, nil, testConfig())

	if _, err := svc.GetByID(context.Background(), "6651f0000000000000000001"); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	_, err := svc.GetByID(context.Background(), "missing")
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}
