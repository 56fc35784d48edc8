package service

import (
	"context"
	"errors"

	bookingserrors "studysphere/internal/bookings/errors"
	"studysphere/internal/bookings/repository"
	sessionserrors "studysphere/internal/sessions/errors"
	userserrors "studysphere/internal/users/errors"
	"studysphere/pkg/config"
	apperrors "studysphere/pkg/errors"
	"studysphere/pkg/model"
	"studysphere/pkg/sanitizer"
)

// SessionFinder is the slice of the session store the booking workflow
// consumes.
type SessionFinder interface {
	FindByID(ctx context.Context, id string) (*model.Session, error)
}

// UserFinder resolves a payer email to a known user for the role gate.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

type BookingService interface {
	Create(ctx context.Context, sessionID, studentEmail string) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	ListByStudent(ctx context.Context, studentEmail string, limit int, offset int64) ([]*model.Booking, error)
}

type bookingService struct {
	repo     repository.BookingRepository
	sessions SessionFinder
	users    UserFinder
	cfg      *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	sessions SessionFinder,
	users UserFinder,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:     repo,
		sessions: sessions,
		users:    users,
		cfg:      cfg,
	}
}

// Create books a session for a student ahead of payment. The booking is
// inserted unpaid; payment reconciliation later flips it to paid. The
// unique pair index makes a concurrent double-book lose with a conflict
// instead of inserting a second row.
func (s *bookingService) Create(ctx context.Context, sessionID, studentEmail string) (*model.Booking, error) {
	if sessionID == "" || studentEmail == "" {
		return nil, apperrors.InvalidInput("Session ID and student email are required")
	}
	studentEmail = sanitizer.NormalizeEmail(studentEmail)

	user, err := s.users.FindByEmail(ctx, studentEmail)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.Forbidden("Only registered students can book sessions")
		}
		s.cfg.Log.Error("Failed to resolve booking user", "student_email", studentEmail, "error", err)
		return nil, apperrors.Internal("Failed to resolve user", err)
	}
	if user.Role != model.RoleStudent {
		return nil, apperrors.Forbidden("Only students can book sessions")
	}

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sessionserrors.ErrNotFound) || errors.Is(err, sessionserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Session", sessionID)
		}
		s.cfg.Log.Error("Failed to resolve booking session", "session_id", sessionID, "error", err)
		return nil, apperrors.Internal("Failed to resolve session", err)
	}

	booking := &model.Booking{
		SessionID:    session.ID,
		SessionTitle: session.Title,
		TutorEmail:   session.TutorEmail,
		StudentEmail: studentEmail,
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		if errors.Is(err, bookingserrors.ErrDuplicatePair) {
			return nil, apperrors.Conflict("Session is already booked by this student")
		}
		s.cfg.Log.Error("Failed to create booking", "session_id", sessionID, "student_email", studentEmail, "error", err)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	s.cfg.Log.Info("Booking created",
		"id", booking.ID,
		"session_id", sessionID,
		"student_email", studentEmail,
	)
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) ListByStudent(ctx context.Context, studentEmail string, limit int, offset int64) ([]*model.Booking, error) {
	if studentEmail == "" {
		return nil, apperrors.InvalidInput("Student email cannot be empty")
	}

	bookings, err := s.repo.FindByStudent(ctx, sanitizer.NormalizeEmail(studentEmail), limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings", "student_email", studentEmail, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}

	return bookings, nil
}
