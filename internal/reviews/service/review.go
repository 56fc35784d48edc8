package service

import (
	"context"
	"errors"

	bookingserrors "studysphere/internal/bookings/errors"
	"studysphere/internal/reviews/repository"
	"studysphere/pkg/config"
	apperrors "studysphere/pkg/errors"
	"studysphere/pkg/model"
	"studysphere/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
)

// BookingFinder gates reviews to students who actually booked the session.
type BookingFinder interface {
	FindByPair(ctx context.Context, sessionID, studentEmail string) (*model.Booking, error)
}

type ReviewService interface {
	Create(ctx context.Context, review *model.Review) error
	ListBySession(ctx context.Context, sessionID string, limit int, offset int64) ([]*model.Review, error)
}

type reviewService struct {
	repo     repository.ReviewRepository
	bookings BookingFinder
	validate *validator.Validate
	cfg      *config.Config
}

func NewReviewService(repo repository.ReviewRepository, bookings BookingFinder, cfg *config.Config) ReviewService {
	return &reviewService{
		repo:     repo,
		bookings: bookings,
		validate: validator.New(),
		cfg:      cfg,
	}
}

func (s *reviewService) Create(ctx context.Context, review *model.Review) error {
	review.StudentEmail = sanitizer.NormalizeEmail(review.StudentEmail)
	review.StudentName = sanitizer.NormalizeTitle(review.StudentName)
	review.Comment = sanitizer.NormalizeFreeText(review.Comment)

	if err := s.validate.Struct(review); err != nil {
		return apperrors.Validation("Review validation failed", map[string]any{"error": err.Error()})
	}

	if _, err := s.bookings.FindByPair(ctx, review.SessionID, review.StudentEmail); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.Forbidden("Only students who booked the session can review it")
		}
		s.cfg.Log.Error("Failed to check booking for review", "session_id", review.SessionID, "error", err)
		return apperrors.Internal("Failed to verify booking", err)
	}

	if err := s.repo.Create(ctx, review); err != nil {
		s.cfg.Log.Error("Failed to create review", "session_id", review.SessionID, "error", err)
		return apperrors.Internal("Failed to create review", err)
	}

	s.cfg.Log.Info("Review created", "id", review.ID, "session_id", review.SessionID, "rating", review.Rating)
	return nil
}

func (s *reviewService) ListBySession(ctx context.Context, sessionID string, limit int, offset int64) ([]*model.Review, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("Session ID cannot be empty")
	}

	reviews, err := s.repo.FindBySession(ctx, sessionID, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list reviews", "session_id", sessionID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve reviews", err)
	}

	return reviews, nil
}
