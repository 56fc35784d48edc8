package service

import (
	"context"
	"errors"
	"sync"

	sessionserrors "studysphere/internal/sessions/errors"
	"studysphere/internal/sessions/repository"
	"studysphere/internal/sessions/validator"
	"studysphere/pkg/config"
	mongotx "studysphere/pkg/db/mongo"
	apperrors "studysphere/pkg/errors"
	"studysphere/pkg/model"
	"studysphere/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SessionDependents are the per-session documents removed alongside a
// session delete.
type SessionDependents interface {
	DeleteBySession(ctx context.Context, sessionID string) error
}

type SessionService interface {
	Create(ctx context.Context, session *model.Session) error
	GetByID(ctx context.Context, id string) (*model.Session, error)
	List(ctx context.Context, status string, limit int, offset int64) ([]*model.Session, int64, error)
	ListByTutor(ctx context.Context, tutorEmail string, limit int, offset int64) ([]*model.Session, error)
	Approve(ctx context.Context, id string, registrationFee int) error
	Reject(ctx context.Context, id string, reason, comment string) error
	Resubmit(ctx context.Context, id string) error
	Update(ctx context.Context, id string, updates *model.SessionUpdate) error
	Delete(ctx context.Context, id string) error
}

type sessionService struct {
	repo       repository.SessionRepository
	validator  *validator.SessionValidator
	dependents []SessionDependents
	txManager  mongotx.TransactionManager
	cfg        *config.Config
}

func NewSessionService(
	repo repository.SessionRepository,
	validator *validator.SessionValidator,
	txManager mongotx.TransactionManager,
	cfg *config.Config,
	dependents ...SessionDependents,
) SessionService {
	return &sessionService{
		repo:       repo,
		validator:  validator,
		dependents: dependents,
		txManager:  txManager,
		cfg:        cfg,
	}
}

// Create records a tutor submission. Sessions always enter the approval
// queue as pending with a zero fee; only an admin sets the real fee.
func (s *sessionService) Create(ctx context.Context, session *model.Session) error {
	session.Status = model.SessionStatusPending
	session.RegistrationFee = 0
	session.RejectionReason = ""
	session.RejectionComment = ""
	s.sanitize(session)

	if err := s.validator.Validate(session); err != nil {
		s.cfg.Log.Warn("Session validation failed", "error", err)
		return apperrors.Validation("Session validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, session); err != nil {
		s.cfg.Log.Error("Failed to create session", "error", err)
		return apperrors.Internal("Failed to create session", err)
	}

	s.cfg.Log.Info("Session submitted for approval",
		"id", session.ID,
		"title", session.Title,
		"tutor_email", session.TutorEmail,
	)
	return nil
}

func (s *sessionService) GetByID(ctx context.Context, id string) (*model.Session, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Session ID cannot be empty")
	}

	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "retrieve")
	}

	return session, nil
}

func (s *sessionService) List(ctx context.Context, status string, limit int, offset int64) ([]*model.Session, int64, error) {
	if status != "" &&
		status != model.SessionStatusPending &&
		status != model.SessionStatusApproved &&
		status != model.SessionStatusRejected {
		return nil, 0, apperrors.InvalidInput("status must be one of: pending, approved, rejected")
	}

	var count int64
	var sessions []*model.Session
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByStatus(ctx, status)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count sessions", "status", status, "error", errCount)
			errCount = apperrors.Internal("Failed to count sessions", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		sessions, errFind = s.repo.FindAll(ctx, status, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list sessions", "status", status, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve sessions", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return sessions, count, nil
}

func (s *sessionService) ListByTutor(ctx context.Context, tutorEmail string, limit int, offset int64) ([]*model.Session, error) {
	if tutorEmail == "" {
		return nil, apperrors.InvalidInput("Tutor email cannot be empty")
	}

	sessions, err := s.repo.FindByTutor(ctx, sanitizer.NormalizeEmail(tutorEmail), limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list sessions by tutor", "tutor_email", tutorEmail, "error", err)
		return nil, apperrors.Internal("Failed to retrieve sessions", err)
	}

	return sessions, nil
}

func (s *sessionService) Approve(ctx context.Context, id string, registrationFee int) error {
	if id == "" {
		return apperrors.InvalidInput("Session ID cannot be empty")
	}
	if registrationFee < 0 {
		return apperrors.InvalidInput("Registration fee cannot be negative")
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return s.mapRepoError(err, id, "approve")
	}

	err := s.repo.Update(ctx, id, bson.M{
		"status":            model.SessionStatusApproved,
		"registration_fee":  registrationFee,
		"rejection_reason":  "",
		"rejection_comment": "",
	})
	if err != nil {
		return s.mapRepoError(err, id, "approve")
	}

	s.cfg.Log.Info("Session approved", "id", id, "registration_fee", registrationFee)
	return nil
}

func (s *sessionService) Reject(ctx context.Context, id string, reason, comment string) error {
	if id == "" {
		return apperrors.InvalidInput("Session ID cannot be empty")
	}
	if reason == "" {
		return apperrors.InvalidInput("Rejection reason cannot be empty")
	}

	err := s.repo.Update(ctx, id, bson.M{
		"status":            model.SessionStatusRejected,
		"rejection_reason":  sanitizer.NormalizeFreeText(reason),
		"rejection_comment": sanitizer.NormalizeFreeText(comment),
	})
	if err != nil {
		return s.mapRepoError(err, id, "reject")
	}

	s.cfg.Log.Info("Session rejected", "id", id, "reason", reason)
	return nil
}

// Resubmit moves a rejected session back into the approval queue.
func (s *sessionService) Resubmit(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Session ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapRepoError(err, id, "resubmit")
	}
	if existing.Status != model.SessionStatusRejected {
		return apperrors.Conflict("Only rejected sessions can be resubmitted")
	}

	err = s.repo.Update(ctx, id, bson.M{
		"status": model.SessionStatusPending,
	})
	if err != nil {
		return s.mapRepoError(err, id, "resubmit")
	}

	s.cfg.Log.Info("Session resubmitted for approval", "id", id)
	return nil
}

func (s *sessionService) Update(ctx context.Context, id string, updates *model.SessionUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Session ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapRepoError(err, id, "update")
	}
	if existing.Status != model.SessionStatusApproved {
		return apperrors.Conflict("Only approved sessions can be updated")
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Session update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	fields := bson.M{}
	if updates.Title != "" {
		fields["title"] = sanitizer.NormalizeTitle(updates.Title)
	}
	if updates.Description != "" {
		fields["description"] = sanitizer.NormalizeFreeText(updates.Description)
	}
	if updates.RegistrationStart != nil {
		fields["registration_start"] = *updates.RegistrationStart
	}
	if updates.RegistrationEnd != nil {
		fields["registration_end"] = *updates.RegistrationEnd
	}
	if updates.ClassStart != nil {
		fields["class_start"] = *updates.ClassStart
	}
	if updates.ClassEnd != nil {
		fields["class_end"] = *updates.ClassEnd
	}
	if updates.RegistrationFee != nil {
		fields["registration_fee"] = *updates.RegistrationFee
	}
	if len(fields) == 0 {
		return apperrors.InvalidInput("No updatable fields supplied")
	}

	if err := s.repo.Update(ctx, id, fields); err != nil {
		return s.mapRepoError(err, id, "update")
	}

	s.cfg.Log.Info("Session updated", "id", id)
	return nil
}

func (s *sessionService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Session ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapRepoError(err, id, "delete")
	}
	if existing.Status != model.SessionStatusApproved {
		return apperrors.Conflict("Only approved sessions can be deleted")
	}

	// Session and its dependent documents go together or not at all.
	err = s.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Delete(sessCtx, id); err != nil {
			return err
		}
		for _, dep := range s.dependents {
			if err := dep.DeleteBySession(sessCtx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return s.mapRepoError(err, id, "delete")
	}

	s.cfg.Log.Info("Session deleted", "id", id)
	return nil
}

func (s *sessionService) sanitize(session *model.Session) {
	session.Title = sanitizer.NormalizeTitle(session.Title)
	session.TutorName = sanitizer.NormalizeTitle(session.TutorName)
	session.TutorEmail = sanitizer.NormalizeEmail(session.TutorEmail)
	session.Description = sanitizer.NormalizeFreeText(session.Description)
}

func (s *sessionService) mapRepoError(err error, id, op string) error {
	if errors.Is(err, sessionserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Session", id)
	}
	if errors.Is(err, sessionserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid session ID format")
	}
	s.cfg.Log.Error("Session store operation failed", "op", op, "id", id, "error", err)
	return apperrors.Internal("Failed to "+op+" session", err)
}
