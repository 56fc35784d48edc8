package service

import (
	"context"
	"errors"

	materialserrors "studysphere/internal/materials/errors"
	"studysphere/internal/materials/repository"
	"studysphere/pkg/config"
	apperrors "studysphere/pkg/errors"
	"studysphere/pkg/model"
	"studysphere/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
)

type MaterialService interface {
	Create(ctx context.Context, material *model.Material) error
	ListBySession(ctx context.Context, sessionID string, limit int, offset int64) ([]*model.Material, error)
	ListByTutor(ctx context.Context, tutorEmail string, limit int, offset int64) ([]*model.Material, error)
	Delete(ctx context.Context, id, tutorEmail string) error
}

type materialService struct {
	repo     repository.MaterialRepository
	validate *validator.Validate
	cfg      *config.Config
}

func NewMaterialService(repo repository.MaterialRepository, cfg *config.Config) MaterialService {
	return &materialService{
		repo:     repo,
		validate: validator.New(),
		cfg:      cfg,
	}
}

func (s *materialService) Create(ctx context.Context, material *model.Material) error {
	material.TutorEmail = sanitizer.NormalizeEmail(material.TutorEmail)
	material.Title = sanitizer.NormalizeTitle(material.Title)

	if err := s.validate.Struct(material); err != nil {
		return apperrors.Validation("Material validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, material); err != nil {
		s.cfg.Log.Error("Failed to create material", "session_id", material.SessionID, "error", err)
		return apperrors.Internal("Failed to create material", err)
	}

	s.cfg.Log.Info("Material uploaded", "id", material.ID, "session_id", material.SessionID)
	return nil
}

func (s *materialService) ListBySession(ctx context.Context, sessionID string, limit int, offset int64) ([]*model.Material, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("Session ID cannot be empty")
	}

	materials, err := s.repo.FindBySession(ctx, sessionID, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list materials", "session_id", sessionID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve materials", err)
	}

	return materials, nil
}

func (s *materialService) ListByTutor(ctx context.Context, tutorEmail string, limit int, offset int64) ([]*model.Material, error) {
	if tutorEmail == "" {
		return nil, apperrors.InvalidInput("Tutor email cannot be empty")
	}

	materials, err := s.repo.FindByTutor(ctx, sanitizer.NormalizeEmail(tutorEmail), limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list materials", "tutor_email", tutorEmail, "error", err)
		return nil, apperrors.Internal("Failed to retrieve materials", err)
	}

	return materials, nil
}

func (s *materialService) Delete(ctx context.Context, id, tutorEmail string) error {
	if id == "" {
		return apperrors.InvalidInput("Material ID cannot be empty")
	}

	err := s.repo.Delete(ctx, id, sanitizer.NormalizeEmail(tutorEmail))
	if err != nil {
		if errors.Is(err, materialserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Material", id)
		}
		if errors.Is(err, materialserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid material ID format")
		}
		s.cfg.Log.Error("Failed to delete material", "id", id, "error", err)
		return apperrors.Internal("Failed to delete material", err)
	}

	s.cfg.Log.Info("Material deleted", "id", id)
	return nil
}
