package service

import (
	"context"
	"errors"

	noteserrors "studysphere/internal/notes/errors"
	"studysphere/internal/notes/repository"
	"studysphere/pkg/config"
	apperrors "studysphere/pkg/errors"
	"studysphere/pkg/model"
	"studysphere/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
)

type NoteService interface {
	Create(ctx context.Context, note *model.Note) error
	ListByEmail(ctx context.Context, email string, limit int, offset int64) ([]*model.Note, error)
	Update(ctx context.Context, id, email string, updates *model.NoteUpdate) error
	Delete(ctx context.Context, id, email string) error
}

type noteService struct {
	repo     repository.NoteRepository
	validate *validator.Validate
	cfg      *config.Config
}

func NewNoteService(repo repository.NoteRepository, cfg *config.Config) NoteService {
	return &noteService{
		repo:     repo,
		validate: validator.New(),
		cfg:      cfg,
	}
}

func (s *noteService) Create(ctx context.Context, note *model.Note) error {
	note.Email = sanitizer.NormalizeEmail(note.Email)
	note.Title = sanitizer.NormalizeTitle(note.Title)
	note.Description = sanitizer.NormalizeFreeText(note.Description)

	if err := s.validate.Struct(note); err != nil {
		return apperrors.Validation("Note validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, note); err != nil {
		s.cfg.Log.Error("Failed to create note", "email", note.Email, "error", err)
		return apperrors.Internal("Failed to create note", err)
	}

	return nil
}

func (s *noteService) ListByEmail(ctx context.Context, email string, limit int, offset int64) ([]*model.Note, error) {
	if email == "" {
		return nil, apperrors.InvalidInput("Email cannot be empty")
	}

	notes, err := s.repo.FindByEmail(ctx, sanitizer.NormalizeEmail(email), limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list notes", "email", email, "error", err)
		return nil, apperrors.Internal("Failed to retrieve notes", err)
	}

	return notes, nil
}

func (s *noteService) Update(ctx context.Context, id, email string, updates *model.NoteUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Note ID cannot be empty")
	}

	if err := s.validate.Struct(updates); err != nil {
		return apperrors.Validation("Note validation failed", map[string]any{"error": err.Error()})
	}

	fields := bson.M{}
	if updates.Title != "" {
		fields["title"] = sanitizer.NormalizeTitle(updates.Title)
	}
	if updates.Description != "" {
		fields["description"] = sanitizer.NormalizeFreeText(updates.Description)
	}
	if len(fields) == 0 {
		return apperrors.InvalidInput("No updatable fields supplied")
	}

	err := s.repo.Update(ctx, id, sanitizer.NormalizeEmail(email), fields)
	if err != nil {
		return s.mapRepoError(err, id, "update")
	}

	return nil
}

func (s *noteService) Delete(ctx context.Context, id, email string) error {
	if id == "" {
		return apperrors.InvalidInput("Note ID cannot be empty")
	}

	err := s.repo.Delete(ctx, id, sanitizer.NormalizeEmail(email))
	if err != nil {
		return s.mapRepoError(err, id, "delete")
	}

	return nil
}

func (s *noteService) mapRepoError(err error, id, op string) error {
	if errors.Is(err, noteserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Note", id)
	}
	if errors.Is(err, noteserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid note ID format")
	}
	s.cfg.Log.Error("Note store operation failed", "op", op, "id", id, "error", err)
	return apperrors.Internal("Failed to "+op+" note", err)
}
