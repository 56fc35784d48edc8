package service

import (
	"context"
	"errors"

	"studysphere/internal/auth"
	userserrors "studysphere/internal/users/errors"
	"studysphere/internal/users/repository"
	"studysphere/pkg/config"
	apperrors "studysphere/pkg/errors"
	"studysphere/pkg/model"
	"studysphere/pkg/sanitizer"
)

type LoginInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	PhotoURL string `json:"photo_url"`
}

type LoginResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type UserService interface {
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, search string, limit int, offset int64) ([]*model.User, int64, error)
	UpdateRole(ctx context.Context, email, role string) error
}

type userService struct {
	repo   repository.UserRepository
	issuer auth.Issuer
	cfg    *config.Config
}

func NewUserService(repo repository.UserRepository, issuer auth.Issuer, cfg *config.Config) UserService {
	return &userService{
		repo:   repo,
		issuer: issuer,
		cfg:    cfg,
	}
}

// Login upserts the caller's profile and mints a token for it. First login
// creates the user as a student; later logins refresh name, photo and
// last_login without touching the role.
func (s *userService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if input.Email == "" {
		return nil, apperrors.InvalidInput("Email is required")
	}

	user := &model.User{
		Name:     sanitizer.NormalizeTitle(input.Name),
		Email:    sanitizer.NormalizeEmail(input.Email),
		PhotoURL: sanitizer.NormalizeFreeText(input.PhotoURL),
		Role:     model.RoleStudent,
	}

	stored, err := s.repo.UpsertOnLogin(ctx, user)
	if err != nil {
		s.cfg.Log.Error("Failed to upsert user on login", "email", user.Email, "error", err)
		return nil, apperrors.Internal("Failed to sign in", err)
	}

	token, err := s.issuer.Issue(stored.Email, stored.Role)
	if err != nil {
		s.cfg.Log.Error("Failed to issue token", "email", stored.Email, "error", err)
		return nil, apperrors.Internal("Failed to sign in", err)
	}

	s.cfg.Log.Info("User signed in", "email", stored.Email, "role", stored.Role)
	return &LoginResult{Token: token, User: stored}, nil
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if email == "" {
		return nil, apperrors.InvalidInput("Email cannot be empty")
	}

	user, err := s.repo.FindByEmail(ctx, sanitizer.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("User", email)
		}
		s.cfg.Log.Error("Failed to find user", "email", email, "error", err)
		return nil, apperrors.Internal("Failed to retrieve user", err)
	}

	return user, nil
}

func (s *userService) List(ctx context.Context, search string, limit int, offset int64) ([]*model.User, int64, error) {
	count, err := s.repo.Count(ctx, search)
	if err != nil {
		s.cfg.Log.Error("Failed to count users", "error", err)
		return nil, 0, apperrors.Internal("Failed to count users", err)
	}

	users, err := s.repo.FindAll(ctx, search, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list users", "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve users", err)
	}

	return users, count, nil
}

func (s *userService) UpdateRole(ctx context.Context, email, role string) error {
	if email == "" {
		return apperrors.InvalidInput("Email cannot be empty")
	}
	if role != model.RoleStudent && role != model.RoleTutor && role != model.RoleAdmin {
		return apperrors.InvalidInput("role must be one of: student, tutor, admin")
	}

	err := s.repo.UpdateRole(ctx, sanitizer.NormalizeEmail(email), role)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("User", email)
		}
		s.cfg.Log.Error("Failed to update user role", "email", email, "error", err)
		return apperrors.Internal("Failed to update role", err)
	}

	s.cfg.Log.Info("User role updated", "email", email, "role", role)
	return nil
}
