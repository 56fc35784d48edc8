package service

import (
	"context"
	"io"
	"testing"

	userserrors "studysphere/internal/users/errors"
	"studysphere/pkg/config"
	apperrors "studysphere/pkg/errors"
	"studysphere/pkg/logger"
	"studysphere/pkg/model"
)

type mockUserRepo struct {
	findByEmailFunc   func(ctx context.Context, email string) (*model.User, error)
	upsertOnLoginFunc func(ctx context.Context, user *model.User) (*model.User, error)
	findAllFunc       func(ctx context.Context, search string, limit int, offset int64) ([]*model.User, error)
	countFunc         func(ctx context.Context, search string) (int64, error)
	updateRoleFunc    func(ctx context.Context, email, role string) error
}

func (m *mockUserRepo) EnsureIndexes(_ context.Context) error { return nil }

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.findByEmailFunc(ctx, email)
}

func (m *mockUserRepo) UpsertOnLogin(ctx context.Context, user *model.User) (*model.User, error) {
	return m.upsertOnLoginFunc(ctx, user)
}

func (m *mockUserRepo) FindAll(ctx context.Context, search string, limit int, offset int64) ([]*model.User, error) {
	return m.findAllFunc(ctx, search, limit, offset)
}

func (m *mockUserRepo) Count(ctx context.Context, search string) (int64, error) {
	return m.countFunc(ctx, search)
}

func (m *mockUserRepo) UpdateRole(ctx context.Context, email, role string) error {
	return m.updateRoleFunc(ctx, email, role)
}

type mockIssuer struct {
	issueFunc func(email, role string) (string, error)
}

func (m *mockIssuer) Issue(email, role string) (string, error) {
	return m.issueFunc(email, role)
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{Output: io.Discard}),
	}
}

func TestLoginUpsertsAndIssuesToken(t *testing.T) {
	var upserted *model.User
	repo := &mockUserRepo{
		upsertOnLoginFunc: func(_ context.Context, user *model.User) (*model.User, error) {
			upserted = user
			stored := *user
			stored.ID = "6651f0000000000000000002"
			return &stored, nil
		},
	}
	issuer := &mockIssuer{
		issueFunc: func(email, role string) (string, error) {
			if email != "new@example.com" || role != model.RoleStudent {
				t.Errorf("unexpected token subject %s/%s", email, role)
			}
			return "signed-token", nil
		},
	}

	svc := NewUserService(repo, issuer, testConfig())

	result, err := svc.Login(context.Background(), LoginInput{
		Name:  "  New User ",
		Email: "New@Example.com",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if result.Token != "signed-token" {
		t.Errorf("expected issued token, got %q", result.Token)
	}
	if upserted.Email != "new@example.com" {
		t.Errorf("expected normalized email, got %q", upserted.Email)
	}
	if upserted.Role != model.RoleStudent {
		t.Errorf("expected student role on first login, got %q", upserted.Role)
	}
}

func TestLoginRequiresEmail(t *testing.T) {
	svc := NewUserService(nil, nil, testConfig())

	_, err := svc.Login(context.Background(), LoginInput{Name: "No Email"})
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestUpdateRole(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		role     string
		repoErr  error
		wantCode string
	}{
		{"valid role", "user@example.com", model.RoleTutor, nil, ""},
		{"unknown role", "user@example.com", "owner", nil, apperrors.CodeInvalidInput},
		{"missing email", "", model.RoleTutor, nil, apperrors.CodeInvalidInput},
		{"unknown user", "ghost@example.com", model.RoleAdmin, userserrors.ErrNotFound, apperrors.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockUserRepo{
				updateRoleFunc: func(_ context.Context, _, _ string) error {
					return tt.repoErr
				},
			}
			svc := NewUserService(repo, nil, testConfig())

			err := svc.UpdateRole(context.Background(), tt.email, tt.role)
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			appErr, ok := err.(*apperrors.AppError)
			if !ok || appErr.Code != tt.wantCode {
				t.Errorf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}
