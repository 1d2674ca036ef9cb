package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"task-manager/api/internal/apperrors"
	"task-manager/api/internal/models"

	"github.com/gofrs/uuid"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
}

// Register creates a user account. Self-registration never grants admin;
// promotion goes through UserService.ChangeRole.
func (s *AuthServiceImpl) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := NormalizeEmail(in.Email)

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, apperrors.ErrDuplicateEmail
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	if in.Role == models.RoleAdmin {
		log.Printf("auth: downgrading self-registered admin %s to user", email)
	}

	hashed, err := HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:       uuid.Must(uuid.NewV4()),
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: hashed,
		Role:     models.RoleUser,
		Active:   true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// the unique index catches a concurrent registration of the same email
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, err
	}
	return s.issue(ctx, user)
}
