package services

import (
	"context"

	"task-manager/api/internal/apperrors"
	"task-manager/api/internal/models"
	"task-manager/api/internal/repositories"

	"github.com/gofrs/uuid"
)

type UserService interface {
	List(ctx context.Context) ([]models.User, error)
	ChangeRole(ctx context.Context, id uuid.UUID, role models.Role) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type UserServiceImpl struct {
	users repositories.UserRepository
	owned []repositories.UserDataRepository
}

// NewUserService wires user administration. owned lists every store whose
// rows are removed with their user, in the order they are cleared.
func NewUserService(users repositories.UserRepository, owned ...repositories.UserDataRepository) *UserServiceImpl {
	return &UserServiceImpl{users: users, owned: owned}
}

func (s *UserServiceImpl) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *UserServiceImpl) ChangeRole(ctx context.Context, id uuid.UUID, role models.Role) (*models.User, error) {
	if !role.IsValid() {
		return nil, apperrors.ErrInvalidRole
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes the user together with their tasks, items, cars and
// refresh tokens. Tasks assigned to the user are left unassigned.
func (s *UserServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return err
	}
	for _, repo := range s.owned {
		if err := repo.DeleteByUser(ctx, id); err != nil {
			return err
		}
	}
	return s.users.Delete(ctx, id)
}
