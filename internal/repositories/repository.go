package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"task-manager/api/internal/apperrors"
	"task-manager/api/internal/models"

	"github.com/gofrs/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)
	Update(ctx context.Context, task *models.Task) error
	// UpdateStatus writes only the status column.
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.TaskStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteByUser removes the user's own tasks and unassigns the rest.
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	Stats(ctx context.Context) (*models.TaskStats, error)
}

type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	List(ctx context.Context) ([]models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

type CarRepository interface {
	Create(ctx context.Context, car *models.Car) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Car, error)
	List(ctx context.Context) ([]models.Car, error)
	Update(ctx context.Context, car *models.Car) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

type TokenRepository interface {
	Create(ctx context.Context, token *models.Token) error
	FindByRefreshToken(ctx context.Context, refreshToken string) (*models.Token, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// UserDataRepository is implemented by every store holding rows that belong
// to a user. Backends without foreign key cascades rely on it when a user
// is deleted.
type UserDataRepository interface {
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

// Repositories bundles one implementation of every store for wiring.
type Repositories struct {
	Users  UserRepository
	Tasks  TaskRepository
	Items  ItemRepository
	Cars   CarRepository
	Tokens TokenRepository
}

func NewGormRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:  NewGormUserRepo(db),
		Tasks:  NewGormTaskRepo(db),
		Items:  NewGormItemRepo(db),
		Cars:   NewGormCarRepo(db),
		Tokens: NewGormTokenRepo(db),
	}
}

func NewMongoRepositories(db *mongo.Database) *Repositories {
	return &Repositories{
		Users:  NewMongoUserRepo(db),
		Tasks:  NewMongoTaskRepo(db),
		Items:  NewMongoItemRepo(db),
		Cars:   NewMongoCarRepo(db),
		Tokens: NewMongoTokenRepo(db),
	}
}

func gormError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.ErrConflict
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperrors.ErrUnknownReference
	}
	return fmt.Errorf("%s: %w", op, err)
}

func mongoError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperrors.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return apperrors.ErrConflict
	}
	return fmt.Errorf("%s: %w", op, err)
}
