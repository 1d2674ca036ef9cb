package repositories

import (
	"context"

	"task-manager/api/internal/apperrors"
	"task-manager/api/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type GormCarRepo struct {
	db *gorm.DB
}

func NewGormCarRepo(db *gorm.DB) *GormCarRepo {
	return &GormCarRepo{db: db}
}

func (r *GormCarRepo) Create(ctx context.Context, car *models.Car) error {
	return gormError("create car", r.db.WithContext(ctx).Create(car).Error)
}

func (r *GormCarRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Car, error) {
	var car models.Car
	if err := r.db.WithContext(ctx).First(&car, "id = ?", id).Error; err != nil {
		return nil, gormError("find car", err)
	}
	return &car, nil
}

func (r *GormCarRepo) List(ctx context.Context) ([]models.Car, error) {
	cars := []models.Car{}
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id").Find(&cars).Error
	return cars, gormError("list cars", err)
}

func (r *GormCarRepo) Update(ctx context.Context, car *models.Car) error {
	res := r.db.WithContext(ctx).Model(car).Select("*").Omit("created_at").Updates(car)
	if res.Error != nil {
		return gormError("update car", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *GormCarRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Car{}, "id = ?", id)
	if res.Error != nil {
		return gormError("delete car", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *GormCarRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return gormError("delete user cars", r.db.WithContext(ctx).Delete(&models.Car{}, "created_by = ?", userID).Error)
}
