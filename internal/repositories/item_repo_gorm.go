package repositories

import (
	"context"

	"task-manager/api/internal/apperrors"
	"task-manager/api/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type GormItemRepo struct {
	db *gorm.DB
}

func NewGormItemRepo(db *gorm.DB) *GormItemRepo {
	return &GormItemRepo{db: db}
}

func (r *GormItemRepo) Create(ctx context.Context, item *models.Item) error {
	return gormError("create item", r.db.WithContext(ctx).Create(item).Error)
}

func (r *GormItemRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, gormError("find item", err)
	}
	return &item, nil
}

func (r *GormItemRepo) List(ctx context.Context) ([]models.Item, error) {
	items := []models.Item{}
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id").Find(&items).Error
	return items, gormError("list items", err)
}

func (r *GormItemRepo) Update(ctx context.Context, item *models.Item) error {
	res := r.db.WithContext(ctx).Model(item).Select("*").Omit("created_at").Updates(item)
	if res.Error != nil {
		return gormError("update item", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *GormItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Item{}, "id = ?", id)
	if res.Error != nil {
		return gormError("delete item", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *GormItemRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return gormError("delete user items", r.db.WithContext(ctx).Delete(&models.Item{}, "owner_id = ?", userID).Error)
}
