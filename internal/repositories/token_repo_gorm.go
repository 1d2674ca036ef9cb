package repositories

import (
	"context"
	"time"

	"task-manager/api/internal/apperrors"
	"task-manager/api/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type GormTokenRepo struct {
	db *gorm.DB
}

func NewGormTokenRepo(db *gorm.DB) *GormTokenRepo {
	return &GormTokenRepo{db: db}
}

func (r *GormTokenRepo) Create(ctx context.Context, token *models.Token) error {
	return gormError("create token", r.db.WithContext(ctx).Create(token).Error)
}

func (r *GormTokenRepo) FindByRefreshToken(ctx context.Context, refreshToken string) (*models.Token, error) {
	var token models.Token
	if err := r.db.WithContext(ctx).Where("refresh_token = ?", refreshToken).First(&token).Error; err != nil {
		return nil, gormError("find token", err)
	}
	return &token, nil
}

// Delete reports ErrNotFound when no row was removed, so concurrent
// consumers of one refresh token see exactly one success.
func (r *GormTokenRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Token{}, "id = ?", id)
	if res.Error != nil {
		return gormError("delete token", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *GormTokenRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return gormError("delete user tokens", r.db.WithContext(ctx).Delete(&models.Token{}, "user_id = ?", userID).Error)
}

func (r *GormTokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.Token{}, "expires_at <= ?", now)
	return res.RowsAffected, gormError("delete expired tokens", res.Error)
}
