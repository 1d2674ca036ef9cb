package repositories

import (
	"context"

	"task-manager/api/internal/apperrors"
	"task-manager/api/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type GormTaskRepo struct {
	db *gorm.DB
}

func NewGormTaskRepo(db *gorm.DB) *GormTaskRepo {
	return &GormTaskRepo{db: db}
}

func (r *GormTaskRepo) Create(ctx context.Context, task *models.Task) error {
	return gormError("create task", r.db.WithContext(ctx).Create(task).Error)
}

func (r *GormTaskRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		return nil, gormError("find task", err)
	}
	return &task, nil
}

func taskFilterScope(f TaskFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.OwnerID != nil {
			db = db.Where("owner_id = ?", *f.OwnerID)
		}
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		if f.Priority != "" {
			db = db.Where("priority = ?", f.Priority)
		}
		if f.Category != "" {
			db = db.Where(`LOWER(category) LIKE ? ESCAPE '\'`, likePattern(f.Category))
		}
		if f.Search != "" {
			like := likePattern(f.Search)
			db = db.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, like, like)
		}
		return db
	}
}

func (r *GormTaskRepo) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	f := filter.Normalize()

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Task{}).Scopes(taskFilterScope(f)).Count(&total).Error; err != nil {
		return nil, 0, gormError("count tasks", err)
	}

	tasks := []models.Task{}
	err := r.db.WithContext(ctx).
		Scopes(taskFilterScope(f)).
		Order(f.sort().column + " " + f.SortOrder).
		Order("id").
		Offset(f.offset()).
		Limit(f.Limit).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, gormError("list tasks", err)
	}
	return tasks, total, nil
}

func (r *GormTaskRepo) Update(ctx context.Context, task *models.Task) error {
	res := r.db.WithContext(ctx).Model(task).Select("*").Omit("created_at").Updates(task)
	if res.Error != nil {
		return gormError("update task", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *GormTaskRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.TaskStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return gormError("update task status", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *GormTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Task{}, "id = ?", id)
	if res.Error != nil {
		return gormError("delete task", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *GormTaskRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Task{}, "owner_id = ?", userID).Error; err != nil {
			return gormError("delete user tasks", err)
		}
		err := tx.Model(&models.Task{}).Where("assigned_to = ?", userID).Update("assigned_to", nil).Error
		return gormError("unassign user tasks", err)
	})
}

func (r *GormTaskRepo) Stats(ctx context.Context) (*models.TaskStats, error) {
	stats := &models.TaskStats{
		ByStatus:   []models.StatusCount{},
		ByPriority: []models.PriorityCount{},
	}
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.Task{}).Count(&stats.Total).Error; err != nil {
		return nil, gormError("count tasks", err)
	}
	err := db.Model(&models.Task{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("count DESC").
		Scan(&stats.ByStatus).Error
	if err != nil {
		return nil, gormError("task stats by status", err)
	}
	err = db.Model(&models.Task{}).
		Select("priority, COUNT(*) AS count").
		Group("priority").
		Order("count DESC").
		Scan(&stats.ByPriority).Error
	if err != nil {
		return nil, gormError("task stats by priority", err)
	}
	return stats, nil
}
