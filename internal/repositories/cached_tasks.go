package repositories

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"task-manager/api/internal/cache"
	"task-manager/api/internal/models"

	"github.com/gofrs/uuid"
)

const (
	taskKeyPattern  = "task:*"
	taskListPattern = "tasks:list:*"
	taskStatsKey    = "tasks:stats"
)

// CachedTaskRepo is a read-through cache in front of a TaskRepository.
// Every write drops the task's own entry plus all cached lists and stats.
type CachedTaskRepo struct {
	next  TaskRepository
	cache cache.Cache
	ttl   time.Duration
}

func NewCachedTaskRepo(next TaskRepository, c cache.Cache, ttl time.Duration) *CachedTaskRepo {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedTaskRepo{next: next, cache: c, ttl: ttl}
}

type cachedTaskPage struct {
	Tasks []models.Task `json:"tasks"`
	Total int64         `json:"total"`
}

func taskKey(id uuid.UUID) string {
	return "task:" + id.String()
}

func taskListKey(f TaskFilter) string {
	owner := "all"
	if f.OwnerID != nil {
		owner = f.OwnerID.String()
	}
	sum := sha1.Sum([]byte(fmt.Sprintf("%s|%s|%q|%q|%s|%s|%d|%d",
		f.Status, f.Priority, f.Category, f.Search, f.SortBy, f.SortOrder, f.Page, f.Limit)))
	return fmt.Sprintf("tasks:list:%s:%s", owner, hex.EncodeToString(sum[:]))
}

func (r *CachedTaskRepo) Create(ctx context.Context, task *models.Task) error {
	if err := r.next.Create(ctx, task); err != nil {
		return err
	}
	r.invalidate(ctx, task.ID)
	return nil
}

func (r *CachedTaskRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var cached models.Task
	if err := r.cache.Get(ctx, taskKey(id), &cached); err == nil {
		return &cached, nil
	}

	task, err := r.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, taskKey(id), task)
	return task, nil
}

func (r *CachedTaskRepo) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	f := filter.Normalize()
	key := taskListKey(f)

	var cached cachedTaskPage
	if err := r.cache.Get(ctx, key, &cached); err == nil {
		if cached.Tasks == nil {
			cached.Tasks = []models.Task{}
		}
		return cached.Tasks, cached.Total, nil
	}

	tasks, total, err := r.next.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	r.store(ctx, key, cachedTaskPage{Tasks: tasks, Total: total})
	return tasks, total, nil
}

func (r *CachedTaskRepo) Update(ctx context.Context, task *models.Task) error {
	if err := r.next.Update(ctx, task); err != nil {
		return err
	}
	r.invalidate(ctx, task.ID)
	return nil
}

func (r *CachedTaskRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.TaskStatus) error {
	if err := r.next.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *CachedTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

// DeleteByUser touches tasks that are not known by id here, so every cached
// task is dropped.
func (r *CachedTaskRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	if err := r.next.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	if err := r.cache.DeletePattern(ctx, taskKeyPattern); err != nil {
		log.Printf("cache: failed to invalidate tasks of user %s: %v", userID, err)
	}
	r.invalidateLists(ctx)
	return nil
}

func (r *CachedTaskRepo) Stats(ctx context.Context) (*models.TaskStats, error) {
	var cached models.TaskStats
	if err := r.cache.Get(ctx, taskStatsKey, &cached); err == nil {
		return &cached, nil
	}
	stats, err := r.next.Stats(ctx)
	if err != nil {
		return nil, err
	}
	r.store(ctx, taskStatsKey, stats)
	return stats, nil
}

func (r *CachedTaskRepo) store(ctx context.Context, key string, value interface{}) {
	if err := r.cache.Set(ctx, key, value, r.ttl); err != nil {
		log.Printf("cache: failed to store %s: %v", key, err)
	}
}

func (r *CachedTaskRepo) invalidate(ctx context.Context, id uuid.UUID) {
	if err := r.cache.Delete(ctx, taskKey(id)); err != nil {
		log.Printf("cache: failed to invalidate task %s: %v", id, err)
	}
	r.invalidateLists(ctx)
}

func (r *CachedTaskRepo) invalidateLists(ctx context.Context) {
	if err := r.cache.Delete(ctx, taskStatsKey); err != nil {
		log.Printf("cache: failed to invalidate task stats: %v", err)
	}
	if err := r.cache.DeletePattern(ctx, taskListPattern); err != nil {
		log.Printf("cache: failed to invalidate task lists: %v", err)
	}
}
