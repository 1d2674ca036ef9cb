package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"task-manager/api/internal/apperrors"
	"task-manager/api/internal/models"
	"task-manager/api/internal/repositories"

	"github.com/gofrs/uuid"
)

// ReminderScheduler queues a due-date reminder for a task.
type ReminderScheduler interface {
	ScheduleTaskReminder(ctx context.Context, task *models.Task) error
}

type TaskService interface {
	List(ctx context.Context, p Principal, filter repositories.TaskFilter) ([]models.Task, models.Pagination, error)
	Get(ctx context.Context, p Principal, id uuid.UUID) (*models.Task, error)
	Create(ctx context.Context, p Principal, in TaskInput) (*models.Task, error)
	Update(ctx context.Context, p Principal, id uuid.UUID, in TaskInput) (*models.Task, error)
	UpdateStatus(ctx context.Context, p Principal, id uuid.UUID, status models.TaskStatus) (*models.Task, error)
	Delete(ctx context.Context, p Principal, id uuid.UUID) error
	Stats(ctx context.Context) (*models.TaskStats, error)
}

// TaskInput carries the writable task fields. Nil fields are left untouched
// on update and defaulted on create. The Clear flags reset the due date and
// assignee and win over the matching value.
type TaskInput struct {
	Title         *string
	Description   *string
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	Category      *string
	DueDate       *time.Time
	AssignedTo    *uuid.UUID
	ClearDueDate  bool
	ClearAssignee bool
}

type TaskServiceImpl struct {
	tasks     repositories.TaskRepository
	users     repositories.UserRepository
	reminders ReminderScheduler
}

// NewTaskService wires the task rules. reminders may be nil when no queue
// is configured.
func NewTaskService(tasks repositories.TaskRepository, users repositories.UserRepository, reminders ReminderScheduler) *TaskServiceImpl {
	return &TaskServiceImpl{tasks: tasks, users: users, reminders: reminders}
}

func (s *TaskServiceImpl) List(ctx context.Context, p Principal, filter repositories.TaskFilter) ([]models.Task, models.Pagination, error) {
	filter.OwnerID = nil
	if !p.IsAdmin() {
		owner := p.UserID
		filter.OwnerID = &owner
	}
	f := filter.Normalize()

	tasks, total, err := s.tasks.List(ctx, f)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return tasks, models.NewPagination(total, f.Page, f.Limit), nil
}

func (s *TaskServiceImpl) Get(ctx context.Context, p Principal, id uuid.UUID) (*models.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.CanAccess(task.OwnerID); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskServiceImpl) Create(ctx context.Context, p Principal, in TaskInput) (*models.Task, error) {
	task := &models.Task{
		ID:      uuid.Must(uuid.NewV4()),
		OwnerID: p.UserID,
	}
	in.apply(task)
	task.ApplyDefaults()
	if err := validateTask(task); err != nil {
		return nil, err
	}
	if err := s.checkAssignee(ctx, in); err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	s.scheduleReminder(ctx, task)
	return task, nil
}

func (s *TaskServiceImpl) Update(ctx context.Context, p Principal, id uuid.UUID, in TaskInput) (*models.Task, error) {
	task, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	dueBefore := task.DueDate

	in.apply(task)
	task.ApplyDefaults()
	if err := validateTask(task); err != nil {
		return nil, err
	}
	if err := s.checkAssignee(ctx, in); err != nil {
		return nil, err
	}
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	if task.DueDate != nil && (dueBefore == nil || !dueBefore.Equal(*task.DueDate)) {
		s.scheduleReminder(ctx, task)
	}
	return task, nil
}

func (s *TaskServiceImpl) UpdateStatus(ctx context.Context, p Principal, id uuid.UUID, status models.TaskStatus) (*models.Task, error) {
	if !status.IsValid() {
		return nil, apperrors.ErrInvalidStatus
	}
	if _, err := s.Get(ctx, p, id); err != nil {
		return nil, err
	}
	if err := s.tasks.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.tasks.FindByID(ctx, id)
}

func (s *TaskServiceImpl) Delete(ctx context.Context, p Principal, id uuid.UUID) error {
	if _, err := s.Get(ctx, p, id); err != nil {
		return err
	}
	return s.tasks.Delete(ctx, id)
}

func (s *TaskServiceImpl) Stats(ctx context.Context) (*models.TaskStats, error) {
	return s.tasks.Stats(ctx)
}

// checkAssignee rejects an assignee that does not name an existing user.
func (s *TaskServiceImpl) checkAssignee(ctx context.Context, in TaskInput) error {
	if s.users == nil || in.ClearAssignee || in.AssignedTo == nil || *in.AssignedTo == uuid.Nil {
		return nil
	}
	_, err := s.users.FindByID(ctx, *in.AssignedTo)
	if errors.Is(err, apperrors.ErrNotFound) {
		return (&apperrors.ValidationError{}).Add("assignedTo", "assigned user does not exist")
	}
	return err
}

func (s *TaskServiceImpl) scheduleReminder(ctx context.Context, task *models.Task) {
	if s.reminders == nil || task.DueDate == nil {
		return
	}
	if err := s.reminders.ScheduleTaskReminder(ctx, task); err != nil {
		log.Printf("tasks: failed to schedule reminder for %s: %v", task.ID, err)
	}
}

func (in TaskInput) apply(task *models.Task) {
	if in.Title != nil {
		task.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		task.Description = strings.TrimSpace(*in.Description)
	}
	if in.Status != nil {
		task.Status = *in.Status
	}
	if in.Priority != nil {
		task.Priority = *in.Priority
	}
	if in.Category != nil {
		task.Category = strings.TrimSpace(*in.Category)
	}
	if in.DueDate != nil {
		due := in.DueDate.UTC()
		task.DueDate = &due
	}
	if in.ClearDueDate {
		task.DueDate = nil
	}
	if in.AssignedTo != nil {
		task.AssignedTo = uuid.NullUUID{UUID: *in.AssignedTo, Valid: *in.AssignedTo != uuid.Nil}
	}
	if in.ClearAssignee {
		task.AssignedTo = uuid.NullUUID{}
	}
}

// validateTask re-checks the stored shape after defaults and partial
// updates have been merged.
func validateTask(task *models.Task) error {
	verr := &apperrors.ValidationError{}
	if n := len([]rune(task.Title)); n < 3 || n > 100 {
		verr.Add("title", "title must be between 3 and 100 characters")
	}
	if len([]rune(task.Description)) > 500 {
		verr.Add("description", "description cannot exceed 500 characters")
	}
	if len([]rune(task.Category)) > 50 {
		verr.Add("category", "category cannot exceed 50 characters")
	}
	if !task.Status.IsValid() {
		verr.Add("status", "status must be one of pending, in-progress, completed, cancelled")
	}
	if !task.Priority.IsValid() {
		verr.Add("priority", "priority must be one of low, medium, high")
	}
	return verr.OrNil()
}
