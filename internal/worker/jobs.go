package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"task-manager/api/internal/apperrors"
	"task-manager/api/internal/models"
	"task-manager/api/internal/repositories"

	"github.com/gofrs/uuid"
)

// ReminderScheduler enqueues a reminder job ahead of a task's due date.
type ReminderScheduler struct {
	queue *JobQueue
	lead  time.Duration
}

func NewReminderScheduler(queue *JobQueue, lead time.Duration) *ReminderScheduler {
	return &ReminderScheduler{queue: queue, lead: lead}
}

func (s *ReminderScheduler) ScheduleTaskReminder(ctx context.Context, task *models.Task) error {
	if task.DueDate == nil {
		return nil
	}

	at := task.DueDate.Add(-s.lead)
	if now := s.queue.now(); at.Before(now) {
		at = now
	}

	_, err := s.queue.EnqueueAt(ctx, DefaultQueue, JobTypeTaskReminder, map[string]string{
		"task_id":  task.ID.String(),
		"due_date": task.DueDate.UTC().Format(time.RFC3339),
	}, at)
	return err
}

// NewTaskReminderHandler logs a reminder for tasks that are still open and
// whose due date has not moved since the job was scheduled.
func NewTaskReminderHandler(tasks repositories.TaskRepository) JobHandler {
	return func(ctx context.Context, job *Job) error {
		id, err := uuid.FromString(job.Payload["task_id"])
		if err != nil {
			return fmt.Errorf("reminder payload: %w", err)
		}

		task, err := tasks.FindByID(ctx, id)
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if task.Status == models.TaskStatusCompleted || task.Status == models.TaskStatusCancelled {
			return nil
		}
		if task.DueDate == nil || task.DueDate.UTC().Format(time.RFC3339) != job.Payload["due_date"] {
			return nil
		}

		log.Printf("worker: reminder for task %s %q owned by %s, due %s",
			task.ID, task.Title, task.OwnerID, task.DueDate.Format(time.RFC3339))
		return nil
	}
}

func NewTokenCleanupHandler(tokens repositories.TokenRepository) JobHandler {
	return func(ctx context.Context, job *Job) error {
		n, err := tokens.DeleteExpired(ctx, time.Now())
		if err != nil {
			return err
		}
		if n > 0 {
			log.Printf("worker: removed %d expired refresh tokens", n)
		}
		return nil
	}
}
