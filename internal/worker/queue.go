package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"
)

type JobQueue struct {
	client   *redis.Client
	maxTries int
	now      func() time.Time
}

func NewJobQueue(client *redis.Client, maxTries int) *JobQueue {
	if maxTries < 1 {
		maxTries = 3
	}
	return &JobQueue{client: client, maxTries: maxTries, now: time.Now}
}

func (q *JobQueue) Enqueue(ctx context.Context, queue string, jobType JobType, payload map[string]string) (*Job, error) {
	return q.EnqueueAt(ctx, queue, jobType, payload, q.now())
}

// EnqueueAt pushes the job straight onto the queue when it is already due,
// otherwise parks it in the scheduled set until processAt.
func (q *JobQueue) EnqueueAt(ctx context.Context, queue string, jobType JobType, payload map[string]string, processAt time.Time) (*Job, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("generate job id: %w", err)
	}

	now := q.now()
	job := &Job{
		ID:        id.String(),
		Type:      jobType,
		Queue:     queue,
		Payload:   payload,
		MaxTries:  q.maxTries,
		CreatedAt: now,
		ProcessAt: processAt,
	}

	if processAt.After(now) {
		return job, schedule(ctx, q.client, job)
	}

	jobData, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("marshal job: %w", err)
	}
	return job, q.client.RPush(ctx, queue, jobData).Err()
}

func (q *JobQueue) QueueSize(ctx context.Context, queue string) (int64, error) {
	return q.client.LLen(ctx, queue).Result()
}

func (q *JobQueue) ScheduledCount(ctx context.Context) (int64, error) {
	return q.client.ZCard(ctx, ScheduledSet).Result()
}

// EnqueueEvery enqueues a payload-less job of the given type on every tick
// until ctx is done.
func (q *JobQueue) EnqueueEvery(ctx context.Context, every time.Duration, queue string, jobType JobType) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := q.Enqueue(ctx, queue, jobType, nil); err != nil && ctx.Err() == nil {
				log.Printf("worker: enqueue %s: %v", jobType, err)
			}
		}
	}
}
