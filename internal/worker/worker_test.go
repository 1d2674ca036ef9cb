package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"task-manager/api/internal/config"
	"task-manager/api/internal/database"
	"task-manager/api/internal/models"
	"task-manager/api/internal/repositories"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestQueue(t *testing.T) (*redis.Client, *JobQueue, *Worker) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	queue := NewJobQueue(client, 2)
	queue.now = func() time.Time { return baseTime }

	w := NewWorker(client, config.WorkerConfig{Queues: []string{DefaultQueue}, PollInterval: time.Second})
	w.now = func() time.Time { return baseTime }
	return client, queue, w
}

func TestNewWorkerAlwaysListensOnRetryQueue(t *testing.T) {
	w := NewWorker(nil, config.WorkerConfig{})
	assert.Equal(t, []string{DefaultQueue, RetryQueue}, w.queues)
	assert.Equal(t, 5*time.Second, w.pollInterval)

	w = NewWorker(nil, config.WorkerConfig{Queues: []string{"a", RetryQueue}})
	assert.Equal(t, []string{"a", RetryQueue}, w.queues)
}

func TestEnqueueAndProcess(t *testing.T) {
	ctx := context.Background()
	_, queue, w := newTestQueue(t)

	var got *Job
	w.RegisterHandler(JobTypeTaskReminder, func(ctx context.Context, job *Job) error {
		got = job
		return nil
	})

	_, err := queue.Enqueue(ctx, DefaultQueue, JobTypeTaskReminder, map[string]string{"task_id": "abc"})
	require.NoError(t, err)
	size, err := queue.QueueSize(ctx, DefaultQueue)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)

	require.NoError(t, w.processNextJob(ctx, time.Second))
	require.NotNil(t, got)
	assert.Equal(t, "abc", got.Payload["task_id"])
	assert.Equal(t, 2, got.MaxTries)

	size, _ = queue.QueueSize(ctx, DefaultQueue)
	assert.Equal(t, int64(0), size)
}

func TestFutureJobsWaitInScheduledSet(t *testing.T) {
	ctx := context.Background()
	_, queue, w := newTestQueue(t)

	_, err := queue.EnqueueAt(ctx, DefaultQueue, JobTypeTokenCleanup, nil, baseTime.Add(time.Hour))
	require.NoError(t, err)

	scheduled, _ := queue.ScheduledCount(ctx)
	assert.Equal(t, int64(1), scheduled)
	size, _ := queue.QueueSize(ctx, DefaultQueue)
	assert.Equal(t, int64(0), size)

	n, err := w.promoteDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	w.now = func() time.Time { return baseTime.Add(time.Hour) }
	n, err = w.promoteDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	scheduled, _ = queue.ScheduledCount(ctx)
	assert.Equal(t, int64(0), scheduled)
	size, _ = queue.QueueSize(ctx, DefaultQueue)
	assert.Equal(t, int64(1), size)
}

func TestJobDueWithinCurrentSecondRuns(t *testing.T) {
	ctx := context.Background()
	_, queue, w := newTestQueue(t)

	ran := 0
	w.RegisterHandler(JobTypeTokenCleanup, func(ctx context.Context, job *Job) error {
		ran++
		return nil
	})

	_, err := queue.EnqueueAt(ctx, DefaultQueue, JobTypeTokenCleanup, nil, baseTime.Add(500*time.Millisecond))
	require.NoError(t, err)

	n, err := w.promoteDue(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.NoError(t, w.processNextJob(ctx, time.Second))
	assert.Equal(t, 1, ran)
	scheduled, _ := queue.ScheduledCount(ctx)
	assert.Equal(t, int64(0), scheduled)
}

func TestPromoteDueKeepsJobWhenPushFails(t *testing.T) {
	ctx := context.Background()
	client, queue, w := newTestQueue(t)

	require.NoError(t, client.Set(ctx, "broken", "not a list", 0).Err())
	_, err := queue.EnqueueAt(ctx, "broken", JobTypeTokenCleanup, nil, baseTime.Add(time.Minute))
	require.NoError(t, err)
	_, err = queue.EnqueueAt(ctx, DefaultQueue, JobTypeTokenCleanup, nil, baseTime.Add(time.Minute))
	require.NoError(t, err)

	w.now = func() time.Time { return baseTime.Add(time.Hour) }
	n, err := w.promoteDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	scheduled, _ := queue.ScheduledCount(ctx)
	assert.Equal(t, int64(1), scheduled, "the job for the broken queue stays scheduled")
	size, _ := queue.QueueSize(ctx, DefaultQueue)
	assert.Equal(t, int64(1), size)
}

func TestPromoteDueDeadLettersUnreadableJobs(t *testing.T) {
	ctx := context.Background()
	client, queue, w := newTestQueue(t)

	require.NoError(t, client.ZAdd(ctx, ScheduledSet, redis.Z{Score: float64(baseTime.Unix()), Member: "{not json"}).Err())

	n, err := w.promoteDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	scheduled, _ := queue.ScheduledCount(ctx)
	assert.Equal(t, int64(0), scheduled)
	dead, err := client.LRange(ctx, DeadQueue, 0, -1).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"{not json"}, dead)
}

func TestConcurrentPromotionMovesEachJobOnce(t *testing.T) {
	ctx := context.Background()
	_, queue, w := newTestQueue(t)

	const jobs = 20
	for i := 0; i < jobs; i++ {
		_, err := queue.EnqueueAt(ctx, DefaultQueue, JobTypeTokenCleanup, nil, baseTime.Add(time.Minute))
		require.NoError(t, err)
	}
	w.now = func() time.Time { return baseTime.Add(time.Hour) }

	var (
		wg    sync.WaitGroup
		total atomic.Int64
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := w.promoteDue(ctx)
			assert.NoError(t, err)
			total.Add(int64(n))
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(jobs), total.Load())
	size, _ := queue.QueueSize(ctx, DefaultQueue)
	assert.Equal(t, int64(jobs), size)
}

func TestFailingJobRetriesThenDies(t *testing.T) {
	ctx := context.Background()
	client, queue, w := newTestQueue(t)

	calls := 0
	w.RegisterHandler(JobTypeTokenCleanup, func(ctx context.Context, job *Job) error {
		calls++
		return errors.New("store unavailable")
	})

	_, err := queue.Enqueue(ctx, DefaultQueue, JobTypeTokenCleanup, nil)
	require.NoError(t, err)

	require.NoError(t, w.processNextJob(ctx, time.Second))
	scheduled, _ := queue.ScheduledCount(ctx)
	assert.Equal(t, int64(1), scheduled, "first failure is scheduled for retry")

	w.now = func() time.Time { return baseTime.Add(time.Hour) }
	n, err := w.promoteDue(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	size, _ := queue.QueueSize(ctx, RetryQueue)
	assert.Equal(t, int64(1), size)

	require.NoError(t, w.processNextJob(ctx, time.Second))
	assert.Equal(t, 2, calls)

	dead, err := client.LRange(ctx, DeadQueue, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, dead, 1)

	var entry struct {
		OriginalJob Job    `json:"original_job"`
		Error       string `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(dead[0]), &entry))
	assert.Equal(t, "store unavailable", entry.Error)
	assert.Equal(t, 2, entry.OriginalJob.Attempts)
}

func TestUnknownJobTypeIsDeadLettered(t *testing.T) {
	ctx := context.Background()
	client, queue, w := newTestQueue(t)

	_, err := queue.Enqueue(ctx, DefaultQueue, JobType("mystery"), nil)
	require.NoError(t, err)
	require.NoError(t, w.processNextJob(ctx, time.Second))

	n, err := client.LLen(ctx, DeadQueue).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestReminderScheduler(t *testing.T) {
	ctx := context.Background()
	_, queue, _ := newTestQueue(t)
	scheduler := NewReminderScheduler(queue, 24*time.Hour)

	require.NoError(t, scheduler.ScheduleTaskReminder(ctx, &models.Task{ID: uuid.Must(uuid.NewV4())}))
	scheduled, _ := queue.ScheduledCount(ctx)
	size, _ := queue.QueueSize(ctx, DefaultQueue)
	assert.Zero(t, scheduled+size, "no due date, no reminder")

	far := baseTime.Add(72 * time.Hour)
	require.NoError(t, scheduler.ScheduleTaskReminder(ctx, &models.Task{ID: uuid.Must(uuid.NewV4()), DueDate: &far}))
	scheduled, _ = queue.ScheduledCount(ctx)
	assert.Equal(t, int64(1), scheduled)

	soon := baseTime.Add(time.Hour)
	require.NoError(t, scheduler.ScheduleTaskReminder(ctx, &models.Task{ID: uuid.Must(uuid.NewV4()), DueDate: &soon}))
	size, _ = queue.QueueSize(ctx, DefaultQueue)
	assert.Equal(t, int64(1), size, "inside the lead window the reminder is immediate")
}

func newTestRepos(t *testing.T) *repositories.Repositories {
	t.Helper()
	cfg := database.DefaultPoolConfig()
	cfg.Driver = config.DBTypeSQLite
	cfg.DSN = ":memory:"
	cfg.LogLevel = logger.Silent

	pool, err := database.NewDatabasePool(cfg)
	require.NoError(t, err)
	require.NoError(t, pool.AutoMigrate())
	t.Cleanup(func() { pool.Close() })
	return repositories.NewGormRepositories(pool.DB)
}

func TestTaskReminderHandler(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	handler := NewTaskReminderHandler(repos.Tasks)

	due := baseTime.Add(48 * time.Hour)
	task := &models.Task{
		ID:      uuid.Must(uuid.NewV4()),
		Title:   "Renew passport",
		OwnerID: uuid.Must(uuid.NewV4()),
		DueDate: &due,
	}
	task.ApplyDefaults()
	require.NoError(t, repos.Tasks.Create(ctx, task))

	job := &Job{Type: JobTypeTaskReminder, Payload: map[string]string{
		"task_id":  task.ID.String(),
		"due_date": due.Format(time.RFC3339),
	}}
	assert.NoError(t, handler(ctx, job))

	task.Status = models.TaskStatusCompleted
	require.NoError(t, repos.Tasks.Update(ctx, task))
	assert.NoError(t, handler(ctx, job))

	require.NoError(t, repos.Tasks.Delete(ctx, task.ID))
	assert.NoError(t, handler(ctx, job), "deleted tasks are skipped")

	bad := &Job{Type: JobTypeTaskReminder, Payload: map[string]string{"task_id": "nope"}}
	assert.Error(t, handler(ctx, bad))
}

func TestTokenCleanupHandler(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	userID := uuid.Must(uuid.NewV4())

	for i, expires := range []time.Time{time.Now().Add(-time.Hour), time.Now().Add(time.Hour)} {
		require.NoError(t, repos.Tokens.Create(ctx, &models.Token{
			ID:           uuid.Must(uuid.NewV4()),
			UserID:       userID,
			RefreshToken: []string{"expired", "live"}[i],
			ExpiresAt:    expires,
		}))
	}

	require.NoError(t, NewTokenCleanupHandler(repos.Tokens)(ctx, &Job{Type: JobTypeTokenCleanup}))

	_, err := repos.Tokens.FindByRefreshToken(ctx, "expired")
	assert.Error(t, err)
	live, err := repos.Tokens.FindByRefreshToken(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, userID, live.UserID)
}
