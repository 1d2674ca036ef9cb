package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"task-manager/api/internal/config"

	"github.com/redis/go-redis/v9"
)

type JobType string

const (
	JobTypeTaskReminder JobType = "task_reminder"
	JobTypeTokenCleanup JobType = "token_cleanup"
)

const (
	DefaultQueue = "default"
	RetryQueue   = "retry_queue"
	DeadQueue    = "dead_queue"
	// ScheduledSet holds jobs whose ProcessAt is in the future, scored by
	// unix seconds.
	ScheduledSet = "scheduled_jobs"
)

type Job struct {
	ID        string            `json:"id"`
	Type      JobType           `json:"type"`
	Queue     string            `json:"queue"`
	Payload   map[string]string `json:"payload"`
	Attempts  int               `json:"attempts"`
	MaxTries  int               `json:"max_tries"`
	CreatedAt time.Time         `json:"created_at"`
	ProcessAt time.Time         `json:"process_at"`
}

type JobHandler func(ctx context.Context, job *Job) error

type Worker struct {
	client       *redis.Client
	handlers     map[JobType]JobHandler
	queues       []string
	pollInterval time.Duration
	jobTimeout   time.Duration
	now          func() time.Time
	mu           sync.RWMutex
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

func NewWorker(client *redis.Client, cfg config.WorkerConfig) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	queues := append([]string{}, cfg.Queues...)
	if len(queues) == 0 {
		queues = []string{DefaultQueue}
	}
	hasRetry := false
	for _, q := range queues {
		if q == RetryQueue {
			hasRetry = true
		}
	}
	if !hasRetry {
		queues = append(queues, RetryQueue)
	}

	poll := cfg.PollInterval
	if poll <= 0 {
		poll = 5 * time.Second
	}

	return &Worker{
		client:       client,
		handlers:     make(map[JobType]JobHandler),
		queues:       queues,
		pollInterval: poll,
		jobTimeout:   30 * time.Second,
		now:          time.Now,
		ctx:          ctx,
		cancel:       cancel,
	}
}

func (w *Worker) RegisterHandler(jobType JobType, handler JobHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[jobType] = handler
}

func (w *Worker) Start(concurrency int) {
	if concurrency < 1 {
		concurrency = 1
	}
	log.Printf("worker: starting %d goroutines on queues %v", concurrency, w.queues)

	for i := 0; i < concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop()
	}
}

func (w *Worker) Stop() {
	log.Println("worker: stopping")
	w.cancel()
	w.wg.Wait()
	log.Println("worker: stopped")
}

func (w *Worker) workerLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		default:
		}

		if _, err := w.promoteDue(w.ctx); err != nil && w.ctx.Err() == nil {
			log.Printf("worker: promoting scheduled jobs: %v", err)
		}
		if err := w.processNextJob(w.ctx, w.pollInterval); err != nil {
			if w.ctx.Err() != nil {
				return
			}
			log.Printf("worker: %v", err)
			time.Sleep(time.Second)
		}
	}
}

// promoteScript moves due members of the scheduled set onto the queue named
// in each job, or the dead queue when the job cannot be decoded. A member
// leaves the set only after its push succeeded, and both happen inside one
// script so no other worker can promote it twice.
var promoteScript = redis.NewScript(`
local due = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, tonumber(ARGV[2]))
local moved = 0
for _, member in ipairs(due) do
	local ok, job = pcall(cjson.decode, member)
	local readable = ok and type(job) == 'table'
	local queue = ARGV[4]
	if readable then
		queue = ARGV[3]
		if type(job.queue) == 'string' and job.queue ~= '' then
			queue = job.queue
		end
	end
	local pushed = redis.pcall('RPUSH', queue, member)
	if type(pushed) == 'number' then
		redis.call('ZREM', KEYS[1], member)
		if readable then
			moved = moved + 1
		end
	end
end
return moved
`)

const promoteBatch = 100

// promoteDue moves scheduled jobs whose time has come onto their queue and
// reports how many readable jobs were moved.
func (w *Worker) promoteDue(ctx context.Context) (int, error) {
	upper := strconv.FormatInt(w.now().Unix(), 10)
	moved, err := promoteScript.Run(ctx, w.client, []string{ScheduledSet},
		upper, promoteBatch, DefaultQueue, DeadQueue).Int()
	if err != nil {
		return 0, fmt.Errorf("promote scheduled jobs: %w", err)
	}
	return moved, nil
}

func (w *Worker) processNextJob(ctx context.Context, wait time.Duration) error {
	result, err := w.client.BLPop(ctx, wait, w.queues...).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("pop job: %w", err)
	}

	if len(result) < 2 {
		return fmt.Errorf("invalid job result")
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return fmt.Errorf("unmarshal job from %s: %w", result[0], err)
	}

	// Scores have second resolution, so a job promoted within its due
	// second runs now instead of bouncing back into the set.
	if job.ProcessAt.Unix() > w.now().Unix() {
		return schedule(ctx, w.client, &job)
	}

	return w.executeJob(ctx, &job)
}

func (w *Worker) executeJob(ctx context.Context, job *Job) error {
	w.mu.RLock()
	handler, exists := w.handlers[job.Type]
	w.mu.RUnlock()

	if !exists {
		return w.moveToDeadQueue(ctx, job, fmt.Errorf("no handler registered for job type %s", job.Type))
	}

	jobCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	defer cancel()

	if err := handler(jobCtx, job); err != nil {
		job.Attempts++
		if job.Attempts < job.MaxTries {
			log.Printf("worker: job %s failed (attempt %d/%d), retrying: %v",
				job.ID, job.Attempts, job.MaxTries, err)
			return w.retryJob(ctx, job)
		}

		log.Printf("worker: job %s failed permanently after %d attempts: %v",
			job.ID, job.Attempts, err)
		return w.moveToDeadQueue(ctx, job, err)
	}

	return nil
}

func (w *Worker) retryJob(ctx context.Context, job *Job) error {
	delay := time.Duration(1<<job.Attempts) * time.Minute
	job.ProcessAt = w.now().Add(delay)
	job.Queue = RetryQueue

	return schedule(ctx, w.client, job)
}

func (w *Worker) moveToDeadQueue(ctx context.Context, job *Job, jobErr error) error {
	deadJob := map[string]interface{}{
		"original_job": job,
		"error":        jobErr.Error(),
		"failed_at":    w.now(),
	}

	deadJobData, err := json.Marshal(deadJob)
	if err != nil {
		return fmt.Errorf("marshal dead job: %w", err)
	}

	return w.client.RPush(ctx, DeadQueue, deadJobData).Err()
}

func schedule(ctx context.Context, client *redis.Client, job *Job) error {
	jobData, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	return client.ZAdd(ctx, ScheduledSet, redis.Z{
		Score:  float64(job.ProcessAt.Unix()),
		Member: jobData,
	}).Err()
}
