package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task-manager/api/internal/cache"
	"task-manager/api/internal/config"
	"task-manager/api/internal/handlers"
	"task-manager/api/internal/middleware"
	"task-manager/api/internal/monitoring"
	"task-manager/api/internal/repositories"
	"task-manager/api/internal/routes"
	"task-manager/api/internal/services"
	"task-manager/api/internal/tokens"
	"task-manager/api/internal/worker"

	"github.com/gin-gonic/gin"
)

type application struct {
	cfg     *config.Config
	router  *gin.Engine
	monitor *monitoring.Monitor
	limiter *middleware.RateLimiter
	worker  *worker.Worker
	queue   *worker.JobQueue
	closers []func() error
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	if err := app.run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func newApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	app := &application{cfg: cfg, monitor: monitoring.NewMonitor()}

	repos, err := repositories.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, repos.Close)
	app.monitor.RegisterHealthCheck("database", repos.Health)
	app.monitor.RegisterStats("database", repos.Stats)

	var l2 *cache.RedisCache
	var reminders services.ReminderScheduler
	if cfg.Redis.Enabled {
		client := cache.NewRedisClient(cache.CacheConfigFromConfig(cfg))
		l2 = cache.NewRedisCache(client, "tasks:")

		app.queue = worker.NewJobQueue(client, cfg.Worker.MaxRetries)
		app.worker = worker.NewWorker(client, cfg.Worker)
		app.worker.RegisterHandler(worker.JobTypeTaskReminder, worker.NewTaskReminderHandler(repos.Tasks))
		app.worker.RegisterHandler(worker.JobTypeTokenCleanup, worker.NewTokenCleanupHandler(repos.Tokens))
		reminders = worker.NewReminderScheduler(app.queue, cfg.Worker.ReminderLead)
	} else {
		log.Println("Redis disabled: tasks are cached in memory only and reminders are off")
	}

	taskCache := cache.NewMultiLevelCache(l2)
	app.closers = append(app.closers, taskCache.Close)
	app.monitor.RegisterHealthCheck("cache", taskCache.Health)
	app.monitor.RegisterStats("cache", taskCache.Stats)
	tasks := repositories.NewCachedTaskRepo(repos.Tasks, taskCache, cfg.Redis.CacheTTL)

	jwt := tokens.NewManagerFromConfig(cfg.Auth)
	authService := services.NewAuthService(repos.Users, repos.Tokens, jwt, cfg.Auth.BCryptCost)

	if cfg.RateLimit.Enabled {
		app.limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstSize, cfg.RateLimit.CleanupInterval)
	}

	app.router = routes.NewRouter(routes.Handlers{
		Auth:  handlers.NewAuthHandler(authService),
		Users: handlers.NewUserHandler(services.NewUserService(repos.Users, tasks, repos.Items, repos.Cars, repos.Tokens)),
		Tasks: handlers.NewTaskHandler(services.NewTaskService(tasks, repos.Users, reminders)),
		Items: handlers.NewItemHandler(services.NewItemService(repos.Items)),
		Cars:  handlers.NewCarHandler(services.NewCarService(repos.Cars)),
	}, jwt, routes.Options{
		Production:     cfg.IsProduction(),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AuthLimiter:    app.limiter,
		Monitor:        app.monitor,
	})

	return app, nil
}

func (a *application) startBackground(ctx context.Context) {
	if a.worker != nil {
		a.worker.Start(a.cfg.Worker.Concurrency)
		go a.queue.EnqueueEvery(ctx, a.cfg.Worker.CleanupEvery, worker.DefaultQueue, worker.JobTypeTokenCleanup)
	}
	if a.limiter != nil {
		go a.limiter.RunCleanup(ctx, a.cfg.RateLimit.CleanupInterval)
	}
}

func (a *application) close() {
	if a.worker != nil {
		a.worker.Stop()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}
}

func (a *application) run(ctx context.Context) error {
	defer a.close()
	a.startBackground(ctx)

	srv := &http.Server{
		Addr:         a.cfg.GetServerAddr(),
		Handler:      a.router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on http://%s (%s)", srv.Addr, a.cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Println("Server stopped")
	return nil
}
