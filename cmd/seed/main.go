package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"task-manager/api/internal/apperrors"
	"task-manager/api/internal/config"
	"task-manager/api/internal/models"
	"task-manager/api/internal/repositories"
	"task-manager/api/internal/services"
	"task-manager/api/internal/tokens"
)

const (
	adminEmail    = "admin@taskmanager.com"
	adminPassword = "admin1234"
	userEmail     = "user@taskmanager.com"
	userPassword  = "user1234"
)

type demoTask struct {
	title, description, category string
	priority                     models.TaskPriority
	status                       models.TaskStatus
	dueIn                        time.Duration
	admin                        bool
}

var demoTasks = []demoTask{
	{"Set up HTTP server", "Install the router and wire the base middleware", "Backend", models.TaskPriorityHigh, models.TaskStatusCompleted, 0, false},
	{"Design the dashboard", "Wireframes and mockups for the task dashboard", "Frontend", models.TaskPriorityMedium, models.TaskStatusInProgress, 7 * 24 * time.Hour, false},
	{"Write API tests", "Cover authentication and the CRUD endpoints", "Testing", models.TaskPriorityHigh, models.TaskStatusPending, 0, false},
	{"Document the REST API", "Reference for every endpoint", "Docs", models.TaskPriorityLow, models.TaskStatusPending, 0, true},
	{"Provision the database", "Create the cluster and store the connection string", "DevOps", models.TaskPriorityHigh, models.TaskStatusCompleted, 0, true},
	{"Deploy", "Ship backend and frontend", "DevOps", models.TaskPriorityMedium, models.TaskStatusPending, 14 * 24 * time.Hour, true},
}

type seedResult struct {
	Users, Tasks, Items, Cars int
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, err := repositories.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	res, err := seed(ctx, store.Repositories, cfg)
	if errors.Is(err, apperrors.ErrDuplicateEmail) {
		log.Printf("Demo data already present, nothing to do")
		return
	}
	if err != nil {
		log.Fatalf("Seed failed: %v", err)
	}

	log.Printf("Seeded %d users, %d tasks, %d items, %d cars", res.Users, res.Tasks, res.Items, res.Cars)
	log.Printf("Admin: %s / %s", adminEmail, adminPassword)
	log.Printf("User:  %s / %s", userEmail, userPassword)
}

// seed creates demo data through the services so that the same validation
// and hashing rules apply. It fails with ErrDuplicateEmail when the demo
// admin already exists.
func seed(ctx context.Context, repos *repositories.Repositories, cfg *config.Config) (seedResult, error) {
	var res seedResult

	auth := services.NewAuthService(repos.Users, repos.Tokens, tokens.NewManagerFromConfig(cfg.Auth), cfg.Auth.BCryptCost)
	users := services.NewUserService(repos.Users, repos.Tasks, repos.Items, repos.Cars, repos.Tokens)
	tasks := services.NewTaskService(repos.Tasks, repos.Users, nil)
	items := services.NewItemService(repos.Items)
	cars := services.NewCarService(repos.Cars)

	adminReg, err := auth.Register(ctx, services.RegisterInput{Name: "Admin", Email: adminEmail, Password: adminPassword})
	if err != nil {
		return res, err
	}
	adminUser, err := users.ChangeRole(ctx, adminReg.User.ID, models.RoleAdmin)
	if err != nil {
		return res, fmt.Errorf("promote admin: %w", err)
	}
	userReg, err := auth.Register(ctx, services.RegisterInput{Name: "Demo User", Email: userEmail, Password: userPassword})
	if err != nil {
		return res, err
	}
	res.Users = 2

	admin := services.Principal{UserID: adminUser.ID, Email: adminUser.Email, Role: adminUser.Role}
	user := services.Principal{UserID: userReg.User.ID, Email: userReg.User.Email, Role: userReg.User.Role}

	for _, dt := range demoTasks {
		owner := user
		if dt.admin {
			owner = admin
		}
		in := services.TaskInput{
			Title:       &dt.title,
			Description: &dt.description,
			Category:    &dt.category,
			Priority:    &dt.priority,
			Status:      &dt.status,
		}
		if dt.dueIn > 0 {
			due := time.Now().Add(dt.dueIn).Truncate(time.Second)
			in.DueDate = &due
		}
		if _, err := tasks.Create(ctx, owner, in); err != nil {
			return res, fmt.Errorf("task %q: %w", dt.title, err)
		}
		res.Tasks++
	}

	for _, it := range [][2]string{
		{"Standing desk", "Adjustable height, barely used"},
		{"Mechanical keyboard", "Brown switches"},
	} {
		if _, err := items.Create(ctx, user, it[0], it[1]); err != nil {
			return res, fmt.Errorf("item %q: %w", it[0], err)
		}
		res.Items++
	}

	vin := "JT2BG22K1W0123456"
	for _, car := range []models.Car{
		{Brand: "Toyota", Model: "Corolla", Year: 2020, Price: 15500, Mileage: 42000, Color: "Blue",
			Transmission: "Automatic", FuelType: "Gasoline", Condition: "Used", VIN: &vin},
		{Brand: "Tesla", Model: "Model 3", Year: 2023, Price: 38900, Mileage: 8000, Color: "White",
			Transmission: "Automatic", FuelType: "Electric", Condition: "Certified Pre-Owned"},
	} {
		if _, err := cars.Create(ctx, admin, car); err != nil {
			return res, fmt.Errorf("car %s %s: %w", car.Brand, car.Model, err)
		}
		res.Cars++
	}

	return res, nil
}
