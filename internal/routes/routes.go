package routes

import (
	"time"

	"task-manager/api/internal/handlers"
	"task-manager/api/internal/middleware"
	"task-manager/api/internal/monitoring"
	"task-manager/api/internal/tokens"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Auth  *handlers.AuthHandler
	Users *handlers.UserHandler
	Tasks *handlers.TaskHandler
	Items *handlers.ItemHandler
	Cars  *handlers.CarHandler
}

type Options struct {
	Production     bool
	AllowedOrigins []string

	// AuthLimiter guards register, login and refresh. Nil disables it.
	AuthLimiter *middleware.RateLimiter
	Monitor     *monitoring.Monitor
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func NewRouter(h Handlers, jwt *tokens.Manager, opts Options) *gin.Engine {
	middleware.UseJSONFieldNames()

	router := gin.New()
	if gin.Mode() != gin.TestMode {
		router.Use(gin.Logger())
	}
	router.Use(middleware.RecoveryWithLog())
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))
	if opts.Monitor != nil {
		router.Use(opts.Monitor.Middleware())
	}
	router.Use(middleware.ErrorHandler(opts.Production))

	limited := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		if opts.AuthLimiter == nil {
			return []gin.HandlerFunc{handler}
		}
		return []gin.HandlerFunc{opts.AuthLimiter.Middleware(), handler}
	}
	authenticate := middleware.Authenticate(jwt)

	api := router.Group("/api")

	if opts.Monitor != nil {
		api.GET("/health", opts.Monitor.HealthHandler())
		api.GET("/health/ready", opts.Monitor.ReadinessHandler())
		api.GET("/health/live", opts.Monitor.LivenessHandler())
		api.GET("/metrics", opts.Monitor.MetricsHandler())
	}

	auth := api.Group("/auth")
	{
		auth.POST("/register", limited(h.Auth.Register)...)
		auth.POST("/login", limited(h.Auth.Login)...)
		auth.POST("/refresh", limited(h.Auth.Refresh)...)
		auth.POST("/logout", h.Auth.Logout)
		auth.GET("/me", authenticate, h.Auth.Me)

		admin := auth.Group("/users", authenticate, middleware.AdminOnly())
		admin.GET("", h.Users.ListUsers)
		admin.PATCH("/:id/role", h.Users.ChangeRole)
		admin.DELETE("/:id", h.Users.DeleteUser)
	}

	tasks := api.Group("/tasks", authenticate)
	{
		tasks.GET("/stats", middleware.AdminOnly(), h.Tasks.GetStats)
		tasks.GET("", h.Tasks.GetTasks)
		tasks.POST("", h.Tasks.CreateTask)
		tasks.GET("/:id", h.Tasks.GetTask)
		tasks.PUT("/:id", h.Tasks.UpdateTask)
		tasks.PATCH("/:id/status", h.Tasks.UpdateTaskStatus)
		tasks.DELETE("/:id", h.Tasks.DeleteTask)
	}

	items := api.Group("/items")
	{
		items.GET("", h.Items.ListItems)
		items.GET("/:id", h.Items.GetItem)
		items.POST("", authenticate, h.Items.CreateItem)
		items.PUT("/:id", authenticate, h.Items.UpdateItem)
		items.DELETE("/:id", authenticate, h.Items.DeleteItem)
	}

	cars := api.Group("/cars", authenticate)
	{
		cars.GET("", h.Cars.ListCars)
		cars.POST("", h.Cars.CreateCar)
		cars.GET("/:id", h.Cars.GetCar)
		cars.PUT("/:id", h.Cars.UpdateCar)
		cars.DELETE("/:id", h.Cars.DeleteCar)
	}

	router.NoRoute(middleware.NotFound())
	return router
}
