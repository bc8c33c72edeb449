package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/kamy/api/internal/handlers"
	"github.com/kamy/api/internal/middleware"
	"github.com/kamy/api/internal/services"
	"github.com/kamy/api/pkg/utils"
	"gorm.io/gorm"
)

const bodyLimit = 1 * 1024 * 1024

// Deps is everything the HTTP layer is built from.
type Deps struct {
	DB          *gorm.DB
	Tokens      *utils.TokenManager
	Notifier    *services.Notifier
	RateLimiter *middleware.RateLimiter
	FrontendURL string
}

// New wires services, handlers and routes into a Fiber app.
func New(deps Deps) *fiber.App {
	access := services.NewAccessService(deps.DB)
	users := services.NewUserService(deps.DB)
	notifications := services.NewNotificationService(deps.DB)
	notifier := deps.Notifier
	if notifier == nil {
		notifier = services.NewNotifier("", notifications, nil)
	}
	groups := services.NewGroupService(deps.DB, access, users, notifier)
	tasks := services.NewTaskService(deps.DB, access, notifier)

	authHandler := handlers.NewAuthHandler(users, deps.Tokens)
	usersHandler := handlers.NewUsersHandler(users)
	groupsHandler := handlers.NewGroupsHandler(groups)
	tasksHandler := handlers.NewTasksHandler(tasks)
	notificationsHandler := handlers.NewNotificationsHandler(notifications)
	authMiddleware := middleware.NewAuthMiddleware(deps.Tokens)

	app := fiber.New(fiber.Config{
		BodyLimit:    bodyLimit,
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS(deps.FrontendURL))
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	app.Get("/health", handlers.Health)

	api := app.Group("/api")
	api.Get("/version", handlers.GetVersion)

	authRoutes := api.Group("/auth")
	if deps.RateLimiter != nil {
		authRoutes.Use(deps.RateLimiter.Handler())
	}
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Post("/forgot-password", authHandler.ForgotPassword)

	userRoutes := api.Group("/users", authMiddleware.RequireAuth)
	userRoutes.Get("/me", usersHandler.Me)
	userRoutes.Put("/me", usersHandler.UpdateMe)

	groupRoutes := api.Group("/groups", authMiddleware.RequireAuth)
	groupRoutes.Get("/", groupsHandler.List)
	groupRoutes.Post("/", groupsHandler.Create)
	groupRoutes.Get("/:id", groupsHandler.Get)
	groupRoutes.Get("/:id/members", groupsHandler.Members)
	groupRoutes.Post("/:id/members", groupsHandler.AddMember)

	taskRoutes := api.Group("/tasks", authMiddleware.RequireAuth)
	taskRoutes.Get("/my-tasks", tasksHandler.Mine)
	taskRoutes.Get("/group/:groupId", tasksHandler.ListByGroup)
	taskRoutes.Post("/", tasksHandler.Create)
	taskRoutes.Get("/:id", tasksHandler.Get)
	taskRoutes.Patch("/:id/status", tasksHandler.UpdateStatus)

	notificationRoutes := api.Group("/notifications", authMiddleware.RequireAuth)
	notificationRoutes.Get("/", notificationsHandler.List)
	notificationRoutes.Get("/unread-count", notificationsHandler.UnreadCount)
	notificationRoutes.Patch("/read-all", notificationsHandler.MarkAllRead)
	notificationRoutes.Patch("/:id/read", notificationsHandler.MarkRead)

	return app
}

// errorHandler renders errors that escape handlers, such as unknown routes
// and recovered panics, in the same envelope as handler errors.
func errorHandler(c *fiber.Ctx, err error) error {
	if fiberErr, ok := err.(*fiber.Error); ok {
		return utils.Error(c, fiberErr.Code, fiberErr.Message)
	}
	return utils.Error(c, fiber.StatusInternalServerError, "failed to process request")
}
