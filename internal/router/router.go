package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/kanban/api/handler"
)

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	Profile *apiHandler.ProfileHandler
	Board   *apiHandler.BoardHandler
	Column  *apiHandler.ColumnHandler
	Task    *apiHandler.TaskHandler
	Health  *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/register", handlers.Auth.Register)
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", authMiddleware(handlers.Auth.Refresh))
	r.POST("/api/v1/auth/logout", authMiddleware(handlers.Auth.Logout))

	// Protected routes
	r.GET("/api/v1/profile", authMiddleware(handlers.Profile.GetProfile))
	r.PUT("/api/v1/profile", authMiddleware(handlers.Profile.UpdateProfile))

	r.GET("/api/v1/boards", authMiddleware(handlers.Board.List))
	r.POST("/api/v1/boards", authMiddleware(handlers.Board.Create))
	r.GET("/api/v1/boards/{boardId}", authMiddleware(handlers.Board.Get))
	r.DELETE("/api/v1/boards/{boardId}", authMiddleware(handlers.Board.Delete))
	r.GET("/api/v1/boards/{boardId}/members", authMiddleware(handlers.Board.ListMembers))
	r.POST("/api/v1/boards/{boardId}/members", authMiddleware(handlers.Board.AddMember))

	r.GET("/api/v1/boards/{boardId}/columns", authMiddleware(handlers.Column.List))
	r.POST("/api/v1/boards/{boardId}/columns", authMiddleware(handlers.Column.Create))
	r.PATCH("/api/v1/columns/{id}", authMiddleware(handlers.Column.Update))
	r.DELETE("/api/v1/columns/{id}", authMiddleware(handlers.Column.Delete))

	r.GET("/api/v1/boards/{boardId}/tasks", authMiddleware(handlers.Task.List))
	r.POST("/api/v1/tasks", authMiddleware(handlers.Task.Create))
	r.PATCH("/api/v1/tasks/{id}", authMiddleware(handlers.Task.Update))
	r.DELETE("/api/v1/tasks/{id}", authMiddleware(handlers.Task.Delete))

	return r
}
