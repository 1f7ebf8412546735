package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/tracker/api/handler"
)

const apiPrefix = "/api/v1"

type Handlers struct {
	Auth         *apiHandler.AuthHandler
	Profile      *apiHandler.ProfileHandler
	Project      *apiHandler.ProjectHandler
	Task         *apiHandler.TaskHandler
	Notification *apiHandler.NotificationHandler
	Health       *apiHandler.HealthHandler
}

// New registers the API routes. UploadsDir, when set, is served under /uploads.
func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler, uploadsDir string) *router.Router {
	r := router.New()
	api := r.Group(apiPrefix)

	api.GET("/health", handlers.Health.Check)

	// Auth routes
	api.POST("/auth/register", handlers.Auth.Register)
	api.POST("/auth/login", handlers.Auth.Login)
	api.POST("/auth/refresh", handlers.Auth.Refresh)
	api.POST("/auth/logout", authMiddleware(handlers.Auth.Logout))

	// Protected routes
	api.GET("/profile", authMiddleware(handlers.Profile.GetProfile))
	api.PUT("/profile", authMiddleware(handlers.Profile.UpdateProfile))
	api.GET("/users", authMiddleware(handlers.Profile.ListUsers))
	api.GET("/users/{id}", authMiddleware(handlers.Profile.GetUser))

	api.GET("/projects", authMiddleware(handlers.Project.ListProjects))
	api.POST("/projects", authMiddleware(handlers.Project.CreateProject))
	api.GET("/projects/{id}", authMiddleware(handlers.Project.GetProject))
	api.PUT("/projects/{id}", authMiddleware(handlers.Project.UpdateProject))
	api.DELETE("/projects/{id}", authMiddleware(handlers.Project.DeleteProject))
	api.POST("/projects/{id}/invitations", authMiddleware(handlers.Project.InviteMembers))
	api.DELETE("/projects/{id}/members/{userId}", authMiddleware(handlers.Project.RemoveMember))

	api.GET("/tasks", authMiddleware(handlers.Task.GetTasks))
	api.POST("/tasks", authMiddleware(handlers.Task.CreateTask))
	api.GET("/tasks/{id}", authMiddleware(handlers.Task.GetTask))
	api.PUT("/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	api.DELETE("/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))
	api.PUT("/tasks/{id}/progress", authMiddleware(handlers.Task.UpdateProgress))
	api.POST("/tasks/{id}/assignees/{userId}", authMiddleware(handlers.Task.AssignUser))
	api.DELETE("/tasks/{id}/assignees/{userId}", authMiddleware(handlers.Task.UnassignUser))

	api.GET("/tasks/{id}/subtasks", authMiddleware(handlers.Task.ListSubtasks))
	api.POST("/tasks/{id}/subtasks", authMiddleware(handlers.Task.AddSubtask))
	api.PUT("/subtasks/{id}/progress", authMiddleware(handlers.Task.UpdateSubtaskProgress))
	api.POST("/subtasks/{id}/complete", authMiddleware(handlers.Task.CompleteSubtask))
	api.DELETE("/subtasks/{id}", authMiddleware(handlers.Task.DeleteSubtask))

	api.GET("/tasks/{id}/comments", authMiddleware(handlers.Task.ListComments))
	api.POST("/tasks/{id}/comments", authMiddleware(handlers.Task.AddComment))
	api.GET("/tasks/{id}/files", authMiddleware(handlers.Task.ListAttachments))
	api.POST("/tasks/{id}/files", authMiddleware(handlers.Task.AttachFile))

	api.GET("/settings/status-policy", authMiddleware(handlers.Task.GetStatusPolicy))
	api.PUT("/settings/status-policy", authMiddleware(handlers.Task.SetStatusPolicy))

	api.GET("/notifications", authMiddleware(handlers.Notification.List))
	api.GET("/notifications/unread", authMiddleware(handlers.Notification.Unread))
	api.POST("/notifications/{id}/read", authMiddleware(handlers.Notification.MarkRead))

	if uploadsDir != "" {
		r.ServeFiles("/uploads/{filepath:*}", uploadsDir)
	}

	return r
}
