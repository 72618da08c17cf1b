package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/taskdeck/internal/handlers"
	"github.com/monocle-dev/taskdeck/internal/middleware"
	"github.com/rs/zerolog"
)

type Options struct {
	Handler        *handlers.Handler
	Sessions       middleware.SessionResolver
	Logger         zerolog.Logger
	AllowedOrigins []string
}

func NewRouter(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     opts.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	h := opts.Handler
	requireAuth := middleware.AuthMiddleware(opts.Sessions, opts.Logger)

	api := r.Group("/api")
	{
		api.GET("/health", h.HealthCheck)

		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
			auth.POST("/logout", h.Logout)
			auth.GET("/me", requireAuth, h.Me)
			auth.PUT("/password", requireAuth, h.ChangePassword)
		}

		api.GET("/dashboard", requireAuth, h.GetDashboard)

		projects := api.Group("/projects", requireAuth)
		{
			projects.POST("", h.CreateProject)
			projects.GET("", h.ListProjects)
			projects.GET("/:project_id", h.GetProject)
			projects.PATCH("/:project_id", h.UpdateProject)
			projects.DELETE("/:project_id", h.DeleteProject)

			// Membership endpoints
			projects.GET("/:project_id/members", h.ListMembers)
			projects.POST("/:project_id/members", h.AddMember)
			projects.DELETE("/:project_id/members/:user_id", h.RemoveMember)
			projects.PUT("/:project_id/owner", h.TransferOwnership)

			// Dashboard endpoint
			projects.GET("/:project_id/dashboard", h.GetProjectDashboard)

			projects.POST("/:project_id/tasks", h.CreateTask)
			projects.GET("/:project_id/tasks", h.ListTasks)
		}

		tasks := api.Group("/tasks", requireAuth)
		{
			tasks.GET("/:task_id", h.GetTask)
			tasks.PATCH("/:task_id", h.UpdateTask)
			tasks.DELETE("/:task_id", h.DeleteTask)
			tasks.POST("/:task_id/toggle", h.ToggleTask)
			tasks.POST("/:task_id/subtasks", h.CreateSubtask)
		}

		subtasks := api.Group("/subtasks", requireAuth)
		{
			subtasks.POST("/:subtask_id/toggle", h.ToggleSubtask)
			subtasks.DELETE("/:subtask_id", h.DeleteSubtask)
		}
	}

	return r
}
