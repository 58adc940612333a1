package server

import (
	"net/http"

	"mealhub/internal/config"
	"mealhub/internal/handlers"
	"mealhub/internal/middleware"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func NewRouter(cfg *config.Config) *gin.Engine {
	r := gin.Default()

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("mealhub_session", store))

	r.Use(middleware.InjectActor())

	// AUTH
	r.POST("/actors", handlers.CreateActor)
	r.POST("/login", handlers.Login)
	r.GET("/logout", handlers.Logout)

	// демо-сид, без авторизации
	r.POST("/seed/demo", handlers.SeedDemo)

	auth := r.Group("/")
	auth.Use(middleware.RequireActor())

	// ДОМОХОЗЯЙСТВА
	auth.POST("/entities", handlers.CreateEntity)
	auth.GET("/entities/:id", handlers.ShowEntity)
	auth.POST("/entities/:id/members", handlers.AddMember)

	// МЕСТА И РЕСУРСЫ
	auth.POST("/entities/:id/locations", handlers.CreateLocation)
	auth.GET("/entities/:id/locations", handlers.ListLocations)
	auth.POST("/entities/:id/resources", handlers.CreateResource)
	auth.GET("/entities/:id/resources", handlers.ListResources)
	auth.GET("/entities/:id/inventory", handlers.ListInventory)
	auth.POST("/entities/:id/inventory", handlers.UpsertInventoryItem)

	// ЗАХВАТ И АНАЛИЗ
	auth.POST("/entities/:id/tracks", handlers.CreateTrack)
	auth.POST("/entities/:id/capture/:lensType", handlers.Capture)
	auth.POST("/lens-runs/:id/process", handlers.ProcessLensRun)

	// РЕВЬЮ ИЗМЕНЕНИЙ
	auth.POST("/entities/:id/changesets", handlers.ProposeChangeSet)
	auth.GET("/entities/:id/changesets", handlers.ListChangeSets)
	auth.POST("/changesets/:id/approve", handlers.ApproveChangeSet)
	auth.POST("/changesets/:id/apply", handlers.ApplyChangeSet)
	auth.GET("/entities/:id/questions", handlers.ListQuestions)
	auth.POST("/questions/:id/answers", handlers.AnswerQuestion)

	// ЗАДАЧИ И ПЛАНИРОВАНИЕ
	auth.POST("/entities/:id/tasks", handlers.CreateTask)
	auth.GET("/entities/:id/tasks", handlers.ListTasks)
	auth.POST("/tasks/:id/status", handlers.SetTaskStatus)
	auth.POST("/tasks/:id/assign", handlers.AssignTask)
	auth.POST("/tasks/:id/unassign", handlers.UnassignTask)
	auth.POST("/entities/:id/goals/weekly", handlers.CreateWeeklyGoal)

	// АУДИТ
	auth.GET("/entities/:id/audit", handlers.ListAuditLogs)

	// HEALTHCHECK
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return r
}
