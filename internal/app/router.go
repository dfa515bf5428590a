package app

import (
	"hospital_training_portal/internal/middleware"
	"hospital_training_portal/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	router.GET("/health", c.health.Health)
	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")

	// session endpoints are open: the login screen has no session yet
	api.POST("/login", c.auth.Login)
	api.POST("/logout", c.auth.Logout)
	api.GET("/session", c.auth.Session)
	api.POST("/session/refresh", c.auth.Refresh)

	authed := api.Group("")
	authed.Use(middleware.RequireSession(a.Sessions))
	{
		authed.GET("/profile", c.profile.Get)
		authed.PUT("/profile", c.profile.Update)
		authed.PUT("/profile/password", c.profile.ChangePassword)

		authed.GET("/trainings", c.training.List)
		authed.GET("/trainings/:id", c.training.Get)
		authed.GET("/my/trainings", c.training.Mine)
		authed.GET("/my/progress", c.training.Progress)

		authed.POST("/quiz/:trainingId/start", c.quiz.Start)
		authed.POST("/quiz/:trainingId/answer", c.quiz.Answer)
		authed.POST("/quiz/:trainingId/submit", c.quiz.Submit)
		authed.GET("/results/:id", c.quiz.Result)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.RequireSession(a.Sessions), middleware.RequireAdmin(a.Sessions))
	{
		admin.GET("/users", c.admin.ListUsers)
		admin.POST("/users", c.admin.CreateUser)
		admin.GET("/users/:id", c.admin.GetUser)
		admin.PUT("/users/:id", c.admin.UpdateUser)
		admin.DELETE("/users/:id", c.admin.DeleteUser)

		admin.GET("/areas", c.admin.ListAreas)
		admin.GET("/roles", c.admin.ListRoles)

		admin.POST("/trainings", c.admin.CreateTraining)
		admin.PUT("/trainings/:id", c.admin.UpdateTraining)
		admin.DELETE("/trainings/:id", c.admin.DeleteTraining)

		admin.GET("/assignments", c.admin.ListAssignments)
		admin.POST("/assignments", c.admin.AssignTraining)

		admin.GET("/question-types", c.admin.QuestionTypes)
		admin.POST("/questionnaires", c.admin.BuildQuestionnaire)
	}
}
