package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/anamul94/AITutor/internal/handlers"
	"github.com/anamul94/AITutor/internal/logger"
	"github.com/anamul94/AITutor/internal/middleware"
	"github.com/anamul94/AITutor/internal/services"
)

type RouterConfig struct {
	AuthService   services.AuthService
	AuthHandler   *handlers.AuthHandler
	CourseHandler *handlers.CourseHandler
	LessonHandler *handlers.LessonHandler
	AdminHandler  *handlers.AdminHandler
	Log           *logger.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: false,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	auth := router.Group("/auth")
	{
		auth.POST("/register", cfg.AuthHandler.Register)
		auth.POST("/login", cfg.AuthHandler.Login)
	}

	// ===============
	// || Protected ||
	// ===============
	requireAuth := middleware.RequireAuth(cfg.AuthService, cfg.Log)

	authProtected := router.Group("/auth")
	authProtected.Use(requireAuth)
	{
		authProtected.GET("/me", cfg.AuthHandler.Me)
		authProtected.POST("/logout", cfg.AuthHandler.Logout)
	}

	courses := router.Group("/api/courses")
	courses.Use(requireAuth)
	{
		courses.POST("/generate", cfg.CourseHandler.Generate)
		courses.GET("/user/courses", cfg.CourseHandler.List)
		courses.GET("/:id", cfg.CourseHandler.Get)
		courses.DELETE("/:id", cfg.CourseHandler.Delete)
		courses.GET("/:id/progress", cfg.CourseHandler.GetProgress)
		courses.GET("/lessons/:id", cfg.LessonHandler.Get)
		courses.POST("/lessons/:id/progress", cfg.LessonHandler.UpdateProgress)
	}

	// ===============
	// || Admin     ||
	// ===============
	admin := router.Group("/api/admin")
	admin.Use(requireAuth, middleware.RequireAdmin())
	{
		admin.GET("/stats", cfg.AdminHandler.Stats)
		admin.GET("/insights", cfg.AdminHandler.Insights)
		admin.GET("/users", cfg.AdminHandler.ListUsers)
		admin.PATCH("/users/:id/plan", cfg.AdminHandler.UpdateUserPlan)
		admin.PATCH("/users/:id/status", cfg.AdminHandler.UpdateUserStatus)
		admin.GET("/settings/trial-days", cfg.AdminHandler.GetTrialDays)
		admin.PUT("/settings/trial-days", cfg.AdminHandler.SetTrialDays)
	}

	return router
}
