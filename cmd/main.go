package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/anamul94/AITutor/internal/db"
	"github.com/anamul94/AITutor/internal/handlers"
	"github.com/anamul94/AITutor/internal/logger"
	"github.com/anamul94/AITutor/internal/repos"
	"github.com/anamul94/AITutor/internal/server"
	"github.com/anamul94/AITutor/internal/services"
	"github.com/anamul94/AITutor/internal/utils"
)

func main() {
	_ = godotenv.Load()

	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenExpireMinutes := utils.GetEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 10080, log)
	freeDailyCourseLimit := utils.GetEnvAsInt("FREE_DAILY_COURSE_LIMIT", 1, log)
	freeDailyLessonLimit := utils.GetEnvAsInt("FREE_DAILY_LESSON_LIMIT", 2, log)
	premiumTrialDays := utils.GetEnvAsInt("PREMIUM_TRIAL_DAYS", 7, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	courseRepo := repos.NewCourseRepo(thePG, log)
	courseModuleRepo := repos.NewCourseModuleRepo(thePG, log)
	lessonRepo := repos.NewLessonRepo(thePG, log)
	userProgressRepo := repos.NewUserProgressRepo(thePG, log)
	tokenUsageRepo := repos.NewTokenUsageRepo(thePG, log)
	appSettingRepo := repos.NewAppSettingRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	llmClient, err := services.NewLLMClient(log)
	if err != nil {
		log.Error("Could not init LLMClient", "error", err)
		os.Exit(1)
	}
	settingsService := services.NewSettingsService(appSettingRepo, premiumTrialDays, log)
	authService := services.NewAuthService(userRepo, settingsService, jwtSecretKey, time.Duration(accessTokenExpireMinutes)*time.Minute, log)
	planService := services.NewPlanService(userRepo, courseRepo, lessonRepo, freeDailyCourseLimit, freeDailyLessonLimit, log)
	courseService := services.NewCourseService(thePG, courseRepo, courseModuleRepo, lessonRepo, userProgressRepo, tokenUsageRepo, planService, llmClient, log)
	lessonService := services.NewLessonService(thePG, lessonRepo, userProgressRepo, tokenUsageRepo, planService, llmClient, log)
	progressService := services.NewProgressService(courseRepo, lessonRepo, userProgressRepo, log)
	adminService := services.NewAdminService(userRepo, courseRepo, lessonRepo, tokenUsageRepo, settingsService, log)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	courseHandler := handlers.NewCourseHandler(courseService, progressService)
	lessonHandler := handlers.NewLessonHandler(lessonService, progressService)
	adminHandler := handlers.NewAdminHandler(adminService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthService:   authService,
		AuthHandler:   authHandler,
		CourseHandler: courseHandler,
		LessonHandler: lessonHandler,
		AdminHandler:  adminHandler,
		Log:           log,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
