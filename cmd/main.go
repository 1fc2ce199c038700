package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/techmilsolutions/chemmentor/config"
	"github.com/techmilsolutions/chemmentor/database"
	_ "github.com/techmilsolutions/chemmentor/docs" // Swagger docs - auto-generated
	adminctrl "github.com/techmilsolutions/chemmentor/internal/controller/admin"
	userctrl "github.com/techmilsolutions/chemmentor/internal/controller/user"
	"github.com/techmilsolutions/chemmentor/internal/logger"
	"github.com/techmilsolutions/chemmentor/internal/middleware"
	"github.com/techmilsolutions/chemmentor/internal/model"
	"github.com/techmilsolutions/chemmentor/internal/repository"
	"github.com/techmilsolutions/chemmentor/internal/service"
	"github.com/techmilsolutions/chemmentor/internal/session"
)

// @title ChemMentor AI API
// @version 1.0
// @description AI-powered O Level Chemistry tutoring: onboarding, timed diagnostics, progress dashboard, study roadmaps, and an interactive tutor.
// @contact.name API Support
// @contact.email support@techmilsolutions.co
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()

	app := fx.New(
		// Core Application Components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase, // Provides *gorm.DB
			NewGinEngine,         // Provides *gin.Engine
		),

		// Repositories Layer
		fx.Provide(
			repository.NewUserRepository,
			repository.NewStudentProfileRepository,
			repository.NewChapterRepository,
			repository.NewDiagnosticRepository,
			repository.NewResultRepository,
			repository.NewRoadmapRepository,
		),

		// Services Layer
		fx.Provide(
			service.NewAuthService,
			service.NewOnboardingService,
			service.NewGeminiLLMService,
			service.NewDiagnosticService,
			service.NewDashboardService,
			service.NewRoadmapService,
			service.NewTutorService,
		),

		// Attempt session machinery
		fx.Provide(
			session.NewLockStore,
			userctrl.NewDiagnosticSubmitter, // Provides session.Submitter
			session.NewManager,
		),

		// API Controllers Layer
		fx.Provide(
			userctrl.NewAuthController,
			userctrl.NewOnboardingController,
			userctrl.NewDiagnosticController,
			userctrl.NewSessionController,
			userctrl.NewDashboardController,
			userctrl.NewRoadmapController,
			userctrl.NewTutorController,
			adminctrl.NewChapterController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine(cfg *config.Config) *gin.Engine {
	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	allowedOrigins := []string{"*"}
	if cfg.FrontendURL != "" {
		allowedOrigins = []string{cfg.FrontendURL}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Redirect-To"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI at /swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	authSvc service.AuthService,
	onboardingSvc service.OnboardingService,
	authCtrl *userctrl.AuthController,
	onboardingCtrl *userctrl.OnboardingController,
	diagnosticCtrl *userctrl.DiagnosticController,
	sessionCtrl *userctrl.SessionController,
	dashboardCtrl *userctrl.DashboardController,
	roadmapCtrl *userctrl.RoadmapController,
	tutorCtrl *userctrl.TutorController,
	chapterCtrl *adminctrl.ChapterController,
) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "ChemMentor AI",
			"status":  "running",
			"version": "1.0.0",
		})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := router.Group("/api/v1")
	{
		// Identity
		api.POST("/auth/signup", authCtrl.Signup)
		api.POST("/auth/login", authCtrl.Login)
		api.POST("/auth/signout", authCtrl.Signout)
		api.POST("/reset-password", authCtrl.ResetPassword)

		// Diagnostic lifecycle and aggregates; user identified by user_id
		api.GET("/chapters", diagnosticCtrl.GetChapters)
		api.POST("/generate-diagnostic", diagnosticCtrl.GenerateDiagnostic)
		api.POST("/get-diagnostic", diagnosticCtrl.GetDiagnostic)
		api.POST("/submit-diagnostic", diagnosticCtrl.SubmitDiagnostic)
		api.GET("/dashboard", dashboardCtrl.GetDashboard)
		api.POST("/generate-roadmap", roadmapCtrl.GenerateRoadmap)
		api.POST("/ai-tutor", tutorCtrl.AITutor)
	}

	authed := api.Group("", middleware.RequireAuth(authSvc))
	{
		authed.GET("/auth/session", authCtrl.GetSession)
		authed.POST("/auth/update-password", authCtrl.UpdatePassword)
		authed.GET("/onboarding/status", onboardingCtrl.Status)
		authed.GET("/onboarding/profile", onboardingCtrl.Profile)
	}

	// The wizard itself is reachable only before onboarding completes.
	wizard := api.Group("/onboarding",
		middleware.RequireAuth(authSvc),
		middleware.RequireOnboarding(onboardingSvc, false),
	)
	{
		wizard.POST("/validate/:step", onboardingCtrl.ValidateStep)
		wizard.POST("/complete", onboardingCtrl.Complete)
	}

	// Timed attempts require a completed profile.
	attempt := api.Group("/diagnostic-session",
		middleware.RequireAuth(authSvc),
		middleware.RequireOnboarding(onboardingSvc, true),
	)
	{
		attempt.POST("/start", sessionCtrl.Start)
		attempt.POST("/answer", sessionCtrl.Answer)
		attempt.POST("/submit", sessionCtrl.Submit)
		attempt.GET("/state", sessionCtrl.State)
	}

	adminAPIGroup := router.Group("/api/v1/admin")
	{
		adminAPIGroup.POST("/chapters", chapterCtrl.UpsertChapter)
		adminAPIGroup.GET("/chapters", chapterCtrl.ListChapters)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("ChemMentor AI server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.User{},
		&model.StudentProfile{},
		&model.ChemistryChapter{},
		&model.Diagnostic{},
		&model.DiagnosticResult{},
		&model.Roadmap{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
