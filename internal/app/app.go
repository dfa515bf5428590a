package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hospital_training_portal/internal/config"
	"hospital_training_portal/internal/controller"
	"hospital_training_portal/internal/service"
	"hospital_training_portal/internal/session"
	"hospital_training_portal/internal/store"
	"hospital_training_portal/internal/upstream"
	"hospital_training_portal/pkg/logger"
	"hospital_training_portal/pkg/monitoring"
	"hospital_training_portal/pkg/security"
	"hospital_training_portal/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	Sessions *session.Manager

	tracerShutdown func(context.Context) error
}

type services struct {
	trainings *service.TrainingService
	quizzes   *service.QuizService
	admin     *service.AdminService
	profile   *service.ProfileService
}

type controllers struct {
	auth     *controller.AuthController
	training *controller.TrainingController
	quiz     *controller.QuizController
	admin    *controller.AdminController
	profile  *controller.ProfileController
	health   *controller.HealthController
}

func (a *App) initServices(client *upstream.Client, cfg *config.Config) *services {
	s := &services{}
	s.trainings = service.NewTrainingService(client)
	s.quizzes = service.NewQuizService(client, client, s.trainings, cfg.Quiz)
	s.admin = service.NewAdminService(client)
	s.profile = service.NewProfileService(client)
	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(a.Sessions, s.quizzes),
		training: controller.NewTrainingController(a.Sessions, s.trainings),
		quiz:     controller.NewQuizController(a.Sessions, s.quizzes),
		admin:    controller.NewAdminController(s.admin),
		profile:  controller.NewProfileController(a.Sessions, s.profile),
		health:   controller.NewHealthController(a.Sessions),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg.Server.Mode)

	logger.Log.Info("Logger initialized successfully")

	client := upstream.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout)

	sessionStore, err := store.NewSessionStore(cfg.Session.CacheFile)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg}
	app.Sessions = session.NewManager(client, sessionStore, cfg.Session)
	// 401 responses from any upstream call trigger a single-flight
	// refresh-and-retry through the manager.
	client.SetRefreshHook(app.Sessions.Refresh)

	services := app.initServices(client, cfg)
	controllers := app.initControllers(services)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("training-portal", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerShutdown = tp.Shutdown
	}

	app.registerRoutes(router, controllers)

	return app, nil
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Stop the session refresher before the server so no refresh fires
	// into a half-closed process. The cached session stays on disk for
	// the next run.
	a.Sessions.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	logger.Log.Sync()
	log.Println("Server exiting")
}
