package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/taherx7/Medi-connect/config"
	deliveryHttp "github.com/taherx7/Medi-connect/internal/delivery/http"
	"github.com/taherx7/Medi-connect/internal/delivery/http/handler"
	"github.com/taherx7/Medi-connect/internal/delivery/http/middleware"
	"github.com/taherx7/Medi-connect/internal/infrastructure/cache"
	"github.com/taherx7/Medi-connect/internal/infrastructure/database"
	"github.com/taherx7/Medi-connect/internal/infrastructure/metrics"
	"github.com/taherx7/Medi-connect/internal/repository"
	"github.com/taherx7/Medi-connect/internal/service"
	"github.com/taherx7/Medi-connect/internal/usecase"
	"github.com/taherx7/Medi-connect/pkg/jwt"
	"github.com/taherx7/Medi-connect/pkg/validator"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// App holds all dependencies of the HTTP server
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server

	reminders interface{ Close() error }
}

// Setup configures logging and loads the configuration. Commands that do not
// serve requests may skip validation.
func Setup(envFile string, validate bool) (*config.Config, *logrus.Logger, error) {
	log := setupLogger()

	cfg, err := config.LoadConfigFrom(envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, nil, fmt.Errorf("invalid config: %w", err)
		}
	}

	level, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid APP_LOG_LEVEL %q: %w", cfg.App.LogLevel, err)
	}
	log.SetLevel(level)
	log.Info("Configuration loaded successfully")

	return cfg, log, nil
}

// New creates the server App with all dependencies initialized
func New(cfg *config.Config, log *logrus.Logger) (*App, error) {
	app := &App{Config: cfg, Log: log}

	db, redisClient, err := connect(cfg, log)
	if err != nil {
		return nil, err
	}
	app.DB = db
	app.RedisClient = redisClient

	server, err := app.initializeServer()
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Server = server

	return app, nil
}

// setupLogger configures the shared logrus logger
func setupLogger() *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)
	return log
}

func connect(cfg *config.Config, log *logrus.Logger) (*gorm.DB, *redis.Client, error) {
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connected successfully")

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		closeDB(db)
		return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info("Redis connected successfully")

	return db, redisClient, nil
}

func asynqOptions(cfg config.RedisConfig) asynq.RedisClientOpt {
	opts := cache.Options(cfg)
	return asynq.RedisClientOpt{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}
}

// initializeServer wires every layer and returns the HTTP server
func (app *App) initializeServer() (*http.Server, error) {
	cfg, log := app.Config, app.Log

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Namespace)
	}

	jwtService := jwt.NewJWTService(cfg.JWT)
	customValidator := validator.NewValidator()
	tx := database.NewTransactor(app.DB)

	// Repositories
	userRepo := repository.NewUserRepository()
	doctorRepo := repository.NewDoctorRepository()
	reservationRepo := repository.NewReservationRepository()
	blockedSlotRepo := repository.NewBlockedSlotRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Services
	tokenStore := service.NewTokenStore(app.RedisClient, log)
	availabilityCache := service.NewAvailabilityCache(app.RedisClient, log, cfg.Redis.SlotCacheTTL)
	auditService := service.NewAuditService(tx, log, auditLogRepo)
	photoStorage, err := service.NewPhotoStorage(cfg.Storage, log)
	if err != nil {
		return nil, err
	}

	var reminders service.ReminderScheduler = service.NoopReminderScheduler{}
	if cfg.Reminder.Enabled {
		scheduler := service.NewReminderScheduler(asynqOptions(cfg.Redis), cfg.Reminder.LeadTime, log)
		app.reminders = scheduler
		reminders = scheduler
	}

	// Usecases
	loc := cfg.App.Location
	authUsecase := usecase.NewAuthUsecase(tx, log, userRepo, doctorRepo, jwtService, tokenStore, photoStorage)
	availabilityUsecase := usecase.NewAvailabilityUsecase(tx, log, loc, doctorRepo, reservationRepo, blockedSlotRepo, availabilityCache, m)
	bookingUsecase := usecase.NewPatientBookingUsecase(tx, log, loc, userRepo, doctorRepo, reservationRepo, blockedSlotRepo, auditService, availabilityCache, reminders, m)
	patientUsecase := usecase.NewPatientProfileUsecase(tx, log, userRepo, reservationRepo)
	doctorUsecase := usecase.NewDoctorProfileUsecase(tx, log, loc, doctorRepo, reservationRepo, blockedSlotRepo, auditService, availabilityCache, photoStorage, tokenStore)
	directoryUsecase := usecase.NewDirectoryUsecase(tx, log, userRepo, doctorRepo, reservationRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator, jwtService, !cfg.IsDevelopment())
	slotHandler := handler.NewSlotHandler(availabilityUsecase, customValidator)
	bookingHandler := handler.NewBookingHandler(bookingUsecase, customValidator)
	patientHandler := handler.NewPatientHandler(patientUsecase)
	doctorHandler := handler.NewDoctorHandler(doctorUsecase, customValidator)
	directoryHandler := handler.NewDirectoryHandler(directoryUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, tokenStore)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.PublicBaseURL)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimit, log)

	router := deliveryHttp.NewRouter(
		authHandler, slotHandler, bookingHandler, patientHandler, doctorHandler, directoryHandler, auditLogHandler,
		authMiddleware, corsMiddleware, rateLimitMiddleware,
		m, cfg.Metrics.Path,
	)

	return &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	waitForSignal()
	app.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	app.Close()

	app.Log.Info("Server shutdown complete")
}

// waitForSignal blocks until SIGINT or SIGTERM
func waitForSignal() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}

// Close closes all connections (database, redis, asynq client)
func (app *App) Close() {
	if app.reminders != nil {
		if err := app.reminders.Close(); err != nil {
			app.Log.Warnf("Failed to close reminder client: %v", err)
		}
	}
	closeDB(app.DB)
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}

func closeDB(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
