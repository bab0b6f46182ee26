package bootstrap

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/taherx7/Medi-connect/config"
	"github.com/taherx7/Medi-connect/internal/infrastructure/database"
	"github.com/taherx7/Medi-connect/internal/repository"
	"github.com/taherx7/Medi-connect/internal/service"
	"github.com/taherx7/Medi-connect/internal/usecase"
	"github.com/taherx7/Medi-connect/internal/worker"
	"gorm.io/gorm"
)

// Worker runs background jobs: reminder delivery and the blocked slot cleanup
type Worker struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client

	reminders *worker.ReminderWorker
	cleanup   *worker.CleanupScheduler
}

func NewWorker(cfg *config.Config, log *logrus.Logger) (*Worker, error) {
	db, redisClient, err := connect(cfg, log)
	if err != nil {
		return nil, err
	}
	w := &Worker{Config: cfg, Log: log, DB: db, RedisClient: redisClient}

	tx := database.NewTransactor(db)
	userRepo := repository.NewUserRepository()
	doctorRepo := repository.NewDoctorRepository()
	reservationRepo := repository.NewReservationRepository()
	blockedSlotRepo := repository.NewBlockedSlotRepository()

	auditService := service.NewAuditService(tx, log, repository.NewAuditLogRepository())
	availabilityCache := service.NewAvailabilityCache(redisClient, log, cfg.Redis.SlotCacheTTL)

	maintenanceUsecase := usecase.NewMaintenanceUsecase(tx, log, cfg.Maintenance.BlockedSlotRetention, blockedSlotRepo, auditService, availabilityCache)
	w.cleanup, err = worker.NewCleanupScheduler(cfg.Maintenance.CleanupSpec, maintenanceUsecase, log)
	if err != nil {
		w.Close()
		return nil, err
	}

	if cfg.Reminder.Enabled {
		reminderUsecase := usecase.NewReminderUsecase(tx, log, cfg.App.Location, userRepo, doctorRepo, reservationRepo)
		w.reminders = worker.NewReminderWorker(asynqOptions(cfg.Redis), cfg.Reminder, reminderUsecase, log)
	} else {
		log.Info("Reminders disabled, only the cleanup scheduler will run")
	}

	return w, nil
}

// Run starts both jobs and blocks until SIGINT or SIGTERM
func (w *Worker) Run() error {
	if w.reminders != nil {
		if err := w.reminders.Start(); err != nil {
			return fmt.Errorf("failed to start worker: %w", err)
		}
	}
	w.cleanup.Start()

	waitForSignal()
	w.Log.Info("Shutting down worker...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	w.cleanup.Stop(ctx)
	if w.reminders != nil {
		w.reminders.Shutdown()
	}
	w.Close()

	w.Log.Info("Worker shutdown complete")
	return nil
}

func (w *Worker) Close() {
	closeDB(w.DB)
	if w.RedisClient != nil {
		w.RedisClient.Close()
	}
}
