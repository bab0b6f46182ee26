package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/taherx7/Medi-connect/config"
	"github.com/taherx7/Medi-connect/internal/service"
	"github.com/taherx7/Medi-connect/internal/usecase"
)

// ReminderWorker consumes reservation reminder tasks from Redis.
type ReminderWorker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	log    *logrus.Logger
}

func NewReminderWorker(opt asynq.RedisClientOpt, cfg config.ReminderConfig, reminders usecase.ReminderUsecase, log *logrus.Logger) *ReminderWorker {
	server := asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues: map[string]int{
				"default": 1,
			},
			Logger: log,
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(service.TypeReservationReminder, HandleReminderTask(reminders, log))

	return &ReminderWorker{server: server, mux: mux, log: log}
}

// Start runs the asynq processors in the background.
func (w *ReminderWorker) Start() error {
	w.log.Info("Starting reminder worker")
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("failed to start reminder worker: %w", err)
	}
	return nil
}

// Shutdown waits for in-flight tasks and stops the server.
func (w *ReminderWorker) Shutdown() {
	w.server.Shutdown()
	w.log.Info("Reminder worker stopped")
}

// HandleReminderTask delivers one reminder. Malformed payloads and stale
// reservations are dropped without retry; storage errors are retried.
func HandleReminderTask(reminders usecase.ReminderUsecase, log *logrus.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		payload, err := service.ParseReminderPayload(task)
		if err != nil {
			log.Warnf("Dropping reminder task: %+v", err)
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}

		err = reminders.DeliverReminder(ctx, payload)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, usecase.ErrReminderStale):
			log.Debugf("Skipping reminder for reservation %s: %v", payload.ReservationID, err)
			return nil
		default:
			return err
		}
	}
}
