package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

const (
	TypeReservationReminder = "reservation:reminder"
	reminderQueue           = "default"
	reminderMaxRetry        = 3
)

// ReminderPayload is the body of a reservation reminder task.
type ReminderPayload struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	TimeSlot      time.Time `json:"time_slot"`
}

// ReminderScheduler queues and withdraws appointment reminders.
type ReminderScheduler interface {
	Schedule(ctx context.Context, reservationID uuid.UUID, timeSlot time.Time) error
	Cancel(ctx context.Context, reservationID uuid.UUID) error
}

// NewReminderTask builds the reminder task for a reservation, due at fireAt.
func NewReminderTask(payload ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeReservationReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID(reminderTaskID(payload.ReservationID)),
		asynq.Queue(reminderQueue),
		asynq.MaxRetry(reminderMaxRetry),
	}
	return task, opts, nil
}

// ParseReminderPayload decodes a task body produced by NewReminderTask.
func ParseReminderPayload(task *asynq.Task) (ReminderPayload, error) {
	var p ReminderPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid reminder payload: %w", err)
	}
	if p.ReservationID == uuid.Nil {
		return p, errors.New("invalid reminder payload: missing reservation_id")
	}
	return p, nil
}

func reminderTaskID(reservationID uuid.UUID) string {
	return "reminder:" + reservationID.String()
}

type asynqReminderScheduler struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	leadTime  time.Duration
	log       *logrus.Logger
}

func NewReminderScheduler(opt asynq.RedisClientOpt, leadTime time.Duration, log *logrus.Logger) *asynqReminderScheduler {
	return &asynqReminderScheduler{
		client:    asynq.NewClient(opt),
		inspector: asynq.NewInspector(opt),
		leadTime:  leadTime,
		log:       log,
	}
}

// Schedule enqueues a reminder leadTime before the slot. Slots closer than
// leadTime get their reminder right away.
func (s *asynqReminderScheduler) Schedule(ctx context.Context, reservationID uuid.UUID, timeSlot time.Time) error {
	task, opts, err := NewReminderTask(ReminderPayload{ReservationID: reservationID, TimeSlot: timeSlot}, timeSlot.Add(-s.leadTime))
	if err != nil {
		return err
	}

	info, err := s.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		s.log.Warnf("Failed to enqueue reminder for reservation %s: %+v", reservationID, err)
		return err
	}

	s.log.Debugf("Reminder %s scheduled for %v", info.ID, info.NextProcessAt)
	return nil
}

func (s *asynqReminderScheduler) Cancel(ctx context.Context, reservationID uuid.UUID) error {
	err := s.inspector.DeleteTask(reminderQueue, reminderTaskID(reservationID))
	if err != nil && !errors.Is(err, asynq.ErrTaskNotFound) && !errors.Is(err, asynq.ErrQueueNotFound) {
		s.log.Warnf("Failed to delete reminder for reservation %s: %+v", reservationID, err)
		return err
	}
	return nil
}

func (s *asynqReminderScheduler) Close() error {
	if err := s.inspector.Close(); err != nil {
		s.log.Warnf("Failed to close asynq inspector: %+v", err)
	}
	return s.client.Close()
}

// NoopReminderScheduler is used when reminders are disabled.
type NoopReminderScheduler struct{}

func (NoopReminderScheduler) Schedule(context.Context, uuid.UUID, time.Time) error { return nil }

func (NoopReminderScheduler) Cancel(context.Context, uuid.UUID) error { return nil }
