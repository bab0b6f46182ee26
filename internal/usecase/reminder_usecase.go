package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/taherx7/Medi-connect/internal/domain/repository"
	"github.com/taherx7/Medi-connect/internal/infrastructure/database"
	"github.com/taherx7/Medi-connect/internal/service"
)

// ErrReminderStale marks a reminder whose reservation was cancelled, moved or removed.
var ErrReminderStale = errors.New("reminder no longer applies")

type ReminderUsecase interface {
	DeliverReminder(ctx context.Context, payload service.ReminderPayload) error
}

type reminderUsecase struct {
	db              database.Transactor
	log             *logrus.Logger
	location        *time.Location
	userRepo        repository.UserRepository
	doctorRepo      repository.DoctorRepository
	reservationRepo repository.ReservationRepository
}

func NewReminderUsecase(
	db database.Transactor,
	log *logrus.Logger,
	location *time.Location,
	userRepo repository.UserRepository,
	doctorRepo repository.DoctorRepository,
	reservationRepo repository.ReservationRepository,
) ReminderUsecase {
	return &reminderUsecase{
		db:              db,
		log:             log,
		location:        location,
		userRepo:        userRepo,
		doctorRepo:      doctorRepo,
		reservationRepo: reservationRepo,
	}
}

// DeliverReminder reloads the reservation and logs the reminder. Reminders
// for reservations that are gone or cancelled return ErrReminderStale.
func (u *reminderUsecase) DeliverReminder(ctx context.Context, payload service.ReminderPayload) error {
	db := u.db.DB(ctx)

	reservation, err := u.reservationRepo.FindByID(db, payload.ReservationID)
	if err != nil {
		u.log.Warnf("Failed to load reservation %s for reminder: %+v", payload.ReservationID, err)
		return storageError("find reservation", err)
	}
	if reservation == nil || reservation.IsCancelled() || !reservation.TimeSlot.Equal(payload.TimeSlot) {
		return ErrReminderStale
	}

	patient, err := u.userRepo.FindByID(db, reservation.UserID)
	if err != nil {
		return storageError("find patient", err)
	}
	doctor, err := u.doctorRepo.FindByID(db, reservation.DoctorID)
	if err != nil {
		return storageError("find doctor", err)
	}
	if patient == nil || doctor == nil {
		return ErrReminderStale
	}

	u.log.WithFields(logrus.Fields{
		"reservation_id": reservation.ID,
		"patient_email":  patient.Email,
		"doctor":         doctor.Name,
		"location":       doctor.Location,
		"time_slot":      reservation.TimeSlot.In(u.location).Format("2006-01-02 03:04 PM"),
	}).Info("Appointment reminder")

	return nil
}
