package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/taherx7/Medi-connect/internal/converter"
	"github.com/taherx7/Medi-connect/internal/delivery/dto"
	"github.com/taherx7/Medi-connect/internal/domain/entity"
	"github.com/taherx7/Medi-connect/internal/domain/repository"
	"github.com/taherx7/Medi-connect/internal/infrastructure/database"
	"github.com/taherx7/Medi-connect/internal/infrastructure/metrics"
	"github.com/taherx7/Medi-connect/internal/service"
	"github.com/taherx7/Medi-connect/internal/slot"
	"gorm.io/gorm"
)

const (
	reservationSlotConstraint = "uq_reservations_doctor_slot_confirmed"

	// Postgres default names for the reservations foreign keys.
	reservationDoctorFK = "reservations_doctor_id_fkey"
	reservationUserFK   = "reservations_user_id_fkey"
)

var (
	ErrReservationNotFound         = errors.New("reservation not found")
	ErrReservationAlreadyCancelled = errors.New("reservation is already cancelled")
	ErrReservationNotOwned         = errors.New("reservation does not belong to you")
	ErrInvalidTimeSlot             = errors.New("invalid time slot, use a future ISO-8601 timestamp")
	ErrActiveReservationExists     = fmt.Errorf("%w: you already have an active reservation", ErrConflict)
	ErrSlotUnavailable             = fmt.Errorf("%w: this time slot is no longer available", ErrConflict)
)

type PatientBookingUsecase interface {
	AttemptBooking(ctx context.Context, patientID uuid.UUID, req *dto.BookReservationRequest) (*dto.ReservationResponse, error)
	CancelReservation(ctx context.Context, patientID, reservationID uuid.UUID) error
}

type patientBookingUsecase struct {
	db              database.Transactor
	log             *logrus.Logger
	location        *time.Location
	userRepo        repository.UserRepository
	doctorRepo      repository.DoctorRepository
	reservationRepo repository.ReservationRepository
	blockedSlotRepo repository.BlockedSlotRepository
	auditService    service.AuditService
	cache           service.AvailabilityCache
	reminders       service.ReminderScheduler
	metrics         *metrics.Metrics
	now             func() time.Time
}

func NewPatientBookingUsecase(
	db database.Transactor,
	log *logrus.Logger,
	location *time.Location,
	userRepo repository.UserRepository,
	doctorRepo repository.DoctorRepository,
	reservationRepo repository.ReservationRepository,
	blockedSlotRepo repository.BlockedSlotRepository,
	auditService service.AuditService,
	cache service.AvailabilityCache,
	reminders service.ReminderScheduler,
	metrics *metrics.Metrics,
) PatientBookingUsecase {
	return &patientBookingUsecase{
		db:              db,
		log:             log,
		location:        location,
		userRepo:        userRepo,
		doctorRepo:      doctorRepo,
		reservationRepo: reservationRepo,
		blockedSlotRepo: blockedSlotRepo,
		auditService:    auditService,
		cache:           cache,
		reminders:       reminders,
		metrics:         metrics,
		now:             time.Now,
	}
}

// AttemptBooking reserves a slot for the patient.
//
// Flow (one transaction):
// 1. Lock the patient row so parallel attempts by the same patient serialize
// 2. Reject when the patient already holds an active reservation
// 3. Reject unless the instant is a free slot of the doctor's schedule
// 4. Insert the reservation; the partial unique index on confirmed
//    (doctor_id, time_slot) catches a parallel booking by another patient
func (u *patientBookingUsecase) AttemptBooking(ctx context.Context, patientID uuid.UUID, req *dto.BookReservationRequest) (*dto.ReservationResponse, error) {
	reservation, err := u.attemptBooking(ctx, patientID, req)
	u.metrics.RecordBooking(bookingOutcome(err))
	if err != nil {
		return nil, err
	}

	date := localDay(reservation.TimeSlot, u.location).Format(dateLayout)
	if err := u.cache.InvalidateDate(ctx, reservation.DoctorID, date); err != nil {
		u.log.Warnf("Failed to invalidate slot cache for doctor %s on %s: %+v", reservation.DoctorID, date, err)
	}
	if err := u.reminders.Schedule(ctx, reservation.ID, reservation.TimeSlot); err != nil {
		u.log.Warnf("Failed to schedule reminder for reservation %s: %+v", reservation.ID, err)
	}

	u.log.Infof("Reservation created: id=%s, doctor=%s, patient=%s, slot=%s", reservation.ID, reservation.DoctorID, patientID, reservation.TimeSlot.Format(time.RFC3339))
	return converter.ReservationToResponse(reservation), nil
}

func (u *patientBookingUsecase) attemptBooking(ctx context.Context, patientID uuid.UUID, req *dto.BookReservationRequest) (*entity.Reservation, error) {
	now := u.now()

	timeSlot, err := time.Parse(time.RFC3339, req.TimeSlot)
	if err != nil || !timeSlot.After(now) {
		return nil, ErrInvalidTimeSlot
	}

	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return nil, ErrDoctorNotFound
	}

	var reservation *entity.Reservation
	err = u.db.WithinTransaction(ctx, func(tx *gorm.DB) error {
		patient, err := u.userRepo.LockByID(tx, patientID)
		if err != nil {
			return storageError("lock patient", err)
		}
		if patient == nil {
			return ErrUserNotFound
		}

		doctor, err := u.doctorRepo.FindByID(tx, doctorID)
		if err != nil {
			return storageError("find doctor", err)
		}
		if doctor == nil {
			return ErrDoctorNotFound
		}

		active, err := u.reservationRepo.FindActiveByPatient(tx, patientID, now)
		if err != nil {
			return storageError("find active reservations", err)
		}
		if len(active) > 0 {
			return ErrActiveReservationExists
		}

		availability, err := computeAvailability(tx, u.reservationRepo, u.blockedSlotRepo, doctor, localDay(timeSlot, u.location))
		if err != nil {
			return err
		}
		if s, ok := slot.Lookup(availability, timeSlot); !ok || s.IsBooked {
			return ErrSlotUnavailable
		}

		reservation = &entity.Reservation{
			DoctorID:      doctorID,
			UserID:        patientID,
			TimeSlot:      timeSlot.UTC(),
			Status:        entity.ReservationStatusConfirmed,
			PaymentStatus: entity.PaymentStatusFor(req.PaymentMethod),
		}
		if err := u.reservationRepo.Create(tx, reservation); err != nil {
			if isDuplicateKeyError(err, reservationSlotConstraint) {
				return ErrSlotUnavailable
			}
			// The doctor or patient was deleted after the reads above.
			if isForeignKeyError(err, reservationDoctorFK) {
				return ErrDoctorNotFound
			}
			if isForeignKeyError(err, reservationUserFK) {
				return ErrUserNotFound
			}
			return storageError("create reservation", err)
		}

		actor := service.AuditActor{ID: patientID, Role: entity.RolePatient}
		if err := u.auditService.LogCreate(ctx, tx, actor, entity.AuditActionReservationCreate, "reservation", reservation.ID.String(), converter.ReservationToResponse(reservation)); err != nil {
			return storageError("write audit log", err)
		}
		return nil
	})
	if err != nil {
		if isDuplicateKeyError(err, reservationSlotConstraint) {
			return nil, ErrSlotUnavailable
		}
		if errors.Is(err, ErrStorage) {
			u.log.Warnf("Failed to book slot for patient %s: %+v", patientID, err)
		}
		return nil, err
	}

	return reservation, nil
}

// CancelReservation moves an owned reservation from confirmed to cancelled.
// The conditional update lets exactly one of two concurrent cancels win.
func (u *patientBookingUsecase) CancelReservation(ctx context.Context, patientID, reservationID uuid.UUID) error {
	var reservation *entity.Reservation
	err := u.db.WithinTransaction(ctx, func(tx *gorm.DB) error {
		found, err := u.reservationRepo.FindByID(tx, reservationID)
		if err != nil {
			return storageError("find reservation", err)
		}
		if found == nil {
			return ErrReservationNotFound
		}
		if found.UserID != patientID {
			return ErrReservationNotOwned
		}
		if found.IsCancelled() {
			return ErrReservationAlreadyCancelled
		}

		affected, err := u.reservationRepo.CancelReservation(tx, reservationID)
		if err != nil {
			return storageError("cancel reservation", err)
		}
		if affected == 0 {
			return ErrReservationAlreadyCancelled
		}

		oldStatus := found.Status
		found.Cancel()
		reservation = found

		actor := service.AuditActor{ID: patientID, Role: entity.RolePatient}
		if err := u.auditService.LogUpdate(ctx, tx, actor, entity.AuditActionReservationCancel, "reservation", reservationID.String(), oldStatus, found.Status); err != nil {
			return storageError("write audit log", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrStorage) {
			u.log.Warnf("Failed to cancel reservation %s: %+v", reservationID, err)
		}
		return err
	}

	if err := u.reminders.Cancel(ctx, reservationID); err != nil {
		u.log.Warnf("Failed to cancel reminder for reservation %s: %+v", reservationID, err)
	}
	date := localDay(reservation.TimeSlot, u.location).Format(dateLayout)
	if err := u.cache.InvalidateDate(ctx, reservation.DoctorID, date); err != nil {
		u.log.Warnf("Failed to invalidate slot cache for doctor %s on %s: %+v", reservation.DoctorID, date, err)
	}
	u.metrics.RecordCancellation()

	u.log.Infof("Reservation cancelled: id=%s", reservationID)
	return nil
}

func bookingOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeConfirmed
	case errors.Is(err, ErrActiveReservationExists):
		return metrics.OutcomeConflict
	case errors.Is(err, ErrSlotUnavailable):
		return metrics.OutcomeUnavailable
	case errors.Is(err, ErrStorage):
		return metrics.OutcomeError
	default:
		return metrics.OutcomeRejected
	}
}
