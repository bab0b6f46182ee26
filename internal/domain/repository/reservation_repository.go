package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/taherx7/Medi-connect/internal/domain/entity"
	"gorm.io/gorm"
)

type ReservationRepository interface {
	Create(db *gorm.DB, reservation *entity.Reservation) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Reservation, error)
	// FindActiveByPatient returns the patient's non-cancelled reservations after now.
	FindActiveByPatient(db *gorm.DB, patientID uuid.UUID, now time.Time) ([]entity.Reservation, error)
	// FindBookedTimes returns time slots of non-cancelled reservations in [from, to).
	FindBookedTimes(db *gorm.DB, doctorID uuid.UUID, from, to time.Time) ([]time.Time, error)
	// CancelReservation returns affected rows: 0 means it was already cancelled.
	CancelReservation(db *gorm.DB, id uuid.UUID) (int64, error)
	FindByPatientWithDoctor(db *gorm.DB, patientID uuid.UUID) ([]entity.Reservation, error)
	FindByDoctorWithPatient(db *gorm.DB, doctorID uuid.UUID) ([]entity.Reservation, error)
	DeleteByDoctor(db *gorm.DB, doctorID uuid.UUID) (int64, error)
	Count(db *gorm.DB) (int64, error)
}
