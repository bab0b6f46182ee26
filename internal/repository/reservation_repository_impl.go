package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/taherx7/Medi-connect/internal/domain/entity"
	domainRepo "github.com/taherx7/Medi-connect/internal/domain/repository"
	"gorm.io/gorm"
)

type reservationRepository struct{}

func NewReservationRepository() domainRepo.ReservationRepository {
	return &reservationRepository{}
}

func (r *reservationRepository) Create(db *gorm.DB, reservation *entity.Reservation) error {
	return db.Omit("Doctor", "User").Create(reservation).Error
}

func (r *reservationRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Reservation, error) {
	var reservation entity.Reservation
	err := db.Where("id = ?", id).First(&reservation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepository) FindActiveByPatient(db *gorm.DB, patientID uuid.UUID, now time.Time) ([]entity.Reservation, error) {
	var reservations []entity.Reservation
	err := db.
		Where("user_id = ? AND time_slot > ? AND status != ?", patientID, now, entity.ReservationStatusCancelled).
		Order("time_slot ASC").
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *reservationRepository) FindBookedTimes(db *gorm.DB, doctorID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	var times []time.Time
	err := db.Model(&entity.Reservation{}).
		Where("doctor_id = ? AND time_slot >= ? AND time_slot < ? AND status != ?", doctorID, from, to, entity.ReservationStatusCancelled).
		Order("time_slot ASC").
		Pluck("time_slot", &times).Error
	if err != nil {
		return nil, err
	}
	return times, nil
}

// CancelReservation atomically cancels a reservation ONLY if it's not already cancelled.
// Returns affected rows: 1 = success, 0 = already cancelled (prevents double-cancel race).
func (r *reservationRepository) CancelReservation(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Model(&entity.Reservation{}).
		Where("id = ? AND status != ?", id, entity.ReservationStatusCancelled).
		Update("status", entity.ReservationStatusCancelled)
	return result.RowsAffected, result.Error
}

func (r *reservationRepository) FindByPatientWithDoctor(db *gorm.DB, patientID uuid.UUID) ([]entity.Reservation, error) {
	var reservations []entity.Reservation
	err := db.Preload("Doctor").
		Where("user_id = ?", patientID).
		Order("time_slot DESC").
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *reservationRepository) FindByDoctorWithPatient(db *gorm.DB, doctorID uuid.UUID) ([]entity.Reservation, error) {
	var reservations []entity.Reservation
	err := db.Preload("User").
		Where("doctor_id = ?", doctorID).
		Order("time_slot ASC").
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *reservationRepository) DeleteByDoctor(db *gorm.DB, doctorID uuid.UUID) (int64, error) {
	result := db.Where("doctor_id = ?", doctorID).Delete(&entity.Reservation{})
	return result.RowsAffected, result.Error
}

func (r *reservationRepository) Count(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&entity.Reservation{}).Count(&count).Error
	return count, err
}
