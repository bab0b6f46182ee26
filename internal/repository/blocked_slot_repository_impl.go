package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/taherx7/Medi-connect/internal/domain/entity"
	domainRepo "github.com/taherx7/Medi-connect/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type blockedSlotRepository struct{}

func NewBlockedSlotRepository() domainRepo.BlockedSlotRepository {
	return &blockedSlotRepository{}
}

func (r *blockedSlotRepository) Create(db *gorm.DB, blocked *entity.BlockedSlot) error {
	return db.Create(blocked).Error
}

func (r *blockedSlotRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.BlockedSlot, error) {
	var blocked entity.BlockedSlot
	err := db.Where("id = ?", id).First(&blocked).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &blocked, nil
}

func (r *blockedSlotRepository) FindOverlapping(db *gorm.DB, doctorID uuid.UUID, from, to time.Time) ([]entity.BlockedSlot, error) {
	var blocked []entity.BlockedSlot
	err := db.
		Where("doctor_id = ? AND start_time < ? AND end_time > ?", doctorID, to, from).
		Order("start_time ASC").
		Find(&blocked).Error
	if err != nil {
		return nil, err
	}
	return blocked, nil
}

func (r *blockedSlotRepository) FindUpcomingByDoctor(db *gorm.DB, doctorID uuid.UUID, now time.Time) ([]entity.BlockedSlot, error) {
	var blocked []entity.BlockedSlot
	err := db.
		Where("doctor_id = ? AND end_time > ?", doctorID, now).
		Order("start_time ASC").
		Find(&blocked).Error
	if err != nil {
		return nil, err
	}
	return blocked, nil
}

func (r *blockedSlotRepository) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Where("id = ?", id).Delete(&entity.BlockedSlot{})
	return result.RowsAffected, result.Error
}

func (r *blockedSlotRepository) DeleteByDoctor(db *gorm.DB, doctorID uuid.UUID) (int64, error) {
	result := db.Where("doctor_id = ?", doctorID).Delete(&entity.BlockedSlot{})
	return result.RowsAffected, result.Error
}

func (r *blockedSlotRepository) DeleteEndedBefore(db *gorm.DB, cutoff time.Time) ([]entity.BlockedSlot, error) {
	var removed []entity.BlockedSlot
	err := db.Clauses(clause.Returning{}).
		Where("end_time < ?", cutoff).
		Delete(&removed).Error
	if err != nil {
		return nil, err
	}
	return removed, nil
}
