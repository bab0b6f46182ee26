package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/taherx7/Medi-connect/internal/domain/entity"
	"gorm.io/gorm"
)

type BlockedSlotRepository interface {
	Create(db *gorm.DB, blocked *entity.BlockedSlot) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.BlockedSlot, error)
	// FindOverlapping returns intervals with start < to and end > from.
	FindOverlapping(db *gorm.DB, doctorID uuid.UUID, from, to time.Time) ([]entity.BlockedSlot, error)
	FindUpcomingByDoctor(db *gorm.DB, doctorID uuid.UUID, now time.Time) ([]entity.BlockedSlot, error)
	Delete(db *gorm.DB, id uuid.UUID) (int64, error)
	DeleteByDoctor(db *gorm.DB, doctorID uuid.UUID) (int64, error)
	// DeleteEndedBefore returns the doctors whose intervals were removed.
	DeleteEndedBefore(db *gorm.DB, cutoff time.Time) ([]entity.BlockedSlot, error)
}
