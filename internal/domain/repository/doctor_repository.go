package repository

import (
	"github.com/google/uuid"
	"github.com/taherx7/Medi-connect/internal/domain/entity"
	"gorm.io/gorm"
)

type DoctorRepository interface {
	Create(db *gorm.DB, doctor *entity.Doctor) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Doctor, error)
	FindByEmail(db *gorm.DB, email string) (*entity.Doctor, error)
	Update(db *gorm.DB, doctor *entity.Doctor) error
	Delete(db *gorm.DB, id uuid.UUID) (int64, error)
	Search(db *gorm.DB, filter entity.DoctorFilter) ([]entity.Doctor, error)
	FindTop(db *gorm.DB, limit int) ([]entity.Doctor, error)
	Count(db *gorm.DB) (int64, error)
}
