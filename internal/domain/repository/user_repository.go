package repository

import (
	"github.com/google/uuid"
	"github.com/taherx7/Medi-connect/internal/domain/entity"
	"gorm.io/gorm"
)

// UserRepository stores patient accounts. Lookups return nil, nil when
// the row does not exist.
type UserRepository interface {
	Create(db *gorm.DB, user *entity.User) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.User, error)
	FindByEmail(db *gorm.DB, email string) (*entity.User, error)
	// LockByID reads the row with SELECT ... FOR UPDATE.
	LockByID(db *gorm.DB, id uuid.UUID) (*entity.User, error)
	Count(db *gorm.DB) (int64, error)
}
