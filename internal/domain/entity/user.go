package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is a patient account. Doctors live in their own table.
type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	Email          string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	HashedPassword string    `gorm:"type:text;not null" json:"-"`
	Phone          *string   `gorm:"type:varchar(30)" json:"phone,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Reservations []Reservation `gorm:"foreignKey:UserID" json:"reservations,omitempty"`
}

func (User) TableName() string {
	return "users"
}
