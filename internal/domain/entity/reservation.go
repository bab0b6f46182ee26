package entity

import (
	"time"

	"github.com/google/uuid"
)

// ReservationStatus moves one way: confirmed -> cancelled.
type ReservationStatus string

const (
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// PaymentStatus is stored as-is; no payment processing happens here.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// PaymentMethodOnline is the only method that marks a reservation paid.
const PaymentMethodOnline = "online"

// Reservation is a patient's booking of one doctor slot.
type Reservation struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DoctorID      uuid.UUID         `gorm:"type:uuid;not null;index" json:"doctor_id"`
	UserID        uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	TimeSlot      time.Time         `gorm:"type:timestamptz;not null;index" json:"time_slot"`
	Status        ReservationStatus `gorm:"type:varchar(20);not null;default:'confirmed'" json:"status"`
	PaymentStatus PaymentStatus     `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	CreatedAt     time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Doctor *Doctor `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	User   *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Reservation) TableName() string {
	return "reservations"
}

// IsCancelled checks if reservation is cancelled
func (r *Reservation) IsCancelled() bool {
	return r.Status == ReservationStatusCancelled
}

// IsActive reports a future reservation that has not been cancelled.
func (r *Reservation) IsActive(now time.Time) bool {
	return !r.IsCancelled() && r.TimeSlot.After(now)
}

// Cancel changes reservation status to cancelled
func (r *Reservation) Cancel() {
	r.Status = ReservationStatusCancelled
}

// PaymentStatusFor returns paid for online payments and pending otherwise.
func PaymentStatusFor(paymentMethod string) PaymentStatus {
	if paymentMethod == PaymentMethodOnline {
		return PaymentStatusPaid
	}
	return PaymentStatusPending
}
