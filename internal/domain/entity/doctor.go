package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taherx7/Medi-connect/internal/slot"
	"gorm.io/datatypes"
)

// Doctor is both the doctor's login account and public profile.
// Working hours and consultation length may be unset until the doctor
// completes the profile; slot generation then yields nothing.
type Doctor struct {
	ID                  uuid.UUID           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name                string              `gorm:"type:varchar(255);not null;index" json:"name"`
	Email               string              `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	HashedPassword      string              `gorm:"type:text;not null" json:"-"`
	Phone               string              `gorm:"type:varchar(30);not null;default:''" json:"phone"`
	Description         string              `gorm:"type:text;not null;default:''" json:"description"`
	Location            string              `gorm:"type:varchar(255);not null;default:'';index" json:"location"`
	Specialty           string              `gorm:"type:varchar(100);not null;default:''" json:"specialty"`
	Cost                decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"cost"`
	PhotosURL           *string             `gorm:"column:photos_url;type:text" json:"photos_url,omitempty"`
	IDPhotoURL          *string             `gorm:"column:id_photo_url;type:text" json:"id_photo_url,omitempty"`
	WorkingHoursStart   *datatypes.Time     `gorm:"type:time" json:"working_hours_start,omitempty"`
	WorkingHoursEnd     *datatypes.Time     `gorm:"type:time" json:"working_hours_end,omitempty"`
	AvgConsultationTime *int                `gorm:"column:avg_consultation_time" json:"avg_consultation_time,omitempty"`
	CreatedAt           time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time           `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Reservations []Reservation `gorm:"foreignKey:DoctorID" json:"reservations,omitempty"`
	BlockedSlots []BlockedSlot `gorm:"foreignKey:DoctorID" json:"blocked_slots,omitempty"`
}

func (Doctor) TableName() string {
	return "doctors"
}

// ScheduleConfig converts the stored working hours into the slot engine's
// input. Unset columns become zero values.
func (d *Doctor) ScheduleConfig() slot.ScheduleConfig {
	var cfg slot.ScheduleConfig
	if d.WorkingHoursStart != nil {
		cfg.WorkStart = TimeOfDayFrom(*d.WorkingHoursStart)
	}
	if d.WorkingHoursEnd != nil {
		cfg.WorkEnd = TimeOfDayFrom(*d.WorkingHoursEnd)
	}
	if d.AvgConsultationTime != nil {
		cfg.SlotDurationMinutes = *d.AvgConsultationTime
	}
	return cfg
}

// TimeOfDayFrom truncates a TIME column value to hours and minutes.
func TimeOfDayFrom(t datatypes.Time) slot.TimeOfDay {
	d := time.Duration(t)
	return slot.NewTimeOfDay(int(d/time.Hour), int(d%time.Hour/time.Minute))
}

// WorkingHour is the TIME column value for a time of day.
func WorkingHour(t slot.TimeOfDay) *datatypes.Time {
	v := datatypes.NewTime(t.Hour, t.Minute, 0, 0)
	return &v
}
