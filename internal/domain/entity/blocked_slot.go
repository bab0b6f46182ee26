package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/taherx7/Medi-connect/internal/slot"
)

// BlockedSlot is a span during which a doctor takes no bookings.
type BlockedSlot struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DoctorID  uuid.UUID `gorm:"type:uuid;not null;index" json:"doctor_id"`
	StartTime time.Time `gorm:"type:timestamptz;not null;index" json:"start_time"`
	EndTime   time.Time `gorm:"type:timestamptz;not null" json:"end_time"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (BlockedSlot) TableName() string {
	return "blocked_slots"
}

func (b *BlockedSlot) Interval() slot.Interval {
	return slot.Interval{Start: b.StartTime, End: b.EndTime}
}

// Intervals converts blocked slots for the slot engine.
func Intervals(blocked []BlockedSlot) []slot.Interval {
	intervals := make([]slot.Interval, 0, len(blocked))
	for i := range blocked {
		intervals = append(intervals, blocked[i].Interval())
	}
	return intervals
}
