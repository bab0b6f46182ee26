package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLog represents a system audit trail entry.
// ActorID points at either a patient or a doctor, so it carries no foreign key.
type AuditLog struct {
	ID        int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorID   *uuid.UUID        `gorm:"type:uuid;index" json:"actor_id,omitempty"`
	ActorRole string            `gorm:"type:varchar(20);not null;default:''" json:"actor_role"`
	Action    string            `gorm:"type:varchar(100);not null;index" json:"action"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// Common audit actions
const (
	AuditActionReservationCreate = "reservation.create"
	AuditActionReservationCancel = "reservation.cancel"
	AuditActionBlockedSlotCreate = "blocked_slot.create"
	AuditActionBlockedSlotDelete = "blocked_slot.delete"
	AuditActionBlockedSlotPurge  = "blocked_slot.purge"
	AuditActionProfileUpdate     = "doctor.profile_update"
	AuditActionDoctorDelete      = "doctor.delete"
)
