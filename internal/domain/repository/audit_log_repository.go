package repository

import (
	"github.com/google/uuid"
	"github.com/taherx7/Medi-connect/internal/domain/entity"
	"gorm.io/gorm"
)

type AuditLogRepository interface {
	Create(db *gorm.DB, log *entity.AuditLog) error
	FindByActor(db *gorm.DB, actorID uuid.UUID, limit int) ([]entity.AuditLog, error)
}
