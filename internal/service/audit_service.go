package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/taherx7/Medi-connect/internal/domain/entity"
	"github.com/taherx7/Medi-connect/internal/domain/repository"
	"github.com/taherx7/Medi-connect/internal/infrastructure/database"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditActor is the account an audit entry is attributed to.
// A zero ID records a system action (e.g. the maintenance job).
type AuditActor struct {
	ID   uuid.UUID
	Role string
}

var SystemActor = AuditActor{Role: "system"}

type AuditService interface {
	LogCreate(ctx context.Context, tx *gorm.DB, actor AuditActor, action string, entityName string, entityID string, newValue interface{}) error
	LogUpdate(ctx context.Context, tx *gorm.DB, actor AuditActor, action string, entityName string, entityID string, oldValue, newValue interface{}) error
	LogDelete(ctx context.Context, tx *gorm.DB, actor AuditActor, action string, entityName string, entityID string, oldValue interface{}) error
	RecentActivity(ctx context.Context, actorID uuid.UUID, limit int) ([]entity.AuditLog, error)
}

type auditService struct {
	db        database.Transactor
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(db database.Transactor, log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		db:        db,
		log:       log,
		auditRepo: auditRepo,
	}
}

// LogCreate logs a create action
func (s *auditService) LogCreate(ctx context.Context, tx *gorm.DB, actor AuditActor, action string, entityName string, entityID string, newValue interface{}) error {
	return s.write(tx, actor, action, datatypes.JSONMap{
		"entity":    entityName,
		"entity_id": entityID,
		"old_value": nil,
		"new_value": newValue,
	})
}

// LogUpdate logs an update action with old and new values
func (s *auditService) LogUpdate(ctx context.Context, tx *gorm.DB, actor AuditActor, action string, entityName string, entityID string, oldValue, newValue interface{}) error {
	return s.write(tx, actor, action, datatypes.JSONMap{
		"entity":    entityName,
		"entity_id": entityID,
		"old_value": oldValue,
		"new_value": newValue,
	})
}

// LogDelete logs a delete action with old value
func (s *auditService) LogDelete(ctx context.Context, tx *gorm.DB, actor AuditActor, action string, entityName string, entityID string, oldValue interface{}) error {
	return s.write(tx, actor, action, datatypes.JSONMap{
		"entity":    entityName,
		"entity_id": entityID,
		"old_value": oldValue,
		"new_value": nil,
	})
}

func (s *auditService) RecentActivity(ctx context.Context, actorID uuid.UUID, limit int) ([]entity.AuditLog, error) {
	logs, err := s.auditRepo.FindByActor(s.db.DB(ctx), actorID, limit)
	if err != nil {
		s.log.Warnf("Failed to load audit logs for %s: %+v", actorID, err)
		return nil, err
	}
	return logs, nil
}

func (s *auditService) write(tx *gorm.DB, actor AuditActor, action string, metadata datatypes.JSONMap) error {
	auditLog := &entity.AuditLog{
		ActorRole: actor.Role,
		Action:    action,
		Metadata:  metadata,
	}
	if actor.ID != uuid.Nil {
		id := actor.ID
		auditLog.ActorID = &id
	}

	if err := s.auditRepo.Create(tx, auditLog); err != nil {
		s.log.Warnf("Failed to create audit log: %+v", err)
		return err
	}

	return nil
}
