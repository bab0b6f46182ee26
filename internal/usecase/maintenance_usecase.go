package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/taherx7/Medi-connect/internal/domain/entity"
	"github.com/taherx7/Medi-connect/internal/domain/repository"
	"github.com/taherx7/Medi-connect/internal/infrastructure/database"
	"github.com/taherx7/Medi-connect/internal/service"
	"gorm.io/gorm"
)

// PurgeResult describes one run of the blocked slot cleanup.
type PurgeResult struct {
	Cutoff  time.Time
	Removed int
	Doctors []uuid.UUID
}

type MaintenanceUsecase interface {
	// PurgeBlockedSlots deletes blocked intervals that ended before now minus the retention.
	PurgeBlockedSlots(ctx context.Context) (*PurgeResult, error)
}

type maintenanceUsecase struct {
	db              database.Transactor
	log             *logrus.Logger
	retention       time.Duration
	blockedSlotRepo repository.BlockedSlotRepository
	auditService    service.AuditService
	cache           service.AvailabilityCache
	now             func() time.Time
}

func NewMaintenanceUsecase(
	db database.Transactor,
	log *logrus.Logger,
	retention time.Duration,
	blockedSlotRepo repository.BlockedSlotRepository,
	auditService service.AuditService,
	cache service.AvailabilityCache,
) MaintenanceUsecase {
	return &maintenanceUsecase{
		db:              db,
		log:             log,
		retention:       retention,
		blockedSlotRepo: blockedSlotRepo,
		auditService:    auditService,
		cache:           cache,
		now:             time.Now,
	}
}

func (u *maintenanceUsecase) PurgeBlockedSlots(ctx context.Context) (*PurgeResult, error) {
	result := &PurgeResult{Cutoff: u.now().Add(-u.retention), Doctors: []uuid.UUID{}}

	var removed []entity.BlockedSlot
	err := u.db.WithinTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		removed, err = u.blockedSlotRepo.DeleteEndedBefore(tx, result.Cutoff)
		if err != nil {
			return storageError("purge blocked slots", err)
		}
		if len(removed) == 0 {
			return nil
		}

		summary := map[string]interface{}{
			"count":  len(removed),
			"cutoff": result.Cutoff,
		}
		if err := u.auditService.LogDelete(ctx, tx, service.SystemActor, entity.AuditActionBlockedSlotPurge, "blocked_slot", "", summary); err != nil {
			return storageError("audit blocked slot purge", err)
		}
		return nil
	})
	if err != nil {
		u.log.Warnf("Failed to purge blocked slots: %+v", err)
		return nil, err
	}

	result.Removed = len(removed)
	seen := make(map[uuid.UUID]bool)
	for _, b := range removed {
		if seen[b.DoctorID] {
			continue
		}
		seen[b.DoctorID] = true
		result.Doctors = append(result.Doctors, b.DoctorID)

		if err := u.cache.InvalidateDoctor(ctx, b.DoctorID); err != nil {
			u.log.Warnf("Failed to invalidate availability cache for doctor %s: %+v", b.DoctorID, err)
		}
	}

	return result, nil
}
