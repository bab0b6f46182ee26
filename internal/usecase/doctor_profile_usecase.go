package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/taherx7/Medi-connect/internal/converter"
	"github.com/taherx7/Medi-connect/internal/delivery/dto"
	"github.com/taherx7/Medi-connect/internal/domain/entity"
	"github.com/taherx7/Medi-connect/internal/domain/repository"
	"github.com/taherx7/Medi-connect/internal/infrastructure/database"
	"github.com/taherx7/Medi-connect/internal/service"
	"github.com/taherx7/Medi-connect/internal/slot"
	"gorm.io/gorm"
)

const recentActivityLimit = 10

var (
	ErrBlockedSlotNotFound    = errors.New("blocked slot not found")
	ErrInvalidBlockedInterval = errors.New("blocked interval must start before it ends")
	ErrInvalidWorkingHours    = errors.New("working hours must start before they end")
	ErrInvalidCost            = errors.New("invalid cost")
)

type DoctorProfileUsecase interface {
	GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error)
	GetDashboard(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorDashboardResponse, error)
	UpdateProfile(ctx context.Context, doctorID uuid.UUID, req *dto.UpdateDoctorProfileRequest, photo *dto.FileUpload) (*dto.DoctorResponse, error)
	BlockTime(ctx context.Context, doctorID uuid.UUID, req *dto.BlockTimeRequest) (*dto.BlockedSlotResponse, error)
	ListBlockedSlots(ctx context.Context, doctorID uuid.UUID) ([]dto.BlockedSlotResponse, error)
	DeleteBlockedSlot(ctx context.Context, doctorID, blockedSlotID uuid.UUID) error
	DeleteAccount(ctx context.Context, doctorID uuid.UUID) error
}

type doctorProfileUsecase struct {
	db              database.Transactor
	log             *logrus.Logger
	location        *time.Location
	doctorRepo      repository.DoctorRepository
	reservationRepo repository.ReservationRepository
	blockedSlotRepo repository.BlockedSlotRepository
	auditService    service.AuditService
	cache           service.AvailabilityCache
	photoStorage    service.PhotoStorage
	tokenStore      service.TokenStore
	now             func() time.Time
}

func NewDoctorProfileUsecase(
	db database.Transactor,
	log *logrus.Logger,
	location *time.Location,
	doctorRepo repository.DoctorRepository,
	reservationRepo repository.ReservationRepository,
	blockedSlotRepo repository.BlockedSlotRepository,
	auditService service.AuditService,
	cache service.AvailabilityCache,
	photoStorage service.PhotoStorage,
	tokenStore service.TokenStore,
) DoctorProfileUsecase {
	return &doctorProfileUsecase{
		db:              db,
		log:             log,
		location:        location,
		doctorRepo:      doctorRepo,
		reservationRepo: reservationRepo,
		blockedSlotRepo: blockedSlotRepo,
		auditService:    auditService,
		cache:           cache,
		photoStorage:    photoStorage,
		tokenStore:      tokenStore,
		now:             time.Now,
	}
}

func (u *doctorProfileUsecase) GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error) {
	doctor, err := u.findDoctor(u.db.DB(ctx), doctorID)
	if err != nil {
		return nil, err
	}
	return converter.DoctorToResponse(doctor), nil
}

// GetDashboard returns the doctor's profile, every reservation oldest first,
// upcoming blocked intervals and recent account activity.
func (u *doctorProfileUsecase) GetDashboard(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorDashboardResponse, error) {
	db := u.db.DB(ctx)

	doctor, err := u.findDoctor(db, doctorID)
	if err != nil {
		return nil, err
	}

	reservations, err := u.reservationRepo.FindByDoctorWithPatient(db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find reservations for doctor %s: %+v", doctorID, err)
		return nil, storageError("find reservations", err)
	}

	blocked, err := u.blockedSlotRepo.FindUpcomingByDoctor(db, doctorID, u.now())
	if err != nil {
		u.log.Warnf("Failed to find blocked slots for doctor %s: %+v", doctorID, err)
		return nil, storageError("find blocked slots", err)
	}

	// Activity is informational; the dashboard renders without it.
	activity, err := u.auditService.RecentActivity(ctx, doctorID, recentActivityLimit)
	if err != nil {
		u.log.Warnf("Failed to load recent activity for doctor %s: %+v", doctorID, err)
		activity = nil
	}

	return &dto.DoctorDashboardResponse{
		Doctor:         *converter.DoctorToResponse(doctor),
		Reservations:   converter.ReservationsToDoctorResponses(reservations),
		BlockedSlots:   converter.BlockedSlotsToResponses(blocked),
		RecentActivity: converter.AuditLogsToResponses(activity),
	}, nil
}

// UpdateProfile replaces the editable fields. A photo whose upload fails is
// logged and the remaining fields are still saved.
func (u *doctorProfileUsecase) UpdateProfile(ctx context.Context, doctorID uuid.UUID, req *dto.UpdateDoctorProfileRequest, photo *dto.FileUpload) (*dto.DoctorResponse, error) {
	changes, err := parseProfileChanges(req)
	if err != nil {
		return nil, err
	}

	if photo != nil {
		publicID := fmt.Sprintf("doctor-%s-%d", doctorID, u.now().UnixMilli())
		url, err := u.photoStorage.Upload(ctx, publicID, photo.Content)
		if err != nil {
			u.log.Warnf("Failed to upload photo for doctor %s: %+v", doctorID, err)
		} else {
			changes.photosURL = &url
		}
	}

	var updated *entity.Doctor
	err = u.db.WithinTransaction(ctx, func(tx *gorm.DB) error {
		doctor, err := u.findDoctor(tx, doctorID)
		if err != nil {
			return err
		}

		before := converter.DoctorToResponse(doctor)
		changes.apply(doctor)

		if err := u.doctorRepo.Update(tx, doctor); err != nil {
			return storageError("update doctor", err)
		}

		actor := service.AuditActor{ID: doctorID, Role: entity.RoleDoctor}
		if err := u.auditService.LogUpdate(ctx, tx, actor, entity.AuditActionProfileUpdate, "doctor", doctorID.String(), before, converter.DoctorToResponse(doctor)); err != nil {
			return storageError("write audit log", err)
		}

		updated = doctor
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrStorage) {
			u.log.Warnf("Failed to update doctor %s: %+v", doctorID, err)
		}
		return nil, err
	}

	// Working hours may have changed for every date.
	if err := u.cache.InvalidateDoctor(ctx, doctorID); err != nil {
		u.log.Warnf("Failed to invalidate slot cache for doctor %s: %+v", doctorID, err)
	}

	return converter.DoctorToResponse(updated), nil
}

// BlockTime blocks [start, end) on the selected date in the clinic's location.
func (u *doctorProfileUsecase) BlockTime(ctx context.Context, doctorID uuid.UUID, req *dto.BlockTimeRequest) (*dto.BlockedSlotResponse, error) {
	day, err := time.ParseInLocation(dateLayout, req.SelectedDate, u.location)
	if err != nil {
		return nil, ErrInvalidDate
	}
	start, err := slot.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return nil, ErrInvalidBlockedInterval
	}
	end, err := slot.ParseTimeOfDay(req.EndTime)
	if err != nil {
		return nil, ErrInvalidBlockedInterval
	}

	blocked := &entity.BlockedSlot{
		DoctorID:  doctorID,
		StartTime: start.On(day),
		EndTime:   end.On(day),
	}
	if !blocked.StartTime.Before(blocked.EndTime) {
		return nil, ErrInvalidBlockedInterval
	}

	err = u.db.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if _, err := u.findDoctor(tx, doctorID); err != nil {
			return err
		}

		if err := u.blockedSlotRepo.Create(tx, blocked); err != nil {
			return storageError("create blocked slot", err)
		}

		actor := service.AuditActor{ID: doctorID, Role: entity.RoleDoctor}
		newValue := map[string]interface{}{"start_time": blocked.StartTime, "end_time": blocked.EndTime}
		if err := u.auditService.LogCreate(ctx, tx, actor, entity.AuditActionBlockedSlotCreate, "blocked_slot", blocked.ID.String(), newValue); err != nil {
			return storageError("write audit log", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrStorage) {
			u.log.Warnf("Failed to block time for doctor %s: %+v", doctorID, err)
		}
		return nil, err
	}

	if err := u.cache.InvalidateDate(ctx, doctorID, req.SelectedDate); err != nil {
		u.log.Warnf("Failed to invalidate slot cache for doctor %s on %s: %+v", doctorID, req.SelectedDate, err)
	}

	return &converter.BlockedSlotsToResponses([]entity.BlockedSlot{*blocked})[0], nil
}

func (u *doctorProfileUsecase) ListBlockedSlots(ctx context.Context, doctorID uuid.UUID) ([]dto.BlockedSlotResponse, error) {
	blocked, err := u.blockedSlotRepo.FindUpcomingByDoctor(u.db.DB(ctx), doctorID, u.now())
	if err != nil {
		u.log.Warnf("Failed to find blocked slots for doctor %s: %+v", doctorID, err)
		return nil, storageError("find blocked slots", err)
	}
	return converter.BlockedSlotsToResponses(blocked), nil
}

// DeleteBlockedSlot removes one of the doctor's own intervals. Intervals of
// other doctors are reported as not found.
func (u *doctorProfileUsecase) DeleteBlockedSlot(ctx context.Context, doctorID, blockedSlotID uuid.UUID) error {
	err := u.db.WithinTransaction(ctx, func(tx *gorm.DB) error {
		blocked, err := u.blockedSlotRepo.FindByID(tx, blockedSlotID)
		if err != nil {
			return storageError("find blocked slot", err)
		}
		if blocked == nil || blocked.DoctorID != doctorID {
			return ErrBlockedSlotNotFound
		}

		affected, err := u.blockedSlotRepo.Delete(tx, blockedSlotID)
		if err != nil {
			return storageError("delete blocked slot", err)
		}
		if affected == 0 {
			return ErrBlockedSlotNotFound
		}

		actor := service.AuditActor{ID: doctorID, Role: entity.RoleDoctor}
		oldValue := map[string]interface{}{"start_time": blocked.StartTime, "end_time": blocked.EndTime}
		if err := u.auditService.LogDelete(ctx, tx, actor, entity.AuditActionBlockedSlotDelete, "blocked_slot", blockedSlotID.String(), oldValue); err != nil {
			return storageError("write audit log", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrStorage) {
			u.log.Warnf("Failed to delete blocked slot %s: %+v", blockedSlotID, err)
		}
		return err
	}

	// An interval can span several dates.
	if err := u.cache.InvalidateDoctor(ctx, doctorID); err != nil {
		u.log.Warnf("Failed to invalidate slot cache for doctor %s: %+v", doctorID, err)
	}
	return nil
}

// DeleteAccount removes the doctor's reservations, blocked intervals and the
// doctor row in one transaction, then revokes every token the doctor holds.
func (u *doctorProfileUsecase) DeleteAccount(ctx context.Context, doctorID uuid.UUID) error {
	err := u.db.WithinTransaction(ctx, func(tx *gorm.DB) error {
		doctor, err := u.findDoctor(tx, doctorID)
		if err != nil {
			return err
		}

		reservations, err := u.reservationRepo.DeleteByDoctor(tx, doctorID)
		if err != nil {
			return storageError("delete reservations", err)
		}
		blocked, err := u.blockedSlotRepo.DeleteByDoctor(tx, doctorID)
		if err != nil {
			return storageError("delete blocked slots", err)
		}
		if _, err := u.doctorRepo.Delete(tx, doctorID); err != nil {
			return storageError("delete doctor", err)
		}

		actor := service.AuditActor{ID: doctorID, Role: entity.RoleDoctor}
		oldValue := map[string]interface{}{
			"email":         doctor.Email,
			"reservations":  reservations,
			"blocked_slots": blocked,
		}
		if err := u.auditService.LogDelete(ctx, tx, actor, entity.AuditActionDoctorDelete, "doctor", doctorID.String(), oldValue); err != nil {
			return storageError("write audit log", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrStorage) {
			u.log.Warnf("Failed to delete doctor %s: %+v", doctorID, err)
		}
		return err
	}

	if err := u.tokenStore.RevokeAll(ctx, doctorID); err != nil {
		u.log.Warnf("Failed to revoke tokens of deleted doctor %s: %+v", doctorID, err)
	}
	if err := u.cache.InvalidateDoctor(ctx, doctorID); err != nil {
		u.log.Warnf("Failed to invalidate slot cache for doctor %s: %+v", doctorID, err)
	}

	u.log.Infof("Doctor account deleted: id=%s", doctorID)
	return nil
}

func (u *doctorProfileUsecase) findDoctor(db *gorm.DB, doctorID uuid.UUID) (*entity.Doctor, error) {
	doctor, err := u.doctorRepo.FindByID(db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor by ID: %+v", err)
		return nil, storageError("find doctor", err)
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	return doctor, nil
}

// profileChanges is a validated UpdateDoctorProfileRequest.
type profileChanges struct {
	req       *dto.UpdateDoctorProfileRequest
	cost      decimal.NullDecimal
	workStart *slot.TimeOfDay
	workEnd   *slot.TimeOfDay
	photosURL *string
}

func parseProfileChanges(req *dto.UpdateDoctorProfileRequest) (*profileChanges, error) {
	changes := &profileChanges{req: req}

	if req.Cost != "" {
		cost, err := decimal.NewFromString(req.Cost)
		if err != nil || cost.IsNegative() {
			return nil, ErrInvalidCost
		}
		changes.cost = decimal.NewNullDecimal(cost)
	}

	if req.WorkingHoursStart != "" {
		start, err := slot.ParseTimeOfDay(req.WorkingHoursStart)
		if err != nil {
			return nil, ErrInvalidWorkingHours
		}
		changes.workStart = &start
	}
	if req.WorkingHoursEnd != "" {
		end, err := slot.ParseTimeOfDay(req.WorkingHoursEnd)
		if err != nil {
			return nil, ErrInvalidWorkingHours
		}
		changes.workEnd = &end
	}
	if changes.workStart != nil && changes.workEnd != nil && !changes.workStart.Before(*changes.workEnd) {
		return nil, ErrInvalidWorkingHours
	}

	return changes, nil
}

func (c *profileChanges) apply(doctor *entity.Doctor) {
	doctor.Name = c.req.Name
	doctor.Description = c.req.Description
	doctor.Location = c.req.Location
	doctor.Specialty = c.req.Specialty
	doctor.Phone = c.req.Phone
	doctor.Cost = c.cost
	doctor.AvgConsultationTime = c.req.AvgConsultationTime

	doctor.WorkingHoursStart = nil
	if c.workStart != nil {
		doctor.WorkingHoursStart = entity.WorkingHour(*c.workStart)
	}
	doctor.WorkingHoursEnd = nil
	if c.workEnd != nil {
		doctor.WorkingHoursEnd = entity.WorkingHour(*c.workEnd)
	}

	// Keep the current photo unless a new one was uploaded.
	if c.photosURL != nil {
		doctor.PhotosURL = c.photosURL
	}
}
