package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/taherx7/Medi-connect/internal/domain/entity"
	"github.com/taherx7/Medi-connect/internal/domain/repository"
	"github.com/taherx7/Medi-connect/internal/infrastructure/database"
	"github.com/taherx7/Medi-connect/internal/infrastructure/metrics"
	"github.com/taherx7/Medi-connect/internal/service"
	"github.com/taherx7/Medi-connect/internal/slot"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type AvailabilityUsecase interface {
	// GetAvailableSlots returns the annotated slots of a doctor on a
	// YYYY-MM-DD date in the clinic's location.
	GetAvailableSlots(ctx context.Context, doctorID uuid.UUID, date string) ([]slot.Availability, error)
}

type availabilityUsecase struct {
	db              database.Transactor
	log             *logrus.Logger
	location        *time.Location
	doctorRepo      repository.DoctorRepository
	reservationRepo repository.ReservationRepository
	blockedSlotRepo repository.BlockedSlotRepository
	cache           service.AvailabilityCache
	metrics         *metrics.Metrics
	group           singleflight.Group
}

func NewAvailabilityUsecase(
	db database.Transactor,
	log *logrus.Logger,
	location *time.Location,
	doctorRepo repository.DoctorRepository,
	reservationRepo repository.ReservationRepository,
	blockedSlotRepo repository.BlockedSlotRepository,
	cache service.AvailabilityCache,
	metrics *metrics.Metrics,
) AvailabilityUsecase {
	return &availabilityUsecase{
		db:              db,
		log:             log,
		location:        location,
		doctorRepo:      doctorRepo,
		reservationRepo: reservationRepo,
		blockedSlotRepo: blockedSlotRepo,
		cache:           cache,
		metrics:         metrics,
	}
}

func (u *availabilityUsecase) GetAvailableSlots(ctx context.Context, doctorID uuid.UUID, date string) ([]slot.Availability, error) {
	day, err := time.ParseInLocation(dateLayout, date, u.location)
	if err != nil {
		return nil, ErrInvalidDate
	}

	// Concurrent requests for the same doctor and day share one computation.
	v, err, _ := u.group.Do(doctorID.String()+":"+date, func() (interface{}, error) {
		return u.load(context.WithoutCancel(ctx), doctorID, date, day)
	})
	if err != nil {
		return nil, err
	}
	return v.([]slot.Availability), nil
}

func (u *availabilityUsecase) load(ctx context.Context, doctorID uuid.UUID, date string, day time.Time) ([]slot.Availability, error) {
	cached, ok, err := u.cache.Get(ctx, doctorID, date)
	if err != nil {
		u.log.Warnf("Failed to read slot cache, computing from storage: %+v", err)
	}
	u.metrics.RecordCacheLookup(ok)
	if ok {
		return cached, nil
	}

	// Taken before the storage read so an invalidation racing the load
	// discards the write below.
	stamp, stampErr := u.cache.Stamp(ctx, doctorID, date)
	if stampErr != nil {
		u.log.Warnf("Failed to read slot cache stamp, result will not be cached: %+v", stampErr)
	}

	db := u.db.DB(ctx)
	doctor, err := u.doctorRepo.FindByID(db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor by ID: %+v", err)
		return nil, storageError("find doctor", err)
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	availability, err := computeAvailability(db, u.reservationRepo, u.blockedSlotRepo, doctor, day)
	if err != nil {
		u.log.Warnf("Failed to compute availability for doctor %s on %s: %+v", doctorID, date, err)
		return nil, err
	}

	if stampErr == nil {
		if err := u.cache.Set(ctx, doctorID, date, stamp, day.AddDate(0, 0, 1), availability); err != nil {
			u.log.Warnf("Failed to cache slots for doctor %s on %s: %+v", doctorID, date, err)
		}
	}

	return availability, nil
}

// computeAvailability generates the doctor's slots on day and marks the ones
// taken by non-cancelled reservations or blocked intervals overlapping the day.
// day must be local midnight in the clinic's location.
func computeAvailability(
	db *gorm.DB,
	reservationRepo repository.ReservationRepository,
	blockedSlotRepo repository.BlockedSlotRepository,
	doctor *entity.Doctor,
	day time.Time,
) ([]slot.Availability, error) {
	slots := slot.Generate(doctor.ScheduleConfig(), day)
	if len(slots) == 0 {
		return slot.AnnotateAvailability(slots, nil, nil), nil
	}

	dayEnd := day.AddDate(0, 0, 1)

	booked, err := reservationRepo.FindBookedTimes(db, doctor.ID, day, dayEnd)
	if err != nil {
		return nil, storageError("find booked times", err)
	}

	blocked, err := blockedSlotRepo.FindOverlapping(db, doctor.ID, day, dayEnd)
	if err != nil {
		return nil, storageError("find blocked slots", err)
	}

	return slot.AnnotateAvailability(slots, booked, entity.Intervals(blocked)), nil
}

// localDay truncates instant to midnight of its calendar day in loc.
func localDay(instant time.Time, loc *time.Location) time.Time {
	y, m, d := instant.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
