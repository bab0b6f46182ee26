package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taherx7/Medi-connect/internal/delivery/dto"
	"github.com/taherx7/Medi-connect/internal/domain/entity"
	"github.com/taherx7/Medi-connect/internal/service"
	"github.com/taherx7/Medi-connect/internal/slot"
)

type doctorFixture struct {
	store   *memStore
	cache   *fakeCache
	tokens  *fakeTokenStore
	photos  *fakePhotoStorage
	profile *doctorProfileUsecase
	doctor  entity.Doctor
}

func newDoctorFixture(t *testing.T) *doctorFixture {
	t.Helper()

	store := newMemStore()
	cache := newFakeCache()
	tokens := newFakeTokenStore()
	photos := &fakePhotoStorage{}
	log := newTestLogger()
	tx := &fakeTransactor{s: store}

	profile := NewDoctorProfileUsecase(
		tx, log, time.UTC,
		&fakeDoctorRepo{s: store}, &fakeReservationRepo{s: store}, &fakeBlockedSlotRepo{s: store},
		service.NewAuditService(tx, log, &fakeAuditRepo{s: store}), cache, photos, tokens,
	).(*doctorProfileUsecase)
	profile.now = func() time.Time { return bookingNow }

	return &doctorFixture{
		store:   store,
		cache:   cache,
		tokens:  tokens,
		photos:  photos,
		profile: profile,
		doctor:  store.addDoctor("Dr Sara", slot.NewTimeOfDay(9, 0), slot.NewTimeOfDay(12, 0), 30),
	}
}

func intPtr(v int) *int {
	return &v
}

func TestUpdateProfile_ReplacesFields(t *testing.T) {
	f := newDoctorFixture(t)

	resp, err := f.profile.UpdateProfile(context.Background(), f.doctor.ID, &dto.UpdateDoctorProfileRequest{
		Name:                "Dr Sara Adel",
		Location:            "Cairo",
		Specialty:           "Dermatology",
		Cost:                "350.50",
		WorkingHoursStart:   "10:00",
		WorkingHoursEnd:     "16:30",
		AvgConsultationTime: intPtr(20),
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, "Dr Sara Adel", resp.Name)
	assert.Equal(t, "10:00", resp.WorkingHoursStart)
	assert.Equal(t, "16:30", resp.WorkingHoursEnd)
	assert.Equal(t, "350.5", resp.Cost.Decimal.String())
	assert.Equal(t, []uuid.UUID{f.doctor.ID}, f.cache.invalidatedDoctors)

	stored := f.store.doctors[f.doctor.ID]
	assert.Equal(t, 20, *stored.AvgConsultationTime)
	assert.Equal(t, slot.NewTimeOfDay(10, 0), stored.ScheduleConfig().WorkStart)

	require.Len(t, f.store.audit, 1)
	assert.Equal(t, entity.AuditActionProfileUpdate, f.store.audit[0].Action)
	assert.Equal(t, entity.RoleDoctor, f.store.audit[0].ActorRole)
}

func TestUpdateProfile_EmptyHoursClearSchedule(t *testing.T) {
	f := newDoctorFixture(t)

	resp, err := f.profile.UpdateProfile(context.Background(), f.doctor.ID, &dto.UpdateDoctorProfileRequest{Name: "Dr Sara"}, nil)

	require.NoError(t, err)
	assert.Empty(t, resp.WorkingHoursStart)
	assert.Nil(t, resp.AvgConsultationTime)
	assert.False(t, f.store.doctors[f.doctor.ID].Cost.Valid)
}

func TestUpdateProfile_RejectsInvalidInput(t *testing.T) {
	f := newDoctorFixture(t)

	_, err := f.profile.UpdateProfile(context.Background(), f.doctor.ID, &dto.UpdateDoctorProfileRequest{
		Name: "Dr Sara", WorkingHoursStart: "17:00", WorkingHoursEnd: "09:00",
	}, nil)
	assert.ErrorIs(t, err, ErrInvalidWorkingHours)

	_, err = f.profile.UpdateProfile(context.Background(), f.doctor.ID, &dto.UpdateDoctorProfileRequest{
		Name: "Dr Sara", Cost: "-5",
	}, nil)
	assert.ErrorIs(t, err, ErrInvalidCost)

	_, err = f.profile.UpdateProfile(context.Background(), uuid.New(), &dto.UpdateDoctorProfileRequest{Name: "Dr Sara"}, nil)
	assert.ErrorIs(t, err, ErrDoctorNotFound)

	assert.Empty(t, f.store.audit)
	assert.Empty(t, f.cache.invalidatedDoctors)
}

func TestUpdateProfile_Photo(t *testing.T) {
	f := newDoctorFixture(t)
	photo := &dto.FileUpload{Filename: "me.png", Content: strings.NewReader("png")}

	resp, err := f.profile.UpdateProfile(context.Background(), f.doctor.ID, &dto.UpdateDoctorProfileRequest{Name: "Dr Sara"}, photo)

	require.NoError(t, err)
	require.NotNil(t, resp.PhotosURL)
	assert.Contains(t, *resp.PhotosURL, "doctor-"+f.doctor.ID.String())

	// A failed upload keeps the current photo.
	f.photos.err = errors.New("cloudinary unavailable")
	resp, err = f.profile.UpdateProfile(context.Background(), f.doctor.ID, &dto.UpdateDoctorProfileRequest{Name: "Dr Sara"}, photo)
	require.NoError(t, err)
	require.NotNil(t, resp.PhotosURL)
	assert.Contains(t, *resp.PhotosURL, "doctor-"+f.doctor.ID.String())
}

func TestBlockTime(t *testing.T) {
	f := newDoctorFixture(t)

	resp, err := f.profile.BlockTime(context.Background(), f.doctor.ID, &dto.BlockTimeRequest{
		SelectedDate: "2030-03-04", StartTime: "10:00", EndTime: "11:00",
	})

	require.NoError(t, err)
	assert.True(t, slotAt(10, 0).Equal(resp.StartTime))
	assert.True(t, slotAt(11, 0).Equal(resp.EndTime))
	assert.Len(t, f.store.blocked, 1)
	assert.Equal(t, []string{"2030-03-04"}, f.cache.invalidatedDates)
	require.Len(t, f.store.audit, 1)
	assert.Equal(t, entity.AuditActionBlockedSlotCreate, f.store.audit[0].Action)

	list, err := f.profile.ListBlockedSlots(context.Background(), f.doctor.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, resp.ID, list[0].ID)
}

func TestBlockTime_InvalidInput(t *testing.T) {
	f := newDoctorFixture(t)

	cases := map[string]struct {
		req  dto.BlockTimeRequest
		want error
	}{
		"bad date":     {dto.BlockTimeRequest{SelectedDate: "03/04/2030", StartTime: "10:00", EndTime: "11:00"}, ErrInvalidDate},
		"bad time":     {dto.BlockTimeRequest{SelectedDate: "2030-03-04", StartTime: "ten", EndTime: "11:00"}, ErrInvalidBlockedInterval},
		"empty range":  {dto.BlockTimeRequest{SelectedDate: "2030-03-04", StartTime: "11:00", EndTime: "11:00"}, ErrInvalidBlockedInterval},
		"reversed":     {dto.BlockTimeRequest{SelectedDate: "2030-03-04", StartTime: "12:00", EndTime: "11:00"}, ErrInvalidBlockedInterval},
		"other doctor": {dto.BlockTimeRequest{SelectedDate: "2030-03-04", StartTime: "10:00", EndTime: "11:00"}, ErrDoctorNotFound},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			doctorID := f.doctor.ID
			if name == "other doctor" {
				doctorID = uuid.New()
			}
			req := tc.req
			_, err := f.profile.BlockTime(context.Background(), doctorID, &req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Empty(t, f.store.blocked)
}

func TestDeleteBlockedSlot(t *testing.T) {
	f := newDoctorFixture(t)
	other := f.store.addDoctor("Dr Hany", slot.NewTimeOfDay(9, 0), slot.NewTimeOfDay(12, 0), 30)
	own := f.store.addBlocked(f.doctor.ID, slotAt(10, 0), slotAt(11, 0))
	foreign := f.store.addBlocked(other.ID, slotAt(10, 0), slotAt(11, 0))

	assert.ErrorIs(t, f.profile.DeleteBlockedSlot(context.Background(), f.doctor.ID, foreign.ID), ErrBlockedSlotNotFound)
	assert.ErrorIs(t, f.profile.DeleteBlockedSlot(context.Background(), f.doctor.ID, uuid.New()), ErrBlockedSlotNotFound)

	require.NoError(t, f.profile.DeleteBlockedSlot(context.Background(), f.doctor.ID, own.ID))
	assert.NotContains(t, f.store.blocked, own.ID)
	assert.Contains(t, f.store.blocked, foreign.ID)
	assert.Equal(t, []uuid.UUID{f.doctor.ID}, f.cache.invalidatedDoctors)
}

func TestDeleteAccount(t *testing.T) {
	f := newDoctorFixture(t)
	patient := f.store.addUser("Omar", "omar@example.com")
	f.store.addReservation(f.doctor.ID, patient.ID, slotAt(9, 0), entity.ReservationStatusConfirmed)
	f.store.addBlocked(f.doctor.ID, slotAt(10, 0), slotAt(11, 0))
	f.tokens.tokens[service.TokenKey("access", f.doctor.ID, "t1")] = true

	require.NoError(t, f.profile.DeleteAccount(context.Background(), f.doctor.ID))

	assert.NotContains(t, f.store.doctors, f.doctor.ID)
	assert.Empty(t, f.store.reservations)
	assert.Empty(t, f.store.blocked)
	assert.Empty(t, f.tokens.tokens)
	assert.Equal(t, []uuid.UUID{f.doctor.ID}, f.tokens.revokedAll)
	require.Len(t, f.store.audit, 1)
	assert.Equal(t, entity.AuditActionDoctorDelete, f.store.audit[0].Action)

	assert.ErrorIs(t, f.profile.DeleteAccount(context.Background(), f.doctor.ID), ErrDoctorNotFound)
}

func TestDeleteAccount_AuditFailureKeepsData(t *testing.T) {
	f := newDoctorFixture(t)
	f.store.addBlocked(f.doctor.ID, slotAt(10, 0), slotAt(11, 0))
	f.store.auditErr = errors.New("disk full")

	err := f.profile.DeleteAccount(context.Background(), f.doctor.ID)

	assert.ErrorIs(t, err, ErrStorage)
	assert.Contains(t, f.store.doctors, f.doctor.ID)
	assert.Len(t, f.store.blocked, 1)
	assert.Empty(t, f.tokens.revokedAll)
}

func TestDoctorDashboard(t *testing.T) {
	f := newDoctorFixture(t)
	patient := f.store.addUser("Omar", "omar@example.com")
	f.store.addReservation(f.doctor.ID, patient.ID, slotAt(11, 0), entity.ReservationStatusConfirmed)
	f.store.addReservation(f.doctor.ID, patient.ID, slotAt(9, 0), entity.ReservationStatusCancelled)
	f.store.addBlocked(f.doctor.ID, slotAt(10, 0), slotAt(11, 0))
	f.store.addBlocked(f.doctor.ID, bookingNow.Add(-48*time.Hour), bookingNow.Add(-47*time.Hour))
	_, err := f.profile.BlockTime(context.Background(), f.doctor.ID, &dto.BlockTimeRequest{SelectedDate: "2030-03-05", StartTime: "09:00", EndTime: "10:00"})
	require.NoError(t, err)

	dash, err := f.profile.GetDashboard(context.Background(), f.doctor.ID)

	require.NoError(t, err)
	assert.Equal(t, "Dr Sara", dash.Doctor.Name)
	require.Len(t, dash.Reservations, 2)
	assert.True(t, slotAt(9, 0).Equal(dash.Reservations[0].TimeSlot))
	assert.Equal(t, "Omar", dash.Reservations[0].PatientName)
	assert.Len(t, dash.BlockedSlots, 2)
	require.Len(t, dash.RecentActivity, 1)
	assert.Equal(t, entity.AuditActionBlockedSlotCreate, dash.RecentActivity[0].Action)

	_, err = f.profile.GetDashboard(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestGetDashboard_ActivityFailureIsLogged(t *testing.T) {
	f := newDoctorFixture(t)
	logger, hook := logtest.NewNullLogger()
	f.profile.log = logger
	f.store.auditReadErr = errors.New("audit table locked")

	dash, err := f.profile.GetDashboard(context.Background(), f.doctor.ID)

	require.NoError(t, err)
	assert.Empty(t, dash.RecentActivity)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Contains(t, hook.LastEntry().Message, "recent activity")
	assert.Contains(t, hook.LastEntry().Message, "audit table locked")
}
