package usecase

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taherx7/Medi-connect/internal/domain/entity"
	"github.com/taherx7/Medi-connect/internal/service"
	"github.com/taherx7/Medi-connect/internal/slot"
)

func newMaintenance(store *memStore, cache *fakeCache) *maintenanceUsecase {
	log := newTestLogger()
	tx := &fakeTransactor{s: store}
	m := NewMaintenanceUsecase(
		tx, log, 24*time.Hour,
		&fakeBlockedSlotRepo{s: store},
		service.NewAuditService(tx, log, &fakeAuditRepo{s: store}), cache,
	).(*maintenanceUsecase)
	m.now = func() time.Time { return bookingNow }
	return m
}

func TestPurgeBlockedSlots_RemovesExpired(t *testing.T) {
	store := newMemStore()
	cache := newFakeCache()
	sara := store.addDoctor("Dr Sara", slot.NewTimeOfDay(9, 0), slot.NewTimeOfDay(12, 0), 30)
	omar := store.addDoctor("Dr Omar", slot.NewTimeOfDay(9, 0), slot.NewTimeOfDay(12, 0), 30)

	store.addBlocked(sara.ID, bookingNow.Add(-72*time.Hour), bookingNow.Add(-71*time.Hour))
	store.addBlocked(sara.ID, bookingNow.Add(-50*time.Hour), bookingNow.Add(-49*time.Hour))
	kept := store.addBlocked(omar.ID, bookingNow.Add(-2*time.Hour), bookingNow.Add(-time.Hour))

	result, err := newMaintenance(store, cache).PurgeBlockedSlots(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Removed)
	assert.Equal(t, []uuid.UUID{sara.ID}, result.Doctors)
	assert.Equal(t, bookingNow.Add(-24*time.Hour), result.Cutoff)
	assert.Len(t, store.blocked, 1)
	assert.Contains(t, store.blocked, kept.ID)
	assert.Equal(t, []uuid.UUID{sara.ID}, cache.invalidatedDoctors)

	require.Len(t, store.audit, 1)
	assert.Equal(t, entity.AuditActionBlockedSlotPurge, store.audit[0].Action)
	assert.Equal(t, "system", store.audit[0].ActorRole)
	assert.Nil(t, store.audit[0].ActorID)
}

func TestPurgeBlockedSlots_NothingToRemove(t *testing.T) {
	store := newMemStore()
	cache := newFakeCache()

	result, err := newMaintenance(store, cache).PurgeBlockedSlots(context.Background())
	require.NoError(t, err)

	assert.Zero(t, result.Removed)
	assert.Empty(t, result.Doctors)
	assert.Empty(t, store.audit)
	assert.Empty(t, cache.invalidatedDoctors)
}

func TestPurgeBlockedSlots_AuditFailureKeepsSlots(t *testing.T) {
	store := newMemStore()
	cache := newFakeCache()
	doctor := store.addDoctor("Dr Sara", slot.NewTimeOfDay(9, 0), slot.NewTimeOfDay(12, 0), 30)
	store.addBlocked(doctor.ID, bookingNow.Add(-72*time.Hour), bookingNow.Add(-71*time.Hour))
	store.auditErr = errors.New("disk full")

	_, err := newMaintenance(store, cache).PurgeBlockedSlots(context.Background())

	assert.ErrorIs(t, err, ErrStorage)
	assert.Len(t, store.blocked, 1)
	assert.Empty(t, cache.invalidatedDoctors)
}

func TestPurgeBlockedSlots_StorageError(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("connection refused")

	_, err := newMaintenance(store, newFakeCache()).PurgeBlockedSlots(context.Background())

	assert.ErrorIs(t, err, ErrStorage)
}

func newReminders(store *memStore, out *bytes.Buffer) ReminderUsecase {
	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&logrus.JSONFormatter{})
	return NewReminderUsecase(
		&fakeTransactor{s: store}, log, time.UTC,
		&fakeUserRepo{s: store}, &fakeDoctorRepo{s: store}, &fakeReservationRepo{s: store},
	)
}

func TestDeliverReminder_LogsConfirmedReservation(t *testing.T) {
	store := newMemStore()
	doctor := store.addDoctor("Dr Sara", slot.NewTimeOfDay(9, 0), slot.NewTimeOfDay(12, 0), 30)
	patient := store.addUser("Omar", "omar@example.com")
	res := store.addReservation(doctor.ID, patient.ID, slotAt(10, 0), entity.ReservationStatusConfirmed)

	var out bytes.Buffer
	err := newReminders(store, &out).DeliverReminder(context.Background(), service.ReminderPayload{
		ReservationID: res.ID,
		TimeSlot:      res.TimeSlot,
	})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Appointment reminder")
	assert.Contains(t, out.String(), "omar@example.com")
	assert.Contains(t, out.String(), "2030-03-04 10:00 AM")
}

func TestDeliverReminder_Stale(t *testing.T) {
	store := newMemStore()
	doctor := store.addDoctor("Dr Sara", slot.NewTimeOfDay(9, 0), slot.NewTimeOfDay(12, 0), 30)
	patient := store.addUser("Omar", "omar@example.com")
	cancelled := store.addReservation(doctor.ID, patient.ID, slotAt(10, 0), entity.ReservationStatusCancelled)
	confirmed := store.addReservation(doctor.ID, patient.ID, slotAt(11, 0), entity.ReservationStatusConfirmed)

	cases := map[string]service.ReminderPayload{
		"unknown":   {ReservationID: uuid.New(), TimeSlot: slotAt(10, 0)},
		"cancelled": {ReservationID: cancelled.ID, TimeSlot: cancelled.TimeSlot},
		"moved":     {ReservationID: confirmed.ID, TimeSlot: slotAt(9, 0)},
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			err := newReminders(store, &out).DeliverReminder(context.Background(), payload)
			assert.ErrorIs(t, err, ErrReminderStale)
			assert.Empty(t, out.String())
		})
	}
}

func TestDeliverReminder_StorageError(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("connection refused")

	var out bytes.Buffer
	err := newReminders(store, &out).DeliverReminder(context.Background(), service.ReminderPayload{
		ReservationID: uuid.New(),
		TimeSlot:      slotAt(10, 0),
	})

	assert.ErrorIs(t, err, ErrStorage)
}
