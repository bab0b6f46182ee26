package converter

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taherx7/Medi-connect/internal/domain/entity"
	"github.com/taherx7/Medi-connect/internal/slot"
)

func TestDoctorToResponse_FormatsWorkingHours(t *testing.T) {
	duration := 30
	doctor := &entity.Doctor{
		ID:                  uuid.New(),
		Name:                "Dr. Sara",
		WorkingHoursStart:   entity.WorkingHour(slot.NewTimeOfDay(9, 0)),
		WorkingHoursEnd:     entity.WorkingHour(slot.NewTimeOfDay(17, 30)),
		AvgConsultationTime: &duration,
	}

	resp := DoctorToResponse(doctor)

	require.NotNil(t, resp)
	assert.Equal(t, "09:00", resp.WorkingHoursStart)
	assert.Equal(t, "17:30", resp.WorkingHoursEnd)
	assert.Equal(t, &duration, resp.AvgConsultationTime)
}

func TestDoctorToResponse_UnsetHours(t *testing.T) {
	resp := DoctorToResponse(&entity.Doctor{Name: "Dr. Omar"})

	assert.Empty(t, resp.WorkingHoursStart)
	assert.Empty(t, resp.WorkingHoursEnd)
	assert.Nil(t, DoctorToResponse(nil))
}

func TestReservationsToPatientResponses(t *testing.T) {
	reservations := []entity.Reservation{
		{ID: uuid.New(), Status: entity.ReservationStatusConfirmed, Doctor: &entity.Doctor{Name: "Dr. Sara", Location: "Cairo", Phone: "0100"}},
		{ID: uuid.New(), Status: entity.ReservationStatusCancelled},
	}

	resp := ReservationsToPatientResponses(reservations)

	require.Len(t, resp, 2)
	assert.Equal(t, "Dr. Sara", resp[0].DoctorName)
	assert.Equal(t, "Cairo", resp[0].DoctorLocation)
	assert.Equal(t, "0100", resp[0].DoctorPhone)
	assert.Equal(t, "cancelled", resp[1].Status)
	assert.Empty(t, resp[1].DoctorName)
}

func TestAvailabilityToSlots(t *testing.T) {
	start := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	resp := AvailabilityToSlots(slot.AnnotateAvailability(
		[]slot.Slot{{Start: start, End: start.Add(30 * time.Minute)}},
		[]time.Time{start},
		nil,
	))

	require.Len(t, resp, 1)
	assert.Equal(t, "09:00 AM", resp[0].Time)
	assert.Equal(t, "2030-01-01T09:00:00.000Z", resp[0].ISOTime)
	assert.True(t, resp[0].IsBooked)
	assert.NotNil(t, AvailabilityToSlots(nil))
}
