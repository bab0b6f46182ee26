package converter

import (
	"github.com/taherx7/Medi-connect/internal/delivery/dto"
	"github.com/taherx7/Medi-connect/internal/domain/entity"
)

// PatientDashboardToResponse combines the patient account with their reservations
func PatientDashboardToResponse(user *entity.User, reservations []entity.Reservation) *dto.PatientDashboardResponse {
	if user == nil {
		return nil
	}

	return &dto.PatientDashboardResponse{
		Patient:      *UserToResponse(user),
		Reservations: ReservationsToPatientResponses(reservations),
	}
}

// SiteStatsToResponse converts the home page counters
func SiteStatsToResponse(stats entity.SiteStats) dto.SiteStatsResponse {
	return dto.SiteStatsResponse{
		Doctors:      stats.Doctors,
		Patients:     stats.Patients,
		Reservations: stats.Reservations,
	}
}
