package converter

import (
	"github.com/taherx7/Medi-connect/internal/delivery/dto"
	"github.com/taherx7/Medi-connect/internal/domain/entity"
)

// ReservationToResponse converts a Reservation entity to ReservationResponse DTO
func ReservationToResponse(reservation *entity.Reservation) *dto.ReservationResponse {
	if reservation == nil {
		return nil
	}

	return &dto.ReservationResponse{
		ID:            reservation.ID,
		DoctorID:      reservation.DoctorID,
		UserID:        reservation.UserID,
		TimeSlot:      reservation.TimeSlot,
		Status:        string(reservation.Status),
		PaymentStatus: string(reservation.PaymentStatus),
		CreatedAt:     reservation.CreatedAt,
	}
}

// ReservationsToPatientResponses includes the preloaded doctor's contact details
func ReservationsToPatientResponses(reservations []entity.Reservation) []dto.PatientReservationResponse {
	responses := make([]dto.PatientReservationResponse, len(reservations))
	for i := range reservations {
		r := &reservations[i]
		responses[i] = dto.PatientReservationResponse{ReservationResponse: *ReservationToResponse(r)}
		if r.Doctor != nil {
			responses[i].DoctorName = r.Doctor.Name
			responses[i].DoctorLocation = r.Doctor.Location
			responses[i].DoctorPhone = r.Doctor.Phone
		}
	}
	return responses
}

// ReservationsToDoctorResponses includes the preloaded patient's name and email
func ReservationsToDoctorResponses(reservations []entity.Reservation) []dto.DoctorReservationResponse {
	responses := make([]dto.DoctorReservationResponse, len(reservations))
	for i := range reservations {
		r := &reservations[i]
		responses[i] = dto.DoctorReservationResponse{ReservationResponse: *ReservationToResponse(r)}
		if r.User != nil {
			responses[i].PatientName = r.User.Name
			responses[i].PatientEmail = r.User.Email
		}
	}
	return responses
}
