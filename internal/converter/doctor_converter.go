package converter

import (
	"github.com/taherx7/Medi-connect/internal/delivery/dto"
	"github.com/taherx7/Medi-connect/internal/domain/entity"
)

// DoctorToResponse converts a Doctor entity to DoctorResponse DTO
func DoctorToResponse(doctor *entity.Doctor) *dto.DoctorResponse {
	if doctor == nil {
		return nil
	}

	response := &dto.DoctorResponse{
		ID:                  doctor.ID,
		Name:                doctor.Name,
		Email:               doctor.Email,
		Phone:               doctor.Phone,
		Description:         doctor.Description,
		Location:            doctor.Location,
		Specialty:           doctor.Specialty,
		Cost:                doctor.Cost,
		PhotosURL:           doctor.PhotosURL,
		AvgConsultationTime: doctor.AvgConsultationTime,
		CreatedAt:           doctor.CreatedAt,
	}
	if doctor.WorkingHoursStart != nil {
		response.WorkingHoursStart = entity.TimeOfDayFrom(*doctor.WorkingHoursStart).String()
	}
	if doctor.WorkingHoursEnd != nil {
		response.WorkingHoursEnd = entity.TimeOfDayFrom(*doctor.WorkingHoursEnd).String()
	}

	return response
}

// DoctorsToResponses converts a slice of Doctor entities to slice of DoctorResponse DTOs
func DoctorsToResponses(doctors []entity.Doctor) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(doctors))
	for i := range doctors {
		responses[i] = *DoctorToResponse(&doctors[i])
	}
	return responses
}

// DoctorsToSummaries builds autocomplete records
func DoctorsToSummaries(doctors []entity.Doctor) []dto.DoctorSummaryResponse {
	responses := make([]dto.DoctorSummaryResponse, len(doctors))
	for i, doctor := range doctors {
		responses[i] = dto.DoctorSummaryResponse{
			ID:        doctor.ID,
			Name:      doctor.Name,
			Location:  doctor.Location,
			PhotosURL: doctor.PhotosURL,
		}
	}
	return responses
}

// BlockedSlotsToResponses converts blocked slots to BlockedSlotResponse DTOs
func BlockedSlotsToResponses(blocked []entity.BlockedSlot) []dto.BlockedSlotResponse {
	responses := make([]dto.BlockedSlotResponse, len(blocked))
	for i, b := range blocked {
		responses[i] = dto.BlockedSlotResponse{
			ID:        b.ID,
			StartTime: b.StartTime,
			EndTime:   b.EndTime,
			CreatedAt: b.CreatedAt,
		}
	}
	return responses
}
