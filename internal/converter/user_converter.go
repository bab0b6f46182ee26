package converter

import (
	"github.com/taherx7/Medi-connect/internal/delivery/dto"
	"github.com/taherx7/Medi-connect/internal/domain/entity"
)

// UserToResponse converts a patient account to UserResponse DTO
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	response := &dto.UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      entity.RolePatient,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
	if user.Phone != nil {
		response.Phone = *user.Phone
	}

	return response
}

// DoctorToUserResponse converts a doctor account to UserResponse DTO
func DoctorToUserResponse(doctor *entity.Doctor) *dto.UserResponse {
	if doctor == nil {
		return nil
	}

	return &dto.UserResponse{
		ID:        doctor.ID,
		Name:      doctor.Name,
		Email:     doctor.Email,
		Phone:     doctor.Phone,
		Role:      entity.RoleDoctor,
		CreatedAt: doctor.CreatedAt,
		UpdatedAt: doctor.UpdatedAt,
	}
}
