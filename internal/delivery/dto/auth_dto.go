package dto

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type LoginRequest struct {
	Email    string `json:"email" schema:"email" validate:"required,email"`
	Password string `json:"password" schema:"password" validate:"required"`
	Role     string `json:"role" schema:"role" validate:"omitempty,oneof=doctor patient"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type RegisterPatientRequest struct {
	Name     string `json:"name" schema:"name" validate:"required,min=2"`
	Email    string `json:"email" schema:"email" validate:"required,email"`
	Password string `json:"password" schema:"password" validate:"required,min=6"`
	Phone    string `json:"phone" schema:"phone" validate:"omitempty,min=6,max=30"`
}

// RegisterDoctorRequest is sent as JSON or as a multipart form carrying id_photo.
type RegisterDoctorRequest struct {
	Name      string `json:"name" schema:"name" validate:"required,min=2"`
	Email     string `json:"email" schema:"email" validate:"required,email"`
	Password  string `json:"password" schema:"password" validate:"required,min=6"`
	Phone     string `json:"phone" schema:"phone" validate:"omitempty,min=6,max=30"`
	Specialty string `json:"specialty" schema:"specialty" validate:"omitempty,max=100"`
	Location  string `json:"location" schema:"location" validate:"omitempty,max=255"`
}

// FileUpload is an uploaded file handed from a handler to a usecase.
type FileUpload struct {
	Filename string
	Content  io.Reader
}

// Response DTOs

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Role         string `json:"role"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
