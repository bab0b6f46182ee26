package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// BookReservationRequest arrives as JSON or as a urlencoded form from /patient/book.
type BookReservationRequest struct {
	DoctorID      string `json:"doctor_id" schema:"doctor_id" validate:"required,uuid"`
	TimeSlot      string `json:"time_slot" schema:"time_slot" validate:"required"`
	PaymentMethod string `json:"payment_method" schema:"payment_method" validate:"omitempty,max=30"`
}

// Response DTOs

type ReservationResponse struct {
	ID            uuid.UUID `json:"id"`
	DoctorID      uuid.UUID `json:"doctor_id"`
	UserID        uuid.UUID `json:"user_id"`
	TimeSlot      time.Time `json:"time_slot"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	CreatedAt     time.Time `json:"created_at"`
}

// PatientReservationResponse is a reservation row on the patient dashboard.
type PatientReservationResponse struct {
	ReservationResponse
	DoctorName     string `json:"doctor_name"`
	DoctorLocation string `json:"doctor_location"`
	DoctorPhone    string `json:"doctor_phone"`
}

// DoctorReservationResponse is a reservation row on the doctor dashboard.
type DoctorReservationResponse struct {
	ReservationResponse
	PatientName  string `json:"patient_name"`
	PatientEmail string `json:"patient_email"`
}

type PatientDashboardResponse struct {
	Patient      UserResponse                 `json:"patient"`
	Reservations []PatientReservationResponse `json:"reservations"`
}
