package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

// UpdateDoctorProfileRequest replaces the editable profile fields. Empty
// optional fields clear the stored value.
type UpdateDoctorProfileRequest struct {
	Name                string `json:"name" schema:"name" validate:"required,min=2"`
	Description         string `json:"description" schema:"description" validate:"omitempty,max=2000"`
	Location            string `json:"location" schema:"location" validate:"omitempty,max=255"`
	Specialty           string `json:"specialty" schema:"specialty" validate:"omitempty,max=100"`
	Cost                string `json:"cost" schema:"cost" validate:"omitempty,numeric"`
	Phone               string `json:"phone" schema:"phone" validate:"omitempty,max=30"`
	WorkingHoursStart   string `json:"working_hours_start" schema:"working_hours_start" validate:"omitempty,datetime=15:04"`
	WorkingHoursEnd     string `json:"working_hours_end" schema:"working_hours_end" validate:"omitempty,datetime=15:04"`
	AvgConsultationTime *int   `json:"avg_consultation_time" schema:"avg_consultation_time" validate:"omitempty,gt=0"`
}

type BlockTimeRequest struct {
	SelectedDate string `json:"selected_date" schema:"selected_date" validate:"required,datetime=2006-01-02"`
	StartTime    string `json:"start_time" schema:"start_time" validate:"required,datetime=15:04"`
	EndTime      string `json:"end_time" schema:"end_time" validate:"required,datetime=15:04"`
}

// Response DTOs

type DoctorResponse struct {
	ID                  uuid.UUID           `json:"id"`
	Name                string              `json:"name"`
	Email               string              `json:"email"`
	Phone               string              `json:"phone"`
	Description         string              `json:"description"`
	Location            string              `json:"location"`
	Specialty           string              `json:"specialty"`
	Cost                decimal.NullDecimal `json:"cost"`
	PhotosURL           *string             `json:"photos_url"`
	WorkingHoursStart   string              `json:"working_hours_start,omitempty"`
	WorkingHoursEnd     string              `json:"working_hours_end,omitempty"`
	AvgConsultationTime *int                `json:"avg_consultation_time,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
}

// DoctorSummaryResponse is the autocomplete record.
type DoctorSummaryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	PhotosURL *string   `json:"photos_url"`
}

type BlockedSlotResponse struct {
	ID        uuid.UUID `json:"id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
}

type DoctorDashboardResponse struct {
	Doctor         DoctorResponse              `json:"doctor"`
	Reservations   []DoctorReservationResponse `json:"reservations"`
	BlockedSlots   []BlockedSlotResponse       `json:"blocked_slots"`
	RecentActivity []AuditLogResponse          `json:"recent_activity"`
}
