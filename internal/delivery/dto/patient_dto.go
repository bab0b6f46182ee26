package dto

// Query DTOs

// SearchDoctorsQuery filters the directory. Every field is a
// case-insensitive substring match; q matches name or location.
type SearchDoctorsQuery struct {
	Name     string `schema:"name" validate:"omitempty,max=100"`
	Location string `schema:"location" validate:"omitempty,max=100"`
	Q        string `schema:"q" validate:"omitempty,max=100"`
}

// Response DTOs

type SiteStatsResponse struct {
	Doctors      int64 `json:"doctors"`
	Patients     int64 `json:"patients"`
	Reservations int64 `json:"reservations"`
}

type HomeResponse struct {
	Stats   SiteStatsResponse `json:"stats"`
	Doctors []DoctorResponse  `json:"doctors"`
}
