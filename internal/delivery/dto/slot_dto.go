package dto

// SlotResponse keeps the camelCase keys browser clients already read.
type SlotResponse struct {
	Time     string `json:"time"`
	ISOTime  string `json:"isoTime"`
	IsBooked bool   `json:"isBooked"`
}

type SlotsResponse struct {
	Error string         `json:"error,omitempty"`
	Slots []SlotResponse `json:"slots"`
}

type AvailabilityQuery struct {
	Date string `schema:"date" validate:"required,datetime=2006-01-02"`
}
