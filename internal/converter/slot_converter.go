package converter

import (
	"github.com/taherx7/Medi-connect/internal/delivery/dto"
	"github.com/taherx7/Medi-connect/internal/slot"
)

// AvailabilityToSlots converts annotated slots to the slots endpoint shape
func AvailabilityToSlots(availability []slot.Availability) []dto.SlotResponse {
	responses := make([]dto.SlotResponse, len(availability))
	for i, a := range availability {
		responses[i] = dto.SlotResponse{
			Time:     a.DisplayTime,
			ISOTime:  a.ISOTime,
			IsBooked: a.IsBooked,
		}
	}
	return responses
}
