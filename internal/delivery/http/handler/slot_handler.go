package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/taherx7/Medi-connect/internal/converter"
	"github.com/taherx7/Medi-connect/internal/delivery/dto"
	"github.com/taherx7/Medi-connect/internal/usecase"
	"github.com/taherx7/Medi-connect/pkg/response"
	"github.com/taherx7/Medi-connect/pkg/validator"
)

// SlotHandler serves the availability grid. It answers with a bare
// {slots} object instead of the response envelope because the booking
// page reads that shape directly.
type SlotHandler struct {
	availabilityUsecase usecase.AvailabilityUsecase
	validator           *validator.CustomValidator
}

func NewSlotHandler(availabilityUsecase usecase.AvailabilityUsecase, validator *validator.CustomValidator) *SlotHandler {
	return &SlotHandler{
		availabilityUsecase: availabilityUsecase,
		validator:           validator,
	}
}

// GetSlots returns every slot of the doctor's schedule on a date
// @Summary Doctor availability for a date
// @Tags Slots
// @Produce json
// @Param id path string true "Doctor ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} dto.SlotsResponse
// @Failure 400 {object} dto.SlotsResponse
// @Failure 404 {object} dto.SlotsResponse
// @Router /doctors/{id}/slots [get]
func (h *SlotHandler) GetSlots(w http.ResponseWriter, r *http.Request) {
	h.serveSlots(w, r, http.StatusNotFound)
}

// GetPageSlots backs the booking page. The page script only inspects the
// body, so an unknown doctor is a 200 carrying the error and no slots.
func (h *SlotHandler) GetPageSlots(w http.ResponseWriter, r *http.Request) {
	h.serveSlots(w, r, http.StatusOK)
}

func (h *SlotHandler) serveSlots(w http.ResponseWriter, r *http.Request, notFoundStatus int) {
	doctorID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		slotsError(w, notFoundStatus, "Doctor not found")
		return
	}

	var query dto.AvailabilityQuery
	if err := decodeQuery(r.URL.Query(), &query); err != nil {
		slotsError(w, http.StatusBadRequest, "Invalid query")
		return
	}
	if err := h.validator.Validate(&query); err != nil {
		slotsError(w, http.StatusBadRequest, usecase.ErrInvalidDate.Error())
		return
	}

	availability, err := h.availabilityUsecase.GetAvailableSlots(r.Context(), doctorID, query.Date)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrDoctorNotFound):
			slotsError(w, notFoundStatus, "Doctor not found")
		case errors.Is(err, usecase.ErrInvalidDate):
			slotsError(w, http.StatusBadRequest, err.Error())
		default:
			slotsError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	response.JSON(w, http.StatusOK, dto.SlotsResponse{Slots: converter.AvailabilityToSlots(availability)})
}

func slotsError(w http.ResponseWriter, status int, message string) {
	response.JSON(w, status, dto.SlotsResponse{Error: message, Slots: []dto.SlotResponse{}})
}
