package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/taherx7/Medi-connect/internal/delivery/dto"
	"github.com/taherx7/Medi-connect/internal/delivery/http/middleware"
	"github.com/taherx7/Medi-connect/internal/domain/entity"
	"github.com/taherx7/Medi-connect/internal/usecase"
	"github.com/taherx7/Medi-connect/pkg/response"
	"github.com/taherx7/Medi-connect/pkg/validator"
)

// Redirect targets of the browser booking form.
const (
	loginPath            = "/auth/login"
	patientDashboardPath = "/patient/dashboard"
	homePath             = "/"
)

type BookingHandler struct {
	bookingUsecase usecase.PatientBookingUsecase
	validator      *validator.CustomValidator
}

func NewBookingHandler(bookingUsecase usecase.PatientBookingUsecase, validator *validator.CustomValidator) *BookingHandler {
	return &BookingHandler{
		bookingUsecase: bookingUsecase,
		validator:      validator,
	}
}

// Book is the browser form target. Every outcome is a redirect carrying a
// success or error query parameter.
// @Summary Book a slot from the booking page
// @Tags Booking
// @Accept x-www-form-urlencoded,json
// @Success 302
// @Router /patient/book [post]
func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	role, _ := middleware.GetUserRoleFromContext(r.Context())
	if !ok || role != entity.RolePatient {
		http.Redirect(w, r, loginPath, http.StatusFound)
		return
	}

	var req dto.BookReservationRequest
	if err := decodeBody(r, &req); err != nil {
		redirectWith(w, r, homePath, "error", "Booking failed")
		return
	}

	if _, err := uuid.Parse(req.DoctorID); err != nil {
		redirectWith(w, r, homePath, "error", "Doctor not found")
		return
	}
	doctorPath := "/patient/doctor/" + req.DoctorID

	if err := h.validator.Validate(&req); err != nil {
		redirectWith(w, r, doctorPath, "error", "Please choose a time slot.")
		return
	}

	_, err := h.bookingUsecase.AttemptBooking(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrActiveReservationExists):
			redirectWith(w, r, doctorPath, "error", "You already have an active reservation.")
		case errors.Is(err, usecase.ErrSlotUnavailable):
			redirectWith(w, r, doctorPath, "error", "That time slot is no longer available.")
		case errors.Is(err, usecase.ErrInvalidTimeSlot):
			redirectWith(w, r, doctorPath, "error", "Please choose a valid time slot.")
		case errors.Is(err, usecase.ErrDoctorNotFound):
			redirectWith(w, r, homePath, "error", "Doctor not found")
		default:
			redirectWith(w, r, doctorPath, "error", "Booking failed")
		}
		return
	}

	redirectWith(w, r, patientDashboardPath, "success", "Reservation Confirmed!")
}

// CreateReservation books a slot
// @Summary Book a slot
// @Tags Booking
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.BookReservationRequest true "Booking Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /patient/reservations [post]
func (h *BookingHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req dto.BookReservationRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	reservation, err := h.bookingUsecase.AttemptBooking(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrActiveReservationExists):
			response.Conflict(w, "You already have an active reservation")
		case errors.Is(err, usecase.ErrSlotUnavailable):
			response.Conflict(w, "That time slot is no longer available")
		case errors.Is(err, usecase.ErrInvalidTimeSlot):
			response.BadRequest(w, err.Error())
		case errors.Is(err, usecase.ErrDoctorNotFound):
			response.NotFound(w, "Doctor not found")
		case errors.Is(err, usecase.ErrUserNotFound):
			response.Unauthorized(w, "Account no longer exists")
		default:
			response.InternalServerError(w, "Failed to create reservation")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Reservation confirmed", reservation)
}

// CancelReservation cancels one of the caller's reservations
// @Summary Cancel a reservation
// @Tags Booking
// @Security BearerAuth
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /patient/reservations/{id}/cancel [post]
func (h *BookingHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	reservationID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid reservation ID", nil)
		return
	}

	err = h.bookingUsecase.CancelReservation(r.Context(), userID, reservationID)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrReservationNotFound):
			response.NotFound(w, "Reservation not found")
		case errors.Is(err, usecase.ErrReservationNotOwned):
			response.Forbidden(w, "You can only cancel your own reservations")
		case errors.Is(err, usecase.ErrReservationAlreadyCancelled):
			response.Conflict(w, "Reservation is already cancelled")
		default:
			response.InternalServerError(w, "Failed to cancel reservation")
		}
		return
	}

	response.Success(w, http.StatusOK, "Reservation cancelled", nil)
}

func redirectWith(w http.ResponseWriter, r *http.Request, path, key, message string) {
	http.Redirect(w, r, path+"?"+url.Values{key: {message}}.Encode(), http.StatusFound)
}
