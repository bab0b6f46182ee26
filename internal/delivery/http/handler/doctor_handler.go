package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/taherx7/Medi-connect/internal/delivery/dto"
	"github.com/taherx7/Medi-connect/internal/delivery/http/middleware"
	"github.com/taherx7/Medi-connect/internal/usecase"
	"github.com/taherx7/Medi-connect/pkg/response"
	"github.com/taherx7/Medi-connect/pkg/validator"
)

type DoctorHandler struct {
	doctorUsecase usecase.DoctorProfileUsecase
	validator     *validator.CustomValidator
}

func NewDoctorHandler(doctorUsecase usecase.DoctorProfileUsecase, validator *validator.CustomValidator) *DoctorHandler {
	return &DoctorHandler{
		doctorUsecase: doctorUsecase,
		validator:     validator,
	}
}

// GetDoctor returns a public doctor profile
// @Summary Get doctor
// @Tags Doctors
// @Produce json
// @Param id path string true "Doctor ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /doctors/{id} [get]
func (h *DoctorHandler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}

	doctor, err := h.doctorUsecase.GetDoctor(r.Context(), doctorID)
	if err != nil {
		if errors.Is(err, usecase.ErrDoctorNotFound) {
			response.NotFound(w, "Doctor not found")
			return
		}
		response.InternalServerError(w, "Failed to get doctor")
		return
	}

	response.Success(w, http.StatusOK, "Doctor retrieved successfully", doctor)
}

// Dashboard returns the caller's profile, reservations and blocked slots
// @Summary Doctor dashboard
// @Tags Doctor
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /doctor/dashboard [get]
func (h *DoctorHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	dashboard, err := h.doctorUsecase.GetDashboard(r.Context(), doctorID)
	if err != nil {
		if errors.Is(err, usecase.ErrDoctorNotFound) {
			response.NotFound(w, "Doctor not found")
			return
		}
		response.InternalServerError(w, "Failed to load dashboard")
		return
	}

	response.Success(w, http.StatusOK, "Dashboard retrieved successfully", dashboard)
}

// UpdateProfile replaces the caller's editable profile fields
// @Summary Update doctor profile
// @Description JSON body, or multipart form with an optional photo file
// @Tags Doctor
// @Security BearerAuth
// @Accept json,mpfd
// @Produce json
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /doctor/profile [put]
func (h *DoctorHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req dto.UpdateDoctorProfileRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	photo, err := formFile(r, "photo")
	if err != nil {
		response.BadRequest(w, "Invalid photo upload")
		return
	}
	defer closeUpload(photo)

	doctor, err := h.doctorUsecase.UpdateProfile(r.Context(), doctorID, &req, photo)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrDoctorNotFound):
			response.NotFound(w, "Doctor not found")
		case errors.Is(err, usecase.ErrInvalidWorkingHours), errors.Is(err, usecase.ErrInvalidCost):
			response.BadRequest(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to update profile")
		}
		return
	}

	response.Success(w, http.StatusOK, "Profile updated successfully", doctor)
}

// BlockTime blocks an interval on one date
// @Summary Block time
// @Tags Doctor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.BlockTimeRequest true "Block Time Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /doctor/blocked-slots [post]
func (h *DoctorHandler) BlockTime(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req dto.BlockTimeRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	blocked, err := h.doctorUsecase.BlockTime(r.Context(), doctorID, &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidDate), errors.Is(err, usecase.ErrInvalidBlockedInterval):
			response.BadRequest(w, err.Error())
		case errors.Is(err, usecase.ErrDoctorNotFound):
			response.NotFound(w, "Doctor not found")
		default:
			response.InternalServerError(w, "Failed to block time")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Time blocked successfully", blocked)
}

// ListBlockedSlots returns the caller's upcoming blocked intervals
// @Summary List blocked slots
// @Tags Doctor
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /doctor/blocked-slots [get]
func (h *DoctorHandler) ListBlockedSlots(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	blocked, err := h.doctorUsecase.ListBlockedSlots(r.Context(), doctorID)
	if err != nil {
		response.InternalServerError(w, "Failed to get blocked slots")
		return
	}

	response.Success(w, http.StatusOK, "Blocked slots retrieved successfully", blocked)
}

// DeleteBlockedSlot removes one of the caller's blocked intervals
// @Summary Delete blocked slot
// @Tags Doctor
// @Security BearerAuth
// @Produce json
// @Param id path string true "Blocked slot ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /doctor/blocked-slots/{id} [delete]
func (h *DoctorHandler) DeleteBlockedSlot(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	blockedSlotID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid blocked slot ID", nil)
		return
	}

	if err := h.doctorUsecase.DeleteBlockedSlot(r.Context(), doctorID, blockedSlotID); err != nil {
		if errors.Is(err, usecase.ErrBlockedSlotNotFound) {
			response.NotFound(w, "Blocked slot not found")
			return
		}
		response.InternalServerError(w, "Failed to delete blocked slot")
		return
	}

	response.Success(w, http.StatusOK, "Blocked slot deleted successfully", nil)
}

// DeleteAccount deletes the caller's account with its reservations and blocked slots
// @Summary Delete doctor account
// @Tags Doctor
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /doctor/account [delete]
func (h *DoctorHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	if err := h.doctorUsecase.DeleteAccount(r.Context(), doctorID); err != nil {
		if errors.Is(err, usecase.ErrDoctorNotFound) {
			response.NotFound(w, "Doctor not found")
			return
		}
		response.InternalServerError(w, "Failed to delete account")
		return
	}

	response.Success(w, http.StatusOK, "Account deleted successfully", nil)
}
