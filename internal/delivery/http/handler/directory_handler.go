package handler

import (
	"net/http"

	"github.com/taherx7/Medi-connect/internal/delivery/dto"
	"github.com/taherx7/Medi-connect/internal/usecase"
	"github.com/taherx7/Medi-connect/pkg/response"
	"github.com/taherx7/Medi-connect/pkg/validator"
)

type DirectoryHandler struct {
	directoryUsecase usecase.DirectoryUsecase
	validator        *validator.CustomValidator
}

func NewDirectoryHandler(directoryUsecase usecase.DirectoryUsecase, validator *validator.CustomValidator) *DirectoryHandler {
	return &DirectoryHandler{
		directoryUsecase: directoryUsecase,
		validator:        validator,
	}
}

// Home returns the site counters and the first doctors
// @Summary Home page data
// @Tags Directory
// @Produce json
// @Success 200 {object} response.Response
// @Router /home [get]
func (h *DirectoryHandler) Home(w http.ResponseWriter, r *http.Request) {
	home, err := h.directoryUsecase.Home(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to load home page")
		return
	}

	response.Success(w, http.StatusOK, "Home retrieved successfully", home)
}

// SearchDoctors filters doctors by name, location or either
// @Summary Search doctors
// @Tags Directory
// @Produce json
// @Param name query string false "Name contains"
// @Param location query string false "Location contains"
// @Param q query string false "Name or location contains"
// @Success 200 {object} response.Response
// @Router /doctors/search [get]
func (h *DirectoryHandler) SearchDoctors(w http.ResponseWriter, r *http.Request) {
	var query dto.SearchDoctorsQuery
	if err := decodeQuery(r.URL.Query(), &query); err != nil {
		response.BadRequest(w, "Invalid query")
		return
	}

	if err := h.validator.Validate(&query); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	doctors, err := h.directoryUsecase.SearchDoctors(r.Context(), &query)
	if err != nil {
		response.InternalServerError(w, "Failed to search doctors")
		return
	}

	response.Success(w, http.StatusOK, "Doctors retrieved successfully", doctors)
}

// Autocomplete answers the search box with a bare JSON array
// @Summary Doctor autocomplete
// @Tags Directory
// @Produce json
// @Param q query string false "Name or location contains"
// @Success 200 {array} dto.DoctorSummaryResponse
// @Router /api/doctors/search [get]
func (h *DirectoryHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.directoryUsecase.Autocomplete(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		response.JSON(w, http.StatusInternalServerError, map[string]string{"error": "Search failed"})
		return
	}

	response.JSON(w, http.StatusOK, doctors)
}
