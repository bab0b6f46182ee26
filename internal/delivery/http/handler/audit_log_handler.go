package handler

import (
	"net/http"
	"strconv"

	"github.com/taherx7/Medi-connect/internal/converter"
	"github.com/taherx7/Medi-connect/internal/delivery/http/middleware"
	"github.com/taherx7/Medi-connect/internal/service"
	"github.com/taherx7/Medi-connect/pkg/response"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

type AuditLogHandler struct {
	auditService service.AuditService
}

func NewAuditLogHandler(auditService service.AuditService) *AuditLogHandler {
	return &AuditLogHandler{
		auditService: auditService,
	}
}

// GetMyActivity lists the audit entries written for the caller's own actions
// @Summary Recent account activity
// @Tags Doctor
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Entries to return (max 100)"
// @Success 200 {object} response.Response
// @Router /doctor/activity [get]
func (h *AuditLogHandler) GetMyActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	limit := defaultActivityLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.Error(w, http.StatusBadRequest, "Invalid limit", nil)
			return
		}
		limit = min(parsed, maxActivityLimit)
	}

	logs, err := h.auditService.RecentActivity(r.Context(), userID, limit)
	if err != nil {
		response.InternalServerError(w, "Failed to get activity")
		return
	}

	response.Success(w, http.StatusOK, "Activity retrieved successfully", converter.AuditLogsToResponses(logs))
}
