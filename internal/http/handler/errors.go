package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"devtrack.app/api/internal/http/dto"
	"devtrack.app/api/internal/report"
	"devtrack.app/api/internal/service"
)

type apiError struct {
	err    error
	status int
	code   string
}

var knownErrors = []apiError{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{service.ErrSessionExpired, http.StatusUnauthorized, "session_expired"},
	{service.ErrInvalidCode, http.StatusBadRequest, "invalid_code"},
	{service.ErrSSODisabled, http.StatusNotFound, "sso_disabled"},
	{service.ErrWeakPassword, http.StatusBadRequest, "weak_password"},

	{service.ErrOTPInvalid, http.StatusBadRequest, "otp_invalid"},
	{service.ErrOTPExpired, http.StatusBadRequest, "otp_expired"},
	{service.ErrOTPAttemptsExceeded, http.StatusTooManyRequests, "otp_attempts_exceeded"},

	{service.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
	{service.ErrEmailTaken, http.StatusConflict, "email_taken"},
	{service.ErrInvalidRole, http.StatusBadRequest, "invalid_role"},
	{service.ErrCannotModifySelf, http.StatusBadRequest, "cannot_modify_self"},

	{service.ErrPermissionNotFound, http.StatusNotFound, "permission_not_found"},
	{service.ErrAdminImplicit, http.StatusBadRequest, "admin_implicit"},
	{service.ErrAlreadyGranted, http.StatusConflict, "already_granted"},
	{service.ErrNotGranted, http.StatusNotFound, "not_granted"},

	{service.ErrForbidden, http.StatusForbidden, "forbidden"},
	{service.ErrInvalidDateRange, http.StatusBadRequest, "invalid_date_range"},
	{service.ErrInvalidStatus, http.StatusBadRequest, "invalid_status"},

	{service.ErrProjectNotFound, http.StatusNotFound, "project_not_found"},
	{service.ErrInvalidClient, http.StatusBadRequest, "invalid_client"},
	{service.ErrInvalidTeamLeader, http.StatusBadRequest, "invalid_team_leader"},
	{service.ErrInvalidMember, http.StatusBadRequest, "invalid_member"},
	{service.ErrAlreadyMember, http.StatusConflict, "already_member"},
	{service.ErrNotMember, http.StatusForbidden, "not_member"},

	{service.ErrSprintNotFound, http.StatusNotFound, "sprint_not_found"},
	{service.ErrSprintAlreadyActive, http.StatusConflict, "sprint_already_active"},
	{service.ErrInvalidSprintState, http.StatusConflict, "invalid_sprint_state"},

	{service.ErrTaskNotFound, http.StatusNotFound, "task_not_found"},
	{service.ErrInvalidPriority, http.StatusBadRequest, "invalid_priority"},
	{service.ErrAssigneeNotMember, http.StatusBadRequest, "assignee_not_member"},
	{service.ErrSprintMismatch, http.StatusBadRequest, "sprint_mismatch"},

	{service.ErrBugNotFound, http.StatusNotFound, "bug_not_found"},
	{service.ErrInvalidSeverity, http.StatusBadRequest, "invalid_severity"},
	{service.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{service.ErrTaskMismatch, http.StatusBadRequest, "task_mismatch"},

	{service.ErrSuggestionNotFound, http.StatusNotFound, "suggestion_not_found"},
	{service.ErrActivityNotFound, http.StatusNotFound, "activity_not_found"},
	{service.ErrInvalidDuration, http.StatusBadRequest, "invalid_duration"},

	{report.ErrUnsupportedFormat, http.StatusBadRequest, "unsupported_format"},
}

// respondError maps service errors onto the JSON error envelope. Unknown
// errors are logged and reported as 500 without leaking details.
func respondError(c *gin.Context, err error, action string) {
	for _, known := range knownErrors {
		if errors.Is(err, known.err) {
			c.JSON(known.status, dto.ErrorResponse{Error: known.err.Error(), Code: known.code})
			return
		}
	}

	slog.ErrorContext(c.Request.Context(), "failed to "+action, "error", err)
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to " + action, Code: "internal"})
}

func badRequest(c *gin.Context, err error) {
	slog.WarnContext(c.Request.Context(), "invalid request", "error", err)
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Code: "invalid_request"})
}

// pathID parses an int64 path parameter, writing a 400 when it is malformed.
func pathID(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || v <= 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid " + name, Code: "invalid_request"})
		return 0, false
	}
	return v, true
}
