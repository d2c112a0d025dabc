package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidCode        = errors.New("invalid authorization code")
	ErrSessionExpired     = errors.New("session expired")
	ErrSSODisabled        = errors.New("single sign-on is not configured")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")

	ErrOTPInvalid          = errors.New("invalid verification code")
	ErrOTPExpired          = errors.New("verification code expired")
	ErrOTPAttemptsExceeded = errors.New("too many verification attempts")

	ErrUserNotFound     = errors.New("user not found")
	ErrEmailTaken       = errors.New("email already in use")
	ErrInvalidRole      = errors.New("invalid role")
	ErrCannotModifySelf = errors.New("admins cannot remove their own admin access")

	ErrPermissionNotFound = errors.New("permission not found")
	ErrAdminImplicit      = errors.New("admins implicitly hold every permission")
	ErrAlreadyGranted     = errors.New("permission already granted")
	ErrNotGranted         = errors.New("permission not granted")

	ErrForbidden         = errors.New("forbidden")
	ErrInvalidDateRange  = errors.New("end date is before start date")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrProjectNotFound   = errors.New("project not found")
	ErrInvalidClient     = errors.New("client must be an active user with the client role")
	ErrInvalidTeamLeader = errors.New("team leader must be an active user with the team_leader role")
	ErrInvalidMember     = errors.New("only developers and team leaders can be project members")
	ErrAlreadyMember     = errors.New("user is already a project member")
	ErrNotMember         = errors.New("user is not a project member")

	ErrSprintNotFound      = errors.New("sprint not found")
	ErrSprintAlreadyActive = errors.New("project already has an active sprint")
	ErrInvalidSprintState  = errors.New("operation not allowed in the sprint's current status")

	ErrTaskNotFound      = errors.New("task not found")
	ErrInvalidPriority   = errors.New("invalid priority")
	ErrAssigneeNotMember = errors.New("assignee is not a project member")
	ErrSprintMismatch    = errors.New("sprint does not belong to the project")

	ErrBugNotFound       = errors.New("bug not found")
	ErrInvalidSeverity   = errors.New("invalid severity")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrTaskMismatch      = errors.New("task does not belong to the project")

	ErrSuggestionNotFound = errors.New("suggestion not found")

	ErrActivityNotFound = errors.New("activity log not found")
	ErrInvalidDuration  = errors.New("activity must end after it starts and last at most 24 hours")
)
