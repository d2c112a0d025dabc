package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields are attached to every record logged with a context that carries them.
type LogFields struct {
	UserID           *int64  // Authenticated user
	ProjectID        *int64  // Project the request operates on
	MessageID        *string // Redis stream message ID
	NotificationType *string // e.g. "otp", "task_assigned"
	ReportKind       *string // "activity" or "payments"
	Component        string  // e.g. "devtrack.worker.mailer"
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	merged := mergeFields(GetLogFields(ctx), fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields returns the fields set on ctx, or the zero value.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.UserID != nil {
		result.UserID = next.UserID
	}
	if next.ProjectID != nil {
		result.ProjectID = next.ProjectID
	}
	if next.MessageID != nil {
		result.MessageID = next.MessageID
	}
	if next.NotificationType != nil {
		result.NotificationType = next.NotificationType
	}
	if next.ReportKind != nil {
		result.ReportKind = next.ReportKind
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
func Ptr[T any](v T) *T {
	return &v
}

// MaskEmail keeps the first character of the local part, e.g. "j***@acme.io".
func MaskEmail(email string) string {
	for i := 0; i < len(email); i++ {
		if email[i] == '@' {
			if i == 0 {
				return "***" + email[i:]
			}
			return email[:1] + "***" + email[i:]
		}
	}
	return "***"
}

// Truncate cuts s to maxLen bytes and appends "..." when it does.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
