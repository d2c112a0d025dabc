package model

type NotificationType string

const (
	NotificationOTP                 NotificationType = "otp"
	NotificationWelcome             NotificationType = "welcome"
	NotificationTaskAssigned        NotificationType = "task_assigned"
	NotificationBugAssigned         NotificationType = "bug_assigned"
	NotificationSuggestionResponded NotificationType = "suggestion_responded"
	NotificationPermissionGranted   NotificationType = "permission_granted"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationOTP, NotificationWelcome, NotificationTaskAssigned, NotificationBugAssigned,
		NotificationSuggestionResponded, NotificationPermissionGranted:
		return true
	}
	return false
}

// Notification is an outbound email request. Data holds the template
// variables for Type and must be JSON-serialisable strings.
type Notification struct {
	Type NotificationType
	To   string
	Name string
	Data map[string]string
}
