package models

type NotificationSeverity string

const (
	SeverityInfo    NotificationSeverity = "info"
	SeveritySuccess NotificationSeverity = "success"
	SeverityWarning NotificationSeverity = "warning"
	SeverityError   NotificationSeverity = "error"
)

// Notification is an ephemeral toast entry. The queue keeps the three most
// recent and each entry expires five seconds after creation.
type Notification struct {
	ID       string               `json:"id"`
	Message  string               `json:"message"`
	Severity NotificationSeverity `json:"type"`
	Time     string               `json:"time"`
}
