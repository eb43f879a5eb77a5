package models

// NotificationKind selects the email template.
type NotificationKind string

const (
	NotifyApplicationReceived NotificationKind = "application_received"
	NotifyStatusChanged       NotificationKind = "status_changed"
	NotifyTeamInvite          NotificationKind = "team_invite"
	NotifyEventRegistration   NotificationKind = "event_registration"
)

// Notification is a queued outbound email.
type Notification struct {
	Kind      NotificationKind  `json:"kind"`
	Recipient string            `json:"recipient"`
	Data      map[string]string `json:"data"`
}
