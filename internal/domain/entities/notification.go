package entities

// NotificationKind selects the template an output adapter renders.
type NotificationKind string

const (
	NotificationAnnouncement NotificationKind = "announcement"
	NotificationStarting     NotificationKind = "starting"
	NotificationWeekly       NotificationKind = "weekly"
)

// Notification is the structured payload handed to an output channel.
// Rendering is left to the adapter.
type Notification struct {
	Kind        NotificationKind
	Events      []Event
	Mentions    []string
	Description string
}
