package ctdf

import "time"

type Notification struct {
	TargetUser string
	Type       NotificationType

	Title   string
	Message string
}

type NotificationType string

const (
	NotificationTypePush NotificationType = "Push"
)

type UserPushNotificationTarget struct {
	UserID                string
	PushNotificationToken string

	ModificationDateTime time.Time
}

// UserRouteSubscription asks for push notifications about a route. Filter is an
// optional expression evaluated against the event body, eg. "DelayMinutes >= 10".
type UserRouteSubscription struct {
	UserID   string
	RouteRef string
	Filter   string

	CreationDateTime time.Time
}
