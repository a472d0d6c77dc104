package ctdf

import (
	"fmt"
	"time"
)

type Event struct {
	Type      EventType
	Timestamp time.Time
	Targets   []string
	Body      interface{}
}

type EventType string

const (
	EventTypeBusLocationUpdate EventType = "BusLocationUpdate"
	EventTypeRouteDelayUpdate  EventType = "RouteDelayUpdate"
	EventTypeRouteModified     EventType = "RouteModified"
	EventTypeSystemAlert       EventType = "SystemAlert"
)

type BusLocationUpdate struct {
	RouteRef  string
	BusRef    string
	Latitude  float64
	Longitude float64
	Timestamp time.Time
}

type RouteDelayUpdate struct {
	RouteRef     string
	DelayMinutes int
	Reason       string
	Timestamp    time.Time
}

type RouteModified struct {
	RouteRef         string
	ModificationType string
	Timestamp        time.Time
}

type SystemAlert struct {
	Message   string
	AlertType string
	Timestamp time.Time
}

// BodyMap returns the body once it has been through a JSON round trip.
func (e *Event) BodyMap() map[string]interface{} {
	eventBody, ok := e.Body.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}

	return eventBody
}

// RouteRef is empty for events that are not about a single route.
func (e *Event) RouteRef() string {
	routeRef, _ := e.BodyMap()["RouteRef"].(string)

	return routeRef
}

func (e *Event) GetNotificationData() EventNotificationData {
	eventNotificationData := EventNotificationData{}

	eventBody := e.BodyMap()

	switch e.Type {
	case EventTypeRouteDelayUpdate:
		eventNotificationData.Title = "Route delayed"

		delayMinutes, _ := eventBody["DelayMinutes"].(float64)
		eventNotificationData.Message = fmt.Sprintf("Route %s is running %d minutes late.", e.RouteRef(), int(delayMinutes))

		if reason, _ := eventBody["Reason"].(string); reason != "" {
			eventNotificationData.Message = fmt.Sprintf("%s %s", eventNotificationData.Message, reason)
		}
	case EventTypeRouteModified:
		eventNotificationData.Title = "Route changed"

		modificationType, _ := eventBody["ModificationType"].(string)
		eventNotificationData.Message = fmt.Sprintf("Route %s has been changed (%s).", e.RouteRef(), modificationType)
	case EventTypeSystemAlert:
		alertType, _ := eventBody["AlertType"].(string)
		message, _ := eventBody["Message"].(string)

		eventNotificationData.Title = fmt.Sprintf("System %s", alertType)
		eventNotificationData.Message = message
	}

	return eventNotificationData
}

type EventNotificationData struct {
	Title   string
	Message string
}

// Notifiable reports whether the event type is worth a push notification.
func (e *Event) Notifiable() bool {
	return e.Type == EventTypeRouteDelayUpdate || e.Type == EventTypeRouteModified
}
