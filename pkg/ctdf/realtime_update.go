package ctdf

import "time"

type RealtimeStatus string

const (
	RealtimeStatusOnTime    RealtimeStatus = "on_time"
	RealtimeStatusDelayed   RealtimeStatus = "delayed"
	RealtimeStatusCancelled RealtimeStatus = "cancelled"
)

type RealtimeUpdate struct {
	RouteRef        string         `json:"route_ref"`
	BusRef          string         `json:"bus_ref"`
	CurrentLocation *Location      `json:"current_location"`
	DelayMinutes    int            `json:"delay_minutes"`
	LastUpdated     time.Time      `json:"last_updated"`
	Status          RealtimeStatus `json:"status"`
}
