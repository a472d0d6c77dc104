package ctdf

import (
	"time"

	"github.com/travigo/routeplanner/pkg/geo"
)

type Objective string

const (
	ObjectiveFastest        Objective = "fastest"
	ObjectiveCheapest       Objective = "cheapest"
	ObjectiveLeastTransfers Objective = "least_transfers"
)

const DefaultMaxWalkingDistanceMeters = 800

type Preferences struct {
	MaxWalkingDistanceMeters float64   `json:"max_walking_distance_meters" validate:"gte=0"`
	AccessibilityRequired    bool      `json:"accessibility_required"`
	Objective                Objective `json:"objective"`
	AvoidCrowdedRoutes       bool      `json:"avoid_crowded_routes"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		MaxWalkingDistanceMeters: DefaultMaxWalkingDistanceMeters,
		Objective:                ObjectiveFastest,
	}
}

type TripPlanRequest struct {
	Origin        geo.Point   `json:"origin"`
	Destination   geo.Point   `json:"destination"`
	DepartureTime time.Time   `json:"departure_time"`
	Preferences   Preferences `json:"preferences"`
}

// ApplyDefaults fills in values a client is allowed to omit.
func (r *TripPlanRequest) ApplyDefaults(now time.Time) {
	if r.DepartureTime.IsZero() {
		r.DepartureTime = now
	}
	if r.Preferences.MaxWalkingDistanceMeters == 0 {
		r.Preferences.MaxWalkingDistanceMeters = DefaultMaxWalkingDistanceMeters
	}
	if r.Preferences.Objective == "" {
		r.Preferences.Objective = ObjectiveFastest
	}
}
