package ctdf

import (
	"time"

	"github.com/travigo/routeplanner/pkg/geo"
)

type TripRequest struct {
	PrimaryIdentifier string
	UserID            string

	Origin        geo.Point
	Destination   geo.Point
	RequestedTime time.Time
	Preferences   Preferences

	SelectedItineraryRef string
	SelectedRouteRef     string

	CreationDateTime time.Time
}
