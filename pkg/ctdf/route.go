package ctdf

import (
	"time"

	"github.com/travigo/routeplanner/pkg/geo"
	"github.com/travigo/routeplanner/pkg/util"
)

// Route is a bus line. StopRefs holds the stop identifiers in the order the route serves them.
type Route struct {
	PrimaryIdentifier string `groups:"basic"`
	Code              string `groups:"basic"`
	Name              string `groups:"basic"`
	Description       string `groups:"detailed"`

	StopRefs []string    `groups:"basic"`
	Path     []geo.Point `groups:"detailed"`

	EstimatedTravelTimeMinutes int     `groups:"basic"`
	OperationalCost            float64 `groups:"detailed"`

	Active bool `groups:"basic"`

	CreationDateTime     time.Time `groups:"detailed"`
	ModificationDateTime time.Time `groups:"detailed"`
}

func (r *Route) ServesStop(stopRef string) bool {
	return util.ContainsString(r.StopRefs, stopRef)
}

// Geometry returns the stored path, or the stop locations in route order when no path is stored.
func (r *Route) Geometry(stops []*Stop) []geo.Point {
	if len(r.Path) > 0 {
		return r.Path
	}

	points := make([]geo.Point, 0, len(stops))
	for _, stop := range stops {
		points = append(points, stop.Point())
	}

	return points
}
