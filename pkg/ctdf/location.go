package ctdf

import "github.com/travigo/routeplanner/pkg/geo"

// Location is stored as a legacy coordinate pair [longitude, latitude] so the
// stops collection can carry a 2d index.
type Location struct {
	Type        string    `json:"type" groups:"basic"`
	Coordinates []float64 `json:"coordinates" groups:"basic"`
}

func NewLocation(point geo.Point) *Location {
	return &Location{
		Type:        "Point",
		Coordinates: []float64{point.Longitude, point.Latitude},
	}
}

func (l *Location) Point() geo.Point {
	if l == nil || len(l.Coordinates) < 2 {
		return geo.Point{}
	}

	return geo.NewPoint(l.Coordinates[1], l.Coordinates[0])
}
