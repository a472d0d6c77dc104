package ctdf

import (
	"time"

	"github.com/travigo/routeplanner/pkg/geo"
)

type SegmentType string

const (
	SegmentTypeWalking SegmentType = "walking"
	SegmentTypeBus     SegmentType = "bus"
	SegmentTypeWaiting SegmentType = "waiting"
)

// Segment is one leg of an itinerary. WalkingInstructions is only set on walking
// segments and the route/bus references only on bus segments.
type Segment struct {
	Type SegmentType `json:"type"`

	StartLocation     geo.Point `json:"start_location"`
	EndLocation       geo.Point `json:"end_location"`
	StartLocationName string    `json:"start_location_name,omitempty"`
	EndLocationName   string    `json:"end_location_name,omitempty"`

	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
	DistanceMeters  float64   `json:"distance_meters"`
	Cost            float64   `json:"cost"`

	WalkingInstructions string `json:"walking_instructions,omitempty"`

	RouteRef  string `json:"route_ref,omitempty"`
	RouteName string `json:"route_name,omitempty"`
	BusRef    string `json:"bus_ref,omitempty"`
}

type RouteType string

const (
	RouteTypeWalking  RouteType = "walking"
	RouteTypeDirect   RouteType = "direct"
	RouteTypeTransfer RouteType = "transfer"
)

type Itinerary struct {
	ID       string    `json:"id"`
	Segments []Segment `json:"segments"`

	TotalTravelTimeMinutes     int     `json:"total_travel_time_minutes"`
	TotalWalkingDistanceMeters float64 `json:"total_walking_distance_meters"`
	TotalCost                  float64 `json:"total_cost"`
	TransferCount              int     `json:"transfer_count"`

	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`

	RouteType RouteType `json:"route_type"`

	// ConfidenceScore is a reliability heuristic in [0.5, 1.0], not a probability.
	ConfidenceScore float64 `json:"confidence_score"`
}

func (i *Itinerary) CountSegments(segmentType SegmentType) int {
	count := 0
	for _, segment := range i.Segments {
		if segment.Type == segmentType {
			count++
		}
	}

	return count
}

func (i *Itinerary) WalkingMinutes() int {
	minutes := 0
	for _, segment := range i.Segments {
		if segment.Type == SegmentTypeWalking {
			minutes += segment.DurationMinutes
		}
	}

	return minutes
}

func (i *Itinerary) WalkingDistanceMeters() float64 {
	distance := 0.0
	for _, segment := range i.Segments {
		if segment.Type == SegmentTypeWalking {
			distance += segment.DistanceMeters
		}
	}

	return distance
}
