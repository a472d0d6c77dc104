package ctdf

import "github.com/travigo/routeplanner/pkg/geo"

type OptimisationGoal string

const (
	OptimisationGoalMinimiseTime     OptimisationGoal = "minimize_time"
	OptimisationGoalMinimiseDistance OptimisationGoal = "minimize_distance"
	OptimisationGoalMaximiseCoverage OptimisationGoal = "maximize_coverage"
)

const (
	DefaultMaxRouteLengthKm     = 50
	DefaultMaxTravelTimeMinutes = 120
)

type StopSequenceRequest struct {
	RequiredStops []geo.Point `json:"required_stops" validate:"dive"`
	StartPoint    *geo.Point  `json:"start_point,omitempty"`
	EndPoint      *geo.Point  `json:"end_point,omitempty"`

	MaxRouteLengthKm     float64          `json:"max_route_length_km" validate:"gte=0"`
	MaxTravelTimeMinutes int              `json:"max_travel_time_minutes" validate:"gte=0"`
	Goal                 OptimisationGoal `json:"goal"`
}

func (r *StopSequenceRequest) ApplyDefaults() {
	if r.MaxRouteLengthKm == 0 {
		r.MaxRouteLengthKm = DefaultMaxRouteLengthKm
	}
	if r.MaxTravelTimeMinutes == 0 {
		r.MaxTravelTimeMinutes = DefaultMaxTravelTimeMinutes
	}
	if r.Goal == "" {
		r.Goal = OptimisationGoalMinimiseTime
	}
}

type RouteOptimisationResult struct {
	Success bool             `json:"success"`
	Goal    OptimisationGoal `json:"goal,omitempty"`

	OptimisedStops []geo.Point `json:"optimised_stops"`
	OptimisedPath  []geo.Point `json:"optimised_path"`

	TotalDistanceKm            float64 `json:"total_distance_km"`
	EstimatedTravelTimeMinutes int     `json:"estimated_travel_time_minutes"`
	EstimatedCost              float64 `json:"estimated_cost"`
	CoverageScore              float64 `json:"coverage_score"`

	ErrorMessage string `json:"error_message,omitempty"`
}

type RouteAnalysis struct {
	RouteRef                string   `json:"route_ref"`
	EfficiencyScore         float64  `json:"efficiency_score"`
	CoverageScore           float64  `json:"coverage_score"`
	CostPerKm               float64  `json:"cost_per_km"`
	AveragePassengersPerDay int      `json:"average_passengers_per_day"`
	ImprovementSuggestions  []string `json:"improvement_suggestions"`
}
