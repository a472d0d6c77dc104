// Package routeanalysis scores existing bus routes and designs new ones from a
// set of required stops.
package routeanalysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/ctdf"
	"github.com/travigo/routeplanner/pkg/optimiser"
	"github.com/travigo/routeplanner/pkg/routemetrics"
	"github.com/travigo/routeplanner/pkg/transitnetwork"
)

var ErrRouteNotFound = errors.New("route not found")

const (
	splitRouteDistanceKm = 40
	minimumStops         = 5
	maximumStops         = 20

	minimumPassengersPerDay = 50
	tripRequestWindowDays   = 30
)

// TripRequestCounter counts how often travellers picked a route.
type TripRequestCounter interface {
	CountTripRequestsForRoute(ctx context.Context, routeRef string) (int, error)
}

type Service struct {
	Network      transitnetwork.Network
	Calculator   *routemetrics.Calculator
	Optimiser    *optimiser.Optimiser
	TripRequests TripRequestCounter
}

func NewService(network transitnetwork.Network, calculator *routemetrics.Calculator, stopOptimiser *optimiser.Optimiser, tripRequests TripRequestCounter) *Service {
	return &Service{
		Network:      network,
		Calculator:   calculator,
		Optimiser:    stopOptimiser,
		TripRequests: tripRequests,
	}
}

func (s *Service) AnalyzeRoute(ctx context.Context, routeRef string) (*ctdf.RouteAnalysis, error) {
	route, err := s.Network.GetRoute(ctx, routeRef)
	if errors.Is(err, transitnetwork.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRouteNotFound, routeRef)
	} else if err != nil {
		return nil, fmt.Errorf("lookup route %s: %w", routeRef, err)
	}

	stops, err := s.Network.GetRouteStops(ctx, route)
	if err != nil {
		return nil, fmt.Errorf("lookup stops for route %s: %w", routeRef, err)
	}

	path := route.Geometry(stops)
	distance := routemetrics.PathDistanceKm(path)
	coverage := s.Calculator.CoverageScore(ctx, s.Network, path, s.Calculator.Config.CoverageRadiusMeters)

	costPerKm := 0.0
	if distance > 0 {
		costPerKm = route.OperationalCost / distance
	}

	return &ctdf.RouteAnalysis{
		RouteRef:                route.PrimaryIdentifier,
		EfficiencyScore:         s.Calculator.EfficiencyScore(distance, route.EstimatedTravelTimeMinutes, coverage),
		CoverageScore:           coverage,
		CostPerKm:               costPerKm,
		AveragePassengersPerDay: s.averagePassengers(ctx, route.PrimaryIdentifier),
		ImprovementSuggestions:  improvementSuggestions(distance, len(route.StopRefs)),
	}, nil
}

func (s *Service) averagePassengers(ctx context.Context, routeRef string) int {
	if s.TripRequests == nil {
		return minimumPassengersPerDay
	}

	count, err := s.TripRequests.CountTripRequestsForRoute(ctx, routeRef)
	if err != nil {
		log.Error().Err(err).Str("route", routeRef).Msg("Failed to count trip requests")
		return minimumPassengersPerDay
	}

	return max(minimumPassengersPerDay, count/tripRequestWindowDays)
}

func improvementSuggestions(distanceKm float64, stopCount int) []string {
	suggestions := []string{}

	if distanceKm > splitRouteDistanceKm {
		suggestions = append(suggestions, "Consider splitting this route into two shorter routes for better efficiency")
	}
	if stopCount < minimumStops {
		suggestions = append(suggestions, "Route may benefit from additional stops to improve coverage")
	}
	if stopCount > maximumStops {
		suggestions = append(suggestions, "Consider reducing number of stops to improve travel time")
	}

	return suggestions
}

// WithTimeLimit returns a copy of the service whose optimiser stops searching
// after limit.
func (s *Service) WithTimeLimit(limit time.Duration) *Service {
	limited := *s
	if s.Optimiser != nil {
		stopOptimiser := *s.Optimiser
		stopOptimiser.TimeLimit = limit
		limited.Optimiser = &stopOptimiser
	}

	return &limited
}
