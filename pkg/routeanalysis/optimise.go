package routeanalysis

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/travigo/routeplanner/pkg/ctdf"
	"github.com/travigo/routeplanner/pkg/geo"
	"github.com/travigo/routeplanner/pkg/optimiser"
	"github.com/travigo/routeplanner/pkg/routemetrics"
	"golang.org/x/exp/slices"
)

var alternativeGoals = []ctdf.OptimisationGoal{
	ctdf.OptimisationGoalMinimiseTime,
	ctdf.OptimisationGoalMinimiseDistance,
	ctdf.OptimisationGoalMaximiseCoverage,
}

// OptimiseRoute orders the required stops and prices the resulting route.
// Failures are reported on the result rather than returned.
func (s *Service) OptimiseRoute(ctx context.Context, request ctdf.StopSequenceRequest) *ctdf.RouteOptimisationResult {
	request.ApplyDefaults()

	log.Info().Int("stops", len(request.RequiredStops)).Str("goal", string(request.Goal)).Msg("Starting route optimisation")

	stops := request.RequiredStops
	if request.StartPoint != nil {
		stops = append([]geo.Point{*request.StartPoint}, stops...)
	}

	orderedStops := s.Optimiser.OrderStops(ctx, stops)
	if request.EndPoint != nil {
		orderedStops = append(orderedStops, *request.EndPoint)
	}

	path, err := optimiser.GeneratePath(orderedStops)
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate route path")
		return &ctdf.RouteOptimisationResult{
			Success:      false,
			Goal:         request.Goal,
			ErrorMessage: fmt.Sprintf("at least 2 stops are required to generate a path: %s", err),
		}
	}

	distance := routemetrics.PathDistanceKm(path)
	travelTime := s.Calculator.EstimateTravelTimeMinutes(distance)

	// MaxRouteLengthKm and MaxTravelTimeMinutes are carried on the request only.
	return &ctdf.RouteOptimisationResult{
		Success:                    true,
		Goal:                       request.Goal,
		OptimisedStops:             orderedStops,
		OptimisedPath:              path,
		TotalDistanceKm:            distance,
		EstimatedTravelTimeMinutes: travelTime,
		EstimatedCost:              s.Calculator.OperationalCost(distance, travelTime),
		CoverageScore:              s.Calculator.CoverageScore(ctx, s.Network, path, s.Calculator.Config.CoverageRadiusMeters),
	}
}

// GenerateAlternatives optimises the request once per goal and returns the
// successful results, shortest first.
func (s *Service) GenerateAlternatives(ctx context.Context, request ctdf.StopSequenceRequest, count int) []*ctdf.RouteOptimisationResult {
	count = min(max(count, 0), len(alternativeGoals))

	alternativesPool := pool.NewWithResults[*ctdf.RouteOptimisationResult]().WithMaxGoroutines(len(alternativeGoals))

	for _, goal := range alternativeGoals[:count] {
		alternative := request
		alternative.RequiredStops = append([]geo.Point(nil), request.RequiredStops...)
		alternative.Goal = goal

		alternativesPool.Go(func() *ctdf.RouteOptimisationResult {
			return s.OptimiseRoute(ctx, alternative)
		})
	}

	alternatives := []*ctdf.RouteOptimisationResult{}
	for _, result := range alternativesPool.Wait() {
		if result.Success {
			alternatives = append(alternatives, result)
		}
	}

	slices.SortStableFunc(alternatives, func(a *ctdf.RouteOptimisationResult, b *ctdf.RouteOptimisationResult) int {
		switch {
		case a.TotalDistanceKm < b.TotalDistanceKm:
			return -1
		case a.TotalDistanceKm > b.TotalDistanceKm:
			return 1
		default:
			return goalOrder(a.Goal) - goalOrder(b.Goal)
		}
	})

	return alternatives
}

func goalOrder(goal ctdf.OptimisationGoal) int {
	return slices.Index(alternativeGoals, goal)
}
