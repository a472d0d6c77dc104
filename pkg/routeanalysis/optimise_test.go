package routeanalysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/travigo/routeplanner/pkg/ctdf"
	"github.com/travigo/routeplanner/pkg/geo"
	"github.com/travigo/routeplanner/pkg/routemetrics"
)

func requiredStops() []geo.Point {
	return []geo.Point{
		geo.NewPoint(51.50, -0.10),
		geo.NewPoint(51.53, -0.10),
		geo.NewPoint(51.51, -0.10),
		geo.NewPoint(51.52, -0.10),
	}
}

func TestOptimiseRoute(t *testing.T) {
	assert := assert.New(t)

	result := newTestService(longRouteNetwork(), nil).OptimiseRoute(context.Background(), ctdf.StopSequenceRequest{
		RequiredStops: requiredStops(),
	})

	assert.True(result.Success)
	assert.Empty(result.ErrorMessage)
	assert.Equal(ctdf.OptimisationGoalMinimiseTime, result.Goal)
	assert.Len(result.OptimisedStops, 4)
	assert.ElementsMatch(requiredStops(), result.OptimisedStops)
	assert.Equal(requiredStops()[0], result.OptimisedStops[0])
	assert.Equal(result.OptimisedStops, result.OptimisedPath)

	calculator := routemetrics.NewCalculator(routemetrics.DefaultConfig())
	distance := routemetrics.PathDistanceKm(result.OptimisedPath)
	assert.InDelta(distance, result.TotalDistanceKm, 1e-9)
	assert.Equal(calculator.EstimateTravelTimeMinutes(distance), result.EstimatedTravelTimeMinutes)
	assert.InDelta(calculator.OperationalCost(distance, result.EstimatedTravelTimeMinutes), result.EstimatedCost, 1e-9)
}

func TestOptimiseRouteStartAndEnd(t *testing.T) {
	assert := assert.New(t)

	start := geo.NewPoint(51.49, -0.10)
	end := geo.NewPoint(51.60, -0.10)

	result := newTestService(longRouteNetwork(), nil).OptimiseRoute(context.Background(), ctdf.StopSequenceRequest{
		RequiredStops: requiredStops(),
		StartPoint:    &start,
		EndPoint:      &end,
	})

	assert.True(result.Success)
	assert.Len(result.OptimisedStops, 6)
	assert.Equal(start, result.OptimisedStops[0])
	assert.Equal(end, result.OptimisedStops[5])
}

func TestOptimiseRouteTooFewStops(t *testing.T) {
	result := newTestService(longRouteNetwork(), nil).OptimiseRoute(context.Background(), ctdf.StopSequenceRequest{
		RequiredStops: []geo.Point{geo.NewPoint(51.5, -0.1)},
	})

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.ErrorMessage)
}

func TestOptimiseRouteBeyondLimits(t *testing.T) {
	assert := assert.New(t)
	service := newTestService(longRouteNetwork(), nil)
	request := ctdf.StopSequenceRequest{
		RequiredStops:        []geo.Point{geo.NewPoint(51.0, 0), geo.NewPoint(52.0, 0)},
		MaxRouteLengthKm:     50,
		MaxTravelTimeMinutes: 30,
	}

	result := service.OptimiseRoute(context.Background(), request)
	assert.True(result.Success)
	assert.Empty(result.ErrorMessage)
	assert.Greater(result.TotalDistanceKm, 100.0)

	assert.Len(service.GenerateAlternatives(context.Background(), request, 3), 3)
}

func TestGenerateAlternatives(t *testing.T) {
	assert := assert.New(t)
	service := newTestService(longRouteNetwork(), nil)
	request := ctdf.StopSequenceRequest{RequiredStops: requiredStops()}

	alternatives := service.GenerateAlternatives(context.Background(), request, 3)
	assert.Len(alternatives, 3)
	assert.Equal(ctdf.OptimisationGoalMinimiseTime, alternatives[0].Goal)
	assert.Equal(ctdf.OptimisationGoalMinimiseDistance, alternatives[1].Goal)
	assert.Equal(ctdf.OptimisationGoalMaximiseCoverage, alternatives[2].Goal)

	for i := 1; i < len(alternatives); i++ {
		assert.LessOrEqual(alternatives[i-1].TotalDistanceKm, alternatives[i].TotalDistanceKm)
	}

	assert.Len(service.GenerateAlternatives(context.Background(), request, 2), 2)
	assert.Len(service.GenerateAlternatives(context.Background(), request, 10), 3)
	assert.Empty(service.GenerateAlternatives(context.Background(), ctdf.StopSequenceRequest{}, 3))
}
