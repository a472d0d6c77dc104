// Package routemetrics calculates distance, time, cost and quality scores for bus routes.
package routemetrics

import (
	"context"
	"math"

	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/geo"
)

// StopCounter is the part of the transit network the coverage score needs.
type StopCounter interface {
	CountStopsWithin(ctx context.Context, region geo.Region) (int, error)
	CountAllStops(ctx context.Context) (int, error)
}

type Calculator struct {
	Config Config
}

func NewCalculator(config Config) *Calculator {
	return &Calculator{Config: config}
}

func PathDistanceKm(points []geo.Point) float64 {
	total := 0.0
	for i := 0; i < len(points)-1; i++ {
		total += geo.HaversineDistanceKm(points[i], points[i+1])
	}

	return total
}

func (c *Calculator) EstimateTravelTimeMinutes(distanceKm float64) int {
	return int(math.Ceil(distanceKm / c.Config.AverageSpeedKmh * 60))
}

func (c *Calculator) OperationalCost(distanceKm float64, timeMinutes int) float64 {
	return distanceKm*c.Config.CostPerKm + float64(timeMinutes)*c.Config.CostPerMinute
}

// WalkingMinutes rounds up to whole minutes.
func (c *Calculator) WalkingMinutes(distanceMeters float64) int {
	return int(math.Ceil(distanceMeters / c.Config.WalkingSpeedMetersPerSecond / 60))
}

// CoverageScore is the fraction of all known stops inside the buffered path.
// It never fails: store errors are logged and score 0.
func (c *Calculator) CoverageScore(ctx context.Context, counter StopCounter, path []geo.Point, radiusMeters float64) float64 {
	totalStops, err := counter.CountAllStops(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to count stops for coverage")
		return 0.0
	}
	if totalStops == 0 {
		return 0.0
	}

	coveredStops, err := counter.CountStopsWithin(ctx, geo.BufferPath(path, radiusMeters))
	if err != nil {
		log.Error().Err(err).Msg("Failed to count covered stops")
		return 0.0
	}

	return float64(coveredStops) / float64(totalStops)
}

// EfficiencyScore averages distance, time and coverage sub-scores on a 0-100 scale.
func (c *Calculator) EfficiencyScore(distanceKm float64, travelTimeMinutes int, coverage float64) float64 {
	distanceScore := math.Max(0, 100-(distanceKm/c.Config.DistanceReferenceKm*100))
	timeScore := math.Max(0, 100-(float64(travelTimeMinutes)/c.Config.TimeReferenceMinutes*100))
	coverageScore := math.Max(0, coverage*100)

	return (distanceScore + timeScore + coverageScore) / 3.0
}
