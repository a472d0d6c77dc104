package routemetrics_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/travigo/routeplanner/pkg/geo"
	"github.com/travigo/routeplanner/pkg/routemetrics"
)

type fakeCounter struct {
	within int
	total  int
	err    error

	region geo.Region
}

func (f *fakeCounter) CountStopsWithin(ctx context.Context, region geo.Region) (int, error) {
	f.region = region
	return f.within, f.err
}

func (f *fakeCounter) CountAllStops(ctx context.Context) (int, error) {
	return f.total, f.err
}

func TestPathDistanceKm(t *testing.T) {
	assert.Equal(t, 0.0, routemetrics.PathDistanceKm(nil))
	assert.Equal(t, 0.0, routemetrics.PathDistanceKm([]geo.Point{geo.NewPoint(1, 1)}))

	a := geo.NewPoint(0, 0)
	b := geo.NewPoint(0, 1)
	c := geo.NewPoint(1, 1)

	expected := geo.HaversineDistanceKm(a, b) + geo.HaversineDistanceKm(b, c)
	assert.InDelta(t, expected, routemetrics.PathDistanceKm([]geo.Point{a, b, c}), 1e-9)
}

func TestEstimateTravelTimeMinutes(t *testing.T) {
	calculator := routemetrics.NewCalculator(routemetrics.DefaultConfig())

	assert.Equal(t, 60, calculator.EstimateTravelTimeMinutes(25))
	assert.Equal(t, 3, calculator.EstimateTravelTimeMinutes(1))
	assert.Equal(t, 0, calculator.EstimateTravelTimeMinutes(0))
}

func TestOperationalCost(t *testing.T) {
	calculator := routemetrics.NewCalculator(routemetrics.DefaultConfig())

	assert.InDelta(t, 10*2.5+30*0.5, calculator.OperationalCost(10, 30), 1e-9)

	custom := routemetrics.DefaultConfig()
	custom.CostPerKm = 1
	custom.CostPerMinute = 0
	assert.InDelta(t, 10.0, routemetrics.NewCalculator(custom).OperationalCost(10, 30), 1e-9)
}

func TestWalkingMinutes(t *testing.T) {
	calculator := routemetrics.NewCalculator(routemetrics.DefaultConfig())

	assert.Equal(t, 0, calculator.WalkingMinutes(0))
	assert.Equal(t, 1, calculator.WalkingMinutes(83))
	assert.Equal(t, 2, calculator.WalkingMinutes(85))
	assert.Equal(t, 6, calculator.WalkingMinutes(500))
}

func TestCoverageScore(t *testing.T) {
	calculator := routemetrics.NewCalculator(routemetrics.DefaultConfig())
	path := []geo.Point{geo.NewPoint(0, 0), geo.NewPoint(0, 1)}

	counter := &fakeCounter{within: 3, total: 12}
	assert.Equal(t, 0.25, calculator.CoverageScore(context.Background(), counter, path, 500))
	assert.IsType(t, geo.Corridor{}, counter.region)
}

func TestCoverageScoreNoStops(t *testing.T) {
	calculator := routemetrics.NewCalculator(routemetrics.DefaultConfig())

	score := calculator.CoverageScore(context.Background(), &fakeCounter{}, []geo.Point{geo.NewPoint(0, 0)}, 500)
	assert.Equal(t, 0.0, score)
}

func TestCoverageScoreStoreError(t *testing.T) {
	calculator := routemetrics.NewCalculator(routemetrics.DefaultConfig())

	score := calculator.CoverageScore(context.Background(), &fakeCounter{total: 5, err: errors.New("connection reset")}, nil, 500)
	assert.Equal(t, 0.0, score)
}

func TestEfficiencyScore(t *testing.T) {
	calculator := routemetrics.NewCalculator(routemetrics.DefaultConfig())

	// 25km -> 50, 60min -> 50, coverage 0.5 -> 50
	assert.InDelta(t, 50.0, calculator.EfficiencyScore(25, 60, 0.5), 1e-9)

	// Both penalties floor at zero
	assert.InDelta(t, 100.0/3.0, calculator.EfficiencyScore(120, 300, 1), 1e-9)

	assert.InDelta(t, 200.0/3.0, calculator.EfficiencyScore(0, 0, 0), 1e-9)
}
