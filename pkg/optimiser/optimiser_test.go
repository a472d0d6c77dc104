package optimiser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/travigo/routeplanner/pkg/geo"
)

type failingSolver struct {
	calls int
}

func (f *failingSolver) Solve(ctx context.Context, model Model) (Solution, error) {
	f.calls++
	return Solution{}, errors.New("solver exploded")
}

type emptySolver struct{}

func (emptySolver) Solve(ctx context.Context, model Model) (Solution, error) {
	return Solution{}, nil
}

func linePoints() []geo.Point {
	return []geo.Point{
		geo.NewPoint(51.50, -0.10),
		geo.NewPoint(51.53, -0.10),
		geo.NewPoint(51.51, -0.10),
		geo.NewPoint(51.54, -0.10),
		geo.NewPoint(51.52, -0.10),
	}
}

func assertPermutation(t *testing.T, input []geo.Point, output []geo.Point) {
	assert.Len(t, output, len(input))
	assert.ElementsMatch(t, input, output)
}

func TestOrderStopsTrivialInputs(t *testing.T) {
	optimiser := NewOptimiser()
	ctx := context.Background()

	assert.Empty(t, optimiser.OrderStops(ctx, []geo.Point{}))

	single := []geo.Point{geo.NewPoint(51.5, -0.1)}
	assert.Equal(t, single, optimiser.OrderStops(ctx, single))

	pair := []geo.Point{geo.NewPoint(51.6, -0.1), geo.NewPoint(51.5, -0.1)}
	assert.Equal(t, pair, optimiser.OrderStops(ctx, pair))
}

func TestOrderStopsSolver(t *testing.T) {
	points := linePoints()
	ordered := NewOptimiser().OrderStops(context.Background(), points)

	assertPermutation(t, points, ordered)
	assert.Equal(t, points[0], ordered[0])

	// Points on a line are best visited in latitude order, in either direction.
	forward := []float64{51.50, 51.51, 51.52, 51.53, 51.54}
	backward := []float64{51.50, 51.54, 51.53, 51.52, 51.51}
	var latitudes []float64
	for _, point := range ordered {
		latitudes = append(latitudes, point.Latitude)
	}
	assert.True(t, assert.ObjectsAreEqual(forward, latitudes) || assert.ObjectsAreEqual(backward, latitudes), "unexpected order %v", latitudes)
}

func TestOrderStopsFallsBackOnSolverError(t *testing.T) {
	solver := &failingSolver{}
	optimiser := &Optimiser{Solver: solver, TimeLimit: DefaultTimeLimit}

	points := linePoints()
	ordered := optimiser.OrderStops(context.Background(), points)

	assert.Equal(t, 1, solver.calls)
	assert.Equal(t, NearestNeighbour(points), ordered)
}

func TestOrderStopsFallsBackOnEmptySolution(t *testing.T) {
	optimiser := &Optimiser{Solver: emptySolver{}, TimeLimit: DefaultTimeLimit}

	points := linePoints()
	assert.Equal(t, NearestNeighbour(points), optimiser.OrderStops(context.Background(), points))
}

func TestOrderStopsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	points := linePoints()
	ordered := NewOptimiser().OrderStops(ctx, points)

	assertPermutation(t, points, ordered)
	assert.Equal(t, NearestNeighbour(points), ordered)
}

func TestNearestNeighbour(t *testing.T) {
	assert := assert.New(t)

	points := linePoints()
	ordered := NearestNeighbour(points)

	assertPermutation(t, points, ordered)
	assert.Equal(51.50, ordered[0].Latitude)
	assert.Equal(51.51, ordered[1].Latitude)
	assert.Equal(51.52, ordered[2].Latitude)
	assert.Equal(51.53, ordered[3].Latitude)
	assert.Equal(51.54, ordered[4].Latitude)

	assert.Empty(NearestNeighbour(nil))
}

func TestGeneratePath(t *testing.T) {
	_, err := GeneratePath([]geo.Point{geo.NewPoint(1, 1)})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = GeneratePath(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	path, err := GeneratePath([]geo.Point{geo.NewPoint(1, 1), geo.NewPoint(2, 2)})
	assert.Nil(t, err)
	assert.Len(t, path, 2)
}
