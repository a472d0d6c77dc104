package optimiser

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/travigo/routeplanner/pkg/geo"
)

func TestLocalSearchSolverValidation(t *testing.T) {
	solver := &LocalSearchSolver{}
	ctx := context.Background()
	matrix := NewDistanceMatrix(linePoints())

	_, err := solver.Solve(ctx, Model{Size: 0, Vehicles: 1, Distance: matrix.Distance})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = solver.Solve(ctx, Model{Size: 5, Vehicles: 2, Distance: matrix.Distance})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = solver.Solve(ctx, Model{Size: 5, Vehicles: 1, Depot: 7, Distance: matrix.Distance})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = solver.Solve(ctx, Model{Size: 5, Vehicles: 1})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestLocalSearchSolverRandomPoints(t *testing.T) {
	random := rand.New(rand.NewSource(42))

	var points []geo.Point
	for i := 0; i < 25; i++ {
		points = append(points, geo.NewPoint(51.4+random.Float64()*0.2, -0.2+random.Float64()*0.2))
	}

	matrix := NewDistanceMatrix(points)
	model := Model{
		Size:          len(points),
		Vehicles:      1,
		Distance:      matrix.Distance,
		FirstSolution: FirstSolutionCheapestArc,
		Metaheuristic: MetaheuristicGuidedLocalSearch,
		TimeLimit:     DefaultTimeLimit,
	}

	solution, err := (&LocalSearchSolver{MaxIterations: 50}).Solve(context.Background(), model)
	assert.Nil(t, err)
	assert.Len(t, solution.Order, len(points))
	assert.Equal(t, 0, solution.Order[0])

	seen := map[int]bool{}
	for _, index := range solution.Order {
		seen[index] = true
	}
	assert.Len(t, seen, len(points))

	initial := cheapestArcTour(model)
	assert.LessOrEqual(t, solution.Cost, model.tourCost(initial))
	assert.Equal(t, model.tourCost(solution.Order), solution.Cost)
}

func TestImproveTwoOptStopsOnCancelledContext(t *testing.T) {
	random := rand.New(rand.NewSource(7))

	var points []geo.Point
	for i := 0; i < 40; i++ {
		points = append(points, geo.NewPoint(51.4+random.Float64()*0.2, -0.2+random.Float64()*0.2))
	}

	matrix := NewDistanceMatrix(points)
	model := Model{Size: len(points), Vehicles: 1, Distance: matrix.Distance}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tour := cheapestArcTour(model)
	initial := append([]int(nil), tour...)

	assert.Equal(t, initial, improveTwoOpt(ctx, model, tour, nil, 0))

	improved := improveTwoOpt(context.Background(), model, append([]int(nil), initial...), nil, 0)
	assert.ElementsMatch(t, initial, improved)
	assert.LessOrEqual(t, model.tourCost(improved), model.tourCost(initial))
}

func TestDistanceMatrix(t *testing.T) {
	points := []geo.Point{geo.NewPoint(0, 0), geo.NewPoint(0, 1)}
	matrix := NewDistanceMatrix(points)

	assert.Equal(t, int64(0), matrix.Distance(0, 0))
	assert.Equal(t, int64(111194), matrix.Distance(0, 1))
	assert.Equal(t, matrix.Distance(0, 1), matrix.Distance(1, 0))
}
