// Package optimiser orders a set of required stops into a short visiting sequence.
package optimiser

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/geo"
)

type Optimiser struct {
	Solver    Solver
	TimeLimit time.Duration
}

func NewOptimiser() *Optimiser {
	return &Optimiser{
		Solver:    &LocalSearchSolver{},
		TimeLimit: DefaultTimeLimit,
	}
}

// OrderStops returns a permutation of points that starts at points[0]. Solver
// failures fall back to NearestNeighbour and are never retried.
func (o *Optimiser) OrderStops(ctx context.Context, points []geo.Point) []geo.Point {
	if len(points) <= 2 {
		return points
	}

	matrix := NewDistanceMatrix(points)
	model := Model{
		Size:          len(points),
		Vehicles:      1,
		Depot:         0,
		Distance:      matrix.Distance,
		FirstSolution: FirstSolutionCheapestArc,
		Metaheuristic: MetaheuristicGuidedLocalSearch,
		TimeLimit:     o.TimeLimit,
	}

	start := time.Now()
	solution, err := o.Solver.Solve(ctx, model)
	if err == nil && len(solution.Order) != len(points) {
		err = ErrNoSolution
	}
	if err != nil {
		log.Error().Err(err).Int("stops", len(points)).Msg("Stop sequence solver failed, using nearest neighbour ordering")
		return NearestNeighbour(points)
	}

	log.Debug().
		Int("stops", len(points)).
		Int64("distance", solution.Cost).
		Str("duration", time.Since(start).String()).
		Msg("Solved stop sequence")

	ordered := make([]geo.Point, 0, len(points))
	for _, index := range solution.Order {
		ordered = append(ordered, points[index])
	}

	return ordered
}

// NearestNeighbour starts at the first point and repeatedly moves to the
// closest unvisited point.
func NearestNeighbour(points []geo.Point) []geo.Point {
	if len(points) == 0 {
		return points
	}

	remaining := append([]geo.Point(nil), points[1:]...)
	ordered := []geo.Point{points[0]}
	current := points[0]

	for len(remaining) > 0 {
		nearestIndex := 0
		nearestDistance := geo.HaversineDistanceKm(current, remaining[0])

		for i := 1; i < len(remaining); i++ {
			distance := geo.HaversineDistanceKm(current, remaining[i])
			if distance < nearestDistance {
				nearestIndex = i
				nearestDistance = distance
			}
		}

		current = remaining[nearestIndex]
		ordered = append(ordered, current)
		remaining = append(remaining[:nearestIndex], remaining[nearestIndex+1:]...)
	}

	return ordered
}

// GeneratePath turns an ordered stop list into a route path.
func GeneratePath(points []geo.Point) ([]geo.Point, error) {
	if len(points) < 2 {
		return nil, ErrInvalidArgument
	}

	return append([]geo.Point(nil), points...), nil
}
