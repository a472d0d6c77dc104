package optimiser

import (
	"context"
	"errors"
	"time"

	"github.com/travigo/routeplanner/pkg/geo"
)

var (
	ErrNoSolution      = errors.New("solver found no solution")
	ErrInvalidArgument = errors.New("invalid argument")
)

type FirstSolutionStrategy string

const (
	FirstSolutionCheapestArc FirstSolutionStrategy = "cheapest_arc"
)

type Metaheuristic string

const (
	MetaheuristicGuidedLocalSearch Metaheuristic = "guided_local_search"
)

const DefaultTimeLimit = 30 * time.Second

// Model describes a single tour over Size nodes that starts and ends at Depot.
type Model struct {
	Size     int
	Vehicles int
	Depot    int

	// Distance returns the arc cost in metres between two node indexes.
	Distance func(from int, to int) int64

	FirstSolution FirstSolutionStrategy
	Metaheuristic Metaheuristic
	TimeLimit     time.Duration
}

// Solution is the visiting order, beginning at the depot. The closing arc back
// to the depot is implied and included in Cost.
type Solution struct {
	Order []int
	Cost  int64
}

type Solver interface {
	Solve(ctx context.Context, model Model) (Solution, error)
}

// DistanceMatrix holds haversine distances between every pair of points in
// whole metres, truncated.
type DistanceMatrix [][]int64

func NewDistanceMatrix(points []geo.Point) DistanceMatrix {
	matrix := make(DistanceMatrix, len(points))

	for i := range points {
		matrix[i] = make([]int64, len(points))

		for j := range points {
			if i == j {
				continue
			}

			matrix[i][j] = int64(geo.HaversineDistanceKm(points[i], points[j]) * 1000)
		}
	}

	return matrix
}

func (m DistanceMatrix) Distance(from int, to int) int64 {
	return m[from][to]
}

func (m Model) validate() error {
	if m.Size <= 0 || m.Distance == nil {
		return ErrInvalidArgument
	}
	if m.Vehicles != 1 {
		return ErrInvalidArgument
	}
	if m.Depot < 0 || m.Depot >= m.Size {
		return ErrInvalidArgument
	}

	return nil
}

func (m Model) tourCost(order []int) int64 {
	var cost int64
	for i := 0; i < len(order); i++ {
		cost += m.Distance(order[i], order[(i+1)%len(order)])
	}

	return cost
}
