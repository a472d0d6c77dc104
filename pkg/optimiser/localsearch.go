package optimiser

import (
	"context"

	"github.com/rs/zerolog/log"
)

const (
	defaultMaxIterations = 250
	penaltyFactor        = 0.3
)

type arc struct {
	from int
	to   int
}

func newArc(a int, b int) arc {
	if a > b {
		a, b = b, a
	}
	return arc{from: a, to: b}
}

// LocalSearchSolver builds a tour with the cheapest-arc strategy and improves
// it with 2-opt moves under guided local search.
type LocalSearchSolver struct {
	// MaxIterations bounds the guided local search rounds. Zero uses the default.
	MaxIterations int
}

func (s *LocalSearchSolver) Solve(ctx context.Context, model Model) (Solution, error) {
	if err := model.validate(); err != nil {
		return Solution{}, err
	}
	if err := ctx.Err(); err != nil {
		return Solution{}, err
	}

	if model.FirstSolution != "" && model.FirstSolution != FirstSolutionCheapestArc {
		return Solution{}, ErrInvalidArgument
	}

	timeLimit := model.TimeLimit
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}
	ctx, cancel := context.WithTimeout(ctx, timeLimit)
	defer cancel()

	tour := cheapestArcTour(model)
	if len(tour) != model.Size {
		return Solution{}, ErrNoSolution
	}

	best := append([]int(nil), tour...)
	bestCost := model.tourCost(best)

	if model.Size < 4 || model.Metaheuristic == "" {
		tour = improveTwoOpt(ctx, model, tour, nil, 0)
		if cost := model.tourCost(tour); cost < bestCost {
			best, bestCost = tour, cost
		}

		return Solution{Order: best, Cost: bestCost}, nil
	}

	if model.Metaheuristic != MetaheuristicGuidedLocalSearch {
		return Solution{}, ErrInvalidArgument
	}

	maxIterations := s.MaxIterations
	if maxIterations <= 0 {
		maxIterations = defaultMaxIterations
	}

	penalties := map[arc]int{}
	var lambda float64

	for iteration := 0; iteration < maxIterations; iteration++ {
		if ctx.Err() != nil {
			log.Debug().Int("iteration", iteration).Msg("Guided local search stopped by context")
			break
		}

		tour = improveTwoOpt(ctx, model, tour, penalties, lambda)

		cost := model.tourCost(tour)
		if cost < bestCost {
			best = append([]int(nil), tour...)
			bestCost = cost
		}

		if lambda == 0 {
			lambda = penaltyFactor * float64(cost) / float64(model.Size)
			if lambda == 0 {
				break
			}
		}

		penaliseWorstArcs(model, tour, penalties)
	}

	return Solution{Order: best, Cost: bestCost}, nil
}

// cheapestArcTour extends the path from the depot along the cheapest arc to an
// unvisited node until every node is on the tour.
func cheapestArcTour(model Model) []int {
	visited := make([]bool, model.Size)
	tour := make([]int, 0, model.Size)

	current := model.Depot
	visited[current] = true
	tour = append(tour, current)

	for len(tour) < model.Size {
		next := -1
		var nextCost int64

		for candidate := 0; candidate < model.Size; candidate++ {
			if visited[candidate] {
				continue
			}

			cost := model.Distance(current, candidate)
			if next == -1 || cost < nextCost {
				next = candidate
				nextCost = cost
			}
		}

		visited[next] = true
		tour = append(tour, next)
		current = next
	}

	return tour
}

// improveTwoOpt applies first-improvement 2-opt moves on the closed tour until
// none reduce the augmented cost. Position 0 stays fixed.
func improveTwoOpt(ctx context.Context, model Model, tour []int, penalties map[arc]int, lambda float64) []int {
	n := len(tour)
	if n < 4 {
		return tour
	}

	augmented := func(a int, b int) float64 {
		cost := float64(model.Distance(a, b))
		if penalties != nil {
			cost += lambda * float64(penalties[newArc(a, b)])
		}
		return cost
	}

	improved := true
	for improved && ctx.Err() == nil {
		improved = false

		for i := 1; i < n-1; i++ {
			for k := i + 1; k < n; k++ {
				a, b := tour[i-1], tour[i]
				c, d := tour[k], tour[(k+1)%n]

				delta := augmented(a, c) + augmented(b, d) - augmented(a, b) - augmented(c, d)
				if delta < -1e-6 {
					reverse(tour, i, k)
					improved = true
				}
			}
		}
	}

	return tour
}

// penaliseWorstArcs increments the penalty of the tour arcs with the highest
// utility, distance / (1 + penalty).
func penaliseWorstArcs(model Model, tour []int, penalties map[arc]int) {
	var maxUtility float64
	var worst []arc

	for i := 0; i < len(tour); i++ {
		edge := newArc(tour[i], tour[(i+1)%len(tour)])
		utility := float64(model.Distance(edge.from, edge.to)) / float64(1+penalties[edge])

		switch {
		case utility > maxUtility:
			maxUtility = utility
			worst = []arc{edge}
		case utility == maxUtility:
			worst = append(worst, edge)
		}
	}

	for _, edge := range worst {
		penalties[edge]++
	}
}

func reverse(tour []int, i int, k int) {
	for i < k {
		tour[i], tour[k] = tour[k], tour[i]
		i++
		k--
	}
}
