package planner

import (
	"sort"

	"github.com/samber/lo"
	"github.com/travigo/routeplanner/pkg/ctdf"
)

const (
	minimumConfidence  = 0.5
	longWalkMinutes    = 10
	// Applied after the per-transfer deduction, so a plain one-transfer
	// itinerary scores (1 - 0.1) * 0.9 = 0.81.
	transferConfidence = 0.9
)

// Rank drops itineraries the traveller cannot take and stable sorts the rest
// by the preferred objective. Unknown objectives rank as fastest.
func Rank(itineraries []*ctdf.Itinerary, preferences ctdf.Preferences) []*ctdf.Itinerary {
	ranked := lo.Filter(itineraries, func(itinerary *ctdf.Itinerary, _ int) bool {
		if itinerary.TotalWalkingDistanceMeters > preferences.MaxWalkingDistanceMeters {
			return false
		}

		return !preferences.AccessibilityRequired || isAccessible(itinerary)
	})

	var less func(a *ctdf.Itinerary, b *ctdf.Itinerary) bool

	switch preferences.Objective {
	case ctdf.ObjectiveCheapest:
		less = func(a *ctdf.Itinerary, b *ctdf.Itinerary) bool {
			return a.TotalCost < b.TotalCost
		}
	case ctdf.ObjectiveLeastTransfers:
		less = func(a *ctdf.Itinerary, b *ctdf.Itinerary) bool {
			if a.TransferCount != b.TransferCount {
				return a.TransferCount < b.TransferCount
			}
			return a.TotalTravelTimeMinutes < b.TotalTravelTimeMinutes
		}
	default:
		less = func(a *ctdf.Itinerary, b *ctdf.Itinerary) bool {
			return a.TotalTravelTimeMinutes < b.TotalTravelTimeMinutes
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return less(ranked[i], ranked[j])
	})

	return ranked
}

// isAccessible always passes. Stop and bus accessibility data is not yet
// consulted, so requiring accessibility filters nothing.
func isAccessible(itinerary *ctdf.Itinerary) bool {
	return true
}

func routeType(itinerary *ctdf.Itinerary) ctdf.RouteType {
	switch itinerary.CountSegments(ctdf.SegmentTypeBus) {
	case 0:
		return ctdf.RouteTypeWalking
	case 1:
		return ctdf.RouteTypeDirect
	default:
		return ctdf.RouteTypeTransfer
	}
}

// confidenceScore is a heuristic, not a probability. Each transfer and any
// walk over ten minutes costs 0.1, and transfer itineraries are scaled down
// further.
func confidenceScore(itinerary *ctdf.Itinerary) float64 {
	score := 1.0
	score -= 0.1 * float64(itinerary.CountSegments(ctdf.SegmentTypeWaiting))

	if itinerary.WalkingMinutes() > longWalkMinutes {
		score -= 0.1
	}

	if itinerary.RouteType == ctdf.RouteTypeTransfer {
		score *= transferConfidence
	}

	return lo.Clamp(score, minimumConfidence, 1.0)
}
