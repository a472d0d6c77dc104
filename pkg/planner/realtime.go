package planner

import (
	"context"
	"time"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/ctdf"
)

// ApplyRealtimeUpdates returns a copy of itinerary with each bus segment pushed
// back by the live delay on its route. The input is never modified.
func (p *Planner) ApplyRealtimeUpdates(ctx context.Context, itinerary *ctdf.Itinerary) *ctdf.Itinerary {
	updated := cloneItinerary(itinerary)
	if p.Realtime == nil {
		return updated
	}

	for i := range updated.Segments {
		segment := &updated.Segments[i]
		if segment.Type != ctdf.SegmentTypeBus || segment.RouteRef == "" {
			continue
		}

		updates, err := p.Realtime.GetRealtimeUpdates(ctx, segment.RouteRef)
		if err != nil {
			log.Error().Err(err).Str("route", segment.RouteRef).Msg("Failed to get realtime updates for itinerary")
			return cloneItinerary(itinerary)
		}
		if len(updates) == 0 || updates[0].DelayMinutes <= 0 {
			continue
		}

		delay := updates[0].DelayMinutes
		segment.StartTime = segment.StartTime.Add(time.Duration(delay) * time.Minute)
		segment.EndTime = segment.EndTime.Add(time.Duration(delay) * time.Minute)
		segment.DurationMinutes += delay
	}

	recalculateTotals(updated)
	updated.ArrivalTime = updated.DepartureTime.Add(time.Duration(updated.TotalTravelTimeMinutes) * time.Minute)

	return updated
}

func cloneItinerary(itinerary *ctdf.Itinerary) *ctdf.Itinerary {
	clone := &ctdf.Itinerary{}
	if err := copier.CopyWithOption(clone, itinerary, copier.Option{DeepCopy: true}); err != nil {
		log.Error().Err(err).Msg("Failed to copy itinerary")
	}

	return clone
}
