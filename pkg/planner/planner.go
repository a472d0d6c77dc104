// Package planner searches the transit network for walk and bus itineraries
// between two points and ranks them against the traveller's preferences.
package planner

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/travigo/routeplanner/pkg/ctdf"
	"github.com/travigo/routeplanner/pkg/geo"
	"github.com/travigo/routeplanner/pkg/routemetrics"
	"github.com/travigo/routeplanner/pkg/transitnetwork"
)

var (
	ErrNoItinerary     = errors.New("no itinerary found")
	errMissingLocation = errors.New("stop has no location")
)

const defaultMaxGoroutines = 4

// RealtimeSource supplies the live state of the buses on a route.
type RealtimeSource interface {
	GetRealtimeUpdates(ctx context.Context, routeRef string) ([]*ctdf.RealtimeUpdate, error)
}

type Planner struct {
	Network    transitnetwork.Network
	Calculator *routemetrics.Calculator
	Realtime   RealtimeSource

	MaxGoroutines int
}

func NewPlanner(network transitnetwork.Network, calculator *routemetrics.Calculator, realtime RealtimeSource) *Planner {
	return &Planner{
		Network:       network,
		Calculator:    calculator,
		Realtime:      realtime,
		MaxGoroutines: defaultMaxGoroutines,
	}
}

type candidates struct {
	index     int
	direct    []*ctdf.Itinerary
	transfers []*ctdf.Itinerary
}

// PlanTrip returns at most MaxItineraries ranked itineraries. Store failures
// degrade the result rather than fail the call, so an empty slice means no
// route was found.
func (p *Planner) PlanTrip(ctx context.Context, request ctdf.TripPlanRequest) []*ctdf.Itinerary {
	request.ApplyDefaults(time.Now())

	log.Info().
		Float64("originLat", request.Origin.Latitude).
		Float64("originLon", request.Origin.Longitude).
		Float64("destinationLat", request.Destination.Latitude).
		Float64("destinationLon", request.Destination.Longitude).
		Msg("Planning trip")

	radius := request.Preferences.MaxWalkingDistanceMeters

	originStops, err := p.Network.FindStopsNear(ctx, request.Origin, radius)
	if err != nil {
		log.Error().Err(err).Msg("Failed to find stops near origin")
		return []*ctdf.Itinerary{}
	}
	destinationStops, err := p.Network.FindStopsNear(ctx, request.Destination, radius)
	if err != nil {
		log.Error().Err(err).Msg("Failed to find stops near destination")
		return []*ctdf.Itinerary{}
	}

	if len(originStops) == 0 || len(destinationStops) == 0 {
		log.Warn().Msg("No nearby bus stops found for trip planning")
		return []*ctdf.Itinerary{}
	}

	maxGoroutines := p.MaxGoroutines
	if maxGoroutines < 1 {
		maxGoroutines = defaultMaxGoroutines
	}
	candidatePool := pool.NewWithResults[candidates]().WithMaxGoroutines(maxGoroutines)

	for index, originStop := range originStops {
		index := index
		originStop := originStop

		candidatePool.Go(func() candidates {
			return candidates{
				index:     index,
				direct:    p.findDirectItineraries(ctx, request, originStop, destinationStops),
				transfers: p.findTransferItineraries(ctx, request, originStop, destinationStops),
			}
		})
	}

	results := candidatePool.Wait()
	sort.Slice(results, func(i, j int) bool {
		return results[i].index < results[j].index
	})

	var itineraries []*ctdf.Itinerary
	for _, result := range results {
		itineraries = append(itineraries, result.direct...)
	}
	for _, result := range results {
		itineraries = append(itineraries, result.transfers...)
	}

	ranked := Rank(itineraries, request.Preferences)

	maxItineraries := p.Calculator.Config.MaxItineraries
	if len(ranked) > maxItineraries {
		ranked = ranked[:maxItineraries]
	}

	return ranked
}

// GetOptimalTrip returns the best ranked itinerary.
func (p *Planner) GetOptimalTrip(ctx context.Context, request ctdf.TripPlanRequest) (*ctdf.Itinerary, error) {
	itineraries := p.PlanTrip(ctx, request)
	if len(itineraries) == 0 {
		return nil, ErrNoItinerary
	}

	return itineraries[0], nil
}

func (p *Planner) findDirectItineraries(ctx context.Context, request ctdf.TripPlanRequest, originStop *ctdf.Stop, destinationStops []*ctdf.Stop) []*ctdf.Itinerary {
	var itineraries []*ctdf.Itinerary

	for _, destinationStop := range destinationStops {
		routes, err := p.Network.FindRoutesServingBoth(ctx, originStop, destinationStop)
		if err != nil {
			log.Error().Err(err).
				Str("origin", originStop.PrimaryIdentifier).
				Str("destination", destinationStop.PrimaryIdentifier).
				Msg("Failed to find routes serving stop pair")
			continue
		}

		for _, route := range routes {
			itinerary, err := p.buildDirectItinerary(request, route, originStop, destinationStop)
			if err != nil {
				log.Error().Err(err).Str("route", route.PrimaryIdentifier).Msg("Failed to build direct itinerary")
				continue
			}
			if itinerary != nil {
				itineraries = append(itineraries, itinerary)
			}
		}
	}

	return itineraries
}

func (p *Planner) findTransferItineraries(ctx context.Context, request ctdf.TripPlanRequest, originStop *ctdf.Stop, destinationStops []*ctdf.Stop) []*ctdf.Itinerary {
	var itineraries []*ctdf.Itinerary

	originRoutes, err := p.Network.FindRoutesServing(ctx, originStop)
	if err != nil {
		log.Error().Err(err).Str("stop", originStop.PrimaryIdentifier).Msg("Failed to find routes serving origin stop")
		return itineraries
	}

	for _, originRoute := range originRoutes {
		routeStops, err := p.Network.GetRouteStops(ctx, originRoute)
		if err != nil {
			log.Error().Err(err).Str("route", originRoute.PrimaryIdentifier).Msg("Failed to get route stops")
			continue
		}

		for _, transferStop := range routeStops {
			if transferStop.PrimaryIdentifier == originStop.PrimaryIdentifier {
				continue
			}

			connectingRoutes, err := p.Network.FindRoutesServing(ctx, transferStop)
			if err != nil {
				log.Error().Err(err).Str("stop", transferStop.PrimaryIdentifier).Msg("Failed to find routes serving transfer stop")
				continue
			}

			for _, connectingRoute := range connectingRoutes {
				if connectingRoute.PrimaryIdentifier == originRoute.PrimaryIdentifier {
					continue
				}

				finalStop := closestServedStop(connectingRoute, destinationStops, request.Destination)
				if finalStop == nil {
					continue
				}

				itinerary, err := p.buildTransferItinerary(request, originRoute, originStop, transferStop, connectingRoute, finalStop)
				if err != nil {
					log.Error().Err(err).
						Str("route", originRoute.PrimaryIdentifier).
						Str("connection", connectingRoute.PrimaryIdentifier).
						Msg("Failed to build transfer itinerary")
					continue
				}
				if itinerary != nil {
					itineraries = append(itineraries, itinerary)
				}
			}
		}
	}

	return itineraries
}

// closestServedStop picks the destination side stop on route nearest the
// destination. The transfer stop qualifies when it is itself near the
// destination.
func closestServedStop(route *ctdf.Route, destinationStops []*ctdf.Stop, destination geo.Point) *ctdf.Stop {
	var closest *ctdf.Stop
	var closestDistance float64

	for _, stop := range destinationStops {
		if !route.ServesStop(stop.PrimaryIdentifier) || stop.Location == nil {
			continue
		}

		distance := geo.HaversineDistanceMeters(stop.Point(), destination)
		if closest == nil || distance < closestDistance {
			closest = stop
			closestDistance = distance
		}
	}

	return closest
}

// buildDirectItinerary returns nil when the walking legs exceed the cap.
func (p *Planner) buildDirectItinerary(request ctdf.TripPlanRequest, route *ctdf.Route, originStop *ctdf.Stop, destinationStop *ctdf.Stop) (*ctdf.Itinerary, error) {
	if originStop.Location == nil || destinationStop.Location == nil {
		return nil, errMissingLocation
	}

	walkToStop := p.walkingSegment(request.Origin, originStop.Point(), request.DepartureTime, "Walk to bus stop")
	walkToStop.EndLocationName = originStop.PrimaryName

	bus := p.busSegment(route, originStop, destinationStop, walkToStop.EndTime)

	walkFromStop := p.walkingSegment(destinationStop.Point(), request.Destination, bus.EndTime, "Walk to destination")
	walkFromStop.StartLocationName = destinationStop.PrimaryName

	return p.newItinerary(request, []ctdf.Segment{walkToStop, bus, walkFromStop}), nil
}

func (p *Planner) buildTransferItinerary(request ctdf.TripPlanRequest,
	firstRoute *ctdf.Route, originStop *ctdf.Stop, transferStop *ctdf.Stop,
	secondRoute *ctdf.Route, destinationStop *ctdf.Stop) (*ctdf.Itinerary, error) {
	if originStop.Location == nil || transferStop.Location == nil || destinationStop.Location == nil {
		return nil, errMissingLocation
	}

	walkToFirst := p.walkingSegment(request.Origin, originStop.Point(), request.DepartureTime, "Walk to first bus stop")
	walkToFirst.EndLocationName = originStop.PrimaryName

	firstBus := p.busSegment(firstRoute, originStop, transferStop, walkToFirst.EndTime)
	transferWait := p.waitingSegment(transferStop, firstBus.EndTime)
	secondBus := p.busSegment(secondRoute, transferStop, destinationStop, transferWait.EndTime)

	walkFromFinal := p.walkingSegment(destinationStop.Point(), request.Destination, secondBus.EndTime, "Walk to destination")
	walkFromFinal.StartLocationName = destinationStop.PrimaryName

	return p.newItinerary(request, []ctdf.Segment{walkToFirst, firstBus, transferWait, secondBus, walkFromFinal}), nil
}

func (p *Planner) walkingSegment(start geo.Point, end geo.Point, startTime time.Time, instructions string) ctdf.Segment {
	distance := geo.HaversineDistanceMeters(start, end)
	minutes := p.Calculator.WalkingMinutes(distance)

	return ctdf.Segment{
		Type:                ctdf.SegmentTypeWalking,
		StartLocation:       start,
		EndLocation:         end,
		StartTime:           startTime,
		EndTime:             startTime.Add(time.Duration(minutes) * time.Minute),
		DurationMinutes:     minutes,
		DistanceMeters:      distance,
		WalkingInstructions: instructions,
	}
}

// busSegment models a partial ride as half the route's end to end time, after
// a fixed boarding wait that is counted in the segment duration.
func (p *Planner) busSegment(route *ctdf.Route, from *ctdf.Stop, to *ctdf.Stop, startTime time.Time) ctdf.Segment {
	wait := p.Calculator.Config.BoardingWaitMinutes
	travel := route.EstimatedTravelTimeMinutes / 2
	busStartTime := startTime.Add(time.Duration(wait) * time.Minute)

	return ctdf.Segment{
		Type:              ctdf.SegmentTypeBus,
		StartLocation:     from.Point(),
		EndLocation:       to.Point(),
		StartLocationName: from.PrimaryName,
		EndLocationName:   to.PrimaryName,
		StartTime:         busStartTime,
		EndTime:           busStartTime.Add(time.Duration(travel) * time.Minute),
		DurationMinutes:   wait + travel,
		DistanceMeters:    geo.HaversineDistanceMeters(from.Point(), to.Point()),
		Cost:              p.Calculator.Config.BusFare,
		RouteRef:          route.PrimaryIdentifier,
		RouteName:         route.Name,
	}
}

func (p *Planner) waitingSegment(stop *ctdf.Stop, startTime time.Time) ctdf.Segment {
	wait := p.Calculator.Config.TransferWaitMinutes

	return ctdf.Segment{
		Type:              ctdf.SegmentTypeWaiting,
		StartLocation:     stop.Point(),
		EndLocation:       stop.Point(),
		StartLocationName: stop.PrimaryName,
		EndLocationName:   stop.PrimaryName,
		StartTime:         startTime,
		EndTime:           startTime.Add(time.Duration(wait) * time.Minute),
		DurationMinutes:   wait,
	}
}

// newItinerary totals the segments, or returns nil when the walking legs are
// longer than the traveller allows.
func (p *Planner) newItinerary(request ctdf.TripPlanRequest, segments []ctdf.Segment) *ctdf.Itinerary {
	itinerary := &ctdf.Itinerary{
		ID:            uuid.NewString(),
		Segments:      segments,
		DepartureTime: request.DepartureTime,
	}
	recalculateTotals(itinerary)

	if itinerary.TotalWalkingDistanceMeters > request.Preferences.MaxWalkingDistanceMeters {
		return nil
	}

	itinerary.ArrivalTime = segments[len(segments)-1].EndTime
	itinerary.TransferCount = itinerary.CountSegments(ctdf.SegmentTypeWaiting)
	itinerary.RouteType = routeType(itinerary)
	itinerary.ConfidenceScore = confidenceScore(itinerary)

	return itinerary
}

func recalculateTotals(itinerary *ctdf.Itinerary) {
	itinerary.TotalTravelTimeMinutes = 0
	itinerary.TotalCost = 0

	for _, segment := range itinerary.Segments {
		itinerary.TotalTravelTimeMinutes += segment.DurationMinutes
		itinerary.TotalCost += segment.Cost
	}

	itinerary.TotalWalkingDistanceMeters = itinerary.WalkingDistanceMeters()
}
