package planner

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/travigo/routeplanner/pkg/ctdf"
	"github.com/travigo/routeplanner/pkg/geo"
	"github.com/travigo/routeplanner/pkg/routemetrics"
	"github.com/travigo/routeplanner/pkg/transitnetwork"
)

var departure = time.Date(2026, time.January, 12, 8, 0, 0, 0, time.UTC)

var (
	origin      = geo.NewPoint(51.5000, -0.1000)
	destination = geo.NewPoint(51.5500, -0.1000)
)

func stop(identifier string, lat float64, lon float64) *ctdf.Stop {
	return &ctdf.Stop{
		PrimaryIdentifier: identifier,
		PrimaryName:       identifier + " Stop",
		Location:          ctdf.NewLocation(geo.NewPoint(lat, lon)),
		Active:            true,
	}
}

func route(identifier string, travelTime int, stopRefs ...string) *ctdf.Route {
	return &ctdf.Route{
		PrimaryIdentifier:          identifier,
		Name:                       "Route " + identifier,
		StopRefs:                   stopRefs,
		EstimatedTravelTimeMinutes: travelTime,
		Active:                     true,
	}
}

func newTestPlanner(network transitnetwork.Network, realtime RealtimeSource) *Planner {
	return NewPlanner(network, routemetrics.NewCalculator(routemetrics.DefaultConfig()), realtime)
}

func request(preferences ctdf.Preferences) ctdf.TripPlanRequest {
	return ctdf.TripPlanRequest{
		Origin:        origin,
		Destination:   destination,
		DepartureTime: departure,
		Preferences:   preferences,
	}
}

func directNetwork() *transitnetwork.Memory {
	return transitnetwork.NewMemory(
		[]*ctdf.Stop{
			stop("S1", 51.5018, -0.1000),
			stop("S2", 51.5482, -0.1000),
		},
		[]*ctdf.Route{route("R1", 30, "S1", "S2")},
		nil,
	)
}

func transferNetwork() *transitnetwork.Memory {
	return transitnetwork.NewMemory(
		[]*ctdf.Stop{
			stop("S1", 51.5018, -0.1000),
			stop("T", 51.5250, -0.1000),
			stop("S2", 51.5482, -0.1000),
		},
		[]*ctdf.Route{
			route("RA", 20, "S1", "T"),
			route("RB", 30, "T", "S2"),
		},
		nil,
	)
}

func TestPlanTripDirect(t *testing.T) {
	assert := assert.New(t)

	itineraries := newTestPlanner(directNetwork(), nil).PlanTrip(context.Background(), request(ctdf.DefaultPreferences()))
	assert.Len(itineraries, 1)

	itinerary := itineraries[0]
	assert.NotEmpty(itinerary.ID)
	assert.Len(itinerary.Segments, 3)
	assert.Equal(0, itinerary.TransferCount)
	assert.Equal(ctdf.RouteTypeDirect, itinerary.RouteType)
	assert.Equal(1.0, itinerary.ConfidenceScore)
	assert.Equal(2.5, itinerary.TotalCost)

	walkTo, bus, walkFrom := itinerary.Segments[0], itinerary.Segments[1], itinerary.Segments[2]

	assert.Equal(ctdf.SegmentTypeWalking, walkTo.Type)
	assert.Equal("Walk to bus stop", walkTo.WalkingInstructions)
	assert.Equal(departure, walkTo.StartTime)
	assert.Equal(3, walkTo.DurationMinutes)

	assert.Equal(ctdf.SegmentTypeBus, bus.Type)
	assert.Equal("R1", bus.RouteRef)
	assert.Equal("Route R1", bus.RouteName)
	assert.Equal("S1 Stop", bus.StartLocationName)
	assert.Equal("S2 Stop", bus.EndLocationName)
	assert.Equal(departure.Add(8*time.Minute), bus.StartTime)
	assert.Equal(departure.Add(23*time.Minute), bus.EndTime)
	assert.Equal(20, bus.DurationMinutes)
	assert.InDelta(5160, bus.DistanceMeters, 5)

	assert.Equal("Walk to destination", walkFrom.WalkingInstructions)
	assert.Equal(3, walkFrom.DurationMinutes)

	assert.Equal(26, itinerary.TotalTravelTimeMinutes)
	assert.Equal(departure, itinerary.DepartureTime)
	assert.Equal(departure.Add(26*time.Minute), itinerary.ArrivalTime)
	assert.InDelta(400, itinerary.TotalWalkingDistanceMeters, 1)
}

func TestPlanTripTransfer(t *testing.T) {
	assert := assert.New(t)

	itineraries := newTestPlanner(transferNetwork(), nil).PlanTrip(context.Background(), request(ctdf.DefaultPreferences()))
	assert.Len(itineraries, 1)

	itinerary := itineraries[0]
	assert.Len(itinerary.Segments, 5)
	assert.Equal(1, itinerary.TransferCount)
	assert.Equal(ctdf.RouteTypeTransfer, itinerary.RouteType)
	assert.Equal(5.0, itinerary.TotalCost)
	assert.Equal(46, itinerary.TotalTravelTimeMinutes)
	assert.InDelta(0.81, itinerary.ConfidenceScore, 1e-9)

	assert.Equal("Walk to first bus stop", itinerary.Segments[0].WalkingInstructions)
	assert.Equal("RA", itinerary.Segments[1].RouteRef)

	wait := itinerary.Segments[2]
	assert.Equal(ctdf.SegmentTypeWaiting, wait.Type)
	assert.Equal(5, wait.DurationMinutes)
	assert.Equal(0.0, wait.Cost)
	assert.Equal("T Stop", wait.StartLocationName)
	assert.Equal(itinerary.Segments[1].EndTime, wait.StartTime)

	assert.Equal("RB", itinerary.Segments[3].RouteRef)
	assert.Equal(wait.EndTime.Add(5*time.Minute), itinerary.Segments[3].StartTime)
	assert.Equal(itinerary.Segments[4].EndTime, itinerary.ArrivalTime)
}

func TestClosestServedStopIncludesTransferStop(t *testing.T) {
	transfer := stop("T", 51.5490, -0.1000)
	further := stop("S2", 51.5440, -0.1000)
	unserved := stop("S3", 51.5500, -0.1000)

	connecting := route("RB", 30, "T", "S2")

	assert.Equal(t, transfer, closestServedStop(connecting, []*ctdf.Stop{further, transfer, unserved}, destination))
	assert.Equal(t, further, closestServedStop(connecting, []*ctdf.Stop{further, unserved}, destination))
	assert.Nil(t, closestServedStop(connecting, []*ctdf.Stop{unserved}, destination))
}

func TestPlanTripWalkingCap(t *testing.T) {
	preferences := ctdf.DefaultPreferences()
	preferences.MaxWalkingDistanceMeters = 300

	itineraries := newTestPlanner(directNetwork(), nil).PlanTrip(context.Background(), request(preferences))
	assert.NotNil(t, itineraries)
	assert.Empty(t, itineraries)
}

func TestPlanTripNoStops(t *testing.T) {
	planner := newTestPlanner(directNetwork(), nil)

	tripRequest := request(ctdf.DefaultPreferences())
	tripRequest.Origin = geo.NewPoint(10, 10)

	itineraries := planner.PlanTrip(context.Background(), tripRequest)
	assert.NotNil(t, itineraries)
	assert.Empty(t, itineraries)

	_, err := planner.GetOptimalTrip(context.Background(), tripRequest)
	assert.ErrorIs(t, err, ErrNoItinerary)
}

func TestPlanTripTopThree(t *testing.T) {
	assert := assert.New(t)

	var routes []*ctdf.Route
	for _, travelTime := range []int{50, 10, 40, 20, 30} {
		routes = append(routes, route(fmt.Sprintf("R%d", travelTime), travelTime, "S1", "S2"))
	}
	network := transitnetwork.NewMemory(
		[]*ctdf.Stop{stop("S1", 51.5018, -0.1000), stop("S2", 51.5482, -0.1000)},
		routes,
		nil,
	)

	itineraries := newTestPlanner(network, nil).PlanTrip(context.Background(), request(ctdf.DefaultPreferences()))
	assert.Len(itineraries, 3)
	assert.Equal("R10", itineraries[0].Segments[1].RouteRef)
	assert.Equal("R20", itineraries[1].Segments[1].RouteRef)
	assert.Equal("R30", itineraries[2].Segments[1].RouteRef)

	optimal, err := newTestPlanner(network, nil).GetOptimalTrip(context.Background(), request(ctdf.DefaultPreferences()))
	assert.Nil(err)
	assert.Equal("R10", optimal.Segments[1].RouteRef)
}

type failingNetwork struct {
	*transitnetwork.Memory
}

func (f failingNetwork) FindRoutesServingBoth(ctx context.Context, stopA *ctdf.Stop, stopB *ctdf.Stop) ([]*ctdf.Route, error) {
	return nil, errors.New("store unavailable")
}

func TestPlanTripStoreErrorsDegrade(t *testing.T) {
	itineraries := newTestPlanner(failingNetwork{directNetwork()}, nil).PlanTrip(context.Background(), request(ctdf.DefaultPreferences()))
	assert.NotNil(t, itineraries)
	assert.Empty(t, itineraries)
}

func TestPlanTripAppliesDefaults(t *testing.T) {
	tripRequest := ctdf.TripPlanRequest{Origin: origin, Destination: destination}

	itineraries := newTestPlanner(directNetwork(), nil).PlanTrip(context.Background(), tripRequest)
	assert.Len(t, itineraries, 1)
	assert.False(t, itineraries[0].DepartureTime.IsZero())
}

func TestParseCoordinates(t *testing.T) {
	point, err := parseCoordinates("51.5, -0.1")
	assert.NoError(t, err)
	assert.Equal(t, geo.NewPoint(51.5, -0.1), point)

	_, err = parseCoordinates("51.5")
	assert.Error(t, err)

	_, err = parseCoordinates("north,-0.1")
	assert.Error(t, err)
}
