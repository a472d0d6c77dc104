package transitnetwork

import (
	"github.com/travigo/routeplanner/pkg/ctdf"
	"github.com/travigo/routeplanner/pkg/geo"
)

func testStop(identifier string, lat float64, lon float64, active bool) *ctdf.Stop {
	return &ctdf.Stop{
		PrimaryIdentifier: identifier,
		PrimaryName:       identifier,
		Location:          ctdf.NewLocation(geo.NewPoint(lat, lon)),
		Active:            active,
	}
}

func testNetwork() *Memory {
	stops := []*ctdf.Stop{
		testStop("stop-a", 51.5000, -0.1000, true),
		testStop("stop-b", 51.5010, -0.1000, true),
		testStop("stop-c", 51.5500, -0.1000, true),
		testStop("stop-inactive", 51.5001, -0.1000, false),
	}

	routes := []*ctdf.Route{
		{PrimaryIdentifier: "route-1", Name: "1", StopRefs: []string{"stop-a", "stop-c"}, EstimatedTravelTimeMinutes: 20, Active: true},
		{PrimaryIdentifier: "route-2", Name: "2", StopRefs: []string{"stop-b", "stop-c"}, EstimatedTravelTimeMinutes: 30, Active: true},
		{PrimaryIdentifier: "route-3", Name: "3", StopRefs: []string{"stop-a", "stop-c"}, Active: false},
	}

	buses := []*ctdf.Bus{
		{PrimaryIdentifier: "bus-1", CurrentRouteRef: "route-1", Active: true},
		{PrimaryIdentifier: "bus-2", CurrentRouteRef: "route-1", Active: false},
	}

	return NewMemory(stops, routes, buses)
}
