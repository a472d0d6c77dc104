package transitnetwork

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/travigo/routeplanner/pkg/ctdf"
	"github.com/travigo/routeplanner/pkg/geo"
)

func TestMemoryFindStopsNear(t *testing.T) {
	assert := assert.New(t)
	network := testNetwork()

	stops, err := network.FindStopsNear(context.Background(), geo.NewPoint(51.5009, -0.1000), 800)
	assert.Nil(err)
	assert.Len(stops, 2)
	assert.Equal("stop-b", stops[0].PrimaryIdentifier)
	assert.Equal("stop-a", stops[1].PrimaryIdentifier)

	stops, err = network.FindStopsNear(context.Background(), geo.NewPoint(10, 10), 800)
	assert.Nil(err)
	assert.Empty(stops)
}

func TestMemoryFindStopsNearLimit(t *testing.T) {
	var stops []*ctdf.Stop
	for i := 0; i < 15; i++ {
		stops = append(stops, testStop(fmt.Sprintf("stop-%02d", i), 51.5+float64(i)*0.0001, -0.1, true))
	}
	network := NewMemory(stops, nil, nil)

	found, err := network.FindStopsNear(context.Background(), geo.NewPoint(51.5, -0.1), 5000)
	assert.Nil(t, err)
	assert.Len(t, found, NearbyStopLimit)
	assert.Equal(t, "stop-00", found[0].PrimaryIdentifier)
	assert.Equal(t, "stop-09", found[9].PrimaryIdentifier)
}

func TestMemoryRoutes(t *testing.T) {
	assert := assert.New(t)
	network := testNetwork()
	ctx := context.Background()

	stopA, _ := network.GetStop(ctx, "stop-a")
	stopB, _ := network.GetStop(ctx, "stop-b")
	stopC, _ := network.GetStop(ctx, "stop-c")

	routes, err := network.FindRoutesServing(ctx, stopC)
	assert.Nil(err)
	assert.Len(routes, 2)

	routes, err = network.FindRoutesServingBoth(ctx, stopA, stopC)
	assert.Nil(err)
	assert.Len(routes, 1)
	assert.Equal("route-1", routes[0].PrimaryIdentifier)

	routes, err = network.FindRoutesServingBoth(ctx, stopA, stopB)
	assert.Nil(err)
	assert.Empty(routes)

	route, err := network.GetRoute(ctx, "route-2")
	assert.Nil(err)
	routeStops, err := network.GetRouteStops(ctx, route)
	assert.Nil(err)
	assert.Len(routeStops, 2)
	assert.Equal("stop-b", routeStops[0].PrimaryIdentifier)

	_, err = network.GetRoute(ctx, "missing")
	assert.ErrorIs(err, ErrNotFound)
	_, err = network.GetStop(ctx, "missing")
	assert.ErrorIs(err, ErrNotFound)
}

func TestMemoryCounts(t *testing.T) {
	assert := assert.New(t)
	network := testNetwork()
	ctx := context.Background()

	total, err := network.CountAllStops(ctx)
	assert.Nil(err)
	assert.Equal(4, total)

	within, err := network.CountStopsWithin(ctx, geo.BufferPoint(geo.NewPoint(51.5, -0.1), 500))
	assert.Nil(err)
	assert.Equal(3, within)
}

func TestMemoryBuses(t *testing.T) {
	assert := assert.New(t)
	network := testNetwork()
	ctx := context.Background()

	buses, err := network.GetBusesOnRoute(ctx, "route-1")
	assert.Nil(err)
	assert.Len(buses, 1)

	err = network.UpdateBusLocation(ctx, "bus-3", "route-1", geo.NewPoint(51.52, -0.1))
	assert.Nil(err)

	buses, err = network.GetBusesOnRoute(ctx, "route-1")
	assert.Nil(err)
	assert.Len(buses, 2)
	assert.Equal("bus-3", buses[1].PrimaryIdentifier)
	assert.Equal(51.52, buses[1].CurrentLocation.Point().Latitude)
}
