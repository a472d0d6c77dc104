package transitnetwork

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/travigo/routeplanner/pkg/ctdf"
	"github.com/travigo/routeplanner/pkg/geo"
)

// Memory is an in-process Network, used by tests and the offline CLI commands.
type Memory struct {
	lock sync.RWMutex

	stops  map[string]*ctdf.Stop
	routes []*ctdf.Route
	buses  map[string]*ctdf.Bus
}

func NewMemory(stops []*ctdf.Stop, routes []*ctdf.Route, buses []*ctdf.Bus) *Memory {
	m := &Memory{
		stops:  map[string]*ctdf.Stop{},
		routes: routes,
		buses:  map[string]*ctdf.Bus{},
	}

	for _, stop := range stops {
		m.stops[stop.PrimaryIdentifier] = stop
	}
	for _, bus := range buses {
		m.buses[bus.PrimaryIdentifier] = bus
	}

	return m
}

func (m *Memory) FindStopsNear(ctx context.Context, point geo.Point, radiusMeters float64) ([]*ctdf.Stop, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	searchArea := geo.BufferPoint(point, radiusMeters)

	var stops []*ctdf.Stop
	for _, stop := range m.stops {
		if stop.Active && searchArea.Contains(stop.Point()) {
			stops = append(stops, stop)
		}
	}

	sort.Slice(stops, func(i, j int) bool {
		di := geo.HaversineDistanceMeters(point, stops[i].Point())
		dj := geo.HaversineDistanceMeters(point, stops[j].Point())
		if di == dj {
			return stops[i].PrimaryIdentifier < stops[j].PrimaryIdentifier
		}
		return di < dj
	})

	if len(stops) > NearbyStopLimit {
		stops = stops[:NearbyStopLimit]
	}

	return stops, nil
}

func (m *Memory) FindRoutesServing(ctx context.Context, stop *ctdf.Stop) ([]*ctdf.Route, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	var routes []*ctdf.Route
	for _, route := range m.routes {
		if route.Active && route.ServesStop(stop.PrimaryIdentifier) {
			routes = append(routes, route)
		}
	}

	return routes, nil
}

func (m *Memory) FindRoutesServingBoth(ctx context.Context, stopA *ctdf.Stop, stopB *ctdf.Stop) ([]*ctdf.Route, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	var routes []*ctdf.Route
	for _, route := range m.routes {
		if route.Active && route.ServesStop(stopA.PrimaryIdentifier) && route.ServesStop(stopB.PrimaryIdentifier) {
			routes = append(routes, route)
		}
	}

	return routes, nil
}

func (m *Memory) CountStopsWithin(ctx context.Context, region geo.Region) (int, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	count := 0
	for _, stop := range m.stops {
		if region.Contains(stop.Point()) {
			count++
		}
	}

	return count, nil
}

func (m *Memory) CountAllStops(ctx context.Context) (int, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	return len(m.stops), nil
}

func (m *Memory) GetStop(ctx context.Context, identifier string) (*ctdf.Stop, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	stop, exists := m.stops[identifier]
	if !exists {
		return nil, ErrNotFound
	}

	return stop, nil
}

func (m *Memory) GetRoute(ctx context.Context, identifier string) (*ctdf.Route, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	for _, route := range m.routes {
		if route.PrimaryIdentifier == identifier {
			return route, nil
		}
	}

	return nil, ErrNotFound
}

func (m *Memory) GetRouteStops(ctx context.Context, route *ctdf.Route) ([]*ctdf.Stop, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	stops := make([]*ctdf.Stop, 0, len(route.StopRefs))
	for _, stopRef := range route.StopRefs {
		if stop, exists := m.stops[stopRef]; exists {
			stops = append(stops, stop)
		}
	}

	return stops, nil
}

func (m *Memory) GetBusesOnRoute(ctx context.Context, routeRef string) ([]*ctdf.Bus, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	var buses []*ctdf.Bus
	for _, bus := range m.buses {
		if bus.Active && bus.CurrentRouteRef == routeRef {
			buses = append(buses, bus)
		}
	}

	sort.Slice(buses, func(i, j int) bool {
		return buses[i].PrimaryIdentifier < buses[j].PrimaryIdentifier
	})

	return buses, nil
}

func (m *Memory) UpdateBusLocation(ctx context.Context, busRef string, routeRef string, location geo.Point) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	bus, exists := m.buses[busRef]
	if !exists {
		bus = &ctdf.Bus{PrimaryIdentifier: busRef, Active: true}
		m.buses[busRef] = bus
	}

	bus.CurrentRouteRef = routeRef
	bus.CurrentLocation = ctdf.NewLocation(location)
	bus.LocationUpdated = time.Now()

	return nil
}

// Stops returns every stop, ordered by identifier.
func (m *Memory) Stops() []*ctdf.Stop {
	m.lock.RLock()
	defer m.lock.RUnlock()

	stops := make([]*ctdf.Stop, 0, len(m.stops))
	for _, stop := range m.stops {
		stops = append(stops, stop)
	}

	sort.Slice(stops, func(i, j int) bool {
		return stops[i].PrimaryIdentifier < stops[j].PrimaryIdentifier
	})

	return stops
}

func (m *Memory) Routes() []*ctdf.Route {
	m.lock.RLock()
	defer m.lock.RUnlock()

	return append([]*ctdf.Route(nil), m.routes...)
}
