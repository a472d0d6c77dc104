// Package transitnetwork defines the read interface the planner and the
// route analysis use to query stops, routes and buses.
package transitnetwork

import (
	"context"
	"errors"

	"github.com/travigo/routeplanner/pkg/ctdf"
	"github.com/travigo/routeplanner/pkg/geo"
)

// NearbyStopLimit caps FindStopsNear results.
const NearbyStopLimit = 10

var ErrNotFound = errors.New("could not find a matching record")

type Network interface {
	// FindStopsNear returns active stops inside BufferPoint(point, radiusMeters), nearest first.
	FindStopsNear(ctx context.Context, point geo.Point, radiusMeters float64) ([]*ctdf.Stop, error)
	// FindRoutesServing returns active routes that call at stop.
	FindRoutesServing(ctx context.Context, stop *ctdf.Stop) ([]*ctdf.Route, error)
	// FindRoutesServingBoth returns active routes that call at both stops.
	FindRoutesServingBoth(ctx context.Context, stopA *ctdf.Stop, stopB *ctdf.Stop) ([]*ctdf.Route, error)

	CountStopsWithin(ctx context.Context, region geo.Region) (int, error)
	CountAllStops(ctx context.Context) (int, error)

	GetStop(ctx context.Context, identifier string) (*ctdf.Stop, error)
	GetRoute(ctx context.Context, identifier string) (*ctdf.Route, error)
	// GetRouteStops returns the route's stops in route order, skipping unknown refs.
	GetRouteStops(ctx context.Context, route *ctdf.Route) ([]*ctdf.Stop, error)

	GetBusesOnRoute(ctx context.Context, routeRef string) ([]*ctdf.Bus, error)
}

// BusTracker records live vehicle positions.
type BusTracker interface {
	UpdateBusLocation(ctx context.Context, busRef string, routeRef string, location geo.Point) error
}
