package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/travigo/routeplanner/pkg/ctdf"
	"github.com/travigo/routeplanner/pkg/geo"
	"github.com/travigo/routeplanner/pkg/transitnetwork"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TransitNetwork reads stops, routes and buses from MongoDB.
type TransitNetwork struct{}

func NewTransitNetwork() *TransitNetwork {
	return &TransitNetwork{}
}

func nearQuery(point geo.Point, radiusMeters float64) bson.M {
	return bson.M{
		"active": true,
		"location.coordinates": bson.M{
			"$near":        bson.A{point.Longitude, point.Latitude},
			"$maxDistance": geo.MetresToDegrees(radiusMeters),
		},
	}
}

func boxQuery(bounds geo.Bounds) bson.M {
	return bson.M{
		"location.coordinates": bson.M{
			"$geoWithin": bson.M{
				"$box": bson.A{
					bson.A{bounds.MinLongitude, bounds.MinLatitude},
					bson.A{bounds.MaxLongitude, bounds.MaxLatitude},
				},
			},
		},
	}
}

func routesServingQuery(stopRefs ...string) bson.M {
	if len(stopRefs) == 1 {
		return bson.M{"active": true, "stoprefs": stopRefs[0]}
	}

	return bson.M{"active": true, "stoprefs": bson.M{"$all": stopRefs}}
}

func (n *TransitNetwork) FindStopsNear(ctx context.Context, point geo.Point, radiusMeters float64) ([]*ctdf.Stop, error) {
	opts := options.Find().SetLimit(transitnetwork.NearbyStopLimit)

	cursor, err := GetCollection(StopsCollection).Find(ctx, nearQuery(point, radiusMeters), opts)
	if err != nil {
		return nil, fmt.Errorf("find stops near: %w", err)
	}

	var stops []*ctdf.Stop
	if err := cursor.All(ctx, &stops); err != nil {
		return nil, fmt.Errorf("decode stops: %w", err)
	}

	return stops, nil
}

func (n *TransitNetwork) FindRoutesServing(ctx context.Context, stop *ctdf.Stop) ([]*ctdf.Route, error) {
	return findRoutes(ctx, routesServingQuery(stop.PrimaryIdentifier))
}

func (n *TransitNetwork) FindRoutesServingBoth(ctx context.Context, stopA *ctdf.Stop, stopB *ctdf.Stop) ([]*ctdf.Route, error) {
	return findRoutes(ctx, routesServingQuery(stopA.PrimaryIdentifier, stopB.PrimaryIdentifier))
}

func findRoutes(ctx context.Context, query bson.M) ([]*ctdf.Route, error) {
	cursor, err := GetCollection(RoutesCollection).Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find routes: %w", err)
	}

	var routes []*ctdf.Route
	if err := cursor.All(ctx, &routes); err != nil {
		return nil, fmt.Errorf("decode routes: %w", err)
	}

	return routes, nil
}

// CountStopsWithin pre-filters on the region's envelope in Mongo and applies
// the exact containment test to the candidates.
func (n *TransitNetwork) CountStopsWithin(ctx context.Context, region geo.Region) (int, error) {
	cursor, err := GetCollection(StopsCollection).Find(ctx, boxQuery(region.Bounds()))
	if err != nil {
		return 0, fmt.Errorf("find stops within: %w", err)
	}
	defer cursor.Close(ctx)

	count := 0
	for cursor.Next(ctx) {
		var stop ctdf.Stop
		if err := cursor.Decode(&stop); err != nil {
			return 0, fmt.Errorf("decode stop: %w", err)
		}

		if region.Contains(stop.Point()) {
			count++
		}
	}

	return count, cursor.Err()
}

func (n *TransitNetwork) CountAllStops(ctx context.Context) (int, error) {
	count, err := GetCollection(StopsCollection).CountDocuments(ctx, bson.M{})

	return int(count), err
}

func (n *TransitNetwork) GetStop(ctx context.Context, identifier string) (*ctdf.Stop, error) {
	var stop *ctdf.Stop
	err := GetCollection(StopsCollection).FindOne(ctx, bson.M{"primaryidentifier": identifier}).Decode(&stop)

	return stop, notFound(err)
}

func (n *TransitNetwork) GetRoute(ctx context.Context, identifier string) (*ctdf.Route, error) {
	var route *ctdf.Route
	err := GetCollection(RoutesCollection).FindOne(ctx, bson.M{"primaryidentifier": identifier}).Decode(&route)

	return route, notFound(err)
}

func (n *TransitNetwork) GetRouteStops(ctx context.Context, route *ctdf.Route) ([]*ctdf.Stop, error) {
	cursor, err := GetCollection(StopsCollection).Find(ctx, bson.M{"primaryidentifier": bson.M{"$in": route.StopRefs}})
	if err != nil {
		return nil, fmt.Errorf("find route stops: %w", err)
	}

	var stops []*ctdf.Stop
	if err := cursor.All(ctx, &stops); err != nil {
		return nil, fmt.Errorf("decode route stops: %w", err)
	}

	return orderByRefs(stops, route.StopRefs), nil
}

func orderByRefs(stops []*ctdf.Stop, stopRefs []string) []*ctdf.Stop {
	stopsByRef := map[string]*ctdf.Stop{}
	for _, stop := range stops {
		stopsByRef[stop.PrimaryIdentifier] = stop
	}

	ordered := make([]*ctdf.Stop, 0, len(stopRefs))
	for _, stopRef := range stopRefs {
		if stop, exists := stopsByRef[stopRef]; exists {
			ordered = append(ordered, stop)
		}
	}

	return ordered
}

func (n *TransitNetwork) GetBusesOnRoute(ctx context.Context, routeRef string) ([]*ctdf.Bus, error) {
	cursor, err := GetCollection(BusesCollection).Find(ctx, bson.M{"currentrouteref": routeRef, "active": true})
	if err != nil {
		return nil, fmt.Errorf("find buses: %w", err)
	}

	var buses []*ctdf.Bus
	if err := cursor.All(ctx, &buses); err != nil {
		return nil, fmt.Errorf("decode buses: %w", err)
	}

	sort.Slice(buses, func(i, j int) bool {
		return buses[i].PrimaryIdentifier < buses[j].PrimaryIdentifier
	})

	return buses, nil
}

func (n *TransitNetwork) UpdateBusLocation(ctx context.Context, busRef string, routeRef string, location geo.Point) error {
	opts := options.Update().SetUpsert(true)

	_, err := GetCollection(BusesCollection).UpdateOne(ctx, bson.M{"primaryidentifier": busRef}, bson.M{
		"$set": bson.M{
			"currentrouteref": routeRef,
			"currentlocation": ctdf.NewLocation(location),
			"locationupdated": time.Now(),
		},
		"$setOnInsert": bson.M{
			"active": true,
		},
	}, opts)

	return err
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return transitnetwork.ErrNotFound
	}

	return err
}

// AllStops returns every stop, for exports and offline tooling.
func (n *TransitNetwork) AllStops(ctx context.Context) ([]*ctdf.Stop, error) {
	cursor, err := GetCollection(StopsCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find stops: %w", err)
	}

	var stops []*ctdf.Stop
	if err := cursor.All(ctx, &stops); err != nil {
		return nil, fmt.Errorf("decode stops: %w", err)
	}

	return stops, nil
}

func (n *TransitNetwork) AllRoutes(ctx context.Context) ([]*ctdf.Route, error) {
	return findRoutes(ctx, bson.M{})
}

func (n *TransitNetwork) AllBuses(ctx context.Context) ([]*ctdf.Bus, error) {
	cursor, err := GetCollection(BusesCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find buses: %w", err)
	}

	var buses []*ctdf.Bus
	if err := cursor.All(ctx, &buses); err != nil {
		return nil, fmt.Errorf("decode buses: %w", err)
	}

	return buses, nil
}
