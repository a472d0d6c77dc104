package dataimporter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/paulcager/osgridref"
	"github.com/travigo/routeplanner/pkg/ctdf"
	"github.com/travigo/routeplanner/pkg/geo"
)

type StopRecord struct {
	ID         string `csv:"id"`
	Name       string `csv:"name"`
	Latitude   string `csv:"lat"`
	Longitude  string `csv:"lon"`
	Easting    string `csv:"easting"`
	Northing   string `csv:"northing"`
	Zone       string `csv:"zone"`
	Accessible string `csv:"accessible"`
	Active     string `csv:"active"`
}

// Point falls back to the OS grid reference when no coordinates are given.
func (r *StopRecord) Point() (geo.Point, error) {
	if r.Latitude != "" && r.Longitude != "" {
		latitude, err := strconv.ParseFloat(r.Latitude, 64)
		if err != nil {
			return geo.Point{}, fmt.Errorf("stop %s latitude: %w", r.ID, err)
		}
		longitude, err := strconv.ParseFloat(r.Longitude, 64)
		if err != nil {
			return geo.Point{}, fmt.Errorf("stop %s longitude: %w", r.ID, err)
		}

		return geo.NewPoint(latitude, longitude), nil
	}

	if r.Easting == "" || r.Northing == "" {
		return geo.Point{}, fmt.Errorf("stop %s has no location", r.ID)
	}

	gridRef, err := osgridref.ParseOsGridRef(fmt.Sprintf("%s,%s", r.Easting, r.Northing))
	if err != nil {
		return geo.Point{}, fmt.Errorf("stop %s grid reference: %w", r.ID, err)
	}

	latitude, longitude := gridRef.ToLatLon()

	return geo.NewPoint(latitude, longitude), nil
}

func (r *StopRecord) ToCTDF(now time.Time) (*ctdf.Stop, error) {
	if r.ID == "" {
		return nil, fmt.Errorf("stop record is missing an id")
	}

	point, err := r.Point()
	if err != nil {
		return nil, err
	}

	return &ctdf.Stop{
		PrimaryIdentifier:    r.ID,
		PrimaryName:          r.Name,
		Location:             ctdf.NewLocation(point),
		ZoneType:             r.Zone,
		Accessible:           parseFlag(r.Accessible, false),
		Active:               parseFlag(r.Active, true),
		CreationDateTime:     now,
		ModificationDateTime: now,
	}, nil
}

type RouteRecord struct {
	ID         string `csv:"id"`
	Code       string `csv:"code"`
	Name       string `csv:"name"`
	Stops      string `csv:"stops"`
	TravelTime string `csv:"travel_time"`
	Cost       string `csv:"cost"`
	Active     string `csv:"active"`
}

func (r *RouteRecord) ToCTDF(now time.Time) (*ctdf.Route, error) {
	if r.ID == "" {
		return nil, fmt.Errorf("route record is missing an id")
	}

	travelTime, err := parseNumber(r.TravelTime, strconv.Atoi)
	if err != nil {
		return nil, fmt.Errorf("route %s travel time: %w", r.ID, err)
	}
	cost, err := parseNumber(r.Cost, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
	if err != nil {
		return nil, fmt.Errorf("route %s cost: %w", r.ID, err)
	}

	var stopRefs []string
	for _, stopRef := range strings.Split(r.Stops, ";") {
		if stopRef = strings.TrimSpace(stopRef); stopRef != "" {
			stopRefs = append(stopRefs, stopRef)
		}
	}

	return &ctdf.Route{
		PrimaryIdentifier:          r.ID,
		Code:                       r.Code,
		Name:                       r.Name,
		StopRefs:                   stopRefs,
		EstimatedTravelTimeMinutes: travelTime,
		OperationalCost:            cost,
		Active:                     parseFlag(r.Active, true),
		CreationDateTime:           now,
		ModificationDateTime:       now,
	}, nil
}

type BusRecord struct {
	ID       string `csv:"id"`
	Ref      string `csv:"ref"`
	Capacity string `csv:"capacity"`
	Type     string `csv:"type"`
	Route    string `csv:"route"`
	Active   string `csv:"active"`
}

func (r *BusRecord) ToCTDF() (*ctdf.Bus, error) {
	if r.ID == "" {
		return nil, fmt.Errorf("bus record is missing an id")
	}

	capacity, err := parseNumber(r.Capacity, strconv.Atoi)
	if err != nil {
		return nil, fmt.Errorf("bus %s capacity: %w", r.ID, err)
	}

	return &ctdf.Bus{
		PrimaryIdentifier: r.ID,
		RefNumber:         r.Ref,
		Capacity:          capacity,
		BusType:           r.Type,
		CurrentRouteRef:   r.Route,
		Active:            parseFlag(r.Active, true),
	}, nil
}

func parseFlag(value string, defaultValue bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return defaultValue
	case "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}

// parseNumber treats an empty column as zero.
func parseNumber[T int | float64](value string, parse func(string) (T, error)) (T, error) {
	if value = strings.TrimSpace(value); value == "" {
		return 0, nil
	}

	return parse(value)
}
