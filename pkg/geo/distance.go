// Package geo holds the spherical and planar helpers used for stop lookups,
// walking legs and route coverage. Every function here is pure.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// MetresPerDegree converts a metre radius into a degree radius. It ignores latitude,
// which is good enough for a city sized service area but is not geodesically exact.
const MetresPerDegree = 111000.0

type Point struct {
	Latitude  float64 `json:"latitude" bson:"latitude" validate:"latitude" groups:"basic,detailed"`
	Longitude float64 `json:"longitude" bson:"longitude" validate:"longitude" groups:"basic,detailed"`
}

func NewPoint(latitude float64, longitude float64) Point {
	return Point{Latitude: latitude, Longitude: longitude}
}

// HaversineDistanceKm returns the great-circle distance between a and b in kilometres.
func HaversineDistanceKm(a Point, b Point) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := lat2 - lat1
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

// HaversineDistanceMeters is HaversineDistanceKm scaled to metres.
func HaversineDistanceMeters(a Point, b Point) float64 {
	return HaversineDistanceKm(a, b) * 1000
}

// MetresToDegrees applies the fixed MetresPerDegree approximation.
func MetresToDegrees(metres float64) float64 {
	return metres / MetresPerDegree
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// planarDistance measures in raw degree space, matching how buffers are built.
func planarDistance(a Point, b Point) float64 {
	dx := a.Longitude - b.Longitude
	dy := a.Latitude - b.Latitude

	return math.Sqrt(dx*dx + dy*dy)
}

// distanceFromSegment is the planar distance from p to the segment a-b.
func distanceFromSegment(p Point, a Point, b Point) float64 {
	A := p.Longitude - a.Longitude
	B := p.Latitude - a.Latitude
	C := b.Longitude - a.Longitude
	D := b.Latitude - a.Latitude

	dot := A*C + B*D
	lenSq := C*C + D*D

	param := -1.0
	if lenSq != 0 {
		param = dot / lenSq
	}

	var closest Point

	switch {
	case param < 0:
		closest = a
	case param > 1:
		closest = b
	default:
		closest = Point{Longitude: a.Longitude + param*C, Latitude: a.Latitude + param*D}
	}

	return planarDistance(p, closest)
}
