package geo

import "math"

// Region is an area that stop locations can be tested against.
type Region interface {
	Contains(p Point) bool
	Bounds() Bounds
}

type Bounds struct {
	MinLatitude  float64 `json:"min_latitude"`
	MinLongitude float64 `json:"min_longitude"`
	MaxLatitude  float64 `json:"max_latitude"`
	MaxLongitude float64 `json:"max_longitude"`
}

func (b Bounds) Contains(p Point) bool {
	return p.Latitude >= b.MinLatitude && p.Latitude <= b.MaxLatitude &&
		p.Longitude >= b.MinLongitude && p.Longitude <= b.MaxLongitude
}

func boundsOf(points []Point, padding float64) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}

	bounds := Bounds{
		MinLatitude:  math.Inf(1),
		MinLongitude: math.Inf(1),
		MaxLatitude:  math.Inf(-1),
		MaxLongitude: math.Inf(-1),
	}

	for _, p := range points {
		bounds.MinLatitude = math.Min(bounds.MinLatitude, p.Latitude)
		bounds.MinLongitude = math.Min(bounds.MinLongitude, p.Longitude)
		bounds.MaxLatitude = math.Max(bounds.MaxLatitude, p.Latitude)
		bounds.MaxLongitude = math.Max(bounds.MaxLongitude, p.Longitude)
	}

	bounds.MinLatitude -= padding
	bounds.MinLongitude -= padding
	bounds.MaxLatitude += padding
	bounds.MaxLongitude += padding

	return bounds
}

// Circle is a point buffered by a radius expressed in degrees.
type Circle struct {
	Centre        Point
	RadiusDegrees float64
}

// BufferPoint builds the circular search region around p.
func BufferPoint(p Point, radiusMeters float64) Circle {
	return Circle{
		Centre:        p,
		RadiusDegrees: MetresToDegrees(radiusMeters),
	}
}

func (c Circle) Contains(p Point) bool {
	return planarDistance(c.Centre, p) <= c.RadiusDegrees
}

func (c Circle) Bounds() Bounds {
	return boundsOf([]Point{c.Centre}, c.RadiusDegrees)
}

// Corridor is a polyline buffered by a radius expressed in degrees.
type Corridor struct {
	Path          []Point
	RadiusDegrees float64
}

// BufferPath builds the coverage region around a route path.
func BufferPath(path []Point, radiusMeters float64) Corridor {
	return Corridor{
		Path:          path,
		RadiusDegrees: MetresToDegrees(radiusMeters),
	}
}

func (c Corridor) Contains(p Point) bool {
	switch len(c.Path) {
	case 0:
		return false
	case 1:
		return planarDistance(c.Path[0], p) <= c.RadiusDegrees
	}

	for i := 0; i < len(c.Path)-1; i++ {
		if distanceFromSegment(p, c.Path[i], c.Path[i+1]) <= c.RadiusDegrees {
			return true
		}
	}

	return false
}

func (c Corridor) Bounds() Bounds {
	return boundsOf(c.Path, c.RadiusDegrees)
}

// Polygon is a single closed ring. The closing vertex may be omitted.
type Polygon struct {
	Ring []Point `json:"ring" validate:"min=3,dive"`
}

// Contains uses ray casting; points exactly on an edge may fall either way.
func (pg Polygon) Contains(p Point) bool {
	inside := false
	n := len(pg.Ring)

	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a := pg.Ring[i]
		b := pg.Ring[j]

		if (a.Latitude > p.Latitude) != (b.Latitude > p.Latitude) &&
			p.Longitude < (b.Longitude-a.Longitude)*(p.Latitude-a.Latitude)/(b.Latitude-a.Latitude)+a.Longitude {
			inside = !inside
		}
	}

	return inside
}

func (pg Polygon) Bounds() Bounds {
	return boundsOf(pg.Ring, 0)
}
