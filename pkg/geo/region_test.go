package geo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/travigo/routeplanner/pkg/geo"
)

func TestBufferPoint(t *testing.T) {
	centre := geo.NewPoint(52.0, 0.0)
	circle := geo.BufferPoint(centre, 500)

	assert.True(t, circle.Contains(centre))
	assert.True(t, circle.Contains(geo.NewPoint(52.004, 0.0)))
	assert.False(t, circle.Contains(geo.NewPoint(52.005, 0.0)))
	assert.False(t, circle.Contains(geo.NewPoint(52.004, 0.004)))

	bounds := circle.Bounds()
	assert.InDelta(t, 51.9955, bounds.MinLatitude, 1e-4)
	assert.InDelta(t, 0.0045, bounds.MaxLongitude, 1e-4)
}

func TestBufferPath(t *testing.T) {
	corridor := geo.BufferPath([]geo.Point{
		geo.NewPoint(0, 0),
		geo.NewPoint(0, 1),
	}, 500)

	assert.True(t, corridor.Contains(geo.NewPoint(0.004, 0.5)))
	assert.False(t, corridor.Contains(geo.NewPoint(0.01, 0.5)))
	assert.True(t, corridor.Contains(geo.NewPoint(0, 1.004)))
	assert.False(t, corridor.Contains(geo.NewPoint(0, 1.01)))
	assert.False(t, corridor.Contains(geo.NewPoint(0, -0.01)))
}

func TestBufferPathDegenerate(t *testing.T) {
	assert.False(t, geo.BufferPath(nil, 500).Contains(geo.NewPoint(0, 0)))

	single := geo.BufferPath([]geo.Point{geo.NewPoint(10, 10)}, 500)
	assert.True(t, single.Contains(geo.NewPoint(10.001, 10)))
	assert.False(t, single.Contains(geo.NewPoint(10.1, 10)))
}

func TestPolygonContains(t *testing.T) {
	square := geo.Polygon{Ring: []geo.Point{
		geo.NewPoint(0, 0),
		geo.NewPoint(0, 1),
		geo.NewPoint(1, 1),
		geo.NewPoint(1, 0),
	}}

	assert.True(t, square.Contains(geo.NewPoint(0.5, 0.5)))
	assert.False(t, square.Contains(geo.NewPoint(1.5, 0.5)))
	assert.False(t, square.Contains(geo.NewPoint(0.5, -0.5)))

	assert.Equal(t, geo.Bounds{MinLatitude: 0, MinLongitude: 0, MaxLatitude: 1, MaxLongitude: 1}, square.Bounds())
}

func TestPolygonTriangle(t *testing.T) {
	triangle := geo.Polygon{Ring: []geo.Point{
		geo.NewPoint(0, 0),
		geo.NewPoint(0, 2),
		geo.NewPoint(2, 0),
	}}

	assert.True(t, triangle.Contains(geo.NewPoint(0.5, 0.5)))
	assert.False(t, triangle.Contains(geo.NewPoint(1.5, 1.5)))
}
