package journeygraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/travigo/routeplanner/pkg/ctdf"
	"github.com/travigo/routeplanner/pkg/geo"
)

func TestRouteEdges(t *testing.T) {
	assert := assert.New(t)

	edges := RouteEdges(&ctdf.Route{PrimaryIdentifier: "R1", StopRefs: []string{"A", "B", "C"}, Active: true})
	assert.Equal([]Edge{
		{RouteRef: "R1", OriginRef: "A", DestinationRef: "B", Sequence: 0},
		{RouteRef: "R1", OriginRef: "B", DestinationRef: "C", Sequence: 1},
	}, edges)

	assert.Empty(RouteEdges(&ctdf.Route{PrimaryIdentifier: "R2", StopRefs: []string{"A", "B"}, Active: false}))
	assert.Empty(RouteEdges(&ctdf.Route{PrimaryIdentifier: "R3", StopRefs: []string{"A"}, Active: true}))
}

func TestStopParameters(t *testing.T) {
	parameters := stopParameters(&ctdf.Stop{
		PrimaryIdentifier: "S1",
		PrimaryName:       "High Street",
		Location:          ctdf.NewLocation(geo.NewPoint(51.5, -0.1)),
		Accessible:        true,
	})

	assert.Equal(t, map[string]any{
		"primaryidentifier": "S1",
		"primaryname":       "High Street",
		"latitude":          51.5,
		"longitude":         -0.1,
		"accessible":        true,
	}, parameters)
}

func TestEdgeParameters(t *testing.T) {
	assert.Equal(t, map[string]any{
		"origin":      "A",
		"destination": "B",
		"route":       "R1",
		"sequence":    3,
	}, edgeParameters(Edge{RouteRef: "R1", OriginRef: "A", DestinationRef: "B", Sequence: 3}))
}
