package routeanalysis

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/ctdf"
	"github.com/travigo/routeplanner/pkg/geo"
	"github.com/travigo/routeplanner/pkg/optimiser"
)

const ProposedStopZone = "proposed"

// FindOptimalStopLocations lays a regular grid over the service area's
// envelope and proposes a stop at every grid point inside the area.
func (s *Service) FindOptimalStopLocations(ctx context.Context, serviceArea geo.Polygon, maxStops int) ([]*ctdf.Stop, error) {
	if maxStops <= 0 {
		return nil, fmt.Errorf("%w: maxStops must be positive", optimiser.ErrInvalidArgument)
	}
	if len(serviceArea.Ring) < 3 {
		return nil, fmt.Errorf("%w: service area needs at least 3 points", optimiser.ErrInvalidArgument)
	}

	if existing, err := s.Network.CountStopsWithin(ctx, serviceArea); err == nil {
		log.Debug().Int("existing", existing).Msg("Existing stops in service area")
	}

	envelope := serviceArea.Bounds()
	stepLongitude := (envelope.MaxLongitude - envelope.MinLongitude) / math.Sqrt(float64(maxStops))
	stepLatitude := (envelope.MaxLatitude - envelope.MinLatitude) / math.Sqrt(float64(maxStops))

	proposed := []*ctdf.Stop{}
	if stepLongitude <= 0 || stepLatitude <= 0 {
		return proposed, nil
	}

	now := time.Now()

	for longitude := envelope.MinLongitude; longitude <= envelope.MaxLongitude && len(proposed) < maxStops; longitude += stepLongitude {
		for latitude := envelope.MinLatitude; latitude <= envelope.MaxLatitude && len(proposed) < maxStops; latitude += stepLatitude {
			point := geo.NewPoint(latitude, longitude)
			if !serviceArea.Contains(point) {
				continue
			}

			number := len(proposed) + 1
			proposed = append(proposed, &ctdf.Stop{
				PrimaryIdentifier:    fmt.Sprintf("proposed-%d", number),
				PrimaryName:          fmt.Sprintf("Proposed Stop %d", number),
				Location:             ctdf.NewLocation(point),
				ZoneType:             ProposedStopZone,
				CreationDateTime:     now,
				ModificationDateTime: now,
			})
		}
	}

	return proposed, nil
}
