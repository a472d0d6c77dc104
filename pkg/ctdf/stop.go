package ctdf

import (
	"time"

	"github.com/travigo/routeplanner/pkg/geo"
)

type Stop struct {
	PrimaryIdentifier string `groups:"basic"`
	PrimaryName       string `groups:"basic"`

	Location *Location `groups:"basic"`

	ZoneType   string `groups:"detailed"`
	Accessible bool   `groups:"basic"`
	Active     bool   `groups:"basic"`

	CreationDateTime     time.Time `groups:"detailed"`
	ModificationDateTime time.Time `groups:"detailed"`
}

func (s *Stop) Point() geo.Point {
	return s.Location.Point()
}
