package ctdf

import "time"

type Bus struct {
	PrimaryIdentifier string `groups:"basic"`
	RefNumber         string `groups:"basic"`
	Capacity          int    `groups:"detailed"`
	BusType           string `groups:"detailed"`
	Active            bool   `groups:"basic"`

	CurrentRouteRef string    `groups:"basic"`
	CurrentLocation *Location `groups:"basic"`
	LocationUpdated time.Time `groups:"basic"`
}
