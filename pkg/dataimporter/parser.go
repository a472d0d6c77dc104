// Package dataimporter loads stops, routes and buses from CSV files into the
// database.
package dataimporter

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/ctdf"
)

func unmarshalCSV(reader io.Reader, destination interface{}) error {
	// Allow us to ignore those naughty records that have missing columns
	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	return gocsv.UnmarshalCSV(csvReader, destination)
}

// ParseStops skips records that cannot be converted.
func ParseStops(reader io.Reader, now time.Time) ([]*ctdf.Stop, error) {
	var records []*StopRecord
	if err := unmarshalCSV(reader, &records); err != nil {
		return nil, err
	}

	stops := make([]*ctdf.Stop, 0, len(records))
	for _, record := range records {
		stop, err := record.ToCTDF(now)
		if err != nil {
			log.Error().Err(err).Msg("Skipping stop record")
			continue
		}
		stops = append(stops, stop)
	}

	return stops, nil
}

func ParseRoutes(reader io.Reader, now time.Time) ([]*ctdf.Route, error) {
	var records []*RouteRecord
	if err := unmarshalCSV(reader, &records); err != nil {
		return nil, err
	}

	routes := make([]*ctdf.Route, 0, len(records))
	for _, record := range records {
		route, err := record.ToCTDF(now)
		if err != nil {
			log.Error().Err(err).Msg("Skipping route record")
			continue
		}
		routes = append(routes, route)
	}

	return routes, nil
}

func ParseBuses(reader io.Reader) ([]*ctdf.Bus, error) {
	var records []*BusRecord
	if err := unmarshalCSV(reader, &records); err != nil {
		return nil, err
	}

	buses := make([]*ctdf.Bus, 0, len(records))
	for _, record := range records {
		bus, err := record.ToCTDF()
		if err != nil {
			log.Error().Err(err).Msg("Skipping bus record")
			continue
		}
		buses = append(buses, bus)
	}

	return buses, nil
}
