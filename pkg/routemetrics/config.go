package routemetrics

import (
	"bytes"
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable constant used by the planner and the route metrics.
type Config struct {
	AverageSpeedKmh float64 `yaml:"AverageSpeedKmh"`
	CostPerKm       float64 `yaml:"CostPerKm"`
	CostPerMinute   float64 `yaml:"CostPerMinute"`

	DistanceReferenceKm  float64 `yaml:"DistanceReferenceKm"`
	TimeReferenceMinutes float64 `yaml:"TimeReferenceMinutes"`
	CoverageRadiusMeters float64 `yaml:"CoverageRadiusMeters"`

	WalkingSpeedMetersPerSecond float64 `yaml:"WalkingSpeedMetersPerSecond"`
	BusFare                     float64 `yaml:"BusFare"`
	BoardingWaitMinutes         int     `yaml:"BoardingWaitMinutes"`
	TransferWaitMinutes         int     `yaml:"TransferWaitMinutes"`

	NearbyStopLimit int `yaml:"NearbyStopLimit"`
	MaxItineraries  int `yaml:"MaxItineraries"`
}

func DefaultConfig() Config {
	return Config{
		AverageSpeedKmh: 25,
		CostPerKm:       2.5,
		CostPerMinute:   0.5,

		DistanceReferenceKm:  50,
		TimeReferenceMinutes: 120,
		CoverageRadiusMeters: 500,

		WalkingSpeedMetersPerSecond: 1.4,
		BusFare:                     2.50,
		BoardingWaitMinutes:         5,
		TransferWaitMinutes:         5,

		NearbyStopLimit: 10,
		MaxItineraries:  3,
	}
}

// ParseConfig overlays the YAML document on top of the defaults.
func ParseConfig(document []byte) (Config, error) {
	config := DefaultConfig()

	decoder := yaml.NewDecoder(bytes.NewReader(document))
	decoder.KnownFields(true)

	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return DefaultConfig(), err
	}

	return config, nil
}

// LoadConfig reads path, or returns the defaults when path is empty.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	document, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig(), err
	}

	return ParseConfig(document)
}
