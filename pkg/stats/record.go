package stats

import (
	"context"
	"time"

	"github.com/travigo/routeplanner/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	TypeNetwork   = "network"
	TypeTripPlans = "trip_plans"
)

type RecordStatsData struct {
	Type      string
	Stats     interface{}
	Timestamp time.Time
}

type Store struct{}

func (s *Store) Record(ctx context.Context, record *RecordStatsData) error {
	collection := database.GetCollection(database.StatsCollection)

	opts := options.Replace().SetUpsert(true)
	_, err := collection.ReplaceOne(ctx, bson.M{"type": record.Type}, record, opts)

	return err
}

// Latest returns the most recent record of each type keyed by type.
func (s *Store) Latest(ctx context.Context) (map[string]bson.M, error) {
	collection := database.GetCollection(database.StatsCollection)

	cursor, err := collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	var statsRecords []bson.M
	if err := cursor.All(ctx, &statsRecords); err != nil {
		return nil, err
	}

	statsRecordsMap := map[string]bson.M{}
	for _, statsRecord := range statsRecords {
		recordType, ok := statsRecord["type"].(string)
		if !ok {
			continue
		}
		delete(statsRecord, "_id")
		statsRecordsMap[recordType] = statsRecord
	}

	return statsRecordsMap, nil
}
