package database

import (
	"context"
	"fmt"
	"time"

	"github.com/travigo/routeplanner/pkg/ctdf"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const TripHistoryPageSize = 20

type TripRequestStore struct{}

func NewTripRequestStore() *TripRequestStore {
	return &TripRequestStore{}
}

func (s *TripRequestStore) SaveTripRequest(ctx context.Context, tripRequest *ctdf.TripRequest) error {
	_, err := GetCollection(TripRequestsCollection).InsertOne(ctx, tripRequest)
	if err != nil {
		return fmt.Errorf("save trip request: %w", err)
	}

	return nil
}

// GetUserTripHistory returns the user's most recent trip requests first.
func (s *TripRequestStore) GetUserTripHistory(ctx context.Context, userID string, pageSize int) ([]*ctdf.TripRequest, error) {
	if pageSize <= 0 {
		pageSize = TripHistoryPageSize
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "creationdatetime", Value: -1}}).
		SetLimit(int64(pageSize))

	cursor, err := GetCollection(TripRequestsCollection).Find(ctx, bson.M{"userid": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find trip history: %w", err)
	}

	tripRequests := []*ctdf.TripRequest{}
	if err := cursor.All(ctx, &tripRequests); err != nil {
		return nil, fmt.Errorf("decode trip history: %w", err)
	}

	return tripRequests, nil
}

func (s *TripRequestStore) CountTripRequestsForRoute(ctx context.Context, routeRef string) (int, error) {
	count, err := GetCollection(TripRequestsCollection).CountDocuments(ctx, bson.M{"selectedrouteref": routeRef})

	return int(count), err
}

func (s *TripRequestStore) FindTripRequestsBefore(ctx context.Context, cutOff time.Time) ([]*ctdf.TripRequest, error) {
	cursor, err := GetCollection(TripRequestsCollection).Find(ctx, bson.M{"creationdatetime": bson.M{"$lt": cutOff}})
	if err != nil {
		return nil, fmt.Errorf("find trip requests: %w", err)
	}

	tripRequests := []*ctdf.TripRequest{}
	if err := cursor.All(ctx, &tripRequests); err != nil {
		return nil, fmt.Errorf("decode trip requests: %w", err)
	}

	return tripRequests, nil
}

func (s *TripRequestStore) DeleteTripRequestsBefore(ctx context.Context, cutOff time.Time) (int, error) {
	result, err := GetCollection(TripRequestsCollection).DeleteMany(ctx, bson.M{"creationdatetime": bson.M{"$lt": cutOff}})
	if err != nil {
		return 0, fmt.Errorf("delete trip requests: %w", err)
	}

	return int(result.DeletedCount), nil
}
