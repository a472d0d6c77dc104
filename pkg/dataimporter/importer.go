package dataimporter

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/ctdf"
	"github.com/travigo/routeplanner/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const batchSize = 1000

func stopWriteModels(stops []*ctdf.Stop) []mongo.WriteModel {
	models := make([]mongo.WriteModel, 0, len(stops))
	for _, stop := range stops {
		replaceModel := mongo.NewReplaceOneModel()
		replaceModel.SetFilter(bson.M{"primaryidentifier": stop.PrimaryIdentifier})
		replaceModel.SetReplacement(stop)
		replaceModel.SetUpsert(true)

		models = append(models, replaceModel)
	}

	return models
}

func routeWriteModels(routes []*ctdf.Route) []mongo.WriteModel {
	models := make([]mongo.WriteModel, 0, len(routes))
	for _, route := range routes {
		replaceModel := mongo.NewReplaceOneModel()
		replaceModel.SetFilter(bson.M{"primaryidentifier": route.PrimaryIdentifier})
		replaceModel.SetReplacement(route)
		replaceModel.SetUpsert(true)

		models = append(models, replaceModel)
	}

	return models
}

// busWriteModels leaves the live location fields untouched.
func busWriteModels(buses []*ctdf.Bus) []mongo.WriteModel {
	models := make([]mongo.WriteModel, 0, len(buses))
	for _, bus := range buses {
		updateModel := mongo.NewUpdateOneModel()
		updateModel.SetFilter(bson.M{"primaryidentifier": bus.PrimaryIdentifier})
		updateModel.SetUpdate(bson.M{"$set": bson.M{
			"refnumber":       bus.RefNumber,
			"capacity":        bus.Capacity,
			"bustype":         bus.BusType,
			"currentrouteref": bus.CurrentRouteRef,
			"active":          bus.Active,
		}})
		updateModel.SetUpsert(true)

		models = append(models, updateModel)
	}

	return models
}

type ImportResult struct {
	Upserted int64
	Modified int64
}

func bulkUpsert(ctx context.Context, collectionName string, models []mongo.WriteModel) (ImportResult, error) {
	collection := database.GetCollection(collectionName)
	result := ImportResult{}

	for start := 0; start < len(models); start += batchSize {
		end := min(start+batchSize, len(models))

		writeResult, err := collection.BulkWrite(ctx, models[start:end], options.BulkWrite().SetOrdered(false))
		if err != nil {
			return result, fmt.Errorf("bulk write %s: %w", collectionName, err)
		}

		result.Upserted += writeResult.UpsertedCount
		result.Modified += writeResult.ModifiedCount
	}

	log.Info().
		Str("collection", collectionName).
		Int("records", len(models)).
		Int64("inserts", result.Upserted).
		Int64("updates", result.Modified).
		Msg("Written to MongoDB")

	return result, nil
}

func ImportStops(ctx context.Context, stops []*ctdf.Stop) (ImportResult, error) {
	return bulkUpsert(ctx, database.StopsCollection, stopWriteModels(stops))
}

func ImportRoutes(ctx context.Context, routes []*ctdf.Route) (ImportResult, error) {
	return bulkUpsert(ctx, database.RoutesCollection, routeWriteModels(routes))
}

func ImportBuses(ctx context.Context, buses []*ctdf.Bus) (ImportResult, error) {
	return bulkUpsert(ctx, database.BusesCollection, busWriteModels(buses))
}
