package insertrecords

import (
	"context"
	"fmt"

	"github.com/travigo/routeplanner/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type InsertDefinition struct {
	Collection string                 `yaml:"Collection"`
	Match      map[string]string      `yaml:"Match"`
	Data       map[string]interface{} `yaml:"Data"`
}

func (i *InsertDefinition) Validate() error {
	if i.Collection == "" {
		return fmt.Errorf("insert definition is missing a collection")
	}
	if len(i.Match) == 0 {
		return fmt.Errorf("insert definition for %s is missing a match", i.Collection)
	}

	return nil
}

func (i *InsertDefinition) filter() bson.M {
	filter := bson.M{}
	for key, value := range i.Match {
		filter[key] = value
	}

	return filter
}

func (i *InsertDefinition) Upsert(ctx context.Context) error {
	collection := database.GetCollection(i.Collection)

	opts := options.Update().SetUpsert(true)
	_, err := collection.UpdateOne(ctx, i.filter(), bson.M{"$set": i.Data}, opts)
	if err != nil {
		return fmt.Errorf("upsert into %s: %w", i.Collection, err)
	}

	return nil
}
