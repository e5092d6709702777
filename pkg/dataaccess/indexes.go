package dataaccess

import (
	"context"
	"fmt"

	"github.com/Jacobbrewer1/tickets/pkg/dataaccess/monitoring"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the data access layers rely on. The (guild, number) index stops two tickets
// in a guild from sharing a number.
func EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		collectionTickets: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "guild", Value: 1}, {Key: "number", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collectionCategories: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collectionGuilds: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collectionArchives: {
			{Keys: bson.D{{Key: "ticket", Value: 1}, {Key: "user", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for collection, models := range indexes {
		done := monitoring.ObserveMongo("indexes", "create_indexes", mongoDatabase, collection)
		_, err := MongoDB.Database(mongoDatabase).Collection(collection).Indexes().CreateMany(ctx, models)
		done()
		if err != nil {
			return fmt.Errorf("error creating indexes on %s: %w", collection, err)
		}
	}
	return nil
}
