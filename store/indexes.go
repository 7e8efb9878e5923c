package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IndexModels returns the indexes every analytics collection needs, keyed by
// collection name.
func IndexModels() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		ActivityLogsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "file_id", Value: 1}, {Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "action", Value: 1}, {Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		},
		SearchHistoryCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "query", Value: "text"}}},
		},
		NotificationsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "read", Value: 1}, {Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
			{
				Keys:    bson.D{{Key: "expires_at", Value: 1}},
				Options: options.Index().SetExpireAfterSeconds(0),
			},
		},
		CacheCollection: {
			{
				Keys:    bson.D{{Key: "key", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "expires_at", Value: 1}},
				Options: options.Index().SetExpireAfterSeconds(0),
			},
		},
		FileTagsCollection: {
			{Keys: bson.D{{Key: "file_id", Value: 1}}},
			{Keys: bson.D{{Key: "tag", Value: 1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "tag", Value: 1}}},
		},
	}
}

// EnsureIndexes creates the analytics indexes. Existing indexes with the same
// keys are left in place.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for name, indexes := range IndexModels() {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", name, err)
		}
	}
	return nil
}
