package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storeit/models"
)

type MongoSearchHistoryStore struct {
	collection *mongo.Collection
}

func NewMongoSearchHistoryStore(db *mongo.Database) *MongoSearchHistoryStore {
	return &MongoSearchHistoryStore{collection: db.Collection(SearchHistoryCollection)}
}

func (s *MongoSearchHistoryStore) InsertSearch(ctx context.Context, entry *models.SearchHistoryEntry) error {
	if entry.UserID == "" {
		return ErrMissingUser
	}

	result, err := s.collection.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to insert search history: %w", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		entry.ID = id
	}
	return nil
}

func (s *MongoSearchHistoryStore) FindSearches(ctx context.Context, userID string, limit int64) ([]models.SearchHistoryEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query search history: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []models.SearchHistoryEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode search history: %w", err)
	}
	return entries, nil
}

func (s *MongoSearchHistoryStore) TopSearchQueries(ctx context.Context, userID string, limit int64) ([]models.PopularQuery, error) {
	cursor, err := s.collection.Aggregate(ctx, topQueriesPipeline(userID, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate popular queries: %w", err)
	}
	defer cursor.Close(ctx)

	queries := []models.PopularQuery{}
	if err := cursor.All(ctx, &queries); err != nil {
		return nil, fmt.Errorf("failed to decode popular queries: %w", err)
	}
	return queries, nil
}

func (s *MongoSearchHistoryStore) AverageResultCount(ctx context.Context, userID string) (float64, error) {
	cursor, err := s.collection.Aggregate(ctx, averageResultCountPipeline(userID))
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate result counts: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Avg float64 `bson:"avg"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("failed to decode result counts: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Avg, nil
}

func (s *MongoSearchHistoryStore) FindNoResultSearches(ctx context.Context, userID string, limit int64) ([]models.NoResultQuery, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit).
		SetProjection(bson.M{"_id": 0, "query": 1, "timestamp": 1})

	cursor, err := s.collection.Find(ctx, bson.M{"user_id": userID, "result_count": 0}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query zero-result searches: %w", err)
	}
	defer cursor.Close(ctx)

	queries := []models.NoResultQuery{}
	if err := cursor.All(ctx, &queries); err != nil {
		return nil, fmt.Errorf("failed to decode zero-result searches: %w", err)
	}
	return queries, nil
}
