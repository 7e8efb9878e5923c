package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storeit/models"
)

type MongoActivityStore struct {
	collection *mongo.Collection
}

func NewMongoActivityStore(db *mongo.Database) *MongoActivityStore {
	return &MongoActivityStore{collection: db.Collection(ActivityLogsCollection)}
}

func (s *MongoActivityStore) InsertActivity(ctx context.Context, log *models.ActivityLog) error {
	if log.UserID == "" {
		return ErrMissingUser
	}

	result, err := s.collection.InsertOne(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to insert activity log: %w", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		log.ID = id
	}
	return nil
}

func (s *MongoActivityStore) FindActivities(ctx context.Context, q ActivityQuery) ([]models.ActivityLog, error) {
	filter := bson.M{"user_id": q.UserID}
	if q.FileID != "" {
		filter["file_id"] = q.FileID
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(q.Limit)

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity logs: %w", err)
	}
	defer cursor.Close(ctx)

	logs := []models.ActivityLog{}
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, fmt.Errorf("failed to decode activity logs: %w", err)
	}
	return logs, nil
}

func (s *MongoActivityStore) CountActivitiesByAction(ctx context.Context, userID string, since time.Time) (map[models.Action]int64, error) {
	cursor, err := s.collection.Aggregate(ctx, actionCountsPipeline(userID, since))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate activity counts: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Action models.Action `bson:"_id"`
		Count  int64         `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode activity counts: %w", err)
	}

	counts := make(map[models.Action]int64, len(rows))
	for _, row := range rows {
		counts[row.Action] = row.Count
	}
	return counts, nil
}

func (s *MongoActivityStore) ActiveUsers(ctx context.Context, since time.Time) ([]string, error) {
	values, err := s.collection.Distinct(ctx, "user_id", bson.M{"timestamp": bson.M{"$gte": since}})
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}

	users := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok && id != "" {
			users = append(users, id)
		}
	}
	return users, nil
}
