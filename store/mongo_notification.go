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

type MongoNotificationStore struct {
	collection *mongo.Collection
}

func NewMongoNotificationStore(db *mongo.Database) *MongoNotificationStore {
	return &MongoNotificationStore{collection: db.Collection(NotificationsCollection)}
}

func (s *MongoNotificationStore) InsertNotification(ctx context.Context, n *models.Notification) error {
	if n.UserID == "" {
		return ErrMissingUser
	}

	result, err := s.collection.InsertOne(ctx, n)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		n.ID = id
	}
	return nil
}

func (s *MongoNotificationStore) FindNotifications(ctx context.Context, q NotificationQuery) ([]models.Notification, error) {
	filter := bson.M{"user_id": q.UserID}
	if q.UnreadOnly {
		filter["read"] = false
	}
	if q.Type != "" {
		filter["type"] = q.Type
	}
	if !q.Since.IsZero() {
		filter["timestamp"] = bson.M{"$gte": q.Since}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(q.Limit)

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return notifications, nil
}

func (s *MongoNotificationStore) MarkNotificationRead(ctx context.Context, id primitive.ObjectID, userID string) (bool, error) {
	filter := bson.M{"_id": id, "user_id": userID, "read": false}
	update := bson.M{"$set": bson.M{"read": true}}

	result, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return result.ModifiedCount > 0, nil
}

func (s *MongoNotificationStore) CountUnread(ctx context.Context, userID string) (int64, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{"user_id": userID, "read": false})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}
