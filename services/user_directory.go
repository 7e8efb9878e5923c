package services

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"storeit/models"
)

// UserDirectory looks up registered users.
type UserDirectory interface {
	FindByEmails(ctx context.Context, emails []string) ([]models.User, error)
	// FindNearQuota returns users whose used storage is at least threshold
	// times their quota.
	FindNearQuota(ctx context.Context, threshold float64) ([]models.User, error)
}

type MongoUserDirectory struct {
	userCollection    *mongo.Collection
	defaultMaxStorage int64
}

// NewMongoUserDirectory reads the users collection. defaultMaxStorage is the
// quota of users without their own max_storage.
func NewMongoUserDirectory(db *mongo.Database, defaultMaxStorage int64) *MongoUserDirectory {
	return &MongoUserDirectory{
		userCollection:    db.Collection("users"),
		defaultMaxStorage: defaultMaxStorage,
	}
}

func (d *MongoUserDirectory) FindByEmails(ctx context.Context, emails []string) ([]models.User, error) {
	if len(emails) == 0 {
		return []models.User{}, nil
	}

	lowered := make([]string, len(emails))
	for i, e := range emails {
		lowered[i] = strings.ToLower(strings.TrimSpace(e))
	}

	return d.find(ctx, bson.M{"email": bson.M{"$in": lowered}})
}

// FindNearQuota returns the matching users with MaxStorage set to their
// effective quota.
func (d *MongoUserDirectory) FindNearQuota(ctx context.Context, threshold float64) ([]models.User, error) {
	users, err := d.find(ctx, nearQuotaFilter(threshold, d.defaultMaxStorage))
	if err != nil {
		return nil, err
	}

	for i := range users {
		if users[i].MaxStorage <= 0 {
			users[i].MaxStorage = d.defaultMaxStorage
		}
	}
	return users, nil
}

func (d *MongoUserDirectory) find(ctx context.Context, filter bson.M) ([]models.User, error) {
	cursor, err := d.userCollection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// nearQuotaFilter matches used_storage >= threshold * quota, where the quota
// is max_storage when positive and defaultMax otherwise. Users without an
// effective quota never match.
func nearQuotaFilter(threshold float64, defaultMax int64) bson.M {
	quota := bson.M{"$cond": bson.A{
		bson.M{"$gt": bson.A{bson.M{"$ifNull": bson.A{"$max_storage", 0}}, 0}},
		"$max_storage",
		defaultMax,
	}}

	return bson.M{"$expr": bson.M{"$and": bson.A{
		bson.M{"$gt": bson.A{quota, 0}},
		bson.M{"$gte": bson.A{
			bson.M{"$ifNull": bson.A{"$used_storage", 0}},
			bson.M{"$multiply": bson.A{quota, threshold}},
		}},
	}}}
}
