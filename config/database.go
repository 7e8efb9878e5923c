package config

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// The client is created once per process and shared by every store.
var (
	mongoMu     sync.Mutex
	mongoClient *mongo.Client
)

// MongoClient returns the shared client, connecting on first use. Later
// calls return the same handle regardless of uri.
func MongoClient(ctx context.Context, uri string) (*mongo.Client, error) {
	mongoMu.Lock()
	defer mongoMu.Unlock()

	if mongoClient != nil {
		return mongoClient, nil
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetAppName("storeit"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	mongoClient = client
	return mongoClient, nil
}

// DisconnectMongo closes the shared client. The next MongoClient call
// reconnects.
func DisconnectMongo(ctx context.Context) error {
	mongoMu.Lock()
	defer mongoMu.Unlock()

	if mongoClient == nil {
		return nil
	}

	err := mongoClient.Disconnect(ctx)
	mongoClient = nil
	if err != nil {
		return fmt.Errorf("failed to disconnect MongoDB: %w", err)
	}
	return nil
}
