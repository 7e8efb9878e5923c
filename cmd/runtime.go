package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"

	"storeit/config"
	"storeit/services"
)

// databases holds the two logical databases served by the shared client.
type databases struct {
	client    *mongo.Client
	app       *mongo.Database
	analytics *mongo.Database
}

func connectDatabases(ctx context.Context, cfg *config.Config) (*databases, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := config.MongoClient(connectCtx, cfg.MongoURI)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Info().
		Str("database", cfg.DatabaseName).
		Str("analytics_database", cfg.AnalyticsDatabaseName).
		Msg("connected to MongoDB")

	return &databases{
		client:    client,
		app:       client.Database(cfg.DatabaseName),
		analytics: client.Database(cfg.AnalyticsDatabaseName),
	}, nil
}

func disconnectDatabases() {
	ctx, cancel := config.CreateContext(5 * time.Second)
	defer cancel()

	if err := config.DisconnectMongo(ctx); err != nil {
		log.Error().Err(err).Msg("failed to disconnect MongoDB")
	}
}

func newObjectStorage(ctx context.Context, cfg *config.Config) (services.ObjectStorage, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendS3:
		return services.NewS3Service(ctx, cfg.AWSRegion, cfg.AWSBucketName)
	default:
		return services.NewB2Service(ctx, cfg.B2ApplicationKeyID, cfg.B2ApplicationKey, cfg.B2BucketName)
	}
}
