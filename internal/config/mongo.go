package config

import (
	"context"
	"fmt"
	"time"

	"vacai/internal/logging"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// OpenMongo connects to the document store used for profiles when
// PROFILE_BACKEND=mongo. The caller must Disconnect the client.
func OpenMongo(ctx context.Context, env Env) (*mongo.Client, *mongo.Database, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(env.MongoURI).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}

	logging.Info().Str("database", env.MongoDB).Msg("connected to MongoDB")
	return client, client.Database(env.MongoDB), nil
}
