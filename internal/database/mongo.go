package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/config"
)

// ConnectMongo dials the members database and verifies it with a ping.
// The connect timeout comes from config so deployments behind slow
// links can widen it without a rebuild.
func ConnectMongo(ctx context.Context, cfg config.MongoCfg, logger *zap.SugaredLogger) (*mongo.Database, *mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout.Std())
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Infow("connected to MongoDB",
		"database", cfg.Database,
		"members_collection", cfg.MembersCollection,
		"adhesion_collection", cfg.AdhesionCollection,
	)
	return client.Database(cfg.Database), client, nil
}
