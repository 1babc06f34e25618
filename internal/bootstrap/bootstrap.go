// Package bootstrap assembles the service: config, logging, store
// connections, repositories, flows, sessions, and the HTTP handler.
package bootstrap

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/config"
	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/database"
	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/handlers"
	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/optimistic"
	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/repository"
	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/services"
	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/session"
)

type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Sugar    *zap.SugaredLogger
	Mongo    *mongo.Client
	Redis    *redis.Client
	Writer   *optimistic.Writer
	Sessions *session.Manager
	Handler  *handlers.Handler
}

type CleanupFn func(context.Context)

// Init wires the whole service from the config file at path.
func Init(path string) (*App, CleanupFn, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	var logger *zap.Logger
	if cfg.App.Env == "development" {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
	sugar := logger.Sugar()
	sugar.Infof("Starting members-service in %s environment", cfg.App.Env)

	db, mongoClient, err := database.ConnectMongo(context.Background(), cfg.Mongo, sugar)
	if err != nil {
		return nil, nil, err
	}
	rdb, err := database.ConnectRedis(context.Background(), cfg.Redis, sugar)
	if err != nil {
		return nil, nil, err
	}

	members := repository.NewMongoMemberRepo(db, cfg.Mongo.MembersCollection, sugar)
	adhesion := repository.NewMongoAdhesionRepo(db, cfg.Mongo.AdhesionCollection)

	writer := optimistic.NewWriter(sugar, 64, cfg.Security.WriteFailureFeedEntries, cfg.Mongo.OpTimeout.Std())
	sessions := session.NewManager(rdb, cfg.Session.JWTSecret, cfg.Session.AccessTTLMinutes, cfg.Session.SessionTTLDays)

	svc := services.NewMemberService(members, adhesion, writer, cfg.Security.PasswordHashCost, cfg.Mongo.OpTimeout.Std(), sugar)
	h := handlers.NewHandler(svc, sessions, writer, sugar)

	app := &App{
		Config:   cfg,
		Logger:   logger,
		Sugar:    sugar,
		Mongo:    mongoClient,
		Redis:    rdb,
		Writer:   writer,
		Sessions: sessions,
		Handler:  h,
	}

	return app, func(ctx context.Context) {
		// Drain queued profile writes before dropping the stores.
		writer.Close()

		if cerr := mongoClient.Disconnect(ctx); cerr != nil {
			sugar.Errorf("MongoDB disconnect error: %v", cerr)
		}
		if cerr := rdb.Close(); cerr != nil {
			sugar.Errorf("Redis client close error: %v", cerr)
		}
		_ = logger.Sync()
	}, nil
}
