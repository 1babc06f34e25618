// adhesion-migrate copies legacy adhesion documents into the canonical
// users collection: usernames already present are skipped, plaintext
// passwords are hashed on the way. The adhesion collection itself is
// left untouched.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/config"
	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/credentials"
	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/database"
	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/models"
	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/repository"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var logger *zap.Logger
	if cfg.App.Env == "development" {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
	defer func() { _ = logger.Sync() }()
	sugar := logger.Sugar()

	db, client, err := database.ConnectMongo(context.Background(), cfg.Mongo, sugar)
	if err != nil {
		sugar.Fatal(err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	}()

	members := repository.NewMongoMemberRepo(db, cfg.Mongo.MembersCollection, sugar)
	adhesion := repository.NewMongoAdhesionRepo(db, cfg.Mongo.AdhesionCollection)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var migrated, skipped, failed int
	err = adhesion.Each(ctx, func(legacy *models.Member) error {
		if legacy.Username == "" {
			sugar.Warnw("skipping adhesion document without identite", "id", legacy.ID.Hex())
			skipped++
			return nil
		}

		_, err := members.FindByUsername(ctx, legacy.Username)
		if err == nil {
			skipped++
			return nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		m := *legacy
		m.ID = primitive.NewObjectID()
		if !credentials.IsHashed(m.Password) {
			hash, herr := credentials.Hash(m.Password, cfg.Security.PasswordHashCost)
			if herr != nil {
				sugar.Errorw("hashing failed, skipping", "identite", m.Username, "error", herr)
				failed++
				return nil
			}
			m.Password = hash
		}
		if m.Role == "" {
			m.Role = models.RoleMember
		}
		if m.PhotoURL == "" {
			m.PhotoURL = models.PhotoURLFor(m.ID)
		}
		if m.Recommendation == "" {
			m.Recommendation = models.DefaultRecommendation
		}
		m.CreatedAt = time.Time{}
		m.UpdatedAt = time.Time{}

		if err := members.Insert(ctx, &m); err != nil {
			if errors.Is(err, repository.ErrDuplicateUsername) {
				skipped++
				return nil
			}
			sugar.Errorw("insert failed", "identite", m.Username, "error", err)
			failed++
			return nil
		}
		migrated++
		return nil
	})
	if err != nil {
		sugar.Fatalf("migration aborted: %v", err)
	}

	sugar.Infow("adhesion migration finished",
		"migrated", migrated, "skipped", skipped, "failed", failed)
}
