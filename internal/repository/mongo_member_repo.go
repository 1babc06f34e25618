package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/models"
)

type mongoMemberRepo struct {
	col *mongo.Collection
}

// NewMongoMemberRepo wraps the canonical members collection. A unique
// index on identite backs the uniqueness invariant so a concurrent
// signup racing past the application-level pre-check still cannot
// create a duplicate. Index creation failing leaves the service on the
// pre-check alone, so it is logged loudly instead of silently dropped.
func NewMongoMemberRepo(db *mongo.Database, collection string, logger *zap.SugaredLogger) MemberRepository {
	col := db.Collection(collection)
	if _, err := col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "identite", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		logger.Errorw("unique index on identite could not be created, duplicate signups are no longer blocked at the store",
			"collection", collection, "error", err)
	}
	return &mongoMemberRepo{col: col}
}

func (r *mongoMemberRepo) FindByUsername(ctx context.Context, username string) (*models.Member, error) {
	var m models.Member
	err := r.col.FindOne(ctx, bson.M{"identite": username}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *mongoMemberRepo) Insert(ctx context.Context, m *models.Member) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = m.CreatedAt
	}
	_, err := r.col.InsertOne(ctx, m)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateUsername
	}
	return err
}
