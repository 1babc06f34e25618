package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/models"
)

type mongoAdhesionRepo struct {
	col *mongo.Collection
}

// NewMongoAdhesionRepo wraps the legacy adhesion collection. No index
// is created: the collection is owned by the old membership process and
// this service only reads from it.
func NewMongoAdhesionRepo(db *mongo.Database, collection string) AdhesionRepository {
	return &mongoAdhesionRepo{col: db.Collection(collection)}
}

func (r *mongoAdhesionRepo) FindByUsername(ctx context.Context, username string) (*models.Member, error) {
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

func (r *mongoAdhesionRepo) Each(ctx context.Context, fn func(*models.Member) error) error {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var m models.Member
		if err := cur.Decode(&m); err != nil {
			return err
		}
		if err := fn(&m); err != nil {
			return err
		}
	}
	return cur.Err()
}
