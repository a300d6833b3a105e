package repositories

import (
	"context"
	"errors"
	"fmt"

	"vacai/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ProfilesCollection = "profiles"

// MongoProfileRepository keeps profile documents in a collection keyed by UID.
type MongoProfileRepository struct {
	Coll *mongo.Collection
}

type profileDocument struct {
	UID            string `bson:"_id"`
	models.Profile `bson:",inline"`
}

func (r MongoProfileRepository) Get(ctx context.Context, uid string) (models.Profile, bool, error) {
	var doc profileDocument
	err := r.Coll.FindOne(ctx, bson.M{"_id": uid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Profile{}, false, nil
		}
		return models.Profile{}, false, fmt.Errorf("find profile: %w", err)
	}
	return doc.Profile, true, nil
}

func (r MongoProfileRepository) Put(ctx context.Context, uid string, p models.Profile) error {
	_, err := r.Coll.ReplaceOne(ctx,
		bson.M{"_id": uid},
		profileDocument{UID: uid, Profile: p},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("replace profile: %w", err)
	}
	return nil
}
