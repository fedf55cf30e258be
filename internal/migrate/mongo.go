package migrate

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"kloza/internal/domain"
	"kloza/internal/repo"
)

// ActiveKollabIndex is the name of the partial unique index that allows a
// single active kollab per idea.
const ActiveKollabIndex = "kollabs_one_active_per_idea"

// MongoIndexes returns the index models per collection.
func MongoIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		repo.IdeasCollection: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "createdBy", Value: 1}}},
		},
		repo.KollabsCollection: {
			{Keys: bson.D{{Key: "ideaId", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{
				Keys: bson.D{{Key: "ideaId", Value: 1}},
				Options: options.Index().
					SetName(ActiveKollabIndex).
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"status": string(domain.KollabActive)}),
			},
		},
		repo.DiscussionsCollection: {
			{Keys: bson.D{{Key: "kollabId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
	}
}

// EnsureMongoIndexes creates every index, leaving existing ones in place.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	for _, coll := range []string{repo.IdeasCollection, repo.KollabsCollection, repo.DiscussionsCollection} {
		models := MongoIndexes()[coll]
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}
