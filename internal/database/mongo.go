package database

import (
	"context"
	"fmt"
	"time"

	"github.com/studyfindr/studyfindr-api/internal/config"
	"github.com/studyfindr/studyfindr-api/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectDB opens the Mongo client, verifies it with a ping and returns the app database.
func ConnectDB(ctx context.Context, cfg *config.Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	logger.Log.WithField("database", cfg.MongoDB).Info("Connected to MongoDB")
	return client.Database(cfg.MongoDB), nil
}

// EnsureIndexes creates the unique indexes the stores rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"bookmarks": {
			{Keys: bson.D{{Key: "place_id", Value: 1}}},
			{Keys: bson.D{{Key: "name", Value: 1}, {Key: "coordinates.lat", Value: 1}, {Key: "coordinates.lng", Value: 1}}},
			{Keys: bson.D{{Key: "user_email", Value: 1}}},
		},
		"reviews": {
			{Keys: bson.D{{Key: "user_email", Value: 1}, {Key: "location_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "location_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		"locations": {
			{Keys: bson.D{{Key: "place_id", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		},
	}

	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", coll, err)
		}
	}
	return nil
}
