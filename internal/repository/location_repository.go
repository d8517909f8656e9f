package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/studyfindr/studyfindr-api/internal/models"
	"github.com/studyfindr/studyfindr-api/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LocationRepository handles database operations related to ingested places.
type LocationRepository struct {
	collection *mongo.Collection
}

// NewLocationRepository creates a new instance of LocationRepository.
func NewLocationRepository(db *mongo.Database) *LocationRepository {
	return &LocationRepository{
		collection: db.Collection("locations"),
	}
}

// locationIdentity is the place id when present, else the exact name and position.
func locationIdentity(loc *models.Location) bson.M {
	if loc.PlaceID != "" {
		return bson.M{"place_id": loc.PlaceID}
	}
	return bson.M{
		"name":                  loc.Name,
		"geometry.location.lat": loc.Geometry.Location.Lat,
		"geometry.location.lng": loc.Geometry.Location.Lng,
	}
}

// UpsertLocation inserts or refreshes a place and reports whether it was new.
func (r *LocationRepository) UpsertLocation(ctx context.Context, loc *models.Location) (bool, error) {
	loc.UpdatedAt = time.Now()

	res, err := r.collection.UpdateOne(ctx, locationIdentity(loc), bson.M{"$set": loc}, options.Update().SetUpsert(true))
	if err != nil {
		logger.Log.WithError(err).WithFields(logrus.Fields{
			"place_id": loc.PlaceID,
			"name":     loc.Name,
		}).Error("Failed to upsert location")
		return false, fmt.Errorf("failed to upsert location: %w", translate(err))
	}
	return res.UpsertedID != nil, nil
}

// ListLocations returns up to limit places ordered by name; limit <= 0 means all.
func (r *LocationRepository) ListLocations(ctx context.Context, limit int64) ([]models.Location, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch locations: %w", err)
	}
	defer cursor.Close(ctx)

	locations := []models.Location{}
	if err := cursor.All(ctx, &locations); err != nil {
		return nil, fmt.Errorf("failed to decode locations: %w", err)
	}
	return locations, nil
}

// GetLocationByPlaceID fetches a place by its external id.
func (r *LocationRepository) GetLocationByPlaceID(ctx context.Context, placeID string) (*models.Location, error) {
	var loc models.Location
	if err := r.collection.FindOne(ctx, bson.M{"place_id": placeID}).Decode(&loc); err != nil {
		return nil, fmt.Errorf("failed to find location: %w", translate(err))
	}
	return &loc, nil
}
