package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/studyfindr/studyfindr-api/internal/models"
	"github.com/studyfindr/studyfindr-api/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// bookmarkDoc keeps _id untyped so legacy string ids decode alongside ObjectIDs.
type bookmarkDoc struct {
	ID              interface{} `bson:"_id,omitempty"`
	models.Bookmark `bson:",inline"`
}

func (d bookmarkDoc) toModel() models.Bookmark {
	b := d.Bookmark
	switch id := d.ID.(type) {
	case primitive.ObjectID:
		b.ID = id.Hex()
	case string:
		b.ID = id
	case nil:
	default:
		b.ID = fmt.Sprint(id)
	}
	return b
}

// bookmarkIDValue returns the _id value for a bookmark id string.
func bookmarkIDValue(id string) interface{} {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

// BookmarkRepository handles database operations related to bookmarks.
type BookmarkRepository struct {
	collection *mongo.Collection
}

// NewBookmarkRepository creates a new instance of BookmarkRepository.
func NewBookmarkRepository(db *mongo.Database) *BookmarkRepository {
	return &BookmarkRepository{
		collection: db.Collection("bookmarks"),
	}
}

// CreateBookmark inserts a bookmark and assigns its generated id.
func (r *BookmarkRepository) CreateBookmark(ctx context.Context, bookmark *models.Bookmark) (*models.Bookmark, error) {
	bookmark.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, bookmarkDoc{Bookmark: *bookmark})
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert bookmark")
		return nil, fmt.Errorf("failed to insert bookmark: %w", translate(err))
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	bookmark.ID = insertedID.Hex()

	logger.Log.WithField("bookmark_id", bookmark.ID).Info("Bookmark created successfully")
	return bookmark, nil
}

// FindByPlaceID returns the bookmark carrying placeID.
func (r *BookmarkRepository) FindByPlaceID(ctx context.Context, placeID string) (*models.Bookmark, error) {
	return r.findOne(ctx, bson.M{"place_id": placeID})
}

// FindByNameAndCoordinates returns the bookmark with exactly this name and position.
func (r *BookmarkRepository) FindByNameAndCoordinates(ctx context.Context, name string, lat, lng float64) (*models.Bookmark, error) {
	return r.findOne(ctx, bson.M{
		"name":            name,
		"coordinates.lat": lat,
		"coordinates.lng": lng,
	})
}

// BackfillPlaceID sets place_id on a bookmark that does not have one yet.
func (r *BookmarkRepository) BackfillPlaceID(ctx context.Context, id, placeID string) error {
	filter := bson.M{
		"_id":      bookmarkIDValue(id),
		"place_id": bson.M{"$in": bson.A{nil, ""}},
	}
	_, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"place_id": placeID}})
	if err != nil {
		logger.Log.WithError(err).WithField("bookmark_id", id).Error("Failed to backfill place id")
		return fmt.Errorf("failed to backfill place id: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"bookmark_id": id,
		"place_id":    placeID,
	}).Info("Bookmark place id backfilled")
	return nil
}

// DeleteByID removes a bookmark by its id and reports whether one was deleted.
func (r *BookmarkRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": bookmarkIDValue(id)})
	if err != nil {
		logger.Log.WithError(err).WithField("bookmark_id", id).Error("Failed to delete bookmark")
		return false, fmt.Errorf("failed to delete bookmark: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// DeleteByPlaceID removes the bookmarks carrying placeID.
func (r *BookmarkRepository) DeleteByPlaceID(ctx context.Context, placeID string) (bool, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"place_id": placeID})
	if err != nil {
		logger.Log.WithError(err).WithField("place_id", placeID).Error("Failed to delete bookmark by place id")
		return false, fmt.Errorf("failed to delete bookmark: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// ListBookmarks returns every bookmark, or those tagged with ownerEmail when it is set.
func (r *BookmarkRepository) ListBookmarks(ctx context.Context, ownerEmail string) ([]models.Bookmark, error) {
	filter := bson.M{}
	if ownerEmail != "" {
		filter["user_email"] = ownerEmail
	}
	return r.find(ctx, filter)
}

// FindByReferences returns bookmarks whose ObjectID is in ids, whose place_id is in
// placeIDs, or whose legacy string _id is in legacyIDs.
func (r *BookmarkRepository) FindByReferences(ctx context.Context, ids []primitive.ObjectID, placeIDs, legacyIDs []string) ([]models.Bookmark, error) {
	var or bson.A
	if len(ids) > 0 {
		or = append(or, bson.M{"_id": bson.M{"$in": ids}})
	}
	if len(placeIDs) > 0 {
		or = append(or, bson.M{"place_id": bson.M{"$in": placeIDs}})
	}
	if len(legacyIDs) > 0 {
		or = append(or, bson.M{"_id": bson.M{"$in": legacyIDs}})
	}
	if len(or) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"$or": or})
}

func (r *BookmarkRepository) findOne(ctx context.Context, filter bson.M) (*models.Bookmark, error) {
	var doc bookmarkDoc
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to find bookmark: %w", translate(err))
	}
	b := doc.toModel()
	return &b, nil
}

func (r *BookmarkRepository) find(ctx context.Context, filter bson.M) ([]models.Bookmark, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch bookmarks")
		return nil, fmt.Errorf("failed to fetch bookmarks: %w", err)
	}
	defer cursor.Close(ctx)

	bookmarks := []models.Bookmark{}
	for cursor.Next(ctx) {
		var doc bookmarkDoc
		if err := cursor.Decode(&doc); err != nil {
			logger.Log.WithError(err).Error("Failed to decode bookmark")
			return nil, fmt.Errorf("failed to decode bookmark: %w", err)
		}
		bookmarks = append(bookmarks, doc.toModel())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("bookmark cursor: %w", err)
	}
	return bookmarks, nil
}
