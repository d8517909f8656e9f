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

// ReviewRepository handles database operations related to reviews.
type ReviewRepository struct {
	collection *mongo.Collection
}

// NewReviewRepository creates a new instance of ReviewRepository.
func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{
		collection: db.Collection("reviews"),
	}
}

// UpsertReview writes the ratings for (userEmail, locationID). An existing review
// keeps its likes, dislikes and created_at; created reports whether one was inserted.
func (r *ReviewRepository) UpsertReview(ctx context.Context, userEmail string, locationID interface{}, ratings models.Ratings, comment string) (*models.Review, bool, error) {
	filter := bson.M{"user_email": userEmail, "location_id": locationID}
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"quietness":   ratings.Quietness,
			"seating":     ratings.Seating,
			"vibes":       ratings.Vibes,
			"crowdedness": ratings.Crowdedness,
			"internet":    ratings.Internet,
			"comment":     comment,
			"updated_at":  now,
		},
		"$setOnInsert": bson.M{
			"likes":      bson.A{},
			"dislikes":   bson.A{},
			"created_at": now,
		},
	}
	opts := options.Update().SetUpsert(true)

	res, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		// Two first submissions raced on the unique index; the loser matches now.
		res, err = r.collection.UpdateOne(ctx, filter, update, opts)
	}
	if err != nil {
		logger.Log.WithError(err).Error("Failed to upsert review")
		return nil, false, fmt.Errorf("failed to upsert review: %w", err)
	}
	created := res.UpsertedCount > 0

	var review models.Review
	if err := r.collection.FindOne(ctx, filter).Decode(&review); err != nil {
		return nil, false, fmt.Errorf("failed to read back review: %w", translate(err))
	}

	logger.Log.WithFields(logrus.Fields{
		"review_id": review.ID.Hex(),
		"created":   created,
	}).Info("Review saved")
	return &review, created, nil
}

// voteUpdate builds the single-document update for a vote so the email ends up
// in at most one of likes and dislikes.
func voteUpdate(email, action string) (bson.M, error) {
	switch action {
	case models.VoteLike:
		return bson.M{"$pull": bson.M{"dislikes": email}, "$addToSet": bson.M{"likes": email}}, nil
	case models.VoteDislike:
		return bson.M{"$pull": bson.M{"likes": email}, "$addToSet": bson.M{"dislikes": email}}, nil
	case models.VoteRemove:
		return bson.M{"$pull": bson.M{"likes": email, "dislikes": email}}, nil
	default:
		return nil, fmt.Errorf("unknown vote action %q", action)
	}
}

// ApplyVote records email's like, dislike or removal atomically and returns the result.
func (r *ReviewRepository) ApplyVote(ctx context.Context, id primitive.ObjectID, email, action string) (*models.Review, error) {
	update, err := voteUpdate(email, action)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var review models.Review
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&review); err != nil {
		logger.Log.WithError(err).WithField("review_id", id.Hex()).Warn("Failed to apply vote")
		return nil, fmt.Errorf("failed to apply vote: %w", translate(err))
	}

	logger.Log.WithFields(logrus.Fields{
		"review_id": id.Hex(),
		"action":    action,
	}).Info("Vote applied")
	return &review, nil
}

// reviewSort returns the $sort stage keys for q. _id is always the last key so
// that pages never overlap.
func reviewSort(q models.ReviewQuery) bson.D {
	if q.SortBy == "likes" {
		return bson.D{
			{Key: "likes_count", Value: q.SortOrder},
			{Key: "created_at", Value: -1},
			{Key: "_id", Value: -1},
		}
	}
	return bson.D{
		{Key: q.SortBy, Value: q.SortOrder},
		{Key: "_id", Value: q.SortOrder},
	}
}

// ListReviewsByLocation returns one page of a location's reviews and the total count.
func (r *ReviewRepository) ListReviewsByLocation(ctx context.Context, locationID interface{}, q models.ReviewQuery) ([]models.Review, int64, error) {
	filter := bson.M{"location_id": locationID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$addFields", Value: bson.M{"likes_count": bson.M{"$size": bson.M{"$ifNull": bson.A{"$likes", bson.A{}}}}}}},
		{{Key: "$sort", Value: reviewSort(q)}},
		{{Key: "$skip", Value: q.Page * q.Limit}},
		{{Key: "$limit", Value: q.Limit}},
		{{Key: "$project", Value: bson.M{"likes_count": 0}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to aggregate reviews")
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, 0, fmt.Errorf("failed to decode reviews: %w", err)
	}
	return reviews, total, nil
}

// ListReviewsByUser returns every review written by userEmail, newest first.
func (r *ReviewRepository) ListReviewsByUser(ctx context.Context, userEmail string) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_email": userEmail}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list user reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	return reviews, nil
}
