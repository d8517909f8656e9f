package services

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/studyfindr/studyfindr-api/internal/apperror"
	"github.com/studyfindr/studyfindr-api/internal/identity"
	"github.com/studyfindr/studyfindr-api/internal/models"
	"github.com/studyfindr/studyfindr-api/internal/repository"
	"github.com/studyfindr/studyfindr-api/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultReviewLimit = 10
	MaxReviewLimit     = 100
)

var reviewSortKeys = map[string]bool{
	"created_at":  true,
	"updated_at":  true,
	"likes":       true,
	"quietness":   true,
	"seating":     true,
	"vibes":       true,
	"crowdedness": true,
	"internet":    true,
}

// ReviewInput is a review submission. Ratings are pointers so a missing score is
// distinguishable from an invalid one.
type ReviewInput struct {
	UserEmail   string
	LocationID  interface{}
	Quietness   *int
	Seating     *int
	Vibes       *int
	Crowdedness *int
	Internet    *int
	Comment     string
}

// ReviewService encapsulates review upserts, votes and listings.
type ReviewService struct {
	repo     ReviewRepository
	userRepo UserRepository
}

// NewReviewService creates a new instance of ReviewService.
func NewReviewService(repo ReviewRepository, userRepo UserRepository) *ReviewService {
	return &ReviewService{
		repo:     repo,
		userRepo: userRepo,
	}
}

func (in ReviewInput) validate() (models.Ratings, interface{}, error) {
	fields := map[string]interface{}{}
	if strings.TrimSpace(in.UserEmail) == "" {
		fields["user_email"] = "User email is required"
	}
	locationID, ok := identity.LocationKey(in.LocationID)
	if !ok {
		fields["location_id"] = "Location id is required"
	}

	scores := []struct {
		name  string
		value *int
	}{
		{"quietness", in.Quietness},
		{"seating", in.Seating},
		{"vibes", in.Vibes},
		{"crowdedness", in.Crowdedness},
		{"internet", in.Internet},
	}
	for _, score := range scores {
		switch {
		case score.value == nil:
			fields[score.name] = "Rating is required"
		case *score.value < 1 || *score.value > 5:
			fields[score.name] = "Rating must be between 1 and 5"
		}
	}
	if len(fields) > 0 {
		return models.Ratings{}, nil, apperror.Validation(fields)
	}

	return models.Ratings{
		Quietness:   *in.Quietness,
		Seating:     *in.Seating,
		Vibes:       *in.Vibes,
		Crowdedness: *in.Crowdedness,
		Internet:    *in.Internet,
	}, locationID, nil
}

// UpsertReview creates the user's review of a location or overwrites its ratings
// and comment. Likes and dislikes of an existing review are kept.
func (s *ReviewService) UpsertReview(ctx context.Context, in ReviewInput) (*models.Review, bool, error) {
	ratings, locationID, err := in.validate()
	if err != nil {
		return nil, false, err
	}
	email := strings.TrimSpace(in.UserEmail)

	if _, err := s.userRepo.GetUserByEmail(ctx, email); err != nil {
		return nil, false, userError(err, email)
	}

	review, created, err := s.repo.UpsertReview(ctx, email, locationID, ratings, strings.TrimSpace(in.Comment))
	if err != nil {
		return nil, false, apperror.Internal(err)
	}
	if created {
		if err := s.userRepo.AddReviewRef(ctx, email, review.ID); err != nil {
			return nil, false, userError(err, email)
		}
	}

	logger.Log.WithFields(logrus.Fields{
		"review_id":   review.ID.Hex(),
		"location_id": locationID,
		"created":     created,
	}).Info("Review upserted")
	return review, created, nil
}

// RateReview applies a like, dislike or remove by email and returns the new counts.
func (s *ReviewService) RateReview(ctx context.Context, reviewID, email, action string) (*models.Review, error) {
	fields := map[string]interface{}{}
	oid, err := primitive.ObjectIDFromHex(reviewID)
	if err != nil {
		fields["review_id"] = "Invalid review id"
	}
	if strings.TrimSpace(email) == "" {
		fields["user_email"] = "User email is required"
	}
	switch action {
	case models.VoteLike, models.VoteDislike, models.VoteRemove:
	default:
		fields["action"] = "Action must be one of like, dislike, remove"
	}
	if len(fields) > 0 {
		return nil, apperror.Validation(fields)
	}

	review, err := s.repo.ApplyVote(ctx, oid, email, action)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("review_id", "Review not found")
		}
		return nil, apperror.Internal(err)
	}

	logger.Log.WithFields(logrus.Fields{
		"review_id": reviewID,
		"action":    action,
		"likes":     len(review.Likes),
		"dislikes":  len(review.Dislikes),
	}).Info("Review rated")
	return review, nil
}

// NormalizeQuery fills defaults: page 0, limit 10 (max 100), created_at descending.
func NormalizeQuery(q models.ReviewQuery) models.ReviewQuery {
	if q.Page < 0 {
		q.Page = 0
	}
	if q.Limit <= 0 {
		q.Limit = DefaultReviewLimit
	}
	if q.Limit > MaxReviewLimit {
		q.Limit = MaxReviewLimit
	}
	// Page*Limit is the skip and must not overflow.
	if q.Page > math.MaxInt64/q.Limit {
		q.Page = math.MaxInt64 / q.Limit
	}
	if !reviewSortKeys[q.SortBy] {
		q.SortBy = "created_at"
	}
	if q.SortOrder != 1 {
		q.SortOrder = -1
	}
	return q
}

// ListByLocation returns one page of a location's reviews with live author details.
func (s *ReviewService) ListByLocation(ctx context.Context, rawLocationID interface{}, q models.ReviewQuery) (*models.ReviewPage, error) {
	locationID, ok := identity.LocationKey(rawLocationID)
	if !ok {
		return nil, apperror.ValidationField("location_id", "Location id is required")
	}
	q = NormalizeQuery(q)

	reviews, total, err := s.repo.ListReviewsByLocation(ctx, locationID, q)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if err := s.attachAuthors(ctx, reviews); err != nil {
		return nil, err
	}

	skip := q.Page * q.Limit
	return &models.ReviewPage{
		Reviews:    reviews,
		TotalCount: total,
		HasMore:    skip < total && skip+int64(len(reviews)) < total,
		Page:       q.Page,
	}, nil
}

// ListByUser returns every review the user wrote.
func (s *ReviewService) ListByUser(ctx context.Context, email string) ([]models.Review, error) {
	if strings.TrimSpace(email) == "" {
		return nil, apperror.ValidationField("email", "Email is required")
	}
	reviews, err := s.repo.ListReviewsByUser(ctx, email)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if err := s.attachAuthors(ctx, reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// attachAuthors copies each author's current name and picture onto the reviews.
// Nothing is stored, so profile edits show up on old reviews.
func (s *ReviewService) attachAuthors(ctx context.Context, reviews []models.Review) error {
	if len(reviews) == 0 {
		return nil
	}

	emails := make([]string, 0, len(reviews))
	seen := make(map[string]bool)
	for _, rv := range reviews {
		if !seen[rv.UserEmail] {
			seen[rv.UserEmail] = true
			emails = append(emails, rv.UserEmail)
		}
	}

	users, err := s.userRepo.GetUsersByEmails(ctx, emails)
	if err != nil {
		return apperror.Internal(err)
	}
	authors := make(map[string]models.PublicUser, len(users))
	for _, u := range users {
		authors[u.Email] = models.PublicUser{Username: u.Username, ProfilePicture: u.ProfilePicture}
	}

	for i := range reviews {
		if author, ok := authors[reviews[i].UserEmail]; ok {
			reviews[i].UserName = author.Username
			reviews[i].ProfilePicture = author.ProfilePicture
		} else {
			reviews[i].UserName = "Anonymous"
		}
	}
	return nil
}
