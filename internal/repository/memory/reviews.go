package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/studyfindr/studyfindr-api/internal/models"
	"github.com/studyfindr/studyfindr-api/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReviewRepository is the in-memory review store.
type ReviewRepository struct {
	mu      sync.RWMutex
	reviews map[primitive.ObjectID]models.Review
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{reviews: make(map[primitive.ObjectID]models.Review)}
}

func cloneReview(rv models.Review) models.Review {
	rv.Likes = append([]string{}, rv.Likes...)
	rv.Dislikes = append([]string{}, rv.Dislikes...)
	return rv
}

func (r *ReviewRepository) UpsertReview(_ context.Context, userEmail string, locationID interface{}, ratings models.Ratings, comment string) (*models.Review, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for id, rv := range r.reviews {
		if rv.UserEmail == userEmail && rv.LocationID == locationID {
			rv.Ratings = ratings
			rv.Comment = comment
			rv.UpdatedAt = &now
			r.reviews[id] = rv
			out := cloneReview(rv)
			return &out, false, nil
		}
	}

	rv := models.Review{
		ID:         primitive.NewObjectID(),
		UserEmail:  userEmail,
		LocationID: locationID,
		Ratings:    ratings,
		Comment:    comment,
		Likes:      []string{},
		Dislikes:   []string{},
		CreatedAt:  now,
		UpdatedAt:  &now,
	}
	r.reviews[rv.ID] = rv
	out := cloneReview(rv)
	return &out, true, nil
}

func without(list []string, email string) []string {
	out := []string{}
	for _, e := range list {
		if e != email {
			out = append(out, e)
		}
	}
	return out
}

func (r *ReviewRepository) ApplyVote(_ context.Context, id primitive.ObjectID, email, action string) (*models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rv, ok := r.reviews[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	switch action {
	case models.VoteLike:
		rv.Dislikes = without(rv.Dislikes, email)
		rv.Likes = append(without(rv.Likes, email), email)
	case models.VoteDislike:
		rv.Likes = without(rv.Likes, email)
		rv.Dislikes = append(without(rv.Dislikes, email), email)
	case models.VoteRemove:
		rv.Likes = without(rv.Likes, email)
		rv.Dislikes = without(rv.Dislikes, email)
	default:
		return nil, fmt.Errorf("unknown vote action %q", action)
	}

	r.reviews[id] = rv
	out := cloneReview(rv)
	return &out, nil
}

// less orders a before b for q, mirroring the Mongo sort stage.
func less(a, b models.Review, q models.ReviewQuery) bool {
	desc := q.SortOrder < 0
	cmp := 0
	switch q.SortBy {
	case "likes":
		cmp = compareInts(len(a.Likes), len(b.Likes))
		if cmp == 0 {
			// created_at then _id, both descending regardless of q.SortOrder
			if c := compareTimes(a.CreatedAt, b.CreatedAt); c != 0 {
				return c > 0
			}
			return compareIDs(a.ID, b.ID) > 0
		}
	case "created_at":
		cmp = compareTimes(a.CreatedAt, b.CreatedAt)
	case "updated_at":
		cmp = compareTimes(updatedAt(a), updatedAt(b))
	case "quietness":
		cmp = compareInts(a.Quietness, b.Quietness)
	case "seating":
		cmp = compareInts(a.Seating, b.Seating)
	case "vibes":
		cmp = compareInts(a.Vibes, b.Vibes)
	case "crowdedness":
		cmp = compareInts(a.Crowdedness, b.Crowdedness)
	case "internet":
		cmp = compareInts(a.Internet, b.Internet)
	}
	if cmp == 0 {
		cmp = compareIDs(a.ID, b.ID)
	}
	if desc {
		return cmp > 0
	}
	return cmp < 0
}

func updatedAt(rv models.Review) time.Time {
	if rv.UpdatedAt == nil {
		return time.Time{}
	}
	return *rv.UpdatedAt
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

func compareIDs(a, b primitive.ObjectID) int {
	for i := range a {
		if a[i] != b[i] {
			return compareInts(int(a[i]), int(b[i]))
		}
	}
	return 0
}

func (r *ReviewRepository) ListReviewsByLocation(_ context.Context, locationID interface{}, q models.ReviewQuery) ([]models.Review, int64, error) {
	r.mu.RLock()
	var matched []models.Review
	for _, rv := range r.reviews {
		if rv.LocationID == locationID {
			matched = append(matched, cloneReview(rv))
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return less(matched[i], matched[j], q) })

	total := int64(len(matched))
	start := q.Page * q.Limit
	if start < 0 || start > total {
		start = total
	}
	end := start + q.Limit
	if end < start || end > total {
		end = total
	}
	page := append([]models.Review{}, matched[start:end]...)
	return page, total, nil
}

func (r *ReviewRepository) ListReviewsByUser(_ context.Context, userEmail string) ([]models.Review, error) {
	r.mu.RLock()
	out := []models.Review{}
	for _, rv := range r.reviews {
		if rv.UserEmail == userEmail {
			out = append(out, cloneReview(rv))
		}
	}
	r.mu.RUnlock()

	q := models.ReviewQuery{SortBy: "created_at", SortOrder: -1}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j], q) })
	return out, nil
}
