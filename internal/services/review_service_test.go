package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyfindr/studyfindr-api/internal/apperror"
	"github.com/studyfindr/studyfindr-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func reviewInput(email string, location interface{}, score int) ReviewInput {
	return ReviewInput{
		UserEmail:   email,
		LocationID:  location,
		Quietness:   intp(score),
		Seating:     intp(score),
		Vibes:       intp(score),
		Crowdedness: intp(score),
		Internet:    intp(score),
		Comment:     "nice",
	}
}

func TestUpsertReview_Validation(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ann", "ann@example.com")

	in := reviewInput("ann@example.com", "loc", 3)
	in.Internet = nil
	in.Vibes = intp(6)
	_, _, err := env.reviewSvc.UpsertReview(context.Background(), in)
	require.Error(t, err)

	appErr := apperror.From(err)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Fields, "internet")
	assert.Contains(t, appErr.Fields, "vibes")

	_, _, err = env.reviewSvc.UpsertReview(context.Background(), reviewInput("", nil, 3))
	appErr = apperror.From(err)
	assert.Contains(t, appErr.Fields, "user_email")
	assert.Contains(t, appErr.Fields, "location_id")
}

func TestUpsertReview_UnknownUser(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.reviewSvc.UpsertReview(context.Background(), reviewInput("nobody@example.com", "loc", 3))
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestUpsertReview_KeepsVotesAndNormalizesLocation(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ann", "ann@example.com")
	ctx := context.Background()

	first, created, err := env.reviewSvc.UpsertReview(ctx, reviewInput("ann@example.com", "42", 3))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(42), first.LocationID)

	_, err = env.reviewSvc.RateReview(ctx, first.ID.Hex(), "bob@example.com", models.VoteLike)
	require.NoError(t, err)

	// A JSON number and a digit string name the same location.
	second, created, err := env.reviewSvc.UpsertReview(ctx, reviewInput("ann@example.com", float64(42), 5))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quietness)
	assert.Equal(t, []string{"bob@example.com"}, second.Likes)
	assert.NotNil(t, second.UpdatedAt)

	u, err := env.userSvc.GetUser(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{first.ID}, u.Reviews)
}

func TestRateReview(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ann", "ann@example.com")
	ctx := context.Background()

	rv, _, err := env.reviewSvc.UpsertReview(ctx, reviewInput("ann@example.com", "loc", 4))
	require.NoError(t, err)
	id := rv.ID.Hex()

	got, err := env.reviewSvc.RateReview(ctx, id, "x@example.com", models.VoteLike)
	require.NoError(t, err)
	assert.Len(t, got.Likes, 1)
	assert.Empty(t, got.Dislikes)

	got, err = env.reviewSvc.RateReview(ctx, id, "x@example.com", models.VoteLike)
	require.NoError(t, err)
	assert.Len(t, got.Likes, 1)

	got, err = env.reviewSvc.RateReview(ctx, id, "x@example.com", models.VoteDislike)
	require.NoError(t, err)
	assert.Empty(t, got.Likes)
	assert.Equal(t, []string{"x@example.com"}, got.Dislikes)

	got, err = env.reviewSvc.RateReview(ctx, id, "x@example.com", models.VoteRemove)
	require.NoError(t, err)
	assert.Empty(t, got.Likes)
	assert.Empty(t, got.Dislikes)

	_, err = env.reviewSvc.RateReview(ctx, id, "x@example.com", "love")
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = env.reviewSvc.RateReview(ctx, primitive.NewObjectID().Hex(), "x@example.com", models.VoteLike)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestListByLocation_PagesCoverEveryReview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	emails := []string{"a@example.com", "b@example.com", "c@example.com", "d@example.com", "e@example.com"}
	for _, email := range emails {
		env.register(t, email[:1], email)
		_, _, err := env.reviewSvc.UpsertReview(ctx, reviewInput(email, "spot", 3))
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	seen := map[string]bool{}
	var page int64
	for {
		res, err := env.reviewSvc.ListByLocation(ctx, "spot", models.ReviewQuery{Page: page, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(5), res.TotalCount)
		for _, rv := range res.Reviews {
			assert.False(t, seen[rv.UserEmail], "review listed twice")
			seen[rv.UserEmail] = true
		}
		if !res.HasMore {
			break
		}
		page++
	}
	assert.Len(t, seen, 5)
	assert.Equal(t, int64(2), page)

	res, err := env.reviewSvc.ListByLocation(ctx, "spot", models.ReviewQuery{Limit: 1})
	require.NoError(t, err)
	require.Len(t, res.Reviews, 1)
	assert.Equal(t, "e@example.com", res.Reviews[0].UserEmail)
}

func TestListByLocation_SortByLikesAndAuthors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.register(t, "ann", "ann@example.com")
	env.register(t, "bob", "bob@example.com")
	annReview, _, err := env.reviewSvc.UpsertReview(ctx, reviewInput("ann@example.com", 7, 3))
	require.NoError(t, err)
	_, _, err = env.reviewSvc.UpsertReview(ctx, reviewInput("bob@example.com", 7, 3))
	require.NoError(t, err)

	_, err = env.reviewSvc.RateReview(ctx, annReview.ID.Hex(), "x@example.com", models.VoteLike)
	require.NoError(t, err)

	res, err := env.reviewSvc.ListByLocation(ctx, "7", models.ReviewQuery{SortBy: "likes", SortOrder: -1})
	require.NoError(t, err)
	require.Len(t, res.Reviews, 2)
	assert.Equal(t, annReview.ID, res.Reviews[0].ID)

	// Author details are read live, so a rename shows on old reviews.
	name := "annie"
	_, err = env.userSvc.UpdateProfile(ctx, "ann@example.com", &name, nil)
	require.NoError(t, err)

	res, err = env.reviewSvc.ListByLocation(ctx, 7, models.ReviewQuery{SortBy: "likes", SortOrder: -1})
	require.NoError(t, err)
	assert.Equal(t, "annie", res.Reviews[0].UserName)
	assert.Equal(t, "bob", res.Reviews[1].UserName)
}

func TestListByLocation_HugePage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "ann", "ann@example.com")
	_, _, err := env.reviewSvc.UpsertReview(ctx, reviewInput("ann@example.com", 5, 4))
	require.NoError(t, err)

	res, err := env.reviewSvc.ListByLocation(ctx, "5", models.ReviewQuery{Page: 100000000000000000, Limit: 100})
	require.NoError(t, err)
	assert.Empty(t, res.Reviews)
	assert.Equal(t, int64(1), res.TotalCount)
	assert.False(t, res.HasMore)
}

func TestNormalizeQuery(t *testing.T) {
	q := NormalizeQuery(models.ReviewQuery{Page: -3, Limit: 1000, SortBy: "password", SortOrder: 7})
	assert.Equal(t, models.ReviewQuery{Page: 0, Limit: MaxReviewLimit, SortBy: "created_at", SortOrder: -1}, q)

	q = NormalizeQuery(models.ReviewQuery{SortBy: "vibes", SortOrder: 1})
	assert.Equal(t, models.ReviewQuery{Limit: DefaultReviewLimit, SortBy: "vibes", SortOrder: 1}, q)

	q = NormalizeQuery(models.ReviewQuery{Page: math.MaxInt64, Limit: 100})
	assert.Equal(t, int64(math.MaxInt64/100), q.Page)
	assert.Positive(t, q.Page*q.Limit)
}

func TestListByUser(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ann", "ann@example.com")
	ctx := context.Background()

	for _, loc := range []string{"one", "two"} {
		_, _, err := env.reviewSvc.UpsertReview(ctx, reviewInput("ann@example.com", loc, 2))
		require.NoError(t, err)
	}

	reviews, err := env.reviewSvc.ListByUser(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
	assert.Equal(t, "ann", reviews[0].UserName)
}
