package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyfindr/studyfindr-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("get by email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "studyfindr.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "username", Value: "ann"},
			{Key: "email", Value: "ann@example.com"},
			{Key: "weekly_goal_hours", Value: 8.0},
			{Key: "bookmarks", Value: bson.A{"place-1"}},
		}))

		u, err := repo.GetUserByEmail(context.Background(), "ann@example.com")
		require.NoError(mt, err)
		assert.Equal(mt, id, u.ID)
		assert.Equal(mt, "ann", u.Username)
		assert.Equal(mt, []string{"place-1"}, u.Bookmarks)
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "studyfindr.users", mtest.FirstBatch))

		_, err := repo.GetUserByEmail(context.Background(), "nobody@example.com")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("duplicate email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		_, err := repo.CreateUser(context.Background(), &models.User{Email: "ann@example.com"})
		assert.ErrorIs(mt, err, ErrDuplicateKey)
	})

	mt.Run("create", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		u, err := repo.CreateUser(context.Background(), &models.User{Email: "ann@example.com"})
		require.NoError(mt, err)
		assert.False(mt, u.ID.IsZero())
		assert.NotNil(mt, u.Bookmarks)
	})
}

func TestBookmarkRepository_LegacyID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("string id", func(mt *mtest.T) {
		repo := NewBookmarkRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "studyfindr.bookmarks", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "legacy-1"},
			{Key: "name", Value: "Old spot"},
			{Key: "place_id", Value: "p1"},
			{Key: "coordinates", Value: bson.D{{Key: "lat", Value: 1.5}, {Key: "lng", Value: 2.5}}},
		}))

		b, err := repo.FindByPlaceID(context.Background(), "p1")
		require.NoError(mt, err)
		assert.Equal(mt, "legacy-1", b.ID)
		assert.Equal(mt, models.Coordinates{Lat: 1.5, Lng: 2.5}, b.Coordinates)
	})

	mt.Run("object id", func(mt *mtest.T) {
		repo := NewBookmarkRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "studyfindr.bookmarks", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "name", Value: "Cafe"},
		}))

		b, err := repo.FindByPlaceID(context.Background(), "p2")
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), b.ID)
	})
}

func TestReviewRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ratings := models.Ratings{Quietness: 4, Seating: 3, Vibes: 5, Crowdedness: 2, Internet: 4}

	reviewDoc := func(id primitive.ObjectID, likes bson.A) bson.D {
		return bson.D{
			{Key: "_id", Value: id},
			{Key: "user_email", Value: "ann@example.com"},
			{Key: "location_id", Value: int64(42)},
			{Key: "quietness", Value: 4},
			{Key: "likes", Value: likes},
			{Key: "dislikes", Value: bson.A{}},
			{Key: "created_at", Value: time.Now()},
		}
	}

	mt.Run("upsert inserts", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(
				bson.E{Key: "n", Value: 1},
				bson.E{Key: "nModified", Value: 0},
				bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: id}}}},
			),
			mtest.CreateCursorResponse(1, "studyfindr.reviews", mtest.FirstBatch, reviewDoc(id, bson.A{})),
		)

		rv, created, err := repo.UpsertReview(context.Background(), "ann@example.com", int64(42), ratings, "ok")
		require.NoError(mt, err)
		assert.True(mt, created)
		assert.Equal(mt, id, rv.ID)
	})

	mt.Run("upsert updates", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateCursorResponse(1, "studyfindr.reviews", mtest.FirstBatch, reviewDoc(id, bson.A{"bob@example.com"})),
		)

		rv, created, err := repo.UpsertReview(context.Background(), "ann@example.com", int64(42), ratings, "ok")
		require.NoError(mt, err)
		assert.False(mt, created)
		assert.Equal(mt, []string{"bob@example.com"}, rv.Likes)
	})

	mt.Run("upsert retries a lost insert race", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key error"}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateCursorResponse(1, "studyfindr.reviews", mtest.FirstBatch, reviewDoc(id, bson.A{})),
		)

		rv, created, err := repo.UpsertReview(context.Background(), "ann@example.com", int64(42), ratings, "ok")
		require.NoError(mt, err)
		assert.False(mt, created)
		assert.Equal(mt, id, rv.ID)
	})

	mt.Run("apply vote", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: reviewDoc(id, bson.A{"x@example.com"})}))

		rv, err := repo.ApplyVote(context.Background(), id, "x@example.com", models.VoteLike)
		require.NoError(mt, err)
		assert.Equal(mt, []string{"x@example.com"}, rv.Likes)
	})
}

func TestVoteUpdate(t *testing.T) {
	update, err := voteUpdate("x@example.com", models.VoteLike)
	require.NoError(t, err)
	assert.Equal(t, bson.M{"dislikes": "x@example.com"}, update["$pull"])
	assert.Equal(t, bson.M{"likes": "x@example.com"}, update["$addToSet"])

	update, err = voteUpdate("x@example.com", models.VoteRemove)
	require.NoError(t, err)
	assert.NotContains(t, update, "$addToSet")

	_, err = voteUpdate("x@example.com", "love")
	assert.Error(t, err)
}

func TestReviewSort(t *testing.T) {
	assert.Equal(t, bson.D{
		{Key: "likes_count", Value: -1},
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	}, reviewSort(models.ReviewQuery{SortBy: "likes", SortOrder: -1}))

	assert.Equal(t, bson.D{
		{Key: "vibes", Value: 1},
		{Key: "_id", Value: 1},
	}, reviewSort(models.ReviewQuery{SortBy: "vibes", SortOrder: 1}))
}

func TestFileRepository_BucketPerCall(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("separate buckets", func(mt *mtest.T) {
		repo, err := NewFileRepository(mt.DB)
		require.NoError(mt, err)

		expired, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Minute))
		defer cancel()

		first, err := repo.bucket(expired)
		require.NoError(mt, err)
		second, err := repo.bucket(context.Background())
		require.NoError(mt, err)
		assert.NotSame(mt, first, second)
	})

	mt.Run("bad id", func(mt *mtest.T) {
		repo, err := NewFileRepository(mt.DB)
		require.NoError(mt, err)

		_, err = repo.OpenFile(context.Background(), "not-hex")
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}
