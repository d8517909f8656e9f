package services

import (
	"context"
	"io"

	"github.com/studyfindr/studyfindr-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository is satisfied by repository.UserRepository and memory.UserRepository.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsersByEmails(ctx context.Context, emails []string) ([]models.User, error)
	UpdateProfile(ctx context.Context, email string, update models.ProfileUpdate) (*models.User, error)
	SetWeeklyGoal(ctx context.Context, email string, hours float64) (*models.User, error)
	IncCurrentHours(ctx context.Context, email string, delta float64) (*models.User, error)
	SetCurrentHours(ctx context.Context, email string, hours float64) (*models.User, error)
	AddBookmarkRef(ctx context.Context, email, ref string) error
	PullBookmarkRefs(ctx context.Context, email string, refs []string) error
	AddReviewRef(ctx context.Context, email string, reviewID primitive.ObjectID) error
}

type BookmarkRepository interface {
	CreateBookmark(ctx context.Context, bookmark *models.Bookmark) (*models.Bookmark, error)
	FindByPlaceID(ctx context.Context, placeID string) (*models.Bookmark, error)
	FindByNameAndCoordinates(ctx context.Context, name string, lat, lng float64) (*models.Bookmark, error)
	BackfillPlaceID(ctx context.Context, id, placeID string) error
	DeleteByID(ctx context.Context, id string) (bool, error)
	DeleteByPlaceID(ctx context.Context, placeID string) (bool, error)
	ListBookmarks(ctx context.Context, ownerEmail string) ([]models.Bookmark, error)
	FindByReferences(ctx context.Context, ids []primitive.ObjectID, placeIDs, legacyIDs []string) ([]models.Bookmark, error)
}

type ReviewRepository interface {
	UpsertReview(ctx context.Context, userEmail string, locationID interface{}, ratings models.Ratings, comment string) (*models.Review, bool, error)
	ApplyVote(ctx context.Context, id primitive.ObjectID, email, action string) (*models.Review, error)
	ListReviewsByLocation(ctx context.Context, locationID interface{}, q models.ReviewQuery) ([]models.Review, int64, error)
	ListReviewsByUser(ctx context.Context, userEmail string) ([]models.Review, error)
}

type LocationRepository interface {
	UpsertLocation(ctx context.Context, loc *models.Location) (bool, error)
	ListLocations(ctx context.Context, limit int64) ([]models.Location, error)
	GetLocationByPlaceID(ctx context.Context, placeID string) (*models.Location, error)
}

type FileRepository interface {
	SaveFile(ctx context.Context, name, contentType string, content io.Reader) (string, error)
	OpenFile(ctx context.Context, id string) (*models.StoredFile, error)
}
