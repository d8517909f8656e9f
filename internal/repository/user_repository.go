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

// UserRepository handles database operations related to users.
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
	}
}

// CreateUser inserts a new user into the database.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	if user.Bookmarks == nil {
		user.Bookmarks = []string{}
	}
	if user.Reviews == nil {
		user.Reviews = []primitive.ObjectID{}
	}

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		logger.Log.WithError(err).WithField("email", user.Email).Error("Failed to insert user into database")
		return nil, fmt.Errorf("failed to insert user: %w", translate(err))
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	user.ID = insertedID

	logger.Log.WithField("userID", user.ID.Hex()).Info("User inserted successfully")
	return user, nil
}

// GetUserByEmail retrieves a user by email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{
			"email": email,
			"error": err,
		}).Debug("Failed to find user by email")
		return nil, fmt.Errorf("failed to find user by email: %w", translate(err))
	}
	return &user, nil
}

// GetUsersByEmails fetches the users whose email is in emails.
func (r *UserRepository) GetUsersByEmails(ctx context.Context, emails []string) ([]models.User, error) {
	if len(emails) == 0 {
		return nil, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"email": bson.M{"$in": emails}})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users by email: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// UpdateProfile sets the non-nil fields of update.
func (r *UserRepository) UpdateProfile(ctx context.Context, email string, update models.ProfileUpdate) (*models.User, error) {
	set := bson.M{}
	if update.Username != nil {
		set["username"] = *update.Username
	}
	if update.ProfilePicture != nil {
		set["profile_picture"] = *update.ProfilePicture
	}
	return r.findOneAndUpdate(ctx, email, bson.M{"$set": set}, "update profile")
}

// SetWeeklyGoal stores the user's weekly study goal.
func (r *UserRepository) SetWeeklyGoal(ctx context.Context, email string, hours float64) (*models.User, error) {
	return r.findOneAndUpdate(ctx, email, bson.M{"$set": bson.M{"weekly_goal_hours": hours}}, "set weekly goal")
}

// IncCurrentHours adds delta (which may be negative) to the user's weekly hours.
func (r *UserRepository) IncCurrentHours(ctx context.Context, email string, delta float64) (*models.User, error) {
	return r.findOneAndUpdate(ctx, email, bson.M{"$inc": bson.M{"current_weekly_hours": delta}}, "increment current hours")
}

// SetCurrentHours overwrites the user's weekly hours.
func (r *UserRepository) SetCurrentHours(ctx context.Context, email string, hours float64) (*models.User, error) {
	return r.findOneAndUpdate(ctx, email, bson.M{"$set": bson.M{"current_weekly_hours": hours}}, "set current hours")
}

// AddBookmarkRef adds ref to the user's bookmark set.
func (r *UserRepository) AddBookmarkRef(ctx context.Context, email, ref string) error {
	_, err := r.findOneAndUpdate(ctx, email, bson.M{"$addToSet": bson.M{"bookmarks": ref}}, "add bookmark ref")
	return err
}

// PullBookmarkRefs removes every listed entry from the user's bookmark set.
func (r *UserRepository) PullBookmarkRefs(ctx context.Context, email string, refs []string) error {
	_, err := r.findOneAndUpdate(ctx, email, bson.M{"$pull": bson.M{"bookmarks": bson.M{"$in": refs}}}, "pull bookmark refs")
	return err
}

// AddReviewRef records a review id on its author.
func (r *UserRepository) AddReviewRef(ctx context.Context, email string, reviewID primitive.ObjectID) error {
	_, err := r.findOneAndUpdate(ctx, email, bson.M{"$addToSet": bson.M{"reviews": reviewID}}, "add review ref")
	return err
}

func (r *UserRepository) findOneAndUpdate(ctx context.Context, email string, update bson.M, op string) (*models.User, error) {
	if set, ok := update["$set"].(bson.M); ok {
		set["updated_at"] = time.Now()
	} else {
		update["$set"] = bson.M{"updated_at": time.Now()}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"email": email}, update, opts).Decode(&user)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{
			"email": email,
			"error": err,
		}).Warnf("Failed to %s", op)
		return nil, fmt.Errorf("failed to %s: %w", op, translate(err))
	}

	logger.Log.WithField("userID", user.ID.Hex()).Debugf("User %s succeeded", op)
	return &user, nil
}
