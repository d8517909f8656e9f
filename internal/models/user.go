package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultWeeklyGoalHours is the weekly study goal given to new accounts.
const DefaultWeeklyGoalHours = 8

// User represents a StudyFindr account.
type User struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username           string               `bson:"username" json:"username"`
	Email              string               `bson:"email" json:"email"`
	HashedPassword     string               `bson:"password" json:"-"`
	Role               string               `bson:"role" json:"role"`
	WeeklyGoalHours    float64              `bson:"weekly_goal_hours" json:"weekly_goal_hours"`
	CurrentWeeklyHours float64              `bson:"current_weekly_hours" json:"current_weekly_hours"`
	Bookmarks          []string             `bson:"bookmarks" json:"bookmarks"`
	Reviews            []primitive.ObjectID `bson:"reviews" json:"reviews"`
	ProfilePicture     string               `bson:"profile_picture,omitempty" json:"profile_picture,omitempty"`
	CreatedAt          time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time            `bson:"updated_at" json:"updated_at"`
}

// PublicUser is the author information shown next to a review.
type PublicUser struct {
	Username       string `json:"username"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

// ProfileUpdate lists the optional profile fields a user may change.
type ProfileUpdate struct {
	Username       *string
	ProfilePicture *string
}
