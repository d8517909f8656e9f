package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ratings are the five 1..5 scores a review gives a study spot.
type Ratings struct {
	Quietness   int `bson:"quietness" json:"quietness"`
	Seating     int `bson:"seating" json:"seating"`
	Vibes       int `bson:"vibes" json:"vibes"`
	Crowdedness int `bson:"crowdedness" json:"crowdedness"`
	Internet    int `bson:"internet" json:"internet"`
}

// Review is unique per (UserEmail, LocationID). LocationID is an int64 for
// numeric ids and a string otherwise.
type Review struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserEmail  string             `bson:"user_email" json:"user_email"`
	LocationID interface{}        `bson:"location_id" json:"location_id"`
	Ratings    `bson:",inline"`
	Comment    string     `bson:"comment" json:"comment"`
	Likes      []string   `bson:"likes" json:"likes"`
	Dislikes   []string   `bson:"dislikes" json:"dislikes"`
	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt  *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`

	// Filled at read time from the author's user document.
	UserName       string `bson:"-" json:"user_name,omitempty"`
	ProfilePicture string `bson:"-" json:"profile_picture,omitempty"`
}

// Vote actions accepted by the rating endpoint.
const (
	VoteLike    = "like"
	VoteDislike = "dislike"
	VoteRemove  = "remove"
)

// ReviewQuery pages and orders a location's reviews.
type ReviewQuery struct {
	Page      int64
	Limit     int64
	SortBy    string
	SortOrder int
}

// ReviewPage is one page of a location's reviews.
type ReviewPage struct {
	Reviews    []Review `json:"reviews"`
	TotalCount int64    `json:"total_count"`
	HasMore    bool     `json:"has_more"`
	Page       int64    `json:"page"`
}
