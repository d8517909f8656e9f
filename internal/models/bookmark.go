package models

import "time"

type Coordinates struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// Bookmark is a saved study spot. ID is the ObjectID hex, or the raw string
// for legacy documents whose _id was stored as a string.
type Bookmark struct {
	ID          string      `bson:"-" json:"id"`
	Name        string      `bson:"name" json:"name"`
	Coordinates Coordinates `bson:"coordinates" json:"coordinates"`
	PlaceID     string      `bson:"place_id,omitempty" json:"place_id,omitempty"`
	Description string      `bson:"description,omitempty" json:"description,omitempty"`
	Address     string      `bson:"address,omitempty" json:"address,omitempty"`
	Rating      *float64    `bson:"rating,omitempty" json:"rating,omitempty"`
	UserEmail   string      `bson:"user_email,omitempty" json:"user_email,omitempty"`
	CreatedAt   time.Time   `bson:"created_at" json:"created_at"`
}
