package models

import (
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Location is a place written by the places ingestion job.
type Location struct {
	ID           primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	PlaceID      string                 `bson:"place_id,omitempty" json:"place_id,omitempty"`
	Name         string                 `bson:"name" json:"name"`
	Geometry     Geometry               `bson:"geometry" json:"geometry"`
	OpeningHours map[string]interface{} `bson:"opening_hours,omitempty" json:"opening_hours,omitempty"`
	Types        []string               `bson:"types,omitempty" json:"types,omitempty"`
	Vicinity     string                 `bson:"vicinity,omitempty" json:"vicinity,omitempty"`
	Rating       float64                `bson:"rating,omitempty" json:"rating,omitempty"`
	Photos       []Photo                `bson:"photos,omitempty" json:"photos,omitempty"`
	UpdatedAt    time.Time              `bson:"updated_at" json:"updated_at"`
}

type Geometry struct {
	Location Coordinates `bson:"location" json:"location"`
}

type Photo struct {
	PhotoReference string `bson:"photo_reference" json:"photo_reference"`
	Height         int    `bson:"height" json:"height"`
	Width          int    `bson:"width" json:"width"`
}

// StoredFile is an uploaded file read back from the file store.
type StoredFile struct {
	ID          string
	Name        string
	ContentType string
	Length      int64
	Content     io.ReadCloser
}
