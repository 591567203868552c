package vod

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound   = errors.New("VOD not found")
	ErrInvalidID  = errors.New("invalid VOD id")
	ErrValidation = errors.New("validation failed")
)

// Vod is one catalog document as stored in Mongo.
type Vod struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title"`
	Description  *string            `bson:"description,omitempty" json:"description"`
	URL          string             `bson:"url" json:"url"`
	Tags         []string           `bson:"tags" json:"tags"`
	Rating       *float64           `bson:"rating,omitempty" json:"rating"`
	ViewCount    *int64             `bson:"view_count,omitempty" json:"view_count"`
	ReleaseYear  *int               `bson:"release_year,omitempty" json:"release_year"`
	Duration     *int               `bson:"duration,omitempty" json:"duration"`
	Genre        []string           `bson:"genre" json:"genre"`
	Country      *string            `bson:"country,omitempty" json:"country"`
	ThumbnailURL *string            `bson:"thumbnail_url,omitempty" json:"thumbnail_url"`
	VideoURL     *string            `bson:"video_url,omitempty" json:"video_url"`
	VideoQuality *string            `bson:"video_quality,omitempty" json:"video_quality"`
	Actors       []string           `bson:"actors" json:"actors"`
	Director     *string            `bson:"director,omitempty" json:"director"`
	AgeRating    *string            `bson:"age_rating,omitempty" json:"age_rating"`
	AccessType   *string            `bson:"access_type,omitempty" json:"access_type"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// VodCreate is the create request for a catalog document.
type VodCreate struct {
	Title        string   `json:"title"`
	Description  *string  `json:"description,omitempty"`
	URL          string   `json:"url"`
	Tags         []string `json:"tags"`
	Rating       *float64 `json:"rating,omitempty"`
	ViewCount    *int64   `json:"view_count,omitempty"`
	ReleaseYear  *int     `json:"release_year,omitempty"`
	Duration     *int     `json:"duration,omitempty"`
	Genre        []string `json:"genre"`
	Country      *string  `json:"country,omitempty"`
	ThumbnailURL *string  `json:"thumbnail_url,omitempty"`
	VideoURL     *string  `json:"video_url,omitempty"`
	VideoQuality *string  `json:"video_quality,omitempty"`
	Actors       []string `json:"actors"`
	Director     *string  `json:"director,omitempty"`
	AgeRating    *string  `json:"age_rating,omitempty"`
	AccessType   *string  `json:"access_type,omitempty"`
}

// VodUpdate carries only the fields a client wants to change.
type VodUpdate struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	URL         *string   `json:"url,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

// document builds the stored form of a create request.
func (c VodCreate) document(now time.Time) Vod {
	return Vod{
		Title:        c.Title,
		Description:  c.Description,
		URL:          c.URL,
		Tags:         nonNil(c.Tags),
		Rating:       c.Rating,
		ViewCount:    c.ViewCount,
		ReleaseYear:  c.ReleaseYear,
		Duration:     c.Duration,
		Genre:        nonNil(c.Genre),
		Country:      c.Country,
		ThumbnailURL: c.ThumbnailURL,
		VideoURL:     c.VideoURL,
		VideoQuality: c.VideoQuality,
		Actors:       nonNil(c.Actors),
		Director:     c.Director,
		AgeRating:    c.AgeRating,
		AccessType:   c.AccessType,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
