package crawler

import (
	"errors"
	"time"
)

// ErrInvalidRecord is returned by Normalize for a record without a url.
var ErrInvalidRecord = errors.New("invalid raw record")

// RawRecord is the text visible on one detail page, before any parsing.
// A nil field means the page did not carry it.
type RawRecord struct {
	URL          string   `json:"url"`
	Title        *string  `json:"title"`
	Description  *string  `json:"description"`
	Rating       *string  `json:"rating"`
	ViewCount    *string  `json:"view_count"`
	ReleaseYear  *string  `json:"release_year"`
	Duration     *string  `json:"duration"`
	Genre        []string `json:"genre"`
	Country      *string  `json:"country"`
	ThumbnailURL *string  `json:"thumbnail_url"`
	VideoURL     *string  `json:"video_url"`
	VideoQuality *string  `json:"video_quality"`
	Actors       []string `json:"actors"`
	Director     *string  `json:"director"`
	AgeRating    *string  `json:"age_rating"`
	AccessType   *string  `json:"access_type"`
}

// NormalizedRecord is a RawRecord with typed numeric fields. Fields that
// failed to parse are nil; list fields are never nil.
type NormalizedRecord struct {
	URL          string   `json:"url"`
	Title        string   `json:"title"`
	Description  *string  `json:"description"`
	Rating       *float64 `json:"rating"`
	ViewCount    *int64   `json:"view_count"`
	ReleaseYear  *int     `json:"release_year"`
	Duration     *int     `json:"duration"`
	Genre        []string `json:"genre"`
	Country      *string  `json:"country"`
	ThumbnailURL *string  `json:"thumbnail_url"`
	VideoURL     *string  `json:"video_url"`
	VideoQuality *string  `json:"video_quality"`
	Actors       []string `json:"actors"`
	Director     *string  `json:"director"`
	AgeRating    *string  `json:"age_rating"`
	AccessType   *string  `json:"access_type"`
}

type RunState string

const (
	StateIdle      RunState = "idle"
	StateRunning   RunState = "running"
	StateCompleted RunState = "completed"
	StateFailed    RunState = "failed"
)

// RunStatus describes the current or most recent batch run.
type RunStatus struct {
	RunID           string     `json:"run_id,omitempty"`
	TotalURLs       int        `json:"total_urls"`
	Processed       int        `json:"processed"`
	Failed          int        `json:"failed"`
	Status          RunState   `json:"status"`
	CurrentURL      *string    `json:"current_url"`
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	Errors          []string   `json:"errors"`
	ProgressPercent float64    `json:"progress_percent"`
}

// TestResult is the outcome of crawling one url without persisting it.
type TestResult struct {
	Success       bool              `json:"success"`
	RawData       *RawRecord        `json:"raw_data,omitempty"`
	ProcessedData *NormalizedRecord `json:"processed_data,omitempty"`
	Error         string            `json:"error,omitempty"`
}
