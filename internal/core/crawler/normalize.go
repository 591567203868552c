package crawler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"vodcrawler/internal/core/vod"
)

// UnknownTitle replaces a missing title.
const UnknownTitle = "Unknown"

var (
	ratingRe    = regexp.MustCompile(`(\d+\.?\d*)`)
	digitsRe    = regexp.MustCompile(`\d+`)
	viewGroupRe = strings.NewReplacer(".", "", ",", "")
	english     = newDurationParser(LocaleEN)
)

// ParseRating reads the first number in s.
func ParseRating(s string) *float64 {
	m := ratingRe.FindString(s)
	if m == "" {
		return nil
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}
	return &f
}

// ParseViewCount drops grouping separators and reads the first digit run.
func ParseViewCount(s string) *int64 {
	m := digitsRe.FindString(viewGroupRe.Replace(s))
	if m == "" {
		return nil
	}
	n, err := strconv.ParseInt(m, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// ParseReleaseYear accepts only strings made entirely of digits.
func ParseReleaseYear(s string) *int {
	if s == "" {
		return nil
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// ParseDuration reads "<h>h <m>m" or "<m>m" as minutes.
func ParseDuration(s string) *int { return english.parse(s) }

type durationParser struct {
	hoursMinutes *regexp.Regexp
	minutes      *regexp.Regexp
}

func newDurationParser(loc Locale) durationParser {
	h, m := regexp.QuoteMeta(loc.HourUnit), regexp.QuoteMeta(loc.MinuteUnit)
	return durationParser{
		hoursMinutes: regexp.MustCompile(`(?i)^\s*(\d+)\s*` + h + `\s*(\d+)\s*` + m + `\s*$`),
		minutes:      regexp.MustCompile(`(?i)^\s*(\d+)\s*` + m + `\s*$`),
	}
}

func (p durationParser) parse(s string) *int {
	if g := p.hoursMinutes.FindStringSubmatch(s); g != nil {
		h, err1 := strconv.Atoi(g[1])
		m, err2 := strconv.Atoi(g[2])
		if err1 != nil || err2 != nil {
			return nil
		}
		total := h*60 + m
		return &total
	}
	if g := p.minutes.FindStringSubmatch(s); g != nil {
		m, err := strconv.Atoi(g[1])
		if err != nil {
			return nil
		}
		return &m
	}
	return nil
}

// Normalizer converts raw page text into typed values. Durations are read
// with the units of its locale.
type Normalizer struct {
	duration durationParser
}

func NewNormalizer(loc Locale) *Normalizer {
	return &Normalizer{duration: newDurationParser(loc)}
}

// Normalize never fails on field content; unparseable fields become nil.
func (n *Normalizer) Normalize(raw *RawRecord) (*NormalizedRecord, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: nil record", ErrInvalidRecord)
	}
	if raw.URL == "" {
		return nil, fmt.Errorf("%w: empty url", ErrInvalidRecord)
	}

	out := &NormalizedRecord{
		URL:          raw.URL,
		Title:        UnknownTitle,
		Description:  raw.Description,
		Genre:        nonNilList(raw.Genre),
		Country:      raw.Country,
		ThumbnailURL: raw.ThumbnailURL,
		VideoURL:     raw.VideoURL,
		VideoQuality: raw.VideoQuality,
		Actors:       nonNilList(raw.Actors),
		Director:     raw.Director,
		AgeRating:    raw.AgeRating,
		AccessType:   raw.AccessType,
	}
	if raw.Title != nil && *raw.Title != "" {
		out.Title = *raw.Title
	}
	if raw.Rating != nil {
		out.Rating = ParseRating(*raw.Rating)
	}
	if raw.ViewCount != nil {
		out.ViewCount = ParseViewCount(*raw.ViewCount)
	}
	if raw.ReleaseYear != nil {
		out.ReleaseYear = ParseReleaseYear(*raw.ReleaseYear)
	}
	if raw.Duration != nil {
		out.Duration = n.duration.parse(*raw.Duration)
	}
	return out, nil
}

// ToCreate is the catalog create request for the record.
func (r *NormalizedRecord) ToCreate() vod.VodCreate {
	return vod.VodCreate{
		Title:        r.Title,
		Description:  r.Description,
		URL:          r.URL,
		Tags:         []string{},
		Rating:       r.Rating,
		ViewCount:    r.ViewCount,
		ReleaseYear:  r.ReleaseYear,
		Duration:     r.Duration,
		Genre:        r.Genre,
		Country:      r.Country,
		ThumbnailURL: r.ThumbnailURL,
		VideoURL:     r.VideoURL,
		VideoQuality: r.VideoQuality,
		Actors:       r.Actors,
		Director:     r.Director,
		AgeRating:    r.AgeRating,
		AccessType:   r.AccessType,
	}
}

func nonNilList(s []string) []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
