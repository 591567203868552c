package crawler

import (
	"bytes"
	"context"
	"fmt"

	"vodcrawler/internal/logger"

	"github.com/PuerkitoBio/goquery"
)

// PageCrawler turns one detail page into a RawRecord.
type PageCrawler struct {
	fetcher  Fetcher
	sel      Selectors
	resolver resolver
	log      *logger.Logger
}

func NewPageCrawler(fetcher Fetcher, sel Selectors, loc Locale) *PageCrawler {
	log := logger.New("PageCrawler")
	return &PageCrawler{fetcher: fetcher, sel: sel, resolver: newResolver(sel, loc, log), log: log}
}

// Crawl fetches url once and extracts every field from the same tree.
// Fetch failures are logged and returned; there are no retries.
func (p *PageCrawler) Crawl(ctx context.Context, url string) (*RawRecord, error) {
	body, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		p.log.LogWarnf("crawl %s: %v", url, err)
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		p.log.LogWarnf("parse %s: %v", url, err)
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	rec := p.Extract(url, doc)
	p.log.Debug().Str("url", url).Bool("has_title", rec.Title != nil).Msg("page extracted")
	return rec, nil
}

// Extract builds the record for an already parsed page.
func (p *PageCrawler) Extract(url string, doc *goquery.Document) *RawRecord {
	m := p.resolver.resolve(doc)
	return &RawRecord{
		URL:          url,
		Title:        p.sel.title(doc),
		Description:  p.sel.description(doc),
		Rating:       p.sel.rating(doc),
		ViewCount:    p.sel.viewCount(doc),
		ReleaseYear:  m.ReleaseYear,
		Duration:     m.Duration,
		Genre:        m.Genre,
		Country:      m.Country,
		ThumbnailURL: p.sel.thumbnail(doc),
		VideoURL:     p.sel.video(doc),
		VideoQuality: m.VideoQuality,
		Actors:       m.Actors,
		Director:     m.Director,
		AgeRating:    m.AgeRating,
		AccessType:   m.AccessType,
	}
}
