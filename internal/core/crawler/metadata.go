package crawler

import (
	"fmt"
	"strings"

	"vodcrawler/internal/logger"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

const defaultAccessType = "free"

// metadata is what the resolver recovers from the tag row and the labeled
// groups of a detail page.
type metadata struct {
	ReleaseYear  *string
	AccessType   *string
	AgeRating    *string
	Country      *string
	Duration     *string
	VideoQuality *string
	Director     *string
	Genre        []string
	Actors       []string
}

type tagAssigner func(m *metadata, text string)

// tagLayout maps tag row positions to fields. The row carries no labels, so
// position is the only key: reordering upstream misassigns silently.
// Positions past the end reuse the last entry.
var tagLayout = []tagAssigner{
	func(m *metadata, t string) {
		if isReleaseYear(t) {
			m.ReleaseYear = &t
			return
		}
		m.AccessType = &t
	},
	func(m *metadata, t string) { m.AgeRating = &t },
	func(m *metadata, t string) { m.Country = &t },
	func(m *metadata, t string) { m.Duration = &t },
	func(m *metadata, t string) { m.VideoQuality = &t },
}

func assignerAt(i int) tagAssigner {
	if i >= len(tagLayout) {
		return tagLayout[len(tagLayout)-1]
	}
	return tagLayout[i]
}

// isReleaseYear reports whether t is four ASCII digits starting with "20".
func isReleaseYear(t string) bool {
	if len(t) != 4 || !strings.HasPrefix(t, "20") {
		return false
	}
	for i := 0; i < len(t); i++ {
		if t[i] < '0' || t[i] > '9' {
			return false
		}
	}
	return true
}

type resolver struct {
	sel    Selectors
	locale Locale
	log    *logger.Logger
}

func newResolver(sel Selectors, loc Locale, log *logger.Logger) resolver {
	return resolver{sel: sel, locale: loc.normalized(), log: log}
}

// resolve never fails: a panic while walking the page returns whatever was
// assigned before it.
func (r resolver) resolve(doc *goquery.Document) (m metadata) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Str("panic", fmt.Sprint(rec)).Msg("metadata resolution aborted, keeping partial result")
		}
	}()
	if doc == nil {
		return m
	}
	r.resolveTags(doc, &m)
	r.resolveGroups(doc, &m)
	return m
}

func (r resolver) resolveTags(doc *goquery.Document, m *metadata) {
	tags := doc.Find(r.sel.TagRow)
	tags.Each(func(i int, s *goquery.Selection) {
		t := strings.TrimSpace(s.Text())
		if t == "" {
			return
		}
		assignerAt(i)(m, t)
	})
	if tags.Length() > 0 && m.AccessType == nil {
		free := defaultAccessType
		m.AccessType = &free
	}
}

func (r resolver) resolveGroups(doc *goquery.Document, m *metadata) {
	doc.Find(r.sel.Group).Each(func(_ int, g *goquery.Selection) {
		label := norm.NFC.String(strings.TrimSpace(g.Find(r.sel.GroupLabel).First().Text()))
		if label == "" {
			return
		}
		links := g.Find(r.sel.GroupLink)
		switch {
		case strings.HasPrefix(label, r.locale.DirectorLabel):
			m.Director = nonBlank(links.First().Text())
		case strings.HasPrefix(label, r.locale.GenreLabel):
			m.Genre = linkTexts(links)
		case strings.HasPrefix(label, r.locale.CastLabel):
			m.Actors = linkTexts(links)
		}
	})
}

func linkTexts(links *goquery.Selection) []string {
	out := make([]string, 0, links.Length())
	links.Each(func(_ int, a *goquery.Selection) {
		if t := strings.TrimSpace(a.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}
