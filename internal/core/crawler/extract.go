package crawler

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selectors locates each field on a detail page.
type Selectors struct {
	Title       string
	Description string
	Rating      string
	ViewCount   string
	Thumbnail   string
	Video       string
	// TagRow matches the unlabeled metadata tags, read by position.
	TagRow string
	// Group matches the labeled link groups (director, genre, cast).
	Group      string
	GroupLabel string
	GroupLink  string
}

var DefaultSelectors = Selectors{
	Title:       "h2.card__title",
	Description: ".intro__info__desc",
	Rating:      "span.rating__summary",
	ViewCount:   ".viewer .viewer__summary",
	Thumbnail:   "section.section--vod-detail img.billboard__image__hero",
	Video:       "video#VIE_PLAYER",
	TagRow:      ".intro__info .intro__info-left .Tag_Base__Jb03L span",
	Group:       ".intro__info .intro__info-right .tags-group",
	GroupLabel:  "label",
	GroupLink:   "a",
}

func (s Selectors) title(doc *goquery.Document) *string       { return firstText(doc, s.Title) }
func (s Selectors) description(doc *goquery.Document) *string { return firstText(doc, s.Description) }
func (s Selectors) rating(doc *goquery.Document) *string      { return firstText(doc, s.Rating) }
func (s Selectors) viewCount(doc *goquery.Document) *string   { return firstText(doc, s.ViewCount) }

// thumbnail and video read the src attribute, not the text.
func (s Selectors) thumbnail(doc *goquery.Document) *string {
	return firstAttr(doc, s.Thumbnail, "src")
}

func (s Selectors) video(doc *goquery.Document) *string {
	return firstAttr(doc, s.Video, "src")
}

// firstText returns the trimmed text of the first match, nil when nothing
// matches or the text is blank.
func firstText(doc *goquery.Document, selector string) *string {
	if doc == nil || selector == "" {
		return nil
	}
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil
	}
	return nonBlank(sel.Text())
}

// firstAttr returns attr of the first match, nil when it is missing or blank.
func firstAttr(doc *goquery.Document, selector, attr string) *string {
	if doc == nil || selector == "" {
		return nil
	}
	v, ok := doc.Find(selector).First().Attr(attr)
	if !ok {
		return nil
	}
	return nonBlank(v)
}

func nonBlank(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
