package crawler

import (
	"context"
	"os"
	"strconv"
	"strings"
	"testing"

	"vodcrawler/internal/logger"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return b
}

func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

// tagRow renders the unlabeled metadata tags in document order.
func tagRow(tags ...string) string {
	var b strings.Builder
	b.WriteString(`<div class="intro__info"><div class="intro__info-left">`)
	for _, t := range tags {
		b.WriteString(`<div class="Tag_Base__Jb03L"><span>` + t + `</span></div>`)
	}
	b.WriteString(`</div></div>`)
	return b.String()
}

func str(s string) *string { return &s }

func testResolver(loc Locale) resolver {
	return newResolver(DefaultSelectors, loc, logger.Nop())
}

// staticFetcher serves canned bodies keyed by url.
type staticFetcher struct {
	bodies map[string][]byte
	err    error
}

func (f staticFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, ok := f.bodies[url]
	if !ok {
		return nil, os.ErrNotExist
	}
	return b, nil
}

func itoa(n int) string { return strconv.Itoa(n) }
