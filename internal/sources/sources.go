// Package sources implements the content fetchers feeding the news
// aggregation service. Each fetcher talks to one external source and
// normalizes results into core.NewsItem. Fetchers are independent: a failure
// in one source never blocks or fails the others.
package sources

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"prepwise/internal/core"
)

// Fetcher retrieves items from one external source.
type Fetcher interface {
	// Name identifies the source (also used as NewsItem.Source).
	Name() string
	// Fetch returns the source's current items. An empty slice is a normal
	// outcome (rate limited, empty feed); errors are for logging only and
	// the caller treats them as an empty result.
	Fetch(ctx context.Context) ([]core.NewsItem, error)
}

// maxSummaryLen bounds item summaries.
const maxSummaryLen = 300

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// truncate shortens s to at most n runes, appending an ellipsis when
// anything was cut.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// stripHTML extracts the text content of a markup fragment and collapses
// whitespace. Input that fails to parse passes through as-is minus extra
// whitespace.
func stripHTML(s string) string {
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
		s = doc.Text()
	}
	return strings.Join(strings.Fields(s), " ")
}
