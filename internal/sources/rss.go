package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"

	"prepwise/internal/core"
	"prepwise/internal/relevance"
)

// RSSFetcher pulls items from one RSS/Atom feed.
type RSSFetcher struct {
	feedURL string
	source  string
	parser  *gofeed.Parser
}

// NewRSSFetcher creates a fetcher for the given feed URL. The source name
// prefixes item IDs and appears in NewsItem.Source.
func NewRSSFetcher(feedURL, source, userAgent string, timeout time.Duration) *RSSFetcher {
	parser := gofeed.NewParser()
	parser.Client = newHTTPClient(timeout)
	if userAgent != "" {
		parser.UserAgent = userAgent
	}
	return &RSSFetcher{
		feedURL: feedURL,
		source:  source,
		parser:  parser,
	}
}

func (f *RSSFetcher) Name() string { return f.source }

// Fetch parses the feed and maps each entry into a NewsItem. Entries without
// a title or link are discarded.
func (f *RSSFetcher) Fetch(ctx context.Context) ([]core.NewsItem, error) {
	feed, err := f.parser.ParseURLWithContext(f.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching feed %s: %w", f.feedURL, err)
	}

	items := make([]core.NewsItem, 0, len(feed.Items))
	for i, entry := range feed.Items {
		if entry.Title == "" || entry.Link == "" {
			continue
		}

		published := time.Now().UTC()
		if entry.PublishedParsed != nil {
			published = entry.PublishedParsed.UTC()
		} else if entry.UpdatedParsed != nil {
			published = entry.UpdatedParsed.UTC()
		}

		desc := entry.Description
		if desc == "" {
			desc = entry.Content
		}

		items = append(items, core.NewsItem{
			ID:          fmt.Sprintf("%s-%d-%d", f.source, published.Unix(), i),
			Title:       entry.Title,
			URL:         entry.Link,
			Summary:     truncate(stripHTML(desc), maxSummaryLen),
			PublishedAt: published,
			Source:      f.source,
			Category:    relevance.Categorize(entry.Title),
			Tags:        relevance.ExtractTags(entry.Title),
		})
	}
	return items, nil
}
