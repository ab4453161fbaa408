package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"prepwise/internal/core"
	"prepwise/internal/relevance"
)

const redditDefaultListing = "https://www.reddit.com/r/cscareerquestions+programming+ExperiencedDevs+csMajors/hot.json?limit=25"

// redditListing mirrors the parts of Reddit's listing JSON we consume.
type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	SelfText   string  `json:"selftext"`
	URL        string  `json:"url"`
	Permalink  string  `json:"permalink"`
	Subreddit  string  `json:"subreddit"`
	CreatedUTC float64 `json:"created_utc"`
	Score      int     `json:"score"`
	Stickied   bool    `json:"stickied"`
}

// RedditFetcher pulls a batch of posts from one multi-subreddit listing.
// Reddit rejects requests with a default HTTP library user agent, so a
// custom one is mandatory.
type RedditFetcher struct {
	listingURL string
	userAgent  string
	client     *http.Client
}

// NewRedditFetcher creates a fetcher for the given listing URL. An empty
// URL falls back to the default multi-community listing.
func NewRedditFetcher(listingURL, userAgent string, timeout time.Duration) *RedditFetcher {
	if listingURL == "" {
		listingURL = redditDefaultListing
	}
	if userAgent == "" {
		userAgent = "prepwise-news-aggregator/1.0"
	}
	return &RedditFetcher{
		listingURL: listingURL,
		userAgent:  userAgent,
		client:     newHTTPClient(timeout),
	}
}

func (f *RedditFetcher) Name() string { return "reddit" }

func (f *RedditFetcher) Fetch(ctx context.Context) ([]core.NewsItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.listingURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building reddit request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching reddit listing: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit listing returned status %d", resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decoding reddit listing: %w", err)
	}

	items := make([]core.NewsItem, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		post := child.Data
		if post.Title == "" || post.Stickied {
			continue
		}

		url := post.URL
		if url == "" {
			url = "https://www.reddit.com" + post.Permalink
		}

		items = append(items, core.NewsItem{
			ID:          "reddit-" + post.ID,
			Title:       post.Title,
			URL:         url,
			Summary:     truncate(stripHTML(post.SelfText), maxSummaryLen),
			PublishedAt: time.Unix(int64(post.CreatedUTC), 0).UTC(),
			Source:      "reddit",
			Category:    relevance.CategoryForCommunity(post.Subreddit, post.Title),
			Tags:        relevance.ExtractTags(post.Title),
			Score:       post.Score,
		})
	}
	return items, nil
}
