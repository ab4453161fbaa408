package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"prepwise/internal/core"
	"prepwise/internal/relevance"
)

const (
	hnDefaultBaseURL = "https://hacker-news.firebaseio.com/v0"
	hnMaxConcurrent  = 10
)

// hnStory is a Hacker News item as returned by the Firebase API.
type hnStory struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	By    string `json:"by"`
	Time  int64  `json:"time"`
	Score int    `json:"score"`
}

// HackerNewsFetcher pulls the current top stories from the Hacker News API.
// Story details are fetched one request per story, fanned out through a
// bounded pool of goroutines.
type HackerNewsFetcher struct {
	baseURL    string
	storyLimit int
	client     *http.Client
}

// NewHackerNewsFetcher creates a fetcher taking the first storyLimit top
// stories per Fetch call.
func NewHackerNewsFetcher(storyLimit int, timeout time.Duration) *HackerNewsFetcher {
	if storyLimit <= 0 {
		storyLimit = 20
	}
	return &HackerNewsFetcher{
		baseURL:    hnDefaultBaseURL,
		storyLimit: storyLimit,
		client:     newHTTPClient(timeout),
	}
}

func (f *HackerNewsFetcher) Name() string { return "hackernews" }

func (f *HackerNewsFetcher) Fetch(ctx context.Context) ([]core.NewsItem, error) {
	ids, err := f.fetchStoryIDs(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) > f.storyLimit {
		ids = ids[:f.storyLimit]
	}

	stories := f.fetchStoriesParallel(ctx, ids)

	items := make([]core.NewsItem, 0, len(stories))
	for _, story := range stories {
		// Stories without a title are deleted/dead; skip them.
		if story.Title == "" {
			continue
		}
		url := story.URL
		if url == "" {
			// Ask HN / Show HN posts have no external URL.
			url = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", story.ID)
		}

		items = append(items, core.NewsItem{
			ID:          fmt.Sprintf("hn-%d", story.ID),
			Title:       story.Title,
			URL:         url,
			Summary:     "",
			PublishedAt: time.Unix(story.Time, 0).UTC(),
			Source:      "hackernews",
			Category:    relevance.Categorize(story.Title),
			Tags:        relevance.ExtractTags(story.Title),
			Score:       story.Score,
		})
	}
	return items, nil
}

func (f *HackerNewsFetcher) fetchStoryIDs(ctx context.Context) ([]int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/topstories.json", nil)
	if err != nil {
		return nil, fmt.Errorf("building top stories request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching top story IDs: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("top stories returned status %d", resp.StatusCode)
	}

	var ids []int
	if err := json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		return nil, fmt.Errorf("decoding top story IDs: %w", err)
	}
	return ids, nil
}

// fetchStoriesParallel fans out detail requests through a semaphore-bounded
// pool. Individual story failures are dropped silently: a partial page of
// stories is better than none.
func (f *HackerNewsFetcher) fetchStoriesParallel(ctx context.Context, ids []int) []hnStory {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		stories []hnStory
		sem     = make(chan struct{}, hnMaxConcurrent)
	)

	for _, id := range ids {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			story, err := f.fetchStory(ctx, id)
			if err != nil {
				return
			}

			mu.Lock()
			stories = append(stories, story)
			mu.Unlock()
		}(id)
	}

	wg.Wait()
	return stories
}

func (f *HackerNewsFetcher) fetchStory(ctx context.Context, id int) (hnStory, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/item/%d.json", f.baseURL, id), nil)
	if err != nil {
		return hnStory{}, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return hnStory{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return hnStory{}, fmt.Errorf("story %d returned status %d", id, resp.StatusCode)
	}

	var story hnStory
	if err := json.NewDecoder(resp.Body).Decode(&story); err != nil {
		return hnStory{}, err
	}
	return story, nil
}
