// Package news aggregates items from all configured content sources into a
// single cached tech news feed and serves filtered views over it.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"prepwise/internal/cache"
	"prepwise/internal/core"
	"prepwise/internal/llm"
	"prepwise/internal/logger"
	"prepwise/internal/relevance"
	"prepwise/internal/sources"
)

const (
	feedCacheKey       = "news:feed"
	defaultMaxItems    = 50
	summaryFallbackLen = 300
)

// Service aggregates, caches and queries news items.
type Service struct {
	fetchers []sources.Fetcher
	cache    *cache.Cache
	cacheTTL time.Duration
	maxItems int
	ai       llm.Completer
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithMaxItems caps the aggregated feed size.
func WithMaxItems(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxItems = n
		}
	}
}

// WithCacheTTL sets how long an aggregated feed stays fresh.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates the aggregation service. The AI completer is used only
// by Summarize and may be a client without credentials; summarization then
// degrades to an extractive fallback.
func NewService(fetchers []sources.Fetcher, ai llm.Completer, opts ...Option) *Service {
	s := &Service{
		fetchers: fetchers,
		cache:    cache.New(),
		cacheTTL: 5 * time.Minute,
		maxItems: defaultMaxItems,
		ai:       ai,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchTechNews returns the aggregated feed, serving from cache while fresh.
// All sources are queried concurrently; a failing source contributes nothing
// instead of failing the call. The method itself never returns an error.
func (s *Service) FetchTechNews(ctx context.Context) []core.NewsItem {
	if cached, ok := s.cache.Get(feedCacheKey); ok {
		return cached.([]core.NewsItem)
	}

	items := s.fetchAll(ctx)
	items = dedupeByURL(items)
	items = filterRelevant(items)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
	if len(items) > s.maxItems {
		items = items[:s.maxItems]
	}

	// An all-sources-down outage yields an empty feed; don't cache it so the
	// next request retries immediately.
	if len(items) > 0 {
		s.cache.Set(feedCacheKey, items, s.cacheTTL)
	}
	return items
}

func (s *Service) fetchAll(ctx context.Context) []core.NewsItem {
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		all []core.NewsItem
	)
	for _, fetcher := range s.fetchers {
		wg.Add(1)
		go func(f sources.Fetcher) {
			defer wg.Done()
			items, err := f.Fetch(ctx)
			if err != nil {
				logger.Warn("news source fetch failed", "source", f.Name(), "error", err)
				return
			}
			mu.Lock()
			all = append(all, items...)
			mu.Unlock()
		}(fetcher)
	}
	wg.Wait()
	return all
}

func dedupeByURL(items []core.NewsItem) []core.NewsItem {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, item := range items {
		if seen[item.URL] {
			continue
		}
		seen[item.URL] = true
		out = append(out, item)
	}
	return out
}

func filterRelevant(items []core.NewsItem) []core.NewsItem {
	out := items[:0]
	for _, item := range items {
		if relevance.IsRelevant(item) {
			out = append(out, item)
		}
	}
	return out
}

// QueryOptions narrows and pages the aggregated feed.
type QueryOptions struct {
	Category string
	Search   string
	Source   string
	SortBy   string
	Limit    int
	Offset   int
}

// QueryResult is one page of the filtered feed.
type QueryResult struct {
	News    []core.NewsItem `json:"news"`
	Total   int             `json:"total"`
	HasMore bool            `json:"hasMore"`
}

// Query filters, sorts and pages items. Total counts matches before paging.
func (s *Service) Query(items []core.NewsItem, opts QueryOptions) QueryResult {
	filtered := make([]core.NewsItem, 0, len(items))
	search := strings.ToLower(opts.Search)
	for _, item := range items {
		if opts.Category != "" && opts.Category != "all" && string(item.Category) != opts.Category {
			continue
		}
		if opts.Source != "" && opts.Source != "all" && item.Source != opts.Source {
			continue
		}
		if search != "" && !matchesSearch(item, search) {
			continue
		}
		filtered = append(filtered, item)
	}

	switch opts.SortBy {
	case "latest":
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].PublishedAt.After(filtered[j].PublishedAt)
		})
	case "trending":
		now := s.now()
		sort.SliceStable(filtered, func(i, j int) bool {
			return trendingScore(filtered[i], now) > trendingScore(filtered[j], now)
		})
	}

	total := len(filtered)
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	end := offset + limit
	if end > total {
		end = total
	}

	return QueryResult{
		News:    filtered[offset:end],
		Total:   total,
		HasMore: end < total,
	}
}

func matchesSearch(item core.NewsItem, search string) bool {
	if strings.Contains(strings.ToLower(item.Title), search) {
		return true
	}
	if strings.Contains(strings.ToLower(item.Summary), search) {
		return true
	}
	for _, tag := range item.Tags {
		if strings.Contains(tag, search) {
			return true
		}
	}
	return false
}

// trendingScore ranks an item by engagement decayed over age. Items without
// an engagement score still rank by recency alone.
func trendingScore(item core.NewsItem, now time.Time) float64 {
	ageHours := now.Sub(item.PublishedAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	return (float64(item.Score) + 1) / math.Pow(ageHours+2, 1.5)
}

const summarizeSystemPrompt = `You are a tech news analyst. Summarize the given article for a software engineering audience. Respond with JSON only, no prose, in this shape:
{"summary": "2-3 sentence summary", "keyPoints": ["..."], "techStack": ["..."], "impact": "one sentence on why this matters to developers"}`

// Summarize produces an article summary via the AI gateway, degrading to a
// truncated extract when the gateway or its response is unusable. It never
// returns an error.
func (s *Service) Summarize(ctx context.Context, content string) core.ArticleSummary {
	reply, err := s.ai.ChatCompletion(ctx, summarizeSystemPrompt, content, llm.Options{Temperature: 0.3})
	if err != nil {
		logger.Warn("summarization failed, using extractive fallback", "error", err)
		return fallbackSummary(content)
	}

	var summary core.ArticleSummary
	if err := json.Unmarshal([]byte(llm.StripCodeFences(reply)), &summary); err != nil {
		logger.Warn("summarization returned malformed JSON", "error", err)
		return fallbackSummary(content)
	}
	if summary.Summary == "" {
		return fallbackSummary(content)
	}
	if summary.KeyPoints == nil {
		summary.KeyPoints = []string{}
	}
	if summary.TechStack == nil {
		summary.TechStack = []string{}
	}
	return summary
}

func fallbackSummary(content string) core.ArticleSummary {
	text := strings.Join(strings.Fields(content), " ")
	runes := []rune(text)
	if len(runes) > summaryFallbackLen {
		text = string(runes[:summaryFallbackLen]) + "..."
	}
	return core.ArticleSummary{
		Summary:   text,
		KeyPoints: []string{},
		TechStack: []string{},
		Impact:    fmt.Sprintf("Automatic analysis unavailable; %d characters of source text shown.", len(runes)),
	}
}
