package news

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"prepwise/internal/core"
	"prepwise/internal/llm"
	"prepwise/internal/sources"
)

type stubFetcher struct {
	name  string
	items []core.NewsItem
	err   error
	calls atomic.Int32
}

func (f *stubFetcher) Name() string { return f.name }

func (f *stubFetcher) Fetch(ctx context.Context) ([]core.NewsItem, error) {
	f.calls.Add(1)
	return f.items, f.err
}

type stubCompleter struct {
	reply string
	err   error
	calls atomic.Int32
}

func (c *stubCompleter) ChatCompletion(ctx context.Context, system, user string, opts llm.Options) (string, error) {
	c.calls.Add(1)
	return c.reply, c.err
}

func item(id, title, url, source string, published time.Time) core.NewsItem {
	return core.NewsItem{
		ID:          id,
		Title:       title,
		URL:         url,
		Summary:     "",
		PublishedAt: published,
		Source:      source,
		Category:    core.CategoryTech,
	}
}

func TestFetchTechNewsAggregates(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := &stubFetcher{name: "a", items: []core.NewsItem{
		item("a-1", "Go compiler speedups", "https://example.com/1", "a", base.Add(-time.Hour)),
	}}
	b := &stubFetcher{name: "b", items: []core.NewsItem{
		item("b-1", "New devops tooling", "https://example.com/2", "b", base),
	}}

	svc := NewService(sourcesList{a, b}.fetchers(), &stubCompleter{})
	items := svc.FetchTechNews(context.Background())

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	// Newest first.
	if items[0].ID != "b-1" {
		t.Errorf("expected newest item first, got %s", items[0].ID)
	}
}

// sourcesList avoids repeating the interface conversion in every test.
type sourcesList []*stubFetcher

func (l sourcesList) fetchers() []sources.Fetcher {
	out := make([]sources.Fetcher, len(l))
	for i, f := range l {
		out[i] = f
	}
	return out
}

func TestFetchTechNewsSourceFailureDegrades(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	healthy := &stubFetcher{name: "healthy", items: []core.NewsItem{
		item("h-1", "Rust compiler release notes", "https://example.com/rust", "healthy", base),
	}}
	broken := &stubFetcher{name: "broken", err: errors.New("connection refused")}

	svc := NewService(sourcesList{healthy, broken}.fetchers(), &stubCompleter{})
	items := svc.FetchTechNews(context.Background())

	if len(items) != 1 {
		t.Fatalf("expected healthy source's item, got %d items", len(items))
	}
	if items[0].ID != "h-1" {
		t.Errorf("unexpected item %s", items[0].ID)
	}
}

func TestFetchTechNewsCaches(t *testing.T) {
	f := &stubFetcher{name: "a", items: []core.NewsItem{
		item("a-1", "Kubernetes news", "https://example.com/1", "a", time.Now().UTC()),
	}}
	svc := NewService(sourcesList{f}.fetchers(), &stubCompleter{})

	svc.FetchTechNews(context.Background())
	svc.FetchTechNews(context.Background())

	if got := f.calls.Load(); got != 1 {
		t.Errorf("expected 1 upstream fetch, got %d", got)
	}
}

func TestFetchTechNewsEmptyResultNotCached(t *testing.T) {
	f := &stubFetcher{name: "a", err: errors.New("outage")}
	svc := NewService(sourcesList{f}.fetchers(), &stubCompleter{})

	svc.FetchTechNews(context.Background())
	svc.FetchTechNews(context.Background())

	if got := f.calls.Load(); got != 2 {
		t.Errorf("empty feed should retry upstream, got %d calls", got)
	}
}

func TestFetchTechNewsDedupesAndCaps(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var items []core.NewsItem
	for i := 0; i < 10; i++ {
		items = append(items, item(
			"a-"+string(rune('0'+i)),
			"Software update",
			"https://example.com/dup",
			"a",
			base.Add(time.Duration(i)*time.Minute),
		))
	}
	f := &stubFetcher{name: "a", items: items}
	svc := NewService(sourcesList{f}.fetchers(), &stubCompleter{}, WithMaxItems(3))

	got := svc.FetchTechNews(context.Background())
	if len(got) != 1 {
		t.Errorf("expected duplicates collapsed to 1 item, got %d", len(got))
	}
}

func TestFetchTechNewsFiltersIrrelevant(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := &stubFetcher{name: "a", items: []core.NewsItem{
		item("a-1", "Local bakery wins award", "https://example.com/1", "a", base),
		item("a-2", "New database engine benchmarks", "https://example.com/2", "a", base),
		{
			ID: "a-3", Title: "Acme is hiring again", URL: "https://example.com/3",
			PublishedAt: base, Source: "a", Category: core.CategoryHiring,
		},
	}}
	svc := NewService(sourcesList{f}.fetchers(), &stubCompleter{})

	got := svc.FetchTechNews(context.Background())
	if len(got) != 2 {
		t.Fatalf("expected the bakery story filtered out, got %d items", len(got))
	}
	for _, it := range got {
		if it.ID == "a-1" {
			t.Error("irrelevant item survived the filter")
		}
	}
}

func TestQueryFilters(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	items := []core.NewsItem{
		{ID: "1", Title: "Go 1.25 released", Source: "hackernews", Category: core.CategoryTech, Tags: []string{"golang"}, PublishedAt: base},
		{ID: "2", Title: "Acme lays off 500", Source: "techcrunch", Category: core.CategoryLayoffs, PublishedAt: base.Add(time.Hour)},
		{ID: "3", Title: "Intern season thread", Source: "reddit", Category: core.CategoryInternships, PublishedAt: base.Add(2 * time.Hour)},
	}
	svc := NewService(nil, &stubCompleter{})

	tests := []struct {
		name string
		opts QueryOptions
		want []string
	}{
		{"all", QueryOptions{}, []string{"1", "2", "3"}},
		{"category all keyword", QueryOptions{Category: "all"}, []string{"1", "2", "3"}},
		{"by category", QueryOptions{Category: "layoffs"}, []string{"2"}},
		{"by source", QueryOptions{Source: "reddit"}, []string{"3"}},
		{"search title", QueryOptions{Search: "go 1.25"}, []string{"1"}},
		{"search tag", QueryOptions{Search: "golang"}, []string{"1"}},
		{"no match", QueryOptions{Search: "quantum"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.Query(items, tt.opts)
			if got.Total != len(tt.want) {
				t.Fatalf("total = %d, want %d", got.Total, len(tt.want))
			}
			for i, id := range tt.want {
				if got.News[i].ID != id {
					t.Errorf("news[%d] = %s, want %s", i, got.News[i].ID, id)
				}
			}
		})
	}
}

func TestQueryPagination(t *testing.T) {
	var items []core.NewsItem
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		items = append(items, core.NewsItem{
			ID: string(rune('a' + i)), Title: "t", PublishedAt: base, Category: core.CategoryTech,
		})
	}
	svc := NewService(nil, &stubCompleter{})

	page := svc.Query(items, QueryOptions{Limit: 2, Offset: 2})
	if len(page.News) != 2 || page.News[0].ID != "c" {
		t.Errorf("unexpected page: %+v", page.News)
	}
	if page.Total != 5 || !page.HasMore {
		t.Errorf("total=%d hasMore=%v, want 5/true", page.Total, page.HasMore)
	}

	last := svc.Query(items, QueryOptions{Limit: 2, Offset: 4})
	if len(last.News) != 1 || last.HasMore {
		t.Errorf("last page: got %d items hasMore=%v", len(last.News), last.HasMore)
	}

	past := svc.Query(items, QueryOptions{Limit: 2, Offset: 100})
	if len(past.News) != 0 || past.HasMore {
		t.Errorf("offset past end should be empty, got %d items", len(past.News))
	}
}

func TestQueryTrendingSortIsDeterministic(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	items := []core.NewsItem{
		{ID: "old-popular", Score: 500, PublishedAt: now.Add(-48 * time.Hour), Category: core.CategoryTech},
		{ID: "fresh-modest", Score: 80, PublishedAt: now.Add(-time.Hour), Category: core.CategoryTech},
		{ID: "fresh-quiet", Score: 2, PublishedAt: now.Add(-time.Hour), Category: core.CategoryTech},
	}
	svc := NewService(nil, &stubCompleter{}, withClock(func() time.Time { return now }))

	first := svc.Query(items, QueryOptions{SortBy: "trending"})
	if first.News[0].ID != "fresh-modest" {
		t.Errorf("expected fresh high-engagement item first, got %s", first.News[0].ID)
	}
	second := svc.Query(items, QueryOptions{SortBy: "trending"})
	for i := range first.News {
		if first.News[i].ID != second.News[i].ID {
			t.Fatalf("trending order changed between identical queries at index %d", i)
		}
	}
}

func TestSummarize(t *testing.T) {
	ai := &stubCompleter{reply: "```json\n{\"summary\":\"Short take.\",\"keyPoints\":[\"a\"],\"techStack\":[\"go\"],\"impact\":\"Matters.\"}\n```"}
	svc := NewService(nil, ai)

	got := svc.Summarize(context.Background(), "article body")
	if got.Summary != "Short take." {
		t.Errorf("summary = %q", got.Summary)
	}
	if len(got.KeyPoints) != 1 || got.KeyPoints[0] != "a" {
		t.Errorf("keyPoints = %v", got.KeyPoints)
	}
}

func TestSummarizeFallback(t *testing.T) {
	long := strings.Repeat("word ", 200)
	tests := []struct {
		name string
		ai   *stubCompleter
	}{
		{"gateway error", &stubCompleter{err: errors.New("401 unauthorized")}},
		{"malformed json", &stubCompleter{reply: "Sure! Here's a summary:"}},
		{"empty summary", &stubCompleter{reply: `{"summary":""}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(nil, tt.ai)
			got := svc.Summarize(context.Background(), long)
			if got.Summary == "" {
				t.Fatal("fallback summary must not be empty")
			}
			if !strings.HasSuffix(got.Summary, "...") {
				t.Errorf("long content fallback should be truncated, got %q", got.Summary)
			}
			if got.KeyPoints == nil || got.TechStack == nil {
				t.Error("fallback arrays must be non-nil for JSON encoding")
			}
		})
	}
}
