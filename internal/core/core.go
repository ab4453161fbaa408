// Package core defines the shared domain types for prepwise.
package core

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Category classifies a news item. The zero-value bucket is CategoryTech;
// anything more specific bypasses the keyword relevance filter.
type Category string

const (
	CategoryTech        Category = "tech"
	CategoryHiring      Category = "hiring"
	CategoryLayoffs     Category = "layoffs"
	CategoryProjects    Category = "projects"
	CategoryInternships Category = "internships"
	CategoryMixed       Category = "mixed"
)

// NewsItem is the normalized shape every content fetcher produces.
// Items live only as long as the aggregated response or its cache entry.
type NewsItem struct {
	ID          string    `json:"id"`          // Source-prefixed unique identifier (e.g. "hn-12345")
	Title       string    `json:"title"`       // Item headline
	URL         string    `json:"url"`         // Link to the original content
	Summary     string    `json:"summary"`     // Description, stripped of markup, <=300 chars
	PublishedAt time.Time `json:"publishedAt"` // Publication timestamp
	Source      string    `json:"source"`      // Originating source name (e.g. "hackernews")
	Category    Category  `json:"category"`    // Derived category
	Tags        []string  `json:"tags"`        // Keyword tags, capped at 5
	Score       int       `json:"score,omitempty"` // Upstream popularity score, when available
}

// InsightType selects the analytical framing for an insight request.
// It is an open enum: unrecognized values fall through to the general branch.
type InsightType string

const (
	InsightTrend          InsightType = "trend"
	InsightSummary        InsightType = "summary"
	InsightRecommendation InsightType = "recommendation"
	InsightPrediction     InsightType = "prediction"
	InsightAnomaly        InsightType = "anomaly"
	InsightGeneral        InsightType = "general"
)

// InsightRequest is a transient request for AI-generated insights.
type InsightRequest struct {
	Type        InsightType     `json:"type"`
	Data        json.RawMessage `json:"data"`
	Context     string          `json:"context,omitempty"`
	Timeframe   string          `json:"timeframe,omitempty"`
	Preferences json.RawMessage `json:"preferences,omitempty"`
}

// Insight is a single structured insight produced by the engine.
type Insight struct {
	Type           string          `json:"type"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Impact         string          `json:"impact"` // high, medium or low
	Actionable     bool            `json:"actionable"`
	Recommendation string          `json:"recommendation,omitempty"`
	Confidence     int             `json:"confidence"` // Clamped to [0,100]
	Metrics        json.RawMessage `json:"metrics,omitempty"`
}

// InsightResponse is the engine's reply. Insights is always non-empty: a
// total failure degrades to a single low-confidence fallback entry. Slices
// are never nil so the JSON encodes as [] rather than null.
type InsightResponse struct {
	Insights    []Insight `json:"insights"`
	Summary     string    `json:"summary,omitempty"`
	Predictions []string  `json:"predictions"`
	Trends      []string  `json:"trends"`
	Anomalies   []string  `json:"anomalies,omitempty"`
}

// ArticleSummary is the result of summarizing one article's text.
// Slices are never nil so the JSON encodes as [] rather than null.
type ArticleSummary struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"keyPoints"`
	TechStack []string `json:"techStack"`
	Impact    string   `json:"impact"`
}

// EngagementReport is the analytics-insights reply shape.
type EngagementReport struct {
	Insights        []Insight `json:"insights"`
	EngagementScore int       `json:"engagementScore"`
	Predictions     []string  `json:"predictions"`
}

// ChatMessage is one turn of a coaching conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Explanation is the analytics-explain reply shape.
type Explanation struct {
	Explanation  string   `json:"explanation"`
	KeyFindings  []string `json:"keyFindings"`
	WhyItMatters string   `json:"whyItMatters"`
	NextSteps    []string `json:"nextSteps"`
	Confidence   int      `json:"confidence"`
}

// User is a registered account. Password holds the bcrypt hash and is never
// serialized.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// ClampConfidence forces a confidence value into [0,100]. The LLM is asked
// for that range but not trusted to honor it.
func ClampConfidence(c int) int {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}
