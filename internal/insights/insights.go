// Package insights generates AI-backed analytical insights over caller
// supplied data. All entry points degrade to deterministic fallbacks when
// the AI gateway is unavailable; they never surface gateway errors.
package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"prepwise/internal/cache"
	"prepwise/internal/core"
	"prepwise/internal/llm"
	"prepwise/internal/logger"
)

const (
	defaultCacheTTL      = 5 * time.Minute
	defaultSweepInterval = 10 * time.Minute
	memoDataPrefixLen    = 200
	aiTemperature        = 0.3
)

// Engine turns insight requests into structured responses, memoizing
// identical requests for a short window.
type Engine struct {
	ai          llm.Completer
	cache       *cache.Cache
	cacheTTL    time.Duration
	stopSweeper func()
}

// Option configures an Engine.
type Option func(*engineConfig)

type engineConfig struct {
	cacheTTL      time.Duration
	sweepInterval time.Duration
}

// WithCacheTTL sets how long a generated response is reused.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *engineConfig) {
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithSweepInterval sets how often expired memo entries are purged.
func WithSweepInterval(interval time.Duration) Option {
	return func(c *engineConfig) {
		if interval > 0 {
			c.sweepInterval = interval
		}
	}
}

// NewEngine creates an engine and starts its cache sweeper. Callers own the
// engine's lifecycle and must Close it.
func NewEngine(ai llm.Completer, opts ...Option) *Engine {
	cfg := engineConfig{
		cacheTTL:      defaultCacheTTL,
		sweepInterval: defaultSweepInterval,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := cache.New()
	return &Engine{
		ai:          ai,
		cache:       c,
		cacheTTL:    cfg.cacheTTL,
		stopSweeper: c.StartSweeper(cfg.sweepInterval),
	}
}

// Close stops the background sweeper. Safe to call more than once.
func (e *Engine) Close() {
	e.stopSweeper()
}

// systemPrompts selects the analyst persona per insight type. Unknown types
// fall through to the general prompt.
var systemPrompts = map[core.InsightType]string{
	core.InsightTrend:          `You are a trend analyst for the tech job market. Identify directional movements in the given data.`,
	core.InsightSummary:        `You are a concise analyst. Summarize the given data for a job seeker preparing for interviews.`,
	core.InsightRecommendation: `You are a career coach. Produce concrete, actionable recommendations from the given data.`,
	core.InsightPrediction:     `You are a forecaster. Project likely near-term outcomes from the given data, with stated confidence.`,
	core.InsightAnomaly:        `You are a data analyst. Surface unusual or outlier patterns in the given data.`,
	core.InsightGeneral:        `You are an analyst. Extract the most useful observations from the given data.`,
}

const responseShape = `Respond with JSON only, no prose, in this shape:
{"insights":[{"type":"...","title":"...","description":"...","impact":"low|medium|high","actionable":true,"recommendation":"...","confidence":0}],"summary":"...","predictions":["..."],"trends":["..."]}`

// Generate produces insights for the request, serving memoized responses for
// identical requests within the cache window. It never returns an error.
func (e *Engine) Generate(ctx context.Context, req core.InsightRequest) core.InsightResponse {
	key := memoKey(req)
	if cached, ok := e.cache.Get(key); ok {
		return cached.(core.InsightResponse)
	}

	resp := e.generate(ctx, req)
	e.cache.Set(key, resp, e.cacheTTL)
	return resp
}

func (e *Engine) generate(ctx context.Context, req core.InsightRequest) core.InsightResponse {
	system, ok := systemPrompts[req.Type]
	if !ok {
		system = systemPrompts[core.InsightGeneral]
	}
	system = system + "\n" + responseShape

	var resp core.InsightResponse
	if !e.callAI(ctx, system, buildUserPrompt(req), &resp) {
		return fallbackResponse()
	}
	sanitizeResponse(&resp)
	// The insights list is never empty; a reply with none degrades too.
	if len(resp.Insights) == 0 {
		resp.Insights = fallbackResponse().Insights
	}
	return resp
}

func buildUserPrompt(req core.InsightRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Insight type: %s\n", req.Type)
	if req.Context != "" {
		fmt.Fprintf(&b, "Context: %s\n", req.Context)
	}
	if req.Timeframe != "" {
		fmt.Fprintf(&b, "Timeframe: %s\n", req.Timeframe)
	}
	if len(req.Preferences) > 0 {
		fmt.Fprintf(&b, "User preferences: %s\n", string(req.Preferences))
	}
	fmt.Fprintf(&b, "Data:\n%s", string(req.Data))
	return b.String()
}

// callAI runs one gateway round trip and decodes the JSON reply into out.
// It reports false on any failure so callers can fall back.
func (e *Engine) callAI(ctx context.Context, system, user string, out any) bool {
	reply, err := e.ai.ChatCompletion(ctx, system, user, llm.Options{Temperature: aiTemperature})
	if err != nil {
		logger.Warn("insight generation failed, using fallback", "error", err)
		return false
	}
	if err := json.Unmarshal([]byte(llm.StripCodeFences(reply)), out); err != nil {
		logger.Warn("insight response was not valid JSON", "error", err)
		return false
	}
	return true
}

// fallbackResponse is the fixed degraded-mode answer. Its shape is stable so
// clients can render it like any other response.
func fallbackResponse() core.InsightResponse {
	return core.InsightResponse{
		Insights: []core.Insight{{
			Type:        string(core.InsightGeneral),
			Title:       "Analysis Limited",
			Description: "AI-powered analysis is temporarily unavailable. Basic data review suggests consistent engagement with your preparation activities.",
			Impact:      "medium",
			Actionable:  false,
			Confidence:  50,
		}},
		Summary:     "Detailed analysis is temporarily unavailable.",
		Predictions: []string{},
		Trends:      []string{},
	}
}

func sanitizeResponse(resp *core.InsightResponse) {
	if resp.Insights == nil {
		resp.Insights = []core.Insight{}
	}
	for i := range resp.Insights {
		resp.Insights[i].Confidence = core.ClampConfidence(resp.Insights[i].Confidence)
		if resp.Insights[i].Type == "" {
			resp.Insights[i].Type = string(core.InsightGeneral)
		}
	}
	if resp.Predictions == nil {
		resp.Predictions = []string{}
	}
	if resp.Trends == nil {
		resp.Trends = []string{}
	}
}

// memoKey builds the memoization key from the request's identity fields. The
// data payload contributes only a bounded prefix to keep keys small.
func memoKey(req core.InsightRequest) string {
	data := string(req.Data)
	if len(data) > memoDataPrefixLen {
		data = data[:memoDataPrefixLen]
	}
	return fmt.Sprintf("insight:%s|%s|%s|%s", req.Type, data, req.Context, req.Timeframe)
}

const engagementSystemPrompt = `You are an engagement analyst for an interview preparation platform. Assess the user's activity data and score their overall engagement from 0 to 100.
Respond with JSON only, no prose, in this shape:
{"insights":[{"type":"...","title":"...","description":"...","impact":"low|medium|high","actionable":true,"recommendation":"...","confidence":0}],"engagementScore":0,"predictions":["..."]}`

// AnalyzeEngagement scores user activity data. Degrades like Generate.
func (e *Engine) AnalyzeEngagement(ctx context.Context, data json.RawMessage) core.EngagementReport {
	key := "engagement:" + memoKey(core.InsightRequest{Type: "engagement", Data: data})
	if cached, ok := e.cache.Get(key); ok {
		return cached.(core.EngagementReport)
	}

	var report core.EngagementReport
	if !e.callAI(ctx, engagementSystemPrompt, string(data), &report) {
		fb := fallbackResponse()
		report = core.EngagementReport{
			Insights:        fb.Insights,
			EngagementScore: 50,
			Predictions:     []string{},
		}
	} else {
		report.EngagementScore = core.ClampConfidence(report.EngagementScore)
		if report.Insights == nil {
			report.Insights = []core.Insight{}
		}
		for i := range report.Insights {
			report.Insights[i].Confidence = core.ClampConfidence(report.Insights[i].Confidence)
		}
		if report.Predictions == nil {
			report.Predictions = []string{}
		}
	}

	e.cache.Set(key, report, e.cacheTTL)
	return report
}

const explainSystemPrompt = `You are an analyst explaining data to a non-technical job seeker. Explain what the given data means in plain language.
Respond with JSON only, no prose, in this shape:
{"explanation":"...","keyFindings":["..."],"whyItMatters":"...","nextSteps":["..."],"confidence":0}`

// Explain produces a plain-language explanation of the data, optionally
// focused on a subject. Memoizes and degrades like Generate.
func (e *Engine) Explain(ctx context.Context, data json.RawMessage, subject string) core.Explanation {
	key := "explain:" + memoKey(core.InsightRequest{Type: "explain", Data: data, Context: subject})
	if cached, ok := e.cache.Get(key); ok {
		return cached.(core.Explanation)
	}

	user := string(data)
	if subject != "" {
		user = "Subject: " + subject + "\nData:\n" + user
	}

	var expl core.Explanation
	if !e.callAI(ctx, explainSystemPrompt, user, &expl) {
		expl = core.Explanation{
			Explanation:  "A detailed explanation is temporarily unavailable. The data shows your recent activity on the platform.",
			KeyFindings:  []string{},
			WhyItMatters: "Regular review of your preparation data helps you focus your practice time.",
			NextSteps:    []string{},
			Confidence:   50,
		}
	} else {
		expl.Confidence = core.ClampConfidence(expl.Confidence)
		if expl.KeyFindings == nil {
			expl.KeyFindings = []string{}
		}
		if expl.NextSteps == nil {
			expl.NextSteps = []string{}
		}
	}

	e.cache.Set(key, expl, e.cacheTTL)
	return expl
}

const chatSystemPrompt = `You are an encouraging interview preparation coach. Answer briefly and concretely. When the user shares an answer to a practice question, point out one strength and one improvement.`

// Chat answers a free-form coaching message. History entries alternate
// user/assistant and are folded into the prompt, oldest first.
func (e *Engine) Chat(ctx context.Context, message string, history []core.ChatMessage) string {
	var b strings.Builder
	for _, msg := range history {
		fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
	}
	fmt.Fprintf(&b, "user: %s", message)

	reply, err := e.ai.ChatCompletion(ctx, chatSystemPrompt, b.String(), llm.Options{Temperature: 0.7})
	if err != nil {
		logger.Warn("chat completion failed, using fallback", "error", err)
		return "I'm having trouble reaching the AI service right now. Please try again in a moment."
	}
	return strings.TrimSpace(reply)
}
