package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"prepwise/internal/core"
	"prepwise/internal/news"
)

// HealthResponse is the /health reply shape.
type HealthResponse struct {
	Status string `json:"status"`
}

// StatusResponse is the /api/status reply shape.
type StatusResponse struct {
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

var serverStartTime = time.Now()

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, StatusResponse{
		Version: "v1.0.0",
		Uptime:  time.Since(serverStartTime).String(),
	})
}

// handleGetNews handles GET /api/news with filter, sort and paging query
// parameters.
func (s *Server) handleGetNews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := news.QueryOptions{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Source:   q.Get("source"),
		SortBy:   q.Get("sortBy"),
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		opts.Limit = limit
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil {
		opts.Offset = offset
	}

	items := s.news.FetchTechNews(r.Context())
	s.respondJSON(w, http.StatusOK, s.news.Query(items, opts))
}

type summarizeRequest struct {
	Content string `json:"content"`
	Title   string `json:"title"`
	URL     string `json:"url"`
}

// handleSummarize handles POST /api/news/summarize.
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Content == "" {
		s.respondError(w, http.StatusBadRequest, "content is required")
		return
	}

	content := req.Content
	if req.Title != "" {
		content = req.Title + "\n\n" + content
	}
	s.respondJSON(w, http.StatusOK, s.news.Summarize(r.Context(), content))
}

// handleInsights handles POST /api/ai/insights.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	var req core.InsightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Type == "" || len(req.Data) == 0 {
		s.respondError(w, http.StatusBadRequest, "type and data are required")
		return
	}

	s.respondJSON(w, http.StatusOK, s.insights.Generate(r.Context(), req))
}

type chatRequest struct {
	Message string             `json:"message"`
	History []core.ChatMessage `json:"history"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// handleChat handles POST /api/ai/chat.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Message == "" {
		s.respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply := s.insights.Chat(r.Context(), req.Message, req.History)
	s.respondJSON(w, http.StatusOK, chatResponse{Response: reply})
}

type analyticsRequest struct {
	Data    json.RawMessage `json:"data"`
	Subject string          `json:"subject"`
}

// handleAnalyticsInsights handles POST /api/analytics/insights.
func (s *Server) handleAnalyticsInsights(w http.ResponseWriter, r *http.Request) {
	var req analyticsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Data) == 0 {
		s.respondError(w, http.StatusBadRequest, "data is required")
		return
	}

	s.respondJSON(w, http.StatusOK, s.insights.AnalyzeEngagement(r.Context(), req.Data))
}

// handleAnalyticsExplain handles POST /api/analytics/explain.
func (s *Server) handleAnalyticsExplain(w http.ResponseWriter, r *http.Request) {
	var req analyticsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Data) == 0 {
		s.respondError(w, http.StatusBadRequest, "data is required")
		return
	}

	s.respondJSON(w, http.StatusOK, s.insights.Explain(r.Context(), req.Data, req.Subject))
}

// respondJSON writes a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Failed to encode JSON response", "error", err)
	}
}

// respondError writes a JSON error response.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
