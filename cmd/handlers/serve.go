package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"prepwise/internal/auth"
	"prepwise/internal/config"
	"prepwise/internal/insights"
	"prepwise/internal/llm"
	"prepwise/internal/logger"
	"prepwise/internal/news"
	"prepwise/internal/persistence"
	"prepwise/internal/server"
	"prepwise/internal/sources"
)

// NewServeCmd creates the serve command for starting the HTTP API.
func NewServeCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the prepwise HTTP API.

The server provides:
  • Aggregated tech/career news with filtering and search
  • AI-generated insights, summaries and coaching chat
  • Session-based user accounts

User accounts persist in PostgreSQL when DATABASE_URL is set; otherwise an
in-memory store is used and accounts vanish on restart.

Examples:
  # Start server on default port 8080
  prepwise serve

  # Start on custom port
  prepwise serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port, host)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (default from config: 8080)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP server host (default from config: 0.0.0.0)")

	return cmd
}

func runServe(ctx context.Context, port int, host string) error {
	log := logger.Get()
	log.Info("Starting HTTP server")

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	serverCfg := cfg.Server
	if port != 0 {
		serverCfg.Port = port
	}
	if host != "" {
		serverCfg.Host = host
	}

	users, err := newUserStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer users.Close()

	aiClient := newAIClient(cfg)
	newsSvc := newNewsService(cfg, aiClient)
	engine := insights.NewEngine(aiClient,
		insights.WithCacheTTL(config.Duration(cfg.Insights.CacheTTL, 5*time.Minute)),
		insights.WithSweepInterval(config.Duration(cfg.Insights.SweepInterval, 10*time.Minute)),
	)
	defer engine.Close()

	authSvc := auth.NewService(users, config.Duration(cfg.Auth.SessionTTL, 7*24*time.Hour))

	srv := server.New(newsSvc, engine, authSvc, serverCfg)

	serverErrors := make(chan error, 1)
	go func() {
		log.Info(fmt.Sprintf("Server listening on http://%s:%d", serverCfg.Host, serverCfg.Port))
		log.Info("Press Ctrl+C to stop")
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Info("Server shutdown initiated", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			config.Duration(serverCfg.ShutdownTimeout, 10*time.Second))
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed, forcing close", "error", err)
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		log.Info("Server stopped successfully")
	}

	return nil
}

// newUserStore picks Postgres when a connection string is configured and
// falls back to the in-memory store otherwise.
func newUserStore(ctx context.Context, cfg *config.Config) (persistence.UserStore, error) {
	log := logger.Get()

	connStr := cfg.Database.ConnectionString
	if connStr == "" {
		log.Warn("DATABASE_URL not set, using in-memory user store; accounts will not survive restarts")
		return persistence.NewMemoryStore(), nil
	}

	log.Info("Connecting to database")
	store, err := persistence.NewPostgresStore(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("Database connection successful")
	return store, nil
}

func newAIClient(cfg *config.Config) *llm.Client {
	if cfg.AI.APIKey == "" {
		logger.Warn("AI API key not set; AI endpoints will serve fallback responses")
	}
	return llm.NewClient(llm.Config{
		APIKey:    cfg.AI.APIKey,
		BaseURL:   cfg.AI.BaseURL,
		Model:     cfg.AI.Model,
		MaxTokens: cfg.AI.MaxTokens,
	})
}

func newNewsService(cfg *config.Config, aiClient *llm.Client) *news.Service {
	fetchTimeout := config.Duration(cfg.News.FetchTimeout, 10*time.Second)
	fetchers := []sources.Fetcher{
		sources.NewRSSFetcher(cfg.News.FeedURL, "techcrunch", cfg.News.UserAgent, fetchTimeout),
		sources.NewHackerNewsFetcher(cfg.News.HNStoryLimit, fetchTimeout),
		sources.NewRedditFetcher(cfg.News.RedditListing, cfg.News.UserAgent, fetchTimeout),
	}
	return news.NewService(fetchers, aiClient,
		news.WithMaxItems(cfg.News.MaxItems),
		news.WithCacheTTL(config.Duration(cfg.News.CacheTTL, 5*time.Minute)),
	)
}
