package handlers

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"prepwise/internal/config"
	"prepwise/internal/news"
)

// NewNewsCmd creates the news command for fetching the aggregated feed from
// the terminal.
func NewNewsCmd() *cobra.Command {
	var (
		category   string
		search     string
		source     string
		sortBy     string
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "news",
		Short: "Fetch and print the aggregated tech news feed",
		Long: `Fetch the aggregated feed from all configured sources and print it.

Examples:
  # Print the latest items
  prepwise news

  # Only hiring-related items, as JSON
  prepwise news --category hiring --json

  # Trending items mentioning Go
  prepwise news --search golang --sort-by trending`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNews(cmd, category, search, source, sortBy, limit, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "filter by category (tech, hiring, layoffs, projects, internships)")
	cmd.Flags().StringVar(&search, "search", "", "filter by search term")
	cmd.Flags().StringVar(&source, "source", "", "filter by source name")
	cmd.Flags().StringVar(&sortBy, "sort-by", "latest", "sort order: latest or trending")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of items to print")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print raw JSON instead of a list")

	return cmd
}

func runNews(cmd *cobra.Command, category, search, source, sortBy string, limit int, jsonOutput bool) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	svc := newNewsService(cfg, newAIClient(cfg))
	items := svc.FetchTechNews(cmd.Context())
	result := svc.Query(items, news.QueryOptions{
		Category: category,
		Search:   search,
		Source:   source,
		SortBy:   sortBy,
		Limit:    limit,
	})

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if result.Total == 0 {
		fmt.Println("No items found.")
		return nil
	}

	for _, item := range result.News {
		fmt.Printf("[%s] %s\n", item.Category, item.Title)
		fmt.Printf("    %s · %s · %s\n", item.Source, item.PublishedAt.Format(time.RFC822), item.URL)
	}
	fmt.Printf("\n%d of %d items shown\n", len(result.News), result.Total)
	return nil
}
