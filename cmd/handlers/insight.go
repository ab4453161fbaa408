package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"prepwise/internal/config"
	"prepwise/internal/core"
	"prepwise/internal/insights"
)

// NewInsightCmd creates the insight command for running the insights engine
// over a data file from the terminal.
func NewInsightCmd() *cobra.Command {
	var (
		insightType string
		dataFile    string
		contextNote string
		timeframe   string
	)

	cmd := &cobra.Command{
		Use:   "insight",
		Short: "Generate AI insights over a JSON data file",
		Long: `Run the insights engine over a JSON data payload and print the result.

The data is read from --data-file, or from stdin when the flag is omitted.

Examples:
  # Analyze activity data from a file
  prepwise insight --type trend --data-file activity.json

  # Pipe data through stdin
  cat activity.json | prepwise insight --type recommendation`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInsight(cmd, insightType, dataFile, contextNote, timeframe)
		},
	}

	cmd.Flags().StringVar(&insightType, "type", "general", "insight type (trend, summary, recommendation, prediction, anomaly, general)")
	cmd.Flags().StringVar(&dataFile, "data-file", "", "JSON file with the data to analyze (default: stdin)")
	cmd.Flags().StringVar(&contextNote, "context", "", "free-form context for the analysis")
	cmd.Flags().StringVar(&timeframe, "timeframe", "", "timeframe the data covers (e.g. 7d)")

	return cmd
}

func runInsight(cmd *cobra.Command, insightType, dataFile, contextNote, timeframe string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var data []byte
	if dataFile != "" {
		data, err = os.ReadFile(dataFile)
		if err != nil {
			return fmt.Errorf("failed to read data file: %w", err)
		}
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
	}
	if !json.Valid(data) {
		return fmt.Errorf("data is not valid JSON")
	}

	engine := insights.NewEngine(newAIClient(cfg),
		insights.WithCacheTTL(config.Duration(cfg.Insights.CacheTTL, 5*time.Minute)),
	)
	defer engine.Close()

	resp := engine.Generate(cmd.Context(), core.InsightRequest{
		Type:      core.InsightType(insightType),
		Data:      data,
		Context:   contextNote,
		Timeframe: timeframe,
	})

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
