package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ftorres/b3score/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var analyzeTimeout time.Duration

var analyzeCmd = &cobra.Command{
	Use:   "analyze [code]",
	Short: "Analyze a single B3 stock",
	Long:  "Fetch fundamentals for a B3 ticker, score it and print the full analysis as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 60*time.Second, "Overall timeout for the analysis")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	code := strings.ToUpper(args[0])

	log := newLogger("warn", false)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	application, err := app.New(cfg, log)
	if err != nil {
		return fmt.Errorf("building application: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	record, err := application.Fundamentals.Fetch(ctx, code)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", code, err)
	}

	analysis, err := application.Analyzer.Analyze(ctx, record)
	if err != nil {
		return fmt.Errorf("analyzing %s: %w", code, err)
	}

	log.Debug("analysis complete",
		zap.String("code", analysis.Code),
		zap.String("recommendation", string(analysis.Recommendation)),
	)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(analysis)
}
