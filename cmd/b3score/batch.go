package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ftorres/b3score/internal/analyzer"
	"github.com/ftorres/b3score/internal/app"
	"github.com/ftorres/b3score/internal/collector"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var batchTimeout time.Duration

var batchCmd = &cobra.Command{
	Use:   "batch [code...]",
	Short: "Analyze several B3 stocks and compare them by sector",
	Long:  "Fetch fundamentals for multiple tickers, score them concurrently and print the batch result with sector statistics as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBatch,
}

func init() {
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 5*time.Minute, "Overall timeout for the batch")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
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

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	codes := make([]string, 0, len(args))
	for _, arg := range args {
		codes = append(codes, strings.ToUpper(arg))
	}

	records, fetchErrs := collector.FetchAll(ctx, application.Fundamentals, codes, cfg.Analysis.BatchConcurrency, nil)
	for code, err := range fetchErrs {
		log.Warn("fetch failed", zap.String("code", code), zap.Error(err))
	}

	result := application.Analyzer.AnalyzeBatch(ctx, records, cfg.Analysis.BatchConcurrency)
	for code, err := range fetchErrs {
		result.Failures = append(result.Failures, analyzer.Failure{Code: code, Error: err.Error()})
	}
	sort.Slice(result.Failures, func(i, j int) bool {
		return result.Failures[i].Code < result.Failures[j].Code
	})

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
