package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "b3score",
	Short: "Fundamental quality scoring for B3 listed stocks",
	Long: `b3score computes fundamental ratios for Brazilian stocks, scores them
against sector benchmarks and derives quality tiers, red flags and
buy/sell recommendations.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
