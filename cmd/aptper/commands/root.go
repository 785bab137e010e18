package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "aptper",
	Short: "aptper - 아파트 시세/월세 추적과 PER 평가",
	Long: `aptper Unified CLI

아실 거래 데이터를 수집해 단지별 월간 시세 시리즈를 유지하고,
매매가/월세 기반 PER과 기대 매매가 밴드를 계산해 발행합니다.

Usage:
  go run ./cmd/aptper [command]

Examples:
  go run ./cmd/aptper api
  go run ./cmd/aptper refresh
  go run ./cmd/aptper publish
  go run ./cmd/aptper scheduler start
  go run ./cmd/aptper test-db`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
