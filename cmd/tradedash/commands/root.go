package commands

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tradedash",
	Short: "Trade performance analytics",
	Long: `tradedash - 자동매매 성과 분석 대시보드 백엔드

거래 기록으로부터 손익 곡선, 드로다운, 위험 지표,
연속 승/패, 요일/시간/월별 집계, R-multiple 을 계산합니다.

Usage:
  go run ./cmd/tradedash [command]

Examples:
  go run ./cmd/tradedash api
  go run ./cmd/tradedash analyze --file trades.json --balance 10000 --tz Asia/Seoul
  go run ./cmd/tradedash import --file trades.json --account paper
  go run ./cmd/tradedash scheduler start
  go run ./cmd/tradedash test-db`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configFile != "" {
			if err := godotenv.Load(configFile); err != nil {
				return fmt.Errorf("load env file %s: %w", configFile, err)
			}
		}
		if verbose {
			os.Setenv("LOG_LEVEL", "debug")
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "env file to load before config (default is .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
