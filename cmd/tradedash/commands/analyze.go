package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/tradedash/internal/analytics"
	"github.com/wonny/tradedash/internal/audit"
	"github.com/wonny/tradedash/internal/trades"
	"github.com/wonny/tradedash/pkg/config"
	"github.com/wonny/tradedash/pkg/logger"
	"github.com/wonny/tradedash/pkg/redis"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "성과 지표 계산",
	Long: `거래 기록으로 성과 지표를 계산합니다.

--file 이 주어지면 JSON 파일(또는 "-" 로 stdin)을 읽고 DB 없이 계산합니다.
그렇지 않으면 --account 의 거래를 DB에서 조회합니다.

Example:
  go run ./cmd/tradedash analyze --file trades.json --balance 10000 --tz Asia/Seoul
  go run ./cmd/tradedash analyze --account paper --strategy momentum --output json`,
	RunE: runAnalyze,
}

var (
	analyzeFile     string
	analyzeAccount  string
	analyzeStrategy string
	analyzeBalance  float64
	analyzeTZ       string
	analyzeOutput   string
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "trades JSON file (\"-\" for stdin)")
	analyzeCmd.Flags().StringVar(&analyzeAccount, "account", "", "account id (store-backed mode)")
	analyzeCmd.Flags().StringVar(&analyzeStrategy, "strategy", "", "only trades of this strategy (store-backed mode)")
	analyzeCmd.Flags().Float64Var(&analyzeBalance, "balance", 0, "starting balance (default ANALYTICS_STARTING_BALANCE)")
	analyzeCmd.Flags().StringVar(&analyzeTZ, "tz", "", "reporting time zone (default ANALYTICS_TIMEZONE)")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "text", "output format (text|json)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analyzeOutput != "text" && analyzeOutput != "json" {
		return fmt.Errorf("invalid --output %q (text|json)", analyzeOutput)
	}
	if analyzeFile == "" && analyzeAccount == "" {
		return fmt.Errorf("either --file or --account is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	balance := cfg.Analytics.StartingBalance
	if cmd.Flags().Changed("balance") {
		balance = analyzeBalance
	}
	if !(balance > 0) || math.IsInf(balance, 0) {
		return fmt.Errorf("--balance must be a positive finite number")
	}

	loc, err := cfg.Analytics.Location()
	if err != nil {
		return err
	}
	if analyzeTZ != "" {
		if loc, err = time.LoadLocation(analyzeTZ); err != nil {
			return fmt.Errorf("invalid --tz: %w", err)
		}
	}

	var report *audit.Report
	if analyzeFile != "" {
		report, err = analyzeFromFile(cfg, balance, loc)
	} else {
		report, err = analyzeFromStore(cmd.Context(), balance, loc)
	}
	if err != nil {
		return err
	}

	if analyzeOutput == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	PrintReport(report)
	return nil
}

func analyzeFromFile(cfg *config.Config, balance float64, loc *time.Location) (*audit.Report, error) {
	records, err := trades.ReadFile(analyzeFile)
	if err != nil {
		return nil, err
	}

	// 파일 모드는 stdout 을 리포트에 쓰므로 로그는 stderr
	log := logger.NewWithWriter(os.Stderr, cfg.LogLevel)
	analyzer := audit.NewAnalyzer(nil, redis.NewCache(redis.Disabled(), "tradedash"), 0, log)

	return analyzer.AnalyzeRecords(records, analytics.Options{
		StartingBalance: balance,
		Location:        loc,
	})
}

func analyzeFromStore(ctx context.Context, balance float64, loc *time.Location) (*audit.Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	return a.analyzer.Analyze(ctx, audit.Request{
		Filter: trades.Filter{
			AccountID: analyzeAccount,
			Strategy:  analyzeStrategy,
		},
		StartingBalance: balance,
		Location:        loc,
	})
}
