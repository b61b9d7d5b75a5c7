package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/tradedash/internal/api"
	"github.com/wonny/tradedash/internal/api/handlers"
	"github.com/wonny/tradedash/internal/strategyconfig"
	"github.com/wonny/tradedash/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health                          - Health check
  GET  /api/trades                      - 거래 목록 (?account=&from=&to=)
  GET  /api/analytics/metrics           - 저장된 거래의 성과 지표
  POST /api/analytics/compute           - 요청 본문 거래의 성과 지표
  GET  /api/strategies                  - 전략 파라미터
  GET  /api/strategies/{id}             - 전략 하나
  PUT  /api/strategies/{id}/params      - 전략 파라미터 수정

Example:
  go run ./cmd/tradedash api
  go run ./cmd/tradedash api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	// 전략 설정 파일이 없으면 전략 엔드포인트 없이 시작
	var strategyHandler *handlers.StrategyHandler
	var store *strategyconfig.Store
	if s, err := strategyconfig.Open(a.cfg.Analytics.StrategyConfigPath); err != nil {
		a.log.WithError(err).Warn("Strategy config not loaded, /api/strategies disabled")
	} else {
		store = s
		strategyHandler = handlers.NewStrategyHandler(store, a.log)
	}

	router := api.NewRouter(api.Handlers{
		Trades:     handlers.NewTradeHandler(a.repo, a.log),
		Analytics:  handlers.NewAnalyticsHandler(a.analyzer, store, a.cfg.Analytics.StartingBalance, a.location, a.log),
		Strategies: strategyHandler,
	}, api.NewRateLimiter(redis.NewRateLimiter(a.redis, "tradedash"), a.cfg.Analytics.RateLimit), a.log)

	server := api.New(a.cfg, a.log, router)

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Run(ctx); err != nil {
		return err
	}

	a.log.Info("Server stopped")
	return nil
}
