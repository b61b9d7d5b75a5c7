package commands

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/tradedash/pkg/config"
	"github.com/wonny/tradedash/pkg/database"
)

// testDBCmd represents the test-db command
var testDBCmd = &cobra.Command{
	Use:   "test-db",
	Short: "PostgreSQL 연결 테스트",
	Long: `데이터베이스 연결을 테스트하고 스키마를 적용합니다.

이 명령어는:
- config에서 DATABASE_URL 로드
- Ping / Health Check
- trades 테이블 마이그레이션
- Connection Pool 통계 표시

Example:
  go run ./cmd/tradedash test-db`,
	RunE: runTestDB,
}

func init() {
	rootCmd.AddCommand(testDBCmd)
}

func runTestDB(cmd *cobra.Command, args []string) error {
	PrintHeader("Database Connection Test")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("❌ Failed to load config: %w", err)
	}
	PrintSuccess(fmt.Sprintf("Config loaded (ENV: %s)", cfg.Env))
	PrintKeyValue("Database URL", maskPassword(cfg.Database.URL), 14)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("❌ Failed to connect to database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	status, err := db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("❌ Health check failed: %w", err)
	}
	PrintSuccess(fmt.Sprintf("Healthy in %v", status.ResponseTime))

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("❌ Migration failed: %w", err)
	}
	PrintSuccess("Schema up to date")

	fmt.Println("\n📊 Connection Pool Statistics:")
	PrintKeyValue("Max", fmt.Sprintf("%d", status.Stats.MaxConns), 14)
	PrintKeyValue("Total", fmt.Sprintf("%d", status.Stats.TotalConns), 14)
	PrintKeyValue("Acquired", fmt.Sprintf("%d", status.Stats.AcquiredConns), 14)
	PrintKeyValue("Idle", fmt.Sprintf("%d", status.Stats.IdleConns), 14)

	fmt.Println()
	PrintSuccess("All checks passed!")
	return nil
}

// maskPassword hides the password in a database URL for display
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}
