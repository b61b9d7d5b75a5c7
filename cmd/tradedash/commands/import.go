package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/tradedash/internal/analytics"
	"github.com/wonny/tradedash/internal/trades"
	"github.com/wonny/tradedash/pkg/httputil"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "거래 기록 가져오기",
	Long: `봇이 내보낸 JSON 거래 기록을 DB에 저장합니다.

--file 로 파일을 읽거나, --url (기본 TRADES_EXPORT_URL) 에서 내려받습니다.
같은 id 는 덮어씁니다 (같은 계정일 때만).

Example:
  go run ./cmd/tradedash import --file trades.json --account paper
  go run ./cmd/tradedash import --account paper --since 2024-01-01`,
	RunE: runImport,
}

var (
	importFile    string
	importURL     string
	importAccount string
	importSince   string
)

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "trades JSON file (\"-\" for stdin)")
	importCmd.Flags().StringVar(&importURL, "url", "", "trade export URL (default TRADES_EXPORT_URL)")
	importCmd.Flags().StringVar(&importAccount, "account", "", "account id")
	importCmd.Flags().StringVar(&importSince, "since", "", "only fetch trades from this date (YYYY-MM-DD, --url mode)")
	_ = importCmd.MarkFlagRequired("account")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	records, source, err := loadImport(ctx, a)
	if err != nil {
		return err
	}

	start := time.Now()
	written, err := a.repo.Upsert(ctx, importAccount, records)
	if err != nil {
		return fmt.Errorf("import trades: %w", err)
	}

	a.log.WithFields(map[string]interface{}{
		"account":  importAccount,
		"source":   source,
		"read":     len(records),
		"written":  written,
		"duration": time.Since(start),
	}).Info("Trades imported")

	PrintSuccess(fmt.Sprintf("Imported %d of %d trades into account %q", written, len(records), importAccount))
	return nil
}

// loadImport reads trades from --file, or from the export endpoint otherwise
func loadImport(ctx context.Context, a *app) ([]analytics.TradeRecord, string, error) {
	if importFile != "" {
		records, err := trades.ReadFile(importFile)
		return records, importFile, err
	}

	exportURL := importURL
	if exportURL == "" {
		exportURL = a.cfg.Export.URL
	}
	if exportURL == "" {
		return nil, "", fmt.Errorf("either --file, --url or TRADES_EXPORT_URL is required")
	}

	filter := trades.Filter{AccountID: importAccount}
	if importSince != "" {
		since, err := time.ParseInLocation("2006-01-02", importSince, a.location)
		if err != nil {
			return nil, "", fmt.Errorf("invalid --since: %w", err)
		}
		filter.From = since
	}

	client := httputil.New(a.cfg.Export.Timeout, a.log).WithBearerToken(a.cfg.Export.Token)
	records, err := trades.NewExporter(client, exportURL).Fetch(ctx, filter)
	return records, exportURL, err
}
