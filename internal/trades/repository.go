package trades

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/wonny/tradedash/internal/analytics"
)

// Filter narrows a trade query.
// AccountID is the tenant boundary and is always required.
type Filter struct {
	AccountID string
	From      time.Time // inclusive, zero = unbounded
	To        time.Time // exclusive, zero = unbounded
	Strategy  string
	Platform  string
}

// Validate checks the filter before it reaches SQL
func (f Filter) Validate() error {
	if strings.TrimSpace(f.AccountID) == "" {
		return fmt.Errorf("account id is required")
	}
	if !f.From.IsZero() && !f.To.IsZero() && !f.From.Before(f.To) {
		return fmt.Errorf("from (%s) must be before to (%s)", f.From.Format(time.RFC3339), f.To.Format(time.RFC3339))
	}
	return nil
}

// Repository reads and writes trade records
// ⭐ SSOT: 거래 데이터 조회/저장은 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new trade repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// buildListQuery assembles the SELECT for a filter with positional args
func buildListQuery(f Filter) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT id, executed_at, realized_pnl, position_size, status, strategy, platform
		FROM trades
		WHERE account_id = $1`)
	args := []interface{}{f.AccountID}

	if !f.From.IsZero() {
		args = append(args, f.From)
		fmt.Fprintf(&sb, " AND executed_at >= $%d", len(args))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		fmt.Fprintf(&sb, " AND executed_at < $%d", len(args))
	}
	if f.Strategy != "" {
		args = append(args, f.Strategy)
		fmt.Fprintf(&sb, " AND strategy = $%d", len(args))
	}
	if f.Platform != "" {
		args = append(args, f.Platform)
		fmt.Fprintf(&sb, " AND platform = $%d", len(args))
	}
	sb.WriteString(" ORDER BY executed_at ASC, id ASC")

	return sb.String(), args
}

// List returns every trade for the filter in chronological order.
// NULL amounts come back as absent and are treated as 0 by the engine.
func (r *Repository) List(ctx context.Context, f Filter) ([]analytics.TradeRecord, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	query, args := buildListQuery(f)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	records := make([]analytics.TradeRecord, 0)
	for rows.Next() {
		var (
			rec    analytics.TradeRecord
			pnl    decimal.NullDecimal
			size   decimal.NullDecimal
			status string
		)
		if err := rows.Scan(&rec.ID, &rec.Timestamp, &pnl, &size, &status, &rec.Strategy, &rec.Platform); err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}

		if pnl.Valid {
			rec.RealizedPnL = analytics.NewAmount(pnl.Decimal.InexactFloat64())
		}
		if size.Valid {
			rec.PositionSize = analytics.NewAmount(size.Decimal.InexactFloat64())
		}
		rec.Outcome, _ = analytics.ParseOutcome(status)

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trades: %w", err)
	}

	return records, nil
}

// Upsert writes trades for an account in one batch
func (r *Repository) Upsert(ctx context.Context, accountID string, records []analytics.TradeRecord) (int, error) {
	if strings.TrimSpace(accountID) == "" {
		return 0, fmt.Errorf("account id is required")
	}
	if len(records) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO trades (id, account_id, executed_at, realized_pnl, position_size, status, strategy, platform)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			executed_at = EXCLUDED.executed_at,
			realized_pnl = EXCLUDED.realized_pnl,
			position_size = EXCLUDED.position_size,
			status = EXCLUDED.status,
			strategy = EXCLUDED.strategy,
			platform = EXCLUDED.platform
		WHERE trades.account_id = EXCLUDED.account_id
	`

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(query,
			rec.ID, accountID, rec.Timestamp,
			nullableAmount(rec.RealizedPnL), nullableAmount(rec.PositionSize),
			string(rec.Outcome), rec.Strategy, rec.Platform,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	written := 0
	for i := range records {
		tag, err := results.Exec()
		if err != nil {
			return written, fmt.Errorf("failed to upsert trade %s: %w", records[i].ID, err)
		}
		written += int(tag.RowsAffected())
	}

	return written, nil
}

func nullableAmount(a analytics.Amount) decimal.NullDecimal {
	if !a.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(a.Float()))
}
