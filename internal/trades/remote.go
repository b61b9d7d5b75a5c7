package trades

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/wonny/tradedash/internal/analytics"
	"github.com/wonny/tradedash/pkg/httputil"
)

// maxExportBytes caps a single trade export download
const maxExportBytes = 64 << 20

// Exporter pulls trade history from the bot's export endpoint
type Exporter struct {
	client  *httputil.Client
	baseURL string
}

// NewExporter creates an exporter for baseURL
func NewExporter(client *httputil.Client, baseURL string) *Exporter {
	return &Exporter{
		client:  client,
		baseURL: baseURL,
	}
}

// Fetch downloads the account's trades, optionally since a point in time
func (e *Exporter) Fetch(ctx context.Context, f Filter) ([]analytics.TradeRecord, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	u, err := url.Parse(e.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid export url: %w", err)
	}

	q := u.Query()
	q.Set("account", f.AccountID)
	if !f.From.IsZero() {
		q.Set("from", f.From.UTC().Format("2006-01-02T15:04:05Z"))
	}
	if !f.To.IsZero() {
		q.Set("to", f.To.UTC().Format("2006-01-02T15:04:05Z"))
	}
	u.RawQuery = q.Encode()

	body, err := e.client.GetBody(ctx, u.String(), maxExportBytes)
	if err != nil {
		return nil, fmt.Errorf("fetch trade export: %w", err)
	}

	return Decode(bytes.NewReader(body))
}
