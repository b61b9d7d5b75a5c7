package trades

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/wonny/tradedash/internal/analytics"
)

// Decode reads trades exported by the bot.
// Accepts a bare JSON array or an object with a "trades" array.
func Decode(r io.Reader) ([]analytics.TradeRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read trades: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []analytics.TradeRecord{}, nil
	}

	var records []analytics.TradeRecord
	if data[0] == '[' {
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decode trades: %w", err)
		}
		return records, nil
	}

	var wrapped struct {
		Trades []analytics.TradeRecord `json:"trades"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("decode trades: %w", err)
	}
	if wrapped.Trades == nil {
		return []analytics.TradeRecord{}, nil
	}
	return wrapped.Trades, nil
}

// ReadFile decodes trades from a JSON file; "-" reads stdin
func ReadFile(path string) ([]analytics.TradeRecord, error) {
	if path == "-" {
		return Decode(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return Decode(f)
}
