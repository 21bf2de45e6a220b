package engine

import (
	"encoding/csv"
	"fmt"
	"heartbeat/types"
	"io"
	"os"
	"time"
)

// writeTradesCSVFile writes the trade log to a CSV file at the given path.
func writeTradesCSVFile(path string, trades []types.TradeEvent) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trades file: %w", err)
	}
	defer f.Close()

	return writeTradesCSV(f, trades)
}

// writeTradesCSV writes trades to any io.Writer as CSV, one row per ledger
// operation.
func writeTradesCSV(w io.Writer, trades []types.TradeEvent) error {
	cw := csv.NewWriter(w)

	header := []string{
		"id",
		"symbol",
		"side",
		"price",
		"exec_price",
		"qty",
		"fee",
		"slippage",
		"cash",
		"position_qty",
		"avg_price",
		"realized_pnl",
		"timestamp", // RFC3339
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, t := range trades {
		record := []string{
			t.ID,
			t.Symbol,
			string(t.Side),
			t.Price.String(),
			t.ExecPrice.String(),
			t.Quantity.String(),
			t.Fee.String(),
			t.Slippage.String(),
			t.Cash.String(),
			t.PositionQty.String(),
			t.AvgPrice.String(),
			t.RealizedPnL.String(),
			t.Timestamp.Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
