package repository

import (
	"context"
	"errors"
	"time"

	"heartbeat/types"

	"github.com/jackc/pgx/v5"
)

var bucketToInterval = map[types.Interval]string{
	types.OneMinute:      "1 minute",
	types.FiveMinutes:    "5 minutes",
	types.FifteenMinutes: "15 minutes",
	types.ThirtyMinutes:  "30 minutes",
	types.Hour:           "1 hour",
	types.FourHours:      "4 hours",
	types.Day:            "1 day",
}

// GetClosePrices returns one tick per interval bucket in [start, end), priced
// at the bucket's last close.
func (db *Database) GetClosePrices(ctx context.Context, assetID int, interval types.Interval, start, end time.Time) ([]types.Tick, error) {
	bucket, ok := bucketToInterval[interval]
	if !ok {
		return nil, ErrIntervalNotSupported
	}
	args := closePricesParams{
		TimeBucket: bucket,
		AssetID:    int32(assetID),
		Start:      start,
		End:        end,
	}
	rows, err := db.candles.GetClosePrices(ctx, args)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoCandles
		}
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoCandles
	}
	return convertRows(rows), nil
}

func convertRows(rows []closePriceRow) []types.Tick {
	ticks := make([]types.Tick, 0, len(rows))
	for _, row := range rows {
		ticks = append(ticks, types.NewTick(row.Bucket, row.Close))
	}
	return ticks
}
