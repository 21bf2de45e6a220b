package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const getAssetByTicker = `
SELECT id, ticker, name, created_at
FROM assets
WHERE ticker = $1
LIMIT 1`

// The last close inside each bucket stands in for the bucket's price.
const getClosePrices = `
SELECT time_bucket($1::text::interval, timestamp) AS bucket,
       last(close, timestamp)                     AS close
FROM candles
WHERE asset_id = $2
  AND timestamp >= $3
  AND timestamp < $4
GROUP BY bucket
ORDER BY bucket`

type assetRow struct {
	ID        int32
	Ticker    string
	Name      string
	CreatedAt time.Time
}

type closePricesParams struct {
	TimeBucket string
	AssetID    int32
	Start      time.Time
	End        time.Time
}

type closePriceRow struct {
	Bucket time.Time
	Close  decimal.Decimal
}

type queries struct {
	pool *pgxpool.Pool
}

func (q *queries) GetAssetByTicker(ctx context.Context, ticker string) (assetRow, error) {
	var a assetRow
	err := q.pool.QueryRow(ctx, getAssetByTicker, ticker).Scan(&a.ID, &a.Ticker, &a.Name, &a.CreatedAt)
	return a, err
}

func (q *queries) GetClosePrices(ctx context.Context, arg closePricesParams) ([]closePriceRow, error) {
	rows, err := q.pool.Query(ctx, getClosePrices, arg.TimeBucket, arg.AssetID, arg.Start, arg.End)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (closePriceRow, error) {
		var r closePriceRow
		err := row.Scan(&r.Bucket, &r.Close)
		return r, err
	})
}
