package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

type Asset struct {
	ID        int
	Ticker    string
	Name      string
	CreatedAt time.Time
}

// GetAssetByTicker retrieves an Asset by its ticker.
func (db *Database) GetAssetByTicker(ctx context.Context, ticker string) (*Asset, error) {
	asset, err := db.assets.GetAssetByTicker(ctx, ticker)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ticker %s %w", ticker, ErrAssetNotFound)
		}
		return nil, err
	}
	return &Asset{
		ID:        int(asset.ID),
		Ticker:    asset.Ticker,
		Name:      asset.Name,
		CreatedAt: asset.CreatedAt,
	}, nil
}
