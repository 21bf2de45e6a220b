package feed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"
	"time"

	"heartbeat/types"

	"github.com/shopspring/decimal"
)

var (
	ErrMalformedRow = errors.New("malformed price row")
	ErrOutOfOrder   = errors.New("tick timestamp goes backwards")
)

// CSVFeed replays "timestamp,price" rows from a file. Timestamps are RFC3339
// and a leading header row is skipped.
type CSVFeed struct {
	path string
}

func NewCSVFeed(path string) *CSVFeed {
	return &CSVFeed{path: path}
}

func (f *CSVFeed) Ticks(ctx context.Context) iter.Seq2[types.Tick, error] {
	return func(yield func(types.Tick, error) bool) {
		file, err := os.Open(f.path)
		if err != nil {
			yield(types.Tick{}, fmt.Errorf("open price file: %w", err))
			return
		}
		defer file.Close()

		for tick, err := range readTicks(ctx, file) {
			if !yield(tick, err) || err != nil {
				return
			}
		}
	}
}

func readTicks(ctx context.Context, r io.Reader) iter.Seq2[types.Tick, error] {
	return func(yield func(types.Tick, error) bool) {
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		reader.TrimLeadingSpace = true

		var last time.Time
		for line := 1; ; line++ {
			if ctx.Err() != nil {
				return
			}
			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(types.Tick{}, fmt.Errorf("line %d: %w", line, err))
				return
			}
			if len(record) < 2 {
				yield(types.Tick{}, fmt.Errorf("line %d: %w: want 2 fields, got %d", line, ErrMalformedRow, len(record)))
				return
			}

			ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(record[0]))
			if err != nil {
				if line == 1 {
					continue // header
				}
				yield(types.Tick{}, fmt.Errorf("line %d: %w: timestamp %q", line, ErrMalformedRow, record[0]))
				return
			}
			price, err := decimal.NewFromString(strings.TrimSpace(record[1]))
			if err != nil || !price.IsPositive() {
				yield(types.Tick{}, fmt.Errorf("line %d: %w: price %q", line, ErrMalformedRow, record[1]))
				return
			}
			if ts.Before(last) {
				yield(types.Tick{}, fmt.Errorf("line %d: %w", line, ErrOutOfOrder))
				return
			}
			last = ts

			if !yield(types.NewTick(ts, price), nil) {
				return
			}
		}
	}
}
