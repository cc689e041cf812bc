package feed

import (
	"context"
	"time"

	"github.com/rxtech-lab/cerebro/internal/types"
	"github.com/rxtech-lab/cerebro/pkg/errors"
)

// CloseFunc yields the close price for bar index i.
type CloseFunc func(i int) float64

// SyntheticFeed generates daily bars around a close-price function. The
// open carries the previous close, highs and lows bracket both.
type SyntheticFeed struct {
	symbol string
	start  time.Time
	count  int
	closes CloseFunc
}

// NewSyntheticFeed creates a generator feed of count daily bars starting
// at start.
func NewSyntheticFeed(symbol string, start time.Time, count int, closes CloseFunc) *SyntheticFeed {
	return &SyntheticFeed{
		symbol: symbol,
		start:  start,
		count:  count,
		closes: closes,
	}
}

// Symbol implements Feed.
func (f *SyntheticFeed) Symbol() string {
	return f.symbol
}

// Load implements Feed.
func (f *SyntheticFeed) Load(ctx context.Context) ([]types.Bar, error) {
	if f.count <= 0 {
		return nil, errors.Newf(errors.ErrCodeFeedEmpty, "synthetic feed %s has no bars", f.symbol)
	}

	bars := make([]types.Bar, f.count)
	prev := f.closes(0)

	for i := 0; i < f.count; i++ {
		close := f.closes(i)

		high, low := close, close
		if prev > high {
			high = prev
		}
		if prev < low {
			low = prev
		}

		bars[i] = types.Bar{
			Time:   f.start.AddDate(0, 0, i),
			Open:   prev,
			High:   high,
			Low:    low,
			Close:  close,
			Volume: 1000,
		}

		prev = close
	}

	return bars, nil
}
