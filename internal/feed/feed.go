// Package feed supplies bars to the engine. A feed's only contract with
// the core is to materialize a slice of bars the engine replays through a
// DataSeries one slot at a time.
package feed

import (
	"context"

	"github.com/rxtech-lab/cerebro/internal/types"
)

// Feed loads the bars for one instrument before the run begins. The hot
// loop never touches a feed; all data is materialized up front.
type Feed interface {
	// Symbol identifies the instrument the bars belong to.
	Symbol() string
	// Load returns all bars in chronological order.
	Load(ctx context.Context) ([]types.Bar, error)
}

// SliceFeed serves bars already held in memory.
type SliceFeed struct {
	symbol string
	bars   []types.Bar
}

// NewSliceFeed creates a feed over pre-built bars.
func NewSliceFeed(symbol string, bars []types.Bar) *SliceFeed {
	return &SliceFeed{symbol: symbol, bars: bars}
}

// Symbol implements Feed.
func (f *SliceFeed) Symbol() string {
	return f.symbol
}

// Load implements Feed.
func (f *SliceFeed) Load(ctx context.Context) ([]types.Bar, error) {
	return f.bars, nil
}
