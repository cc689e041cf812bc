package strategy

import (
	"go.uber.org/zap"

	"github.com/rxtech-lab/cerebro/internal/indicator"
)

// GoldenCross buys when a fast moving average crosses above a slow one and
// flattens when it crosses back below.
type GoldenCross struct {
	Base

	fastPeriod int
	slowPeriod int
	size       float64

	cross *indicator.CrossOver
}

// NewGoldenCross creates a golden/death cross strategy trading a fixed
// size.
func NewGoldenCross(fastPeriod, slowPeriod int, size float64) *GoldenCross {
	s := &GoldenCross{
		fastPeriod: fastPeriod,
		slowPeriod: slowPeriod,
		size:       size,
	}
	s.Bind(s)

	return s
}

// Name implements Strategy.
func (s *GoldenCross) Name() string {
	return "golden_cross"
}

// Init implements Strategy: build fast/slow SMAs and their crossover.
func (s *GoldenCross) Init(ctx *Context) error {
	s.SetContext(ctx)

	close := indicator.CloseLine(ctx.Data)

	fast, err := indicator.NewSMA(ctx.Graph, close, s.fastPeriod)
	if err != nil {
		return err
	}

	slow, err := indicator.NewSMA(ctx.Graph, close, s.slowPeriod)
	if err != nil {
		return err
	}

	s.cross, err = indicator.NewCrossOver(ctx.Graph, fast.Output(), slow.Output())
	if err != nil {
		return err
	}

	return nil
}

// Next implements Strategy.
func (s *GoldenCross) Next() {
	signal := s.cross.Get(0)
	pos := s.Position()

	switch {
	case signal > 0 && !pos.Open():
		if _, err := s.Buy(s.size); err != nil {
			s.Ctx().Logger.Error("buy failed", zap.Error(err))
		}

	case signal < 0 && pos.Size > 0:
		if _, err := s.Close(); err != nil {
			s.Ctx().Logger.Error("close failed", zap.Error(err))
		}
	}
}
