package indicator

import (
	"github.com/rxtech-lab/cerebro/pkg/errors"
)

// SMA is the arithmetic mean of the last period source values.
type SMA struct {
	Base

	src    Line
	period int
}

// NewSMA creates a simple moving average over src and registers it with g.
func NewSMA(g *Graph, src Line, period int) (*SMA, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "sma period must be positive, got %d", period)
	}

	s := &SMA{
		src:    src,
		period: period,
	}

	if err := s.init(s, "sma", []string{"sma"}, 0, src.Clock()); err != nil {
		return nil, err
	}

	s.updateMinPeriod(src.MinPeriod() + period - 1)
	g.Add(s)

	return s, nil
}

// Next implements Hooks. The window is summed oldest to newest so the batch
// path produces bit-identical results.
func (s *SMA) Next() {
	var sum float64
	for i := s.period - 1; i >= 0; i-- {
		sum += s.src.Get(i)
	}

	s.Lines().Line(0).Set(0, sum/float64(s.period))
}

// Once implements Hooks.
func (s *SMA) Once(start, end int) {
	out := s.Lines().Line(0)

	for i := start; i < end; i++ {
		var sum float64
		for j := i - s.period + 1; j <= i; j++ {
			sum += s.src.At(j)
		}

		out.SetAt(i, sum/float64(s.period))
	}
}
