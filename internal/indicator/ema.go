package indicator

import (
	"github.com/rxtech-lab/cerebro/pkg/errors"
)

// EMA is an exponential moving average seeded with the simple average of
// the first period defined source values.
type EMA struct {
	Base

	src    Line
	period int
	alpha  float64
}

// NewEMA creates an exponential moving average over src and registers it
// with g.
func NewEMA(g *Graph, src Line, period int) (*EMA, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "ema period must be positive, got %d", period)
	}

	e := &EMA{
		src:    src,
		period: period,
		alpha:  2.0 / (float64(period) + 1.0),
	}

	if err := e.init(e, "ema", []string{"ema"}, 0, src.Clock()); err != nil {
		return nil, err
	}

	e.updateMinPeriod(src.MinPeriod() + period - 1)
	g.Add(e)

	return e, nil
}

func (e *EMA) seed(at func(int) float64, last int) float64 {
	var sum float64
	for j := last - e.period + 1; j <= last; j++ {
		sum += at(j)
	}

	return sum / float64(e.period)
}

// NextStart implements Hooks: seed with the simple average so the first
// emitted value is finite.
func (e *EMA) NextStart() {
	var sum float64
	for i := e.period - 1; i >= 0; i-- {
		sum += e.src.Get(i)
	}

	e.Lines().Line(0).Set(0, sum/float64(e.period))
}

// Next implements Hooks.
func (e *EMA) Next() {
	out := e.Lines().Line(0)
	prev := out.Get(1)
	out.Set(0, prev+e.alpha*(e.src.Get(0)-prev))
}

// OnceStart implements Hooks.
func (e *EMA) OnceStart(start, end int) {
	out := e.Lines().Line(0)

	for i := start; i < end; i++ {
		out.SetAt(i, e.seed(e.src.At, i))
	}
}

// Once implements Hooks.
func (e *EMA) Once(start, end int) {
	out := e.Lines().Line(0)

	for i := start; i < end; i++ {
		prev := out.At(i - 1)
		out.SetAt(i, prev+e.alpha*(e.src.At(i)-prev))
	}
}
