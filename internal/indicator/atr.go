package indicator

import (
	"math"

	"github.com/rxtech-lab/cerebro/internal/lines"
	"github.com/rxtech-lab/cerebro/pkg/errors"
)

// ATR is Wilder's average true range over an OHLC data series. The true
// range needs the previous close, so the warmup is one bar longer than
// the smoothing period.
type ATR struct {
	Base
	data   *lines.DataSeries
	period int

	avg float64
}

// NewATR registers an average true range over data in g.
func NewATR(g *Graph, data *lines.DataSeries, period int) (*ATR, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "atr period must be positive, got %d", period)
	}
	a := &ATR{data: data, period: period}
	if err := a.init(a, "atr", []string{"atr"}, 0, data.Lines()); err != nil {
		return nil, err
	}
	a.updateMinPeriod(period + 1)
	g.Add(a)
	return a, nil
}

func trueRange(high, low, prevClose float64) float64 {
	tr := high - low
	if hc := math.Abs(high - prevClose); hc > tr {
		tr = hc
	}
	if lc := math.Abs(low - prevClose); lc > tr {
		tr = lc
	}
	return tr
}

// PreNext implements Hooks: true ranges are already computable during
// warmup, but emitting them would disagree with the seeded average. The
// warmup slots stay NaN until NextStart runs.
func (a *ATR) PreNext() {}

// NextStart implements Hooks. Seeds with the plain mean of the first
// period true ranges, oldest first.
func (a *ATR) NextStart() {
	var sum float64
	for i := a.period - 1; i >= 0; i-- {
		sum += trueRange(a.data.High(i), a.data.Low(i), a.data.Close(i+1))
	}
	a.avg = sum / float64(a.period)
	a.Lines().Line(0).Set(0, a.avg)
}

// Next implements Hooks.
func (a *ATR) Next() {
	tr := trueRange(a.data.High(0), a.data.Low(0), a.data.Close(1))
	p := float64(a.period)
	a.avg = (a.avg*(p-1) + tr) / p
	a.Lines().Line(0).Set(0, a.avg)
}

// OnceStart implements Hooks.
func (a *ATR) OnceStart(start, end int) {
	high := a.data.Lines().Line(lines.HighLine)
	low := a.data.Lines().Line(lines.LowLine)
	cls := a.data.Lines().Line(lines.CloseLine)
	out := a.Lines().Line(0)
	for i := start; i < end; i++ {
		var sum float64
		for j := i - a.period + 1; j <= i; j++ {
			sum += trueRange(high.At(j), low.At(j), cls.At(j-1))
		}
		a.avg = sum / float64(a.period)
		out.SetAt(i, a.avg)
	}
}

// Once implements Hooks.
func (a *ATR) Once(start, end int) {
	high := a.data.Lines().Line(lines.HighLine)
	low := a.data.Lines().Line(lines.LowLine)
	cls := a.data.Lines().Line(lines.CloseLine)
	out := a.Lines().Line(0)
	p := float64(a.period)
	for i := start; i < end; i++ {
		tr := trueRange(high.At(i), low.At(i), cls.At(i-1))
		a.avg = (a.avg*(p-1) + tr) / p
		out.SetAt(i, a.avg)
	}
}
