package indicator

import (
	"github.com/rxtech-lab/cerebro/pkg/errors"
)

// RSI is Wilder's relative strength index. Gains and losses over the
// source diffs are smoothed with Wilder's recursive average and mapped
// into the 0..100 range. A warmup window with no losses produces the
// 100 sentinel rather than a division by zero.
type RSI struct {
	Base
	src    Line
	period int

	avgGain float64
	avgLoss float64
}

// NewRSI registers a Wilder RSI over src in g.
func NewRSI(g *Graph, src Line, period int) (*RSI, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "rsi period must be positive, got %d", period)
	}
	r := &RSI{src: src, period: period}
	if err := r.init(r, "rsi", []string{"rsi"}, 0, src.Clock()); err != nil {
		return nil, err
	}
	// One extra slot for the diff against the previous value.
	r.updateMinPeriod(src.MinPeriod() + period)
	g.Add(r)
	return r, nil
}

// PreNext implements Hooks: the recursive average would start drifting off
// incomplete diffs, so the warmup slots stay NaN until NextStart reseeds.
func (r *RSI) PreNext() {}

// NextStart implements Hooks. Seeds the smoothed averages with the plain
// mean of the first period diffs, oldest first.
func (r *RSI) NextStart() {
	var gain, loss float64
	for i := r.period - 1; i >= 0; i-- {
		diff := r.src.Get(i) - r.src.Get(i+1)
		if diff > 0 {
			gain += diff
		} else {
			loss -= diff
		}
	}
	r.avgGain = gain / float64(r.period)
	r.avgLoss = loss / float64(r.period)
	r.Lines().Line(0).Set(0, rsiValue(r.avgGain, r.avgLoss))
}

// Next implements Hooks.
func (r *RSI) Next() {
	diff := r.src.Get(0) - r.src.Get(1)
	var gain, loss float64
	if diff > 0 {
		gain = diff
	} else {
		loss = -diff
	}
	p := float64(r.period)
	r.avgGain = (r.avgGain*(p-1) + gain) / p
	r.avgLoss = (r.avgLoss*(p-1) + loss) / p
	r.Lines().Line(0).Set(0, rsiValue(r.avgGain, r.avgLoss))
}

// OnceStart implements Hooks.
func (r *RSI) OnceStart(start, end int) {
	out := r.Lines().Line(0)
	for i := start; i < end; i++ {
		var gain, loss float64
		for j := i - r.period + 1; j <= i; j++ {
			diff := r.src.At(j) - r.src.At(j-1)
			if diff > 0 {
				gain += diff
			} else {
				loss -= diff
			}
		}
		r.avgGain = gain / float64(r.period)
		r.avgLoss = loss / float64(r.period)
		out.SetAt(i, rsiValue(r.avgGain, r.avgLoss))
	}
}

// Once implements Hooks.
func (r *RSI) Once(start, end int) {
	out := r.Lines().Line(0)
	p := float64(r.period)
	for i := start; i < end; i++ {
		diff := r.src.At(i) - r.src.At(i-1)
		var gain, loss float64
		if diff > 0 {
			gain = diff
		} else {
			loss = -diff
		}
		r.avgGain = (r.avgGain*(p-1) + gain) / p
		r.avgLoss = (r.avgLoss*(p-1) + loss) / p
		out.SetAt(i, rsiValue(r.avgGain, r.avgLoss))
	}
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
