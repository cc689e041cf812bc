package analyzer

import (
	"time"
)

// TimeReturn records the per-bar portfolio return keyed by bar time.
type TimeReturn struct {
	Base

	value   float64
	last    float64
	hasLast bool
	times   []time.Time
	returns map[time.Time]float64
}

// NewTimeReturn creates a per-bar return series analyzer.
func NewTimeReturn() *TimeReturn {
	t := &TimeReturn{
		returns: make(map[time.Time]float64),
	}
	t.Bind(t)

	return t
}

// Name implements Analyzer.
func (t *TimeReturn) Name() string {
	return "timereturn"
}

// NotifyCashValue implements Analyzer.
func (t *TimeReturn) NotifyCashValue(cash, value float64) {
	t.value = value
}

// PreNext implements Analyzer: returns are recorded on every bar, warmup
// included.
func (t *TimeReturn) PreNext() {
	t.Next()
}

// Next implements Analyzer.
func (t *TimeReturn) Next() {
	if t.hasLast && t.last != 0 {
		at := t.Ctx().Data.Time(0)
		t.times = append(t.times, at)
		t.returns[at] = t.value/t.last - 1
	}

	t.last = t.value
	t.hasLast = true
}

// Series returns the recorded returns in bar order.
func (t *TimeReturn) Series() []float64 {
	series := make([]float64, len(t.times))
	for i, at := range t.times {
		series[i] = t.returns[at]
	}

	return series
}

// Results implements Analyzer.
func (t *TimeReturn) Results() Results {
	return Results{
		"returns": t.returns,
	}
}
