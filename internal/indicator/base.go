package indicator

import (
	"github.com/rxtech-lab/cerebro/internal/lines"
)

// Base carries the state and dispatch machinery shared by all indicators:
// the output Lines, the clock the bars follow, and the propagated minimum
// period. Concrete indicators embed Base and pass themselves to init so the
// default hooks dispatch to their overrides.
type Base struct {
	self      Hooks
	series    *lines.Series
	clock     *lines.Lines
	minperiod int
}

func (b *Base) init(self Hooks, name string, lineNames []string, extraLines int, clock *lines.Lines) error {
	l, err := lines.Derive(name, lineNames, extraLines)
	if err != nil {
		return err
	}

	b.self = self
	b.series = lines.NewSeries(l)
	b.clock = clock
	b.minperiod = 1

	return nil
}

// updateMinPeriod raises the minimum period to at least p. Composite
// indicators call this once per source line, so the effective minimum
// period is the maximum over all parents plus the indicator's own lag.
func (b *Base) updateMinPeriod(p int) {
	if p > b.minperiod {
		b.minperiod = p
	}
}

// MinPeriod implements Indicator.
func (b *Base) MinPeriod() int {
	return b.minperiod
}

// Lines implements Indicator.
func (b *Base) Lines() *lines.Lines {
	return b.series.Lines()
}

// Series returns the output series.
func (b *Base) Series() *lines.Series {
	return b.series
}

// Clock returns the lines whose length drives the lifecycle dispatch.
func (b *Base) Clock() *lines.Lines {
	return b.clock
}

// Line returns a read view over the output line at idx, carrying the
// indicator's minimum period so consumers can propagate it.
func (b *Base) Line(idx int) Line {
	return &outputLine{
		buf:   b.series.Lines().Line(idx),
		owner: b.self.(Indicator),
		clock: b.clock,
	}
}

// Output is the first (primary) output line.
func (b *Base) Output() Line {
	return b.Line(0)
}

// Get reads the primary output line ago bars behind the cursor.
func (b *Base) Get(ago int) float64 {
	return b.series.Lines().Line(0).Get(ago)
}

// Step implements Indicator: advance own lines in lock-step with the clock
// and dispatch the streaming lifecycle hook for the current bar.
func (b *Base) Step() {
	clockLen := b.clock.Len()
	if clockLen == 0 {
		return
	}

	for b.series.Len() < clockLen {
		b.series.Forward(1)
	}

	switch {
	case clockLen > b.minperiod:
		b.self.Next()
	case clockLen == b.minperiod:
		b.self.NextStart()
	default:
		b.self.PreNext()
	}
}

// RunOnce implements Indicator: materialize the output over the clock's
// full range and dispatch the batch lifecycle triplet, then rewind so the
// replay loop can advance the cursor bar by bar.
func (b *Base) RunOnce() {
	end := b.clock.BufLen()
	b.series.Home()
	b.series.Forward(end)

	if end >= b.minperiod {
		b.self.PreOnce(0, b.minperiod-1)
		b.self.OnceStart(b.minperiod-1, b.minperiod)
		b.self.Once(b.minperiod, end)
	} else {
		b.self.PreOnce(0, end)
	}

	b.series.Home()
}

// Advance implements Indicator.
func (b *Base) Advance(n int) {
	b.series.Advance(n)
}

// Home implements Indicator.
func (b *Base) Home() {
	b.series.Home()
}

// PreNext implements the default streaming warmup: delegate to Next, which
// reads NaN where history is missing and therefore writes NaN.
func (b *Base) PreNext() {
	b.self.Next()
}

// NextStart implements the default transition: delegate to Next.
func (b *Base) NextStart() {
	b.self.Next()
}

// Next is a no-op placeholder; concrete indicators override it.
func (b *Base) Next() {}

// PreOnce leaves the warmup slots NaN by default.
func (b *Base) PreOnce(start, end int) {}

// OnceStart implements the default batch transition: delegate to Once.
func (b *Base) OnceStart(start, end int) {
	b.self.Once(start, end)
}

// Once is a no-op placeholder; concrete indicators override it.
func (b *Base) Once(start, end int) {}
