package indicator

// CrossOver signals +1 on the bar where line a crosses above line b, -1
// where it crosses below, and 0 otherwise. It needs one bar of lookback on
// top of its sources.
type CrossOver struct {
	Base

	a Line
	b Line
}

// NewCrossOver creates a crossover detector between a and b and registers
// it with g.
func NewCrossOver(g *Graph, a, b Line) (*CrossOver, error) {
	c := &CrossOver{
		a: a,
		b: b,
	}

	if err := c.init(c, "crossover", []string{"crossover"}, 0, a.Clock()); err != nil {
		return nil, err
	}

	c.updateMinPeriod(a.MinPeriod() + 1)
	c.updateMinPeriod(b.MinPeriod() + 1)
	g.Add(c)

	return c, nil
}

func crossSignal(aPrev, bPrev, aCur, bCur float64) float64 {
	switch {
	case aPrev < bPrev && aCur > bCur:
		return 1.0
	case aPrev > bPrev && aCur < bCur:
		return -1.0
	default:
		return 0.0
	}
}

// PreNext implements Hooks: comparisons against NaN would yield a spurious
// 0 signal, so the warmup slots stay NaN instead.
func (c *CrossOver) PreNext() {}

// Next implements Hooks.
func (c *CrossOver) Next() {
	c.Lines().Line(0).Set(0, crossSignal(c.a.Get(1), c.b.Get(1), c.a.Get(0), c.b.Get(0)))
}

// Once implements Hooks.
func (c *CrossOver) Once(start, end int) {
	out := c.Lines().Line(0)
	for i := start; i < end; i++ {
		out.SetAt(i, crossSignal(c.a.At(i-1), c.b.At(i-1), c.a.At(i), c.b.At(i)))
	}
}
