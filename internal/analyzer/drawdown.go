package analyzer

// DrawDown tracks the portfolio's decline from its running peak: the
// current drawdown and the deepest/longest drawdown seen.
type DrawDown struct {
	Base

	value float64

	peak       float64
	current    float64
	currentLen int
	max        float64
	maxLen     int
}

// NewDrawDown creates a drawdown analyzer.
func NewDrawDown() *DrawDown {
	d := &DrawDown{}
	d.Bind(d)

	return d
}

// Name implements Analyzer.
func (d *DrawDown) Name() string {
	return "drawdown"
}

// NotifyCashValue implements Analyzer.
func (d *DrawDown) NotifyCashValue(cash, value float64) {
	d.value = value
}

// PreNext implements Analyzer: drawdown is tracked from the first bar.
func (d *DrawDown) PreNext() {
	d.Next()
}

// Next implements Analyzer.
func (d *DrawDown) Next() {
	if d.value > d.peak {
		d.peak = d.value
		d.current = 0
		d.currentLen = 0

		return
	}

	if d.peak <= 0 {
		return
	}

	d.current = (d.peak - d.value) / d.peak * 100
	d.currentLen++

	if d.current > d.max {
		d.max = d.current
	}
	if d.currentLen > d.maxLen {
		d.maxLen = d.currentLen
	}
}

// Results implements Analyzer.
func (d *DrawDown) Results() Results {
	return Results{
		"drawdown_pct":     d.current,
		"drawdown_len":     d.currentLen,
		"max_drawdown_pct": d.max,
		"max_drawdown_len": d.maxLen,
	}
}
