package indicator

import (
	"github.com/rxtech-lab/cerebro/pkg/errors"
)

// MACD is the moving average convergence/divergence indicator. Line order
// is semantically meaningful: macd=0, signal=1.
//
// The heavy lifting happens in child nodes (two EMAs, their difference and
// the signal EMA) registered ahead of this node, so by the time MACD's own
// hooks run, the children's current values are final and only need copying
// into the named output lines.
type MACD struct {
	Base

	macdLine   *Sub
	signalLine *EMA
}

// NewMACD creates a MACD with the given fast/slow/signal periods over src
// and registers it (and its children) with g.
func NewMACD(g *Graph, src Line, fast, slow, signal int) (*MACD, error) {
	macdLine, signalLine, err := buildMACD(g, src, fast, slow, signal)
	if err != nil {
		return nil, err
	}

	m := &MACD{
		macdLine:   macdLine,
		signalLine: signalLine,
	}

	if err := m.init(m, "macd", []string{"macd", "signal"}, 0, src.Clock()); err != nil {
		return nil, err
	}

	m.updateMinPeriod(signalLine.MinPeriod())
	g.Add(m)

	return m, nil
}

func buildMACD(g *Graph, src Line, fast, slow, signal int) (*Sub, *EMA, error) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return nil, nil, errors.Newf(errors.ErrCodeInvalidPeriod,
			"macd periods must be positive, got fast=%d slow=%d signal=%d", fast, slow, signal)
	}

	if fast >= slow {
		return nil, nil, errors.Newf(errors.ErrCodeInvalidPeriod,
			"macd fast period %d must be below slow period %d", fast, slow)
	}

	fastEMA, err := NewEMA(g, src, fast)
	if err != nil {
		return nil, nil, err
	}

	slowEMA, err := NewEMA(g, src, slow)
	if err != nil {
		return nil, nil, err
	}

	macdLine, err := NewSub(g, fastEMA.Output(), slowEMA.Output())
	if err != nil {
		return nil, nil, err
	}

	signalLine, err := NewEMA(g, macdLine.Output(), signal)
	if err != nil {
		return nil, nil, err
	}

	return macdLine, signalLine, nil
}

// PreNext implements Hooks: the macd child lines settle before the signal
// line does, so copying during warmup would leak partial values. Leave NaN.
func (m *MACD) PreNext() {}

// Next implements Hooks.
func (m *MACD) Next() {
	m.Lines().Line(0).Set(0, m.macdLine.Get(0))
	m.Lines().Line(1).Set(0, m.signalLine.Get(0))
}

// Once implements Hooks.
func (m *MACD) Once(start, end int) {
	macd := m.Lines().Line(0)
	signal := m.Lines().Line(1)

	for i := start; i < end; i++ {
		macd.SetAt(i, m.macdLine.Lines().Line(0).At(i))
		signal.SetAt(i, m.signalLine.Lines().Line(0).At(i))
	}
}

// MACDHisto extends MACD with a histogram line: macd=0, signal=1, histo=2.
type MACDHisto struct {
	Base

	macdLine   *Sub
	signalLine *EMA
}

// NewMACDHisto creates a MACD with histogram over src and registers it
// (and its children) with g.
func NewMACDHisto(g *Graph, src Line, fast, slow, signal int) (*MACDHisto, error) {
	macdLine, signalLine, err := buildMACD(g, src, fast, slow, signal)
	if err != nil {
		return nil, err
	}

	m := &MACDHisto{
		macdLine:   macdLine,
		signalLine: signalLine,
	}

	if err := m.init(m, "macdhisto", []string{"macd", "signal", "histo"}, 0, src.Clock()); err != nil {
		return nil, err
	}

	m.updateMinPeriod(signalLine.MinPeriod())
	g.Add(m)

	return m, nil
}

// PreNext implements Hooks. Same reasoning as MACD.PreNext.
func (m *MACDHisto) PreNext() {}

// Next implements Hooks.
func (m *MACDHisto) Next() {
	macd := m.macdLine.Get(0)
	signal := m.signalLine.Get(0)

	m.Lines().Line(0).Set(0, macd)
	m.Lines().Line(1).Set(0, signal)
	m.Lines().Line(2).Set(0, macd-signal)
}

// Once implements Hooks.
func (m *MACDHisto) Once(start, end int) {
	macdOut := m.Lines().Line(0)
	signalOut := m.Lines().Line(1)
	histoOut := m.Lines().Line(2)

	macdSrc := m.macdLine.Lines().Line(0)
	signalSrc := m.signalLine.Lines().Line(0)

	for i := start; i < end; i++ {
		macd := macdSrc.At(i)
		signal := signalSrc.At(i)

		macdOut.SetAt(i, macd)
		signalOut.SetAt(i, signal)
		histoOut.SetAt(i, macd-signal)
	}
}
