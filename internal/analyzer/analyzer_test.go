package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/cerebro/internal/broker"
	"github.com/rxtech-lab/cerebro/internal/lines"
	"github.com/rxtech-lab/cerebro/internal/logger"
	"github.com/rxtech-lab/cerebro/internal/types"
	"github.com/rxtech-lab/cerebro/pkg/errors"
)

type AnalyzerTestSuite struct {
	suite.Suite

	ctx *Context
}

func TestAnalyzerSuite(t *testing.T) {
	suite.Run(t, new(AnalyzerTestSuite))
}

func (suite *AnalyzerTestSuite) SetupTest() {
	suite.ctx = &Context{
		Data:   lines.NewDataSeries("AAPL"),
		Broker: broker.NewBroker(10000, broker.NewZeroCommission(), logger.NewTestLogger()),
	}
}

func (suite *AnalyzerTestSuite) appendBar(close float64, day int) {
	suite.ctx.Data.AppendBar(types.Bar{
		Time:  time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day),
		Open:  close,
		High:  close,
		Low:   close,
		Close: close,
	})
}

// closedTrade fabricates a sealed trade with the given net pnl.
func closedTrade(pnl float64) *broker.Trade {
	return &broker.Trade{
		Symbol:  "AAPL",
		IsOpen:  false,
		PnL:     pnl,
		PnLComm: pnl,
	}
}

func (suite *AnalyzerTestSuite) TestTimeReturnSeries() {
	tr := NewTimeReturn()
	tr.Start(suite.ctx)

	values := []float64{10000, 10100, 10201}
	for i, v := range values {
		suite.appendBar(100, i)
		tr.NotifyCashValue(v, v)
		tr.Next()
	}
	tr.Stop()

	series := tr.Series()
	suite.Require().Len(series, 2)
	suite.InDelta(0.01, series[0], 1e-12)
	suite.InDelta(0.01, series[1], 1e-12)

	returns, ok := tr.Results()["returns"].(map[time.Time]float64)
	suite.Require().True(ok)
	suite.Len(returns, 2)
}

func (suite *AnalyzerTestSuite) TestTradeStats() {
	ts := NewTradeStats()
	ts.Start(suite.ctx)

	ts.NotifyTrade(&broker.Trade{IsOpen: true})
	ts.NotifyTrade(closedTrade(100))
	ts.NotifyTrade(closedTrade(300))
	ts.NotifyTrade(closedTrade(-50))
	ts.Stop()

	results := ts.Results()
	suite.Equal(1, results["opened"])
	suite.Equal(3, results["closed"])
	suite.Equal(2, results["won"])
	suite.Equal(1, results["lost"])
	suite.InDelta(2.0/3.0, results["win_rate"].(float64), 1e-12)
	suite.InDelta(350.0, results["pnl_net"].(float64), 1e-12)
	suite.InDelta(200.0, results["avg_win"].(float64), 1e-12)
	suite.InDelta(-50.0, results["avg_loss"].(float64), 1e-12)
}

func (suite *AnalyzerTestSuite) TestSharpeDegenerateIsZero() {
	sr := NewSharpeRatio(0, 252)
	sr.Start(suite.ctx)

	// Perfectly flat equity: zero deviation must not divide by zero.
	for i := 0; i < 5; i++ {
		suite.appendBar(100, i)
		sr.NotifyCashValue(10000, 10000)
		sr.Next()
	}
	sr.Stop()

	suite.Equal(0.0, sr.Results()["sharpe_ratio"])
	suite.Equal(4, sr.Results()["samples"])
}

func (suite *AnalyzerTestSuite) TestSharpePositiveForRisingEquity() {
	sr := NewSharpeRatio(0, 252)
	sr.Start(suite.ctx)

	values := []float64{10000, 10100, 10180, 10350, 10400}
	for i, v := range values {
		suite.appendBar(100, i)
		sr.NotifyCashValue(v, v)
		sr.Next()
	}
	sr.Stop()

	suite.Greater(sr.Results()["sharpe_ratio"].(float64), 0.0)
}

func (suite *AnalyzerTestSuite) TestDrawDownTracksPeakDecline() {
	dd := NewDrawDown()
	dd.Start(suite.ctx)

	values := []float64{10000, 11000, 9900, 10450, 11500}
	for i, v := range values {
		suite.appendBar(100, i)
		dd.NotifyCashValue(v, v)
		dd.Next()
	}
	dd.Stop()

	results := dd.Results()
	// Worst point: 9900 against the 11000 peak.
	suite.InDelta(10.0, results["max_drawdown_pct"].(float64), 1e-9)
	suite.Equal(2, results["max_drawdown_len"])
	// New peak at the end clears the current drawdown.
	suite.Equal(0.0, results["drawdown_pct"])
}

func (suite *AnalyzerTestSuite) TestSQN() {
	sqn := NewSQN()
	sqn.Start(suite.ctx)

	for _, pnl := range []float64{100, 150, -50, 200} {
		sqn.NotifyTrade(closedTrade(pnl))
	}
	sqn.NotifyTrade(&broker.Trade{IsOpen: true})
	sqn.Stop()

	results := sqn.Results()
	suite.Equal(4, results["trades"])
	suite.Greater(results["sqn"].(float64), 0.0)
}

func (suite *AnalyzerTestSuite) TestRegistry() {
	registry := NewRegistry()
	suite.Require().NoError(registry.Register("timereturn", func() Analyzer { return NewTimeReturn() }))

	err := registry.Register("timereturn", func() Analyzer { return NewTimeReturn() })
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeAnalyzerDuplicate))

	created, err := registry.Create("timereturn")
	suite.Require().NoError(err)
	suite.Equal("timereturn", created.Name())

	_, err = registry.Create("missing")
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeAnalyzerNotFound))
}

func (suite *AnalyzerTestSuite) TestDefaultRegistryBuiltins() {
	registry := DefaultRegistry()
	suite.Equal([]string{"drawdown", "sharpe", "sqn", "timereturn", "tradestats"}, registry.Names())

	for _, name := range registry.Names() {
		created, err := registry.Create(name)
		suite.Require().NoError(err)
		suite.Equal(name, created.Name())
	}
}
