package cerebro

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/cerebro/internal/analyzer"
	"github.com/rxtech-lab/cerebro/internal/broker"
	"github.com/rxtech-lab/cerebro/internal/feed"
	"github.com/rxtech-lab/cerebro/internal/indicator"
	"github.com/rxtech-lab/cerebro/internal/logger"
	"github.com/rxtech-lab/cerebro/internal/strategy"
	"github.com/rxtech-lab/cerebro/internal/types"
	"github.com/rxtech-lab/cerebro/pkg/errors"
)

type CerebroTestSuite struct {
	suite.Suite
}

func TestCerebroSuite(t *testing.T) {
	suite.Run(t, new(CerebroTestSuite))
}

func dailyBars(closes []float64) []types.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, len(closes))

	for i, c := range closes {
		open := c
		if i > 0 {
			open = closes[i-1]
		}

		high, low := open, open
		if c > high {
			high = c
		}
		if c < low {
			low = c
		}

		bars[i] = types.Bar{
			Time:   start.AddDate(0, 0, i),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  c,
			Volume: 1000,
		}
	}

	return bars
}

// crossPath is a price path with exactly one golden cross and one death
// cross of a 10/30 SMA pair: a slow decline, a strong rally, a strong
// selloff, then a drift with bars left for the final fill.
func crossPath() []float64 {
	var closes []float64

	price := 130.0
	for i := 0; i < 40; i++ {
		closes = append(closes, price)
		price -= 0.5
	}
	for i := 0; i < 30; i++ {
		price += 2.0
		closes = append(closes, price)
	}
	for i := 0; i < 30; i++ {
		price -= 2.0
		closes = append(closes, price)
	}
	for i := 0; i < 10; i++ {
		price -= 0.25
		closes = append(closes, price)
	}

	return closes
}

// smaProbe builds one SMA and nothing else, so tests can read its values
// after a full engine run.
type smaProbe struct {
	strategy.Base

	period int
	sma    *indicator.SMA
}

func newSMAProbe(period int) *smaProbe {
	s := &smaProbe{period: period}
	s.Bind(s)

	return s
}

func (s *smaProbe) Name() string { return "sma_probe" }

func (s *smaProbe) Init(ctx *strategy.Context) error {
	s.SetContext(ctx)

	var err error
	s.sma, err = indicator.NewSMA(ctx.Graph, indicator.CloseLine(ctx.Data), s.period)

	return err
}

// oneShotBuyer buys a fixed size on its first eligible bar.
type oneShotBuyer struct {
	strategy.Base

	size   float64
	bought bool
	orders []*broker.Order
}

func newOneShotBuyer(size float64) *oneShotBuyer {
	s := &oneShotBuyer{size: size}
	s.Bind(s)

	return s
}

func (s *oneShotBuyer) Name() string { return "one_shot" }

func (s *oneShotBuyer) Init(ctx *strategy.Context) error {
	s.SetContext(ctx)
	return nil
}

func (s *oneShotBuyer) Next() {
	if s.bought {
		return
	}

	s.bought = true
	if _, err := s.Buy(s.size); err != nil {
		panic(err)
	}
}

func (s *oneShotBuyer) NotifyOrder(order *broker.Order) {
	s.orders = append(s.orders, order)
}

// idleWatcher never trades, it only records what it gets notified about.
type idleWatcher struct {
	strategy.Base

	orders []*broker.Order
	trades []*broker.Trade
}

func newIdleWatcher() *idleWatcher {
	s := &idleWatcher{}
	s.Bind(s)

	return s
}

func (s *idleWatcher) Name() string { return "idle_watcher" }

func (s *idleWatcher) Init(ctx *strategy.Context) error {
	s.SetContext(ctx)
	return nil
}

func (s *idleWatcher) NotifyOrder(order *broker.Order) {
	s.orders = append(s.orders, order)
}

func (s *idleWatcher) NotifyTrade(trade *broker.Trade) {
	s.trades = append(s.trades, trade)
}

func (suite *CerebroTestSuite) newEngine(config Config) *Cerebro {
	return NewCerebro(config, analyzer.DefaultRegistry(), logger.NewTestLogger())
}

func (suite *CerebroTestSuite) TestPreRunChecks() {
	engine := suite.newEngine(DefaultConfig())

	_, err := engine.Run(context.Background())
	suite.True(errors.HasCode(err, errors.ErrCodeNoFeeds))

	engine.AddFeed(feed.NewSliceFeed("AAPL", dailyBars([]float64{1, 2, 3})))
	_, err = engine.Run(context.Background())
	suite.True(errors.HasCode(err, errors.ErrCodeNoStrategies))
}

func (suite *CerebroTestSuite) TestScenarioRampSMA() {
	// 30 bars of closes 100..129: SMA(10) warms up through index 8 and
	// equals the mean of 100..109 at index 9.
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	probe := newSMAProbe(10)

	engine := suite.newEngine(DefaultConfig())
	engine.AddFeed(feed.NewSliceFeed("AAPL", dailyBars(closes)))
	engine.AddStrategy(probe)

	result, err := engine.Run(context.Background())
	suite.Require().NoError(err)
	suite.Equal(30, result.Bars)

	out := probe.sma.Output()
	for i := 0; i < 9; i++ {
		suite.True(math.IsNaN(out.At(i)), "index %d", i)
	}
	suite.Equal(104.5, out.At(9))
}

func (suite *CerebroTestSuite) TestScenarioGoldenCross() {
	config := DefaultConfig()
	config.InitialCash = 100000

	engine := suite.newEngine(config)
	engine.AddFeed(feed.NewSliceFeed("AAPL", dailyBars(crossPath())))
	engine.AddStrategy(strategy.NewGoldenCross(10, 30, 100))

	result, err := engine.Run(context.Background())
	suite.Require().NoError(err)

	// Exactly one BUY followed by one SELL, both completed.
	suite.Require().Len(result.Orders, 2)
	suite.Equal(broker.SideBuy, result.Orders[0].Side)
	suite.Equal(broker.SideSell, result.Orders[1].Side)
	suite.Equal(broker.StatusCompleted, result.Orders[0].Status)
	suite.Equal(broker.StatusCompleted, result.Orders[1].Status)
	suite.True(result.Orders[1].ExecutedAt.After(result.Orders[0].ExecutedAt))

	// The round trip produced exactly one closed trade and a flat book.
	suite.Require().Len(result.Trades, 1)
	suite.False(result.Trades[0].IsOpen)
	suite.Equal(result.FinalCash, result.FinalValue)
}

func (suite *CerebroTestSuite) TestScenarioCashLaw() {
	config := DefaultConfig()
	config.InitialCash = 10000
	config.CommissionScheme = broker.SchemeRate
	config.CommissionRate = 0.001

	closes := []float64{50, 50, 50, 50, 50}

	buyer := newOneShotBuyer(100)

	engine := suite.newEngine(config)
	engine.AddFeed(feed.NewSliceFeed("AAPL", dailyBars(closes)))
	engine.AddStrategy(buyer)

	result, err := engine.Run(context.Background())
	suite.Require().NoError(err)

	// cash == 10000 - 100*50 - 100*50*0.001
	suite.Equal(4995.0, result.FinalCash)

	// The strategy saw the full notification chain.
	statuses := make([]broker.Status, 0, len(buyer.orders))
	for _, order := range buyer.orders {
		statuses = append(statuses, order.Status)
	}
	suite.Equal([]broker.Status{broker.StatusSubmitted, broker.StatusAccepted, broker.StatusCompleted}, statuses)
}

func (suite *CerebroTestSuite) TestNotificationsRoutedToOwningStrategy() {
	config := DefaultConfig()
	config.InitialCash = 100000

	buyer := newOneShotBuyer(100)
	idle := newIdleWatcher()

	engine := suite.newEngine(config)
	engine.AddFeed(feed.NewSliceFeed("AAPL", dailyBars([]float64{50, 50, 50, 50, 50})))
	engine.AddStrategy(buyer)
	engine.AddStrategy(idle)
	suite.Require().NoError(engine.AddAnalyzer("tradestats"))

	result, err := engine.Run(context.Background())
	suite.Require().NoError(err)

	// The buyer saw its own notification chain; the idle strategy saw
	// nothing of it.
	suite.Len(buyer.orders, 3)
	suite.Empty(idle.orders)
	suite.Empty(idle.trades)

	for _, order := range buyer.orders {
		suite.Equal(buyer.Name(), order.Owner)
	}

	// Each strategy's analyzers only count its own trades.
	suite.Require().Len(result.Strategies, 2)
	suite.Equal(1, result.Strategies[0].Analyzers["tradestats"]["opened"])
	suite.Equal(0, result.Strategies[1].Analyzers["tradestats"]["opened"])
}

func (suite *CerebroTestSuite) TestBatchAndStreamingRunsAgree() {
	run := func(mode string) *RunResult {
		config := DefaultConfig()
		config.InitialCash = 100000
		config.CommissionScheme = broker.SchemeRate
		config.CommissionRate = 0.001
		config.Mode = mode

		engine := suite.newEngine(config)
		engine.AddFeed(feed.NewSliceFeed("AAPL", dailyBars(crossPath())))
		engine.AddStrategy(strategy.NewGoldenCross(10, 30, 100))
		suite.Require().NoError(engine.AddAnalyzer("tradestats"))

		result, err := engine.Run(context.Background())
		suite.Require().NoError(err)

		return result
	}

	streaming := run("streaming")
	batch := run("batch")

	suite.Equal(streaming.Bars, batch.Bars)
	suite.Equal(streaming.FinalCash, batch.FinalCash)
	suite.Equal(streaming.FinalValue, batch.FinalValue)

	suite.Require().Equal(len(streaming.Orders), len(batch.Orders))
	for i := range streaming.Orders {
		suite.Equal(streaming.Orders[i].ExecutedPrice, batch.Orders[i].ExecutedPrice)
		suite.Equal(streaming.Orders[i].ExecutedAt, batch.Orders[i].ExecutedAt)
		suite.Equal(streaming.Orders[i].Status, batch.Orders[i].Status)
	}

	suite.Equal(
		streaming.Strategies[0].Analyzers["tradestats"],
		batch.Strategies[0].Analyzers["tradestats"],
	)
}

func (suite *CerebroTestSuite) TestAnalyzersProduceResults() {
	config := DefaultConfig()
	config.InitialCash = 100000

	engine := suite.newEngine(config)
	engine.AddFeed(feed.NewSliceFeed("AAPL", dailyBars(crossPath())))
	engine.AddStrategy(strategy.NewGoldenCross(10, 30, 100))

	for _, name := range []string{"timereturn", "tradestats", "sharpe", "drawdown", "sqn"} {
		suite.Require().NoError(engine.AddAnalyzer(name))
	}

	suite.Require().Error(engine.AddAnalyzer("missing"))

	result, err := engine.Run(context.Background())
	suite.Require().NoError(err)

	analyses := result.Strategies[0].Analyzers
	suite.Require().Len(analyses, 5)
	suite.Equal(1, analyses["tradestats"]["closed"])
	suite.Equal(1, analyses["sqn"]["trades"])
	suite.NotEmpty(analyses["timereturn"]["returns"])
}

func (suite *CerebroTestSuite) TestTimeWindowClipsFeed() {
	closes := make([]float64, 10)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	bars := dailyBars(closes)

	config := DefaultConfig()
	config.StartTime = optional.Some(bars[2].Time)
	config.EndTime = optional.Some(bars[6].Time)

	probe := newSMAProbe(2)

	engine := suite.newEngine(config)
	engine.AddFeed(feed.NewSliceFeed("AAPL", bars))
	engine.AddStrategy(probe)

	result, err := engine.Run(context.Background())
	suite.Require().NoError(err)
	suite.Equal(5, result.Bars)
}

func (suite *CerebroTestSuite) TestCancellationStopsAtBarBoundary() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	probe := newSMAProbe(2)

	engine := suite.newEngine(DefaultConfig())
	engine.AddFeed(feed.NewSliceFeed("AAPL", dailyBars([]float64{1, 2, 3, 4})))
	engine.AddStrategy(probe)

	result, err := engine.Run(ctx)
	suite.Require().NoError(err)
	suite.Equal(0, result.Bars)
}

func (suite *CerebroTestSuite) TestProgressCallback() {
	var calls int

	probe := newSMAProbe(2)

	engine := suite.newEngine(DefaultConfig())
	engine.AddFeed(feed.NewSliceFeed("AAPL", dailyBars([]float64{1, 2, 3, 4})))
	engine.AddStrategy(probe)
	engine.SetProgress(func(done, total int) {
		calls++
		suite.Equal(4, total)
	})

	_, err := engine.Run(context.Background())
	suite.Require().NoError(err)
	suite.Equal(4, calls)
}
