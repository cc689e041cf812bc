// Package cerebro implements the bar-stepping engine: it owns the data
// feeds, the strategies with their indicator graphs, the broker and the
// analyzers, and drives the strictly sequential per-bar replay loop.
package cerebro

import (
	"context"

	"go.uber.org/zap"

	"github.com/rxtech-lab/cerebro/internal/analyzer"
	"github.com/rxtech-lab/cerebro/internal/broker"
	"github.com/rxtech-lab/cerebro/internal/feed"
	"github.com/rxtech-lab/cerebro/internal/indicator"
	"github.com/rxtech-lab/cerebro/internal/lines"
	"github.com/rxtech-lab/cerebro/internal/logger"
	"github.com/rxtech-lab/cerebro/internal/state"
	"github.com/rxtech-lab/cerebro/internal/strategy"
	"github.com/rxtech-lab/cerebro/internal/types"
	"github.com/rxtech-lab/cerebro/pkg/errors"
)

// StrategyResult exposes one strategy's analyzer result maps.
type StrategyResult struct {
	StrategyName string
	Analyzers    map[string]analyzer.Results
}

// RunResult is everything a run produced.
type RunResult struct {
	Strategies []StrategyResult
	Orders     []*broker.Order
	Trades     []*broker.Trade

	Bars         int
	StartingCash float64
	FinalCash    float64
	FinalValue   float64
}

// runUnit pairs a strategy with its private indicator graph and the
// analyzer instances observing it.
type runUnit struct {
	strategy  strategy.Strategy
	graph     *indicator.Graph
	analyzers []analyzer.Analyzer
}

// Cerebro wires feeds, strategies, the broker and analyzers into one
// deterministic replay.
type Cerebro struct {
	config   Config
	log      *logger.Logger
	registry *analyzer.Registry

	feeds         []feed.Feed
	strategies    []strategy.Strategy
	analyzerNames []string
	recorder      *state.Recorder
	progress      func(done, total int)
}

// NewCerebro creates an engine. The analyzer registry is an explicit
// dependency; pass analyzer.DefaultRegistry() for the built-ins.
func NewCerebro(config Config, registry *analyzer.Registry, log *logger.Logger) *Cerebro {
	if registry == nil {
		registry = analyzer.NewRegistry()
	}

	return &Cerebro{
		config:   config,
		log:      log,
		registry: registry,
	}
}

// AddFeed registers a data feed. Feeds advance in lock-step during the
// run.
func (c *Cerebro) AddFeed(f feed.Feed) {
	c.feeds = append(c.feeds, f)
}

// AddStrategy registers a strategy. Each strategy gets its own indicator
// graph; all strategies share the broker.
func (c *Cerebro) AddStrategy(s strategy.Strategy) {
	c.strategies = append(c.strategies, s)
}

// AddAnalyzer attaches a registered analyzer, instantiated once per
// strategy at run start.
func (c *Cerebro) AddAnalyzer(name string) error {
	if _, err := c.registry.Create(name); err != nil {
		return err
	}

	c.analyzerNames = append(c.analyzerNames, name)

	return nil
}

// SetRecorder persists orders and trades through the given recorder at
// the end of the run.
func (c *Cerebro) SetRecorder(r *state.Recorder) {
	c.recorder = r
}

// SetProgress installs a per-bar progress callback.
func (c *Cerebro) SetProgress(fn func(done, total int)) {
	c.progress = fn
}

func (c *Cerebro) preRunCheck() error {
	if len(c.feeds) == 0 {
		return errors.New(errors.ErrCodeNoFeeds, "no data feeds added")
	}

	if len(c.strategies) == 0 {
		return errors.New(errors.ErrCodeNoStrategies, "no strategies added")
	}

	if c.config.InitialCash < 0 {
		return errors.Newf(errors.ErrCodeInvalidCash, "initial cash must not be negative, got %v", c.config.InitialCash)
	}

	return nil
}

// loadFeeds materializes every feed into bars, clipped to the configured
// time window.
func (c *Cerebro) loadFeeds(ctx context.Context) ([][]types.Bar, error) {
	all := make([][]types.Bar, 0, len(c.feeds))

	for _, f := range c.feeds {
		bars, err := f.Load(ctx)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeFeedLoadFailed, err, "load feed %s", f.Symbol())
		}

		bars = c.clipWindow(bars)
		if len(bars) == 0 {
			return nil, errors.Newf(errors.ErrCodeFeedEmpty, "feed %s has no bars in the configured window", f.Symbol())
		}

		all = append(all, bars)
	}

	return all, nil
}

func (c *Cerebro) clipWindow(bars []types.Bar) []types.Bar {
	start, startErr := c.config.StartTime.Take()
	end, endErr := c.config.EndTime.Take()
	hasStart, hasEnd := startErr == nil, endErr == nil

	if !hasStart && !hasEnd {
		return bars
	}

	clipped := bars[:0:0]
	for _, bar := range bars {
		if hasStart && bar.Time.Before(start) {
			continue
		}
		if hasEnd && bar.Time.After(end) {
			continue
		}

		clipped = append(clipped, bar)
	}

	return clipped
}

// Run executes the replay and returns the per-strategy results. The run
// stops at the next bar boundary when ctx is canceled, a strategy
// requests a stop, or the feeds are exhausted.
func (c *Cerebro) Run(ctx context.Context) (*RunResult, error) {
	if err := c.preRunCheck(); err != nil {
		return nil, err
	}

	allBars, err := c.loadFeeds(ctx)
	if err != nil {
		return nil, err
	}

	// Feeds advance in lock-step; the shortest one bounds the run.
	total := len(allBars[0])
	for _, bars := range allBars[1:] {
		if len(bars) < total {
			total = len(bars)
		}
	}

	datas := make([]*lines.DataSeries, len(c.feeds))
	for i, f := range c.feeds {
		datas[i] = lines.NewDataSeries(f.Symbol())
	}

	bkr := broker.NewBroker(c.config.InitialCash, c.config.Commission(), c.log)
	mode := c.config.EvaluationMode()

	units := make([]*runUnit, len(c.strategies))
	for i, strat := range c.strategies {
		graph := indicator.NewGraph(mode)

		if err := strat.Init(&strategy.Context{
			Data:   datas[0],
			Datas:  datas,
			Broker: bkr,
			Graph:  graph,
			Logger: c.log,
		}); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeRunFailed, err, "init strategy %s", strat.Name())
		}

		instances := make([]analyzer.Analyzer, 0, len(c.analyzerNames))
		for _, name := range c.analyzerNames {
			a, err := c.registry.Create(name)
			if err != nil {
				return nil, err
			}

			a.Start(&analyzer.Context{Data: datas[0], Broker: bkr})
			instances = append(instances, a)
		}

		units[i] = &runUnit{strategy: strat, graph: graph, analyzers: instances}
	}

	// Batch mode materializes every buffer up front; the loop then only
	// moves cursors. Streaming appends and evaluates bar by bar.
	if mode == indicator.Batch {
		for i, data := range datas {
			data.Preload(allBars[i][:total])
		}

		for _, unit := range units {
			unit.graph.RunOnceAll()
		}
	}

	for _, unit := range units {
		unit.strategy.Start()
	}

	c.log.Info("run started",
		zap.Int("bars", total),
		zap.Int("strategies", len(units)),
		zap.String("mode", mode.String()),
	)

	bars := 0
	for step := 0; step < total; step++ {
		if ctx.Err() != nil {
			c.log.Warn("run canceled", zap.Int("bar", step))
			break
		}

		if c.stopRequested() {
			break
		}

		// (1) advance every feed by one slot.
		if mode == indicator.Batch {
			for _, data := range datas {
				data.Advance(1)
			}
		} else {
			for i, data := range datas {
				data.AppendBar(allBars[i][step])
			}
		}

		// (2) evaluate indicators, leaves first.
		for _, unit := range units {
			if mode == indicator.Batch {
				unit.graph.AdvanceAll(1)
			} else {
				unit.graph.StepAll()
			}
		}

		// (3) strategy lifecycle against its graph's minimum period.
		seen := datas[0].Len()
		for _, unit := range units {
			dispatch(seen, unit.graph.MinPeriod(), unit.strategy.PreNext, unit.strategy.NextStart, unit.strategy.Next)
		}

		// (4) broker fills against the revealed bar, then notifications.
		for _, data := range datas {
			bkr.ProcessBar(data)
		}
		c.deliverNotifications(bkr, units)

		// (5) analyzer lifecycle.
		cash, value := bkr.Cash(), bkr.Value(c.lastPrices(datas))
		for _, unit := range units {
			unit.strategy.NotifyCashValue(cash, value)

			for _, a := range unit.analyzers {
				a.NotifyCashValue(cash, value)
				dispatch(seen, unit.graph.MinPeriod(), a.PreNext, a.NextStart, a.Next)
			}
		}

		bars++
		if c.progress != nil {
			c.progress(bars, total)
		}
	}

	for _, unit := range units {
		unit.strategy.Stop()
		for _, a := range unit.analyzers {
			a.Stop()
		}
	}

	result := c.collectResults(bkr, units, datas, bars)

	if c.recorder != nil {
		if err := c.record(result); err != nil {
			return nil, err
		}
	}

	c.log.Info("run finished",
		zap.Int("bars", result.Bars),
		zap.Float64("final_cash", result.FinalCash),
		zap.Float64("final_value", result.FinalValue),
	)

	return result, nil
}

// dispatch routes one bar to the prenext/nextstart/next triplet.
func dispatch(seen, minPeriod int, preNext, nextStart, next func()) {
	switch {
	case seen > minPeriod:
		next()
	case seen == minPeriod:
		nextStart()
	default:
		preNext()
	}
}

func (c *Cerebro) stopRequested() bool {
	for _, strat := range c.strategies {
		if strat.ShouldStop() {
			return true
		}
	}

	return false
}

// deliverNotifications drains the broker queues and routes each snapshot
// to the strategy that owns it, so concurrent strategies never observe
// each other's orders or trades. Unowned snapshots, from orders submitted
// outside any strategy, go to every unit.
func (c *Cerebro) deliverNotifications(bkr *broker.Broker, units []*runUnit) {
	for _, order := range bkr.PopOrderNotifications() {
		for _, unit := range units {
			if order.Owner != "" && order.Owner != unit.strategy.Name() {
				continue
			}

			unit.strategy.NotifyOrder(order)
			for _, a := range unit.analyzers {
				a.NotifyOrder(order)
			}
		}
	}

	for _, trade := range bkr.PopTradeNotifications() {
		for _, unit := range units {
			if trade.Owner != "" && trade.Owner != unit.strategy.Name() {
				continue
			}

			unit.strategy.NotifyTrade(trade)
			for _, a := range unit.analyzers {
				a.NotifyTrade(trade)
			}
		}
	}
}

func (c *Cerebro) lastPrices(datas []*lines.DataSeries) map[string]float64 {
	prices := make(map[string]float64, len(datas))
	for _, data := range datas {
		if data.Len() > 0 {
			prices[data.Symbol()] = data.Close(0)
		}
	}

	return prices
}

func (c *Cerebro) collectResults(bkr *broker.Broker, units []*runUnit, datas []*lines.DataSeries, bars int) *RunResult {
	results := make([]StrategyResult, len(units))
	for i, unit := range units {
		analyses := make(map[string]analyzer.Results, len(unit.analyzers))
		for _, a := range unit.analyzers {
			analyses[a.Name()] = a.Results()
		}

		results[i] = StrategyResult{
			StrategyName: unit.strategy.Name(),
			Analyzers:    analyses,
		}
	}

	return &RunResult{
		Strategies:   results,
		Orders:       bkr.Orders(),
		Trades:       bkr.ClosedTrades(),
		Bars:         bars,
		StartingCash: bkr.StartingCash(),
		FinalCash:    bkr.Cash(),
		FinalValue:   bkr.Value(c.lastPrices(datas)),
	}
}

func (c *Cerebro) record(result *RunResult) error {
	name := result.Strategies[0].StrategyName
	for _, sr := range result.Strategies[1:] {
		name += "+" + sr.StrategyName
	}

	if err := c.recorder.RecordOrders(name, result.Orders); err != nil {
		return err
	}

	return c.recorder.RecordTrades(name, result.Trades)
}
