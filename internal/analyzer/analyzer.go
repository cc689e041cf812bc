// Package analyzer implements the run-statistics contract: analyzers
// observe the same per-bar lifecycle as indicators plus the broker's
// notifications, and produce a named result map instead of output lines.
package analyzer

import (
	"github.com/rxtech-lab/cerebro/internal/broker"
	"github.com/rxtech-lab/cerebro/internal/lines"
)

// Context gives an analyzer read access to the run it observes.
type Context struct {
	Data   *lines.DataSeries
	Broker *broker.Broker
}

// Results is the named analysis an analyzer produces. Values are plain
// scalars or nested maps for per-time series.
type Results map[string]any

// Analyzer observes a run bar by bar and produces Results at the end.
type Analyzer interface {
	// Name identifies the analyzer in result maps and the registry.
	Name() string

	// Start is called once before the first bar.
	Start(ctx *Context)
	// PreNext is called while fewer bars than the run's minimum period
	// have been seen.
	PreNext()
	// NextStart is called on the bar where the minimum period is first
	// satisfied.
	NextStart()
	// Next is called on every bar past the minimum period.
	Next()
	// Stop is called after the last bar, before Results is read.
	Stop()

	// NotifyOrder delivers an order status snapshot.
	NotifyOrder(order *broker.Order)
	// NotifyTrade delivers a trade snapshot on open and on close.
	NotifyTrade(trade *broker.Trade)
	// NotifyCashValue delivers end-of-bar cash and portfolio value.
	NotifyCashValue(cash, value float64)

	// Results returns the analysis. Valid after Stop.
	Results() Results
}

// Base provides default no-op hooks and context storage. Concrete
// analyzers embed Base and pass themselves to Bind so the default
// NextStart delegates to their Next override.
type Base struct {
	self Analyzer
	ctx  *Context
}

// Bind wires the concrete analyzer for default-hook delegation.
func (b *Base) Bind(self Analyzer) {
	b.self = self
}

// Ctx returns the run context captured by Start.
func (b *Base) Ctx() *Context {
	return b.ctx
}

// Start implements Analyzer.
func (b *Base) Start(ctx *Context) {
	b.ctx = ctx
}

// PreNext implements Analyzer.
func (b *Base) PreNext() {}

// NextStart implements Analyzer: delegate to Next.
func (b *Base) NextStart() {
	b.self.Next()
}

// Next implements Analyzer.
func (b *Base) Next() {}

// Stop implements Analyzer.
func (b *Base) Stop() {}

// NotifyOrder implements Analyzer.
func (b *Base) NotifyOrder(order *broker.Order) {}

// NotifyTrade implements Analyzer.
func (b *Base) NotifyTrade(trade *broker.Trade) {}

// NotifyCashValue implements Analyzer.
func (b *Base) NotifyCashValue(cash, value float64) {}
