// Package strategy defines the strategy lifecycle the engine drives once
// per bar and the base helpers concrete strategies build on.
package strategy

import (
	"github.com/rxtech-lab/cerebro/internal/broker"
	"github.com/rxtech-lab/cerebro/internal/indicator"
	"github.com/rxtech-lab/cerebro/internal/lines"
	"github.com/rxtech-lab/cerebro/internal/logger"
)

// Context gives a strategy access to its run facilities: the data feeds,
// the broker and the indicator graph it builds its subgraph into.
type Context struct {
	Data   *lines.DataSeries
	Datas  []*lines.DataSeries
	Broker *broker.Broker
	Graph  *indicator.Graph
	Logger *logger.Logger
}

// Strategy is the engine-facing lifecycle of one trading strategy. The
// engine dispatches PreNext/NextStart/Next against the indicator graph's
// minimum period exactly like an indicator, and routes broker
// notifications after each bar's fills.
type Strategy interface {
	// Name identifies the strategy in results and persisted records.
	Name() string

	// Init builds the indicator subgraph and captures the context. Called
	// once before the first bar.
	Init(ctx *Context) error

	// Start is called after Init, before the first bar.
	Start()
	// PreNext is called while fewer bars than the graph's minimum period
	// have been seen.
	PreNext()
	// NextStart is called on the bar where the minimum period is first
	// satisfied.
	NextStart()
	// Next is called on every bar past the minimum period.
	Next()
	// Stop is called after the last bar.
	Stop()

	// NotifyOrder delivers an order status snapshot.
	NotifyOrder(order *broker.Order)
	// NotifyTrade delivers a trade snapshot on open and on close.
	NotifyTrade(trade *broker.Trade)
	// NotifyCashValue delivers end-of-bar cash and portfolio value.
	NotifyCashValue(cash, value float64)

	// ShouldStop reports whether the strategy asked the engine to stop at
	// the next bar boundary.
	ShouldStop() bool
}
