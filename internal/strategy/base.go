package strategy

import (
	"github.com/rxtech-lab/cerebro/internal/broker"
)

// Base carries the shared strategy plumbing: context access, order
// helpers and the default lifecycle hooks. Concrete strategies embed Base
// and pass themselves to Bind so the default NextStart delegates to their
// Next override.
type Base struct {
	self Strategy
	ctx  *Context
	stop bool
}

// Bind wires the concrete strategy for default-hook delegation. The
// engine calls it before Init.
func (b *Base) Bind(self Strategy) {
	b.self = self
}

// SetContext stores the run context. Concrete Init implementations call
// it first.
func (b *Base) SetContext(ctx *Context) {
	b.ctx = ctx
}

// Ctx returns the run context.
func (b *Base) Ctx() *Context {
	return b.ctx
}

// Start implements Strategy.
func (b *Base) Start() {}

// PreNext implements Strategy: nothing to do before the minimum period.
func (b *Base) PreNext() {}

// NextStart implements Strategy: delegate to Next.
func (b *Base) NextStart() {
	b.self.Next()
}

// Next implements Strategy.
func (b *Base) Next() {}

// Stop implements Strategy.
func (b *Base) Stop() {}

// NotifyOrder implements Strategy.
func (b *Base) NotifyOrder(order *broker.Order) {}

// NotifyTrade implements Strategy.
func (b *Base) NotifyTrade(trade *broker.Trade) {}

// NotifyCashValue implements Strategy.
func (b *Base) NotifyCashValue(cash, value float64) {}

// StopEngine asks the engine to end the run at the next bar boundary.
func (b *Base) StopEngine() {
	b.stop = true
}

// ShouldStop implements Strategy.
func (b *Base) ShouldStop() bool {
	return b.stop
}

// Position returns the holding for the primary data feed.
func (b *Base) Position() *broker.Position {
	return b.ctx.Broker.Position(b.ctx.Data.Symbol())
}

// Buy submits a market buy on the primary data feed.
func (b *Base) Buy(size float64) (*broker.Order, error) {
	return b.submitMarket(broker.SideBuy, size)
}

// Sell submits a market sell on the primary data feed.
func (b *Base) Sell(size float64) (*broker.Order, error) {
	return b.submitMarket(broker.SideSell, size)
}

// submitMarket builds and submits a market order owned by the bound
// strategy, so the engine routes its notifications back here only.
func (b *Base) submitMarket(side broker.Side, size float64) (*broker.Order, error) {
	order, err := broker.NewMarketOrder(b.ctx.Data.Symbol(), side, size)
	if err != nil {
		return nil, err
	}

	if b.self != nil {
		order.Owner = b.self.Name()
	}

	if err := b.ctx.Broker.Submit(order, b.ctx.Data); err != nil {
		return nil, err
	}

	return order, nil
}

// Close submits the market order that flattens the current position. It
// returns nil when already flat.
func (b *Base) Close() (*broker.Order, error) {
	pos := b.Position()

	switch {
	case pos.Size > 0:
		return b.Sell(pos.Size)
	case pos.Size < 0:
		return b.Buy(-pos.Size)
	default:
		return nil, nil
	}
}
