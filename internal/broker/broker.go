// Package broker simulates order execution for a bar replay: it owns cash,
// per-instrument positions, pending orders and trade accounting, and is the
// only mutator of those records during a run.
package broker

import (
	"go.uber.org/zap"

	"github.com/rxtech-lab/cerebro/internal/lines"
	"github.com/rxtech-lab/cerebro/internal/logger"
	"github.com/rxtech-lab/cerebro/pkg/errors"
)

// Broker executes orders against revealed bars and keeps the books.
type Broker struct {
	cash         float64
	startingCash float64
	commission   Commission
	log          *logger.Logger

	positions map[string]*Position
	open      map[string]*Trade
	closed    []*Trade
	pending   []*Order
	history   []*Order

	orderNotifs []*Order
	tradeNotifs []*Trade
}

// NewBroker creates a broker with starting cash and a commission model.
func NewBroker(cash float64, commission Commission, log *logger.Logger) *Broker {
	if commission == nil {
		commission = NewZeroCommission()
	}

	return &Broker{
		cash:         cash,
		startingCash: cash,
		commission:   commission,
		log:          log,
		positions:    make(map[string]*Position),
		open:         make(map[string]*Trade),
	}
}

// Cash returns the current free cash.
func (b *Broker) Cash() float64 {
	return b.cash
}

// StartingCash returns the cash the run began with.
func (b *Broker) StartingCash() float64 {
	return b.startingCash
}

// Value returns cash plus the open positions marked at the given prices.
// Positions with no quoted price contribute their entry value.
func (b *Broker) Value(prices map[string]float64) float64 {
	value := b.cash
	for symbol, pos := range b.positions {
		price, ok := prices[symbol]
		if !ok {
			price = pos.Price
		}

		value += pos.Size * price
	}

	return value
}

// Position returns the holding for symbol, flat if never traded.
func (b *Broker) Position(symbol string) *Position {
	if pos, ok := b.positions[symbol]; ok {
		return pos
	}

	pos := NewPosition(symbol)
	b.positions[symbol] = pos

	return pos
}

// Submit accepts an order against the given data series. The order becomes
// eligible for execution only on bars revealed after this call.
func (b *Broker) Submit(order *Order, data *lines.DataSeries) error {
	if order == nil {
		return errors.New(errors.ErrCodeInvalidOrder, "nil order")
	}

	if order.Status != StatusCreated {
		return errors.Newf(errors.ErrCodeInvalidOrder, "order %s resubmitted in status %s", order.ID, order.Status)
	}

	order.submitBar = data.Len()
	order.CreatedAt = data.Time(0)

	order.transition(StatusSubmitted)
	b.notifyOrder(order)

	order.transition(StatusAccepted)
	b.notifyOrder(order)

	b.pending = append(b.pending, order)

	b.log.Debug("order accepted",
		zap.String("id", order.ID),
		zap.String("symbol", order.Symbol),
		zap.String("side", string(order.Side)),
		zap.String("type", string(order.Type)),
		zap.Float64("size", order.Size),
	)

	return nil
}

// Cancel moves a still-alive order to Canceled. Canceling a terminal order
// is a no-op.
func (b *Broker) Cancel(order *Order) {
	if order == nil || !order.Alive() {
		return
	}

	order.transition(StatusCanceled)
	b.retire(order)
	b.notifyOrder(order)
}

// PendingCount reports how many orders are waiting for execution.
func (b *Broker) PendingCount() int {
	return len(b.pending)
}

// Orders returns every order the broker has retired, in completion order.
func (b *Broker) Orders() []*Order {
	return b.history
}

// ClosedTrades returns every sealed trade, in close order.
func (b *Broker) ClosedTrades() []*Trade {
	return b.closed
}

// OpenTrade returns the open trade for symbol, nil when flat.
func (b *Broker) OpenTrade(symbol string) *Trade {
	return b.open[symbol]
}

// ProcessBar attempts to fill pending orders for data's instrument against
// its current bar. Orders submitted on this same bar stay pending.
func (b *Broker) ProcessBar(data *lines.DataSeries) {
	if data.Len() == 0 {
		return
	}

	symbol := data.Symbol()
	barTime := data.Time(0)

	for _, order := range b.pending {
		if order.Symbol != symbol || !order.Alive() {
			continue
		}

		if data.Len() <= order.submitBar {
			continue
		}

		if deadline, err := order.ValidUntil.Take(); err == nil && barTime.After(deadline) {
			order.transition(StatusExpired)
			b.notifyOrder(order)
			continue
		}

		price, fillable := fillPrice(order, data)
		if !fillable {
			continue
		}

		b.execute(order, data, price)
	}

	b.sweepPending()
}

// fillPrice decides whether order crosses the current bar and at what
// price. Market orders fill at the open; limit and stop orders fill at
// their own price once the bar range reaches it.
func fillPrice(order *Order, data *lines.DataSeries) (float64, bool) {
	high, low := data.High(0), data.Low(0)

	switch order.Type {
	case ExecMarket:
		return data.Open(0), true

	case ExecLimit:
		if order.Side == SideBuy && low <= order.Price {
			return order.Price, true
		}
		if order.Side == SideSell && high >= order.Price {
			return order.Price, true
		}

	case ExecStop:
		if order.Side == SideBuy && high >= order.Price {
			return order.Price, true
		}
		if order.Side == SideSell && low <= order.Price {
			return order.Price, true
		}
	}

	return 0, false
}

func (b *Broker) execute(order *Order, data *lines.DataSeries, price float64) {
	commission := b.commission.Calculate(order.Size, price)
	notional := order.Size * price

	if order.Side == SideBuy {
		cost := notional + commission
		if cost > b.cash {
			order.transition(StatusMargin)
			b.notifyOrder(order)
			b.log.Warn("order hit margin",
				zap.String("id", order.ID),
				zap.Float64("cost", cost),
				zap.Float64("cash", b.cash),
			)

			return
		}

		b.cash -= cost
	} else {
		b.cash += notional - commission
	}

	order.ExecutedAt = data.Time(0)
	order.ExecutedPrice = price
	order.ExecutedSize = order.Size
	order.Commission = commission
	order.transition(StatusCompleted)

	opened, closed := b.Position(order.Symbol).Update(order.SignedSize(), price)
	b.applyToTrade(order, price, opened, closed, commission)
	b.notifyOrder(order)

	b.log.Debug("order filled",
		zap.String("id", order.ID),
		zap.String("symbol", order.Symbol),
		zap.Float64("price", price),
		zap.Float64("size", order.ExecutedSize),
		zap.Float64("commission", commission),
		zap.Float64("cash", b.cash),
	)
}

// applyToTrade routes a fill's opened/closed split into trade accounting.
// A fill crossing zero seals the running trade and opens a fresh one at
// the same price in the same step.
func (b *Broker) applyToTrade(order *Order, price, opened, closed, commission float64) {
	at := order.ExecutedAt
	symbol := order.Symbol
	trade := b.open[symbol]

	if trade == nil {
		if opened == 0 {
			return
		}

		trade = newTrade(symbol, order.Owner, at, opened, price, commission)
		b.open[symbol] = trade
		b.notifyTrade(trade)

		return
	}

	if opened != 0 && closed != 0 {
		trade.update(at, 0, closed, price, commission)
		b.sealTrade(symbol, trade)

		next := newTrade(symbol, order.Owner, at, opened, price, 0)
		b.open[symbol] = next
		b.notifyTrade(next)

		return
	}

	trade.update(at, opened, closed, price, commission)
	if !trade.IsOpen {
		b.sealTrade(symbol, trade)
	}
}

func (b *Broker) sealTrade(symbol string, trade *Trade) {
	delete(b.open, symbol)
	b.closed = append(b.closed, trade)
	b.notifyTrade(trade)
}

// sweepPending drops terminal orders from the pending set and archives
// them in completion order.
func (b *Broker) sweepPending() {
	alive := b.pending[:0]
	for _, order := range b.pending {
		if order.Alive() {
			alive = append(alive, order)
			continue
		}

		b.history = append(b.history, order)
	}

	b.pending = alive
}

func (b *Broker) retire(order *Order) {
	for i, pending := range b.pending {
		if pending == order {
			b.pending = append(b.pending[:i], b.pending[i+1:]...)
			break
		}
	}

	b.history = append(b.history, order)
}

func (b *Broker) notifyOrder(order *Order) {
	b.orderNotifs = append(b.orderNotifs, order.snapshot())
}

func (b *Broker) notifyTrade(trade *Trade) {
	clone := *trade
	b.tradeNotifs = append(b.tradeNotifs, &clone)
}

// PopOrderNotifications drains queued order status snapshots in emission
// order.
func (b *Broker) PopOrderNotifications() []*Order {
	notifs := b.orderNotifs
	b.orderNotifs = nil

	return notifs
}

// PopTradeNotifications drains queued trade snapshots in emission order.
func (b *Broker) PopTradeNotifications() []*Trade {
	notifs := b.tradeNotifs
	b.tradeNotifs = nil

	return notifs
}
