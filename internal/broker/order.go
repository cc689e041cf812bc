package broker

import (
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/cerebro/pkg/errors"
)

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// ExecType selects how an order's fill price is determined.
type ExecType string

const (
	// ExecMarket fills at the next revealed bar's open.
	ExecMarket ExecType = "MARKET"
	// ExecLimit fills at the order price once the bar range crosses it.
	ExecLimit ExecType = "LIMIT"
	// ExecStop fills at the order price once the bar range touches it.
	ExecStop ExecType = "STOP"
)

// Status is the lifecycle state of an order. Transitions are
// one-directional; a terminal status is never left.
type Status int

const (
	StatusCreated Status = iota
	StatusSubmitted
	StatusAccepted
	StatusCompleted
	StatusPartial
	StatusCanceled
	StatusMargin
	StatusRejected
	StatusExpired
)

var statusNames = map[Status]string{
	StatusCreated:   "Created",
	StatusSubmitted: "Submitted",
	StatusAccepted:  "Accepted",
	StatusCompleted: "Completed",
	StatusPartial:   "Partial",
	StatusCanceled:  "Canceled",
	StatusMargin:    "Margin",
	StatusRejected:  "Rejected",
	StatusExpired:   "Expired",
}

// String implements fmt.Stringer.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}

	return "Unknown"
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCanceled, StatusMargin, StatusRejected, StatusExpired:
		return true
	default:
		return false
	}
}

// Order is a request to trade one instrument. Created by a strategy,
// mutated only by the broker, archived once terminal.
type Order struct {
	ID         string
	Symbol     string
	Side       Side
	Type       ExecType
	Size       float64
	Price      float64
	Status     Status
	CreatedAt  time.Time
	ValidUntil optional.Option[time.Time]

	// Owner names the strategy the order belongs to. The engine routes
	// notifications for the order (and any trade it touches) to that
	// strategy only. Empty for orders submitted outside a strategy.
	Owner string

	ExecutedAt    time.Time
	ExecutedPrice float64
	ExecutedSize  float64
	Commission    float64

	// submitBar is the data length observed at submission. The order
	// becomes eligible only once a later bar has been revealed.
	submitBar int
}

func newOrder(symbol string, side Side, typ ExecType, size, price float64) (*Order, error) {
	if size <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidOrder, "order size must be positive, got %v", size)
	}

	if typ != ExecMarket && price <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidOrder, "%s order price must be positive, got %v", typ, price)
	}

	return &Order{
		ID:     uuid.New().String(),
		Symbol: symbol,
		Side:   side,
		Type:   typ,
		Size:   size,
		Price:  price,
		Status: StatusCreated,
	}, nil
}

// NewMarketOrder creates a market order filling at the next bar's open.
func NewMarketOrder(symbol string, side Side, size float64) (*Order, error) {
	return newOrder(symbol, side, ExecMarket, size, 0)
}

// NewLimitOrder creates a limit order at the given price.
func NewLimitOrder(symbol string, side Side, size, price float64) (*Order, error) {
	return newOrder(symbol, side, ExecLimit, size, price)
}

// NewStopOrder creates a stop order triggering at the given price.
func NewStopOrder(symbol string, side Side, size, price float64) (*Order, error) {
	return newOrder(symbol, side, ExecStop, size, price)
}

// SignedSize is the size with the side's sign applied: positive for buys,
// negative for sells.
func (o *Order) SignedSize() float64 {
	if o.Side == SideSell {
		return -o.Size
	}

	return o.Size
}

// Alive reports whether the order is still waiting for execution.
func (o *Order) Alive() bool {
	return !o.Status.Terminal()
}

// transition moves the order to a new status. Moving out of a terminal
// status is a programmer error.
func (o *Order) transition(to Status) {
	if o.Status.Terminal() {
		panic("order: transition out of terminal status " + o.Status.String())
	}

	o.Status = to
}

// snapshot returns a copy for notification queues, so later mutations do
// not rewrite already delivered history.
func (o *Order) snapshot() *Order {
	clone := *o
	return &clone
}
