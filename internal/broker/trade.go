package broker

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Trade is the open-to-close lifecycle of a non-zero position in one
// instrument. It opens on the fill that takes the position away from zero,
// accumulates on every subsequent fill, and seals when the position
// returns to zero.
type Trade struct {
	ID     string
	Symbol string

	// Owner names the strategy whose order opened the trade. Empty for
	// trades opened by orders submitted outside a strategy.
	Owner string

	// Size is the current open size, signed. Price is the weighted average
	// entry price of the open size.
	Size  float64
	Price float64

	OpenedAt time.Time
	ClosedAt time.Time
	IsOpen   bool

	// PnL is the gross realized profit over closed size; PnLComm is net of
	// all commission paid on the trade's fills.
	PnL        float64
	PnLComm    float64
	Commission float64
}

// newTrade opens a trade with the fill that created exposure.
func newTrade(symbol, owner string, at time.Time, size, price, commission float64) *Trade {
	return &Trade{
		ID:         uuid.New().String(),
		Symbol:     symbol,
		Owner:      owner,
		Size:       size,
		Price:      price,
		OpenedAt:   at,
		IsOpen:     true,
		Commission: commission,
		PnLComm:    -commission,
	}
}

// update applies one fill's opened/closed split to the trade and seals it
// when the position is flat again. Realized PnL is accumulated with
// decimal arithmetic so long fill chains do not drift.
func (t *Trade) update(at time.Time, opened, closed, price, commission float64) {
	t.Commission += commission

	if closed != 0 {
		// closed carries the reduction's sign: negative when selling out
		// of a long, positive when buying back a short.
		realized := decimal.NewFromFloat(-closed).
			Mul(decimal.NewFromFloat(price).Sub(decimal.NewFromFloat(t.Price)))
		t.PnL += realized.InexactFloat64()
	}

	if opened != 0 {
		newSize := t.Size + opened
		t.Price = (t.Price*t.Size + price*opened) / newSize
	}

	t.Size += opened + closed
	t.PnLComm = t.PnL - t.Commission

	if t.Size == 0 {
		t.IsOpen = false
		t.ClosedAt = at
		t.Price = 0
	}
}
