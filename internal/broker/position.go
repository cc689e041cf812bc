package broker

// Position is the running holding of one instrument: signed size and the
// weighted average entry price. Only the broker mutates it.
type Position struct {
	Symbol string
	Size   float64
	Price  float64
}

// NewPosition creates a flat position.
func NewPosition(symbol string) *Position {
	return &Position{Symbol: symbol}
}

// Open reports whether any size is held, long or short.
func (p *Position) Open() bool {
	return p.Size != 0
}

// Update applies a signed fill and returns how much of it opened new
// exposure and how much closed existing exposure (both signed).
//
// Adding in the direction of the position reweights the average entry
// price. Reducing keeps the entry price. A fill crossing zero closes the
// whole old size and reopens the remainder at the fill price.
func (p *Position) Update(size, price float64) (opened, closed float64) {
	if size == 0 {
		return 0, 0
	}

	oldSize := p.Size
	p.Size += size

	switch {
	case oldSize == 0:
		opened = size
		p.Price = price

	case sameSign(oldSize, size):
		opened = size
		p.Price = (p.Price*oldSize + price*size) / p.Size

	case sameSign(oldSize, p.Size):
		// Partial reduction, entry price unchanged.
		closed = size

	default:
		// Crossed zero: old exposure fully closed, remainder reopened.
		closed = -oldSize
		opened = p.Size
		if p.Size == 0 {
			p.Price = 0
		} else {
			p.Price = price
		}
	}

	if p.Size == 0 {
		p.Price = 0
	}

	return opened, closed
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}
