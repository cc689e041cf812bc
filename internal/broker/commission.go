package broker

// Commission prices the fee of a single fill.
type Commission interface {
	// Calculate returns the fee in cash units for a fill of size shares
	// at the given price.
	Calculate(size, price float64) float64
}

// Scheme names a built-in commission model.
type Scheme string

const (
	SchemeZero     Scheme = "zero"
	SchemeRate     Scheme = "rate"
	SchemePerShare Scheme = "per_share"
)

// ZeroCommission charges nothing.
type ZeroCommission struct{}

// NewZeroCommission creates a free commission model.
func NewZeroCommission() Commission {
	return &ZeroCommission{}
}

// Calculate implements Commission.
func (c *ZeroCommission) Calculate(size, price float64) float64 {
	return 0.0
}

// RateCommission charges a fraction of the traded notional.
type RateCommission struct {
	rate float64
}

// NewRateCommission creates a proportional commission model, e.g. 0.001
// for ten basis points of the notional.
func NewRateCommission(rate float64) Commission {
	return &RateCommission{rate: rate}
}

// Calculate implements Commission.
func (c *RateCommission) Calculate(size, price float64) float64 {
	return size * price * c.rate
}

// PerShareCommission charges per share with a minimum per fill.
type PerShareCommission struct {
	perShare float64
	minimum  float64
}

// NewPerShareCommission creates a per-share commission model.
func NewPerShareCommission(perShare, minimum float64) Commission {
	return &PerShareCommission{perShare: perShare, minimum: minimum}
}

// Calculate implements Commission.
func (c *PerShareCommission) Calculate(size, price float64) float64 {
	fee := c.perShare * size
	if fee < c.minimum {
		return c.minimum
	}

	return fee
}

// ForScheme returns the commission model for a named scheme. Unknown
// schemes fall back to zero commission.
func ForScheme(scheme Scheme, rate float64) Commission {
	switch scheme {
	case SchemeRate:
		return NewRateCommission(rate)
	case SchemePerShare:
		return NewPerShareCommission(rate, 1.0)
	default:
		return NewZeroCommission()
	}
}
