package analyzer

import (
	"math"

	"github.com/montanaflynn/stats"
)

// SharpeRatio computes the annualized Sharpe ratio over per-bar portfolio
// returns. A degenerate run with zero return deviation yields 0 rather
// than an error.
type SharpeRatio struct {
	Base

	riskFree float64
	factor   float64

	value   float64
	last    float64
	hasLast bool
	returns []float64
}

// NewSharpeRatio creates a Sharpe analyzer with an annual risk-free rate
// and an annualization factor (bars per year, e.g. 252 for daily bars).
func NewSharpeRatio(riskFree float64, factor float64) *SharpeRatio {
	s := &SharpeRatio{
		riskFree: riskFree,
		factor:   factor,
	}
	s.Bind(s)

	return s
}

// Name implements Analyzer.
func (s *SharpeRatio) Name() string {
	return "sharpe"
}

// NotifyCashValue implements Analyzer.
func (s *SharpeRatio) NotifyCashValue(cash, value float64) {
	s.value = value
}

// PreNext implements Analyzer: every bar contributes a return sample.
func (s *SharpeRatio) PreNext() {
	s.Next()
}

// Next implements Analyzer.
func (s *SharpeRatio) Next() {
	if s.hasLast && s.last != 0 {
		s.returns = append(s.returns, s.value/s.last-1)
	}

	s.last = s.value
	s.hasLast = true
}

// Results implements Analyzer.
func (s *SharpeRatio) Results() Results {
	ratio := 0.0

	if len(s.returns) > 1 {
		perBarRiskFree := s.riskFree / s.factor

		excess := make([]float64, len(s.returns))
		for i, r := range s.returns {
			excess[i] = r - perBarRiskFree
		}

		mean, _ := stats.Mean(stats.Float64Data(excess))
		stdev, _ := stats.StandardDeviationSample(stats.Float64Data(excess))
		if stdev > 0 {
			ratio = mean / stdev * math.Sqrt(s.factor)
		}
	}

	return Results{
		"sharpe_ratio": ratio,
		"samples":      len(s.returns),
	}
}
