package analyzer

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/rxtech-lab/cerebro/internal/broker"
)

// SQN computes Van Tharp's system quality number over closed-trade net
// PnL: sqrt(n) * mean(pnl) / stdev(pnl). Fewer than two closed trades or
// zero deviation yields 0.
type SQN struct {
	Base

	pnls []float64
}

// NewSQN creates a system quality number analyzer.
func NewSQN() *SQN {
	s := &SQN{}
	s.Bind(s)

	return s
}

// Name implements Analyzer.
func (s *SQN) Name() string {
	return "sqn"
}

// NotifyTrade implements Analyzer.
func (s *SQN) NotifyTrade(trade *broker.Trade) {
	if trade.IsOpen {
		return
	}

	s.pnls = append(s.pnls, trade.PnLComm)
}

// Results implements Analyzer.
func (s *SQN) Results() Results {
	sqn := 0.0

	if len(s.pnls) > 1 {
		mean, _ := stats.Mean(stats.Float64Data(s.pnls))
		stdev, _ := stats.StandardDeviationSample(stats.Float64Data(s.pnls))
		if stdev > 0 {
			sqn = math.Sqrt(float64(len(s.pnls))) * mean / stdev
		}
	}

	return Results{
		"sqn":    sqn,
		"trades": len(s.pnls),
	}
}
