package analyzer

import (
	"github.com/montanaflynn/stats"

	"github.com/rxtech-lab/cerebro/internal/broker"
)

// TradeStats aggregates closed-trade statistics: counts, win rate and
// average win/loss.
type TradeStats struct {
	Base

	wins   []float64
	losses []float64
	opened int
}

// NewTradeStats creates a closed-trade statistics analyzer.
func NewTradeStats() *TradeStats {
	t := &TradeStats{}
	t.Bind(t)

	return t
}

// Name implements Analyzer.
func (t *TradeStats) Name() string {
	return "tradestats"
}

// NotifyTrade implements Analyzer.
func (t *TradeStats) NotifyTrade(trade *broker.Trade) {
	if trade.IsOpen {
		t.opened++
		return
	}

	if trade.PnLComm >= 0 {
		t.wins = append(t.wins, trade.PnLComm)
	} else {
		t.losses = append(t.losses, trade.PnLComm)
	}
}

// Results implements Analyzer.
func (t *TradeStats) Results() Results {
	closed := len(t.wins) + len(t.losses)

	var winRate float64
	if closed > 0 {
		winRate = float64(len(t.wins)) / float64(closed)
	}

	avgWin, _ := stats.Mean(stats.Float64Data(t.wins))
	avgLoss, _ := stats.Mean(stats.Float64Data(t.losses))
	totalWin, _ := stats.Sum(stats.Float64Data(t.wins))
	totalLoss, _ := stats.Sum(stats.Float64Data(t.losses))

	return Results{
		"opened":   t.opened,
		"closed":   closed,
		"won":      len(t.wins),
		"lost":     len(t.losses),
		"win_rate": winRate,
		"pnl_net":  totalWin + totalLoss,
		"avg_win":  avgWin,
		"avg_loss": avgLoss,
	}
}
