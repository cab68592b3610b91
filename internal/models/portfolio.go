package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ModelPortfolio is a point-in-time snapshot of a trading model's virtual
// portfolio, fed by the trading subsystem. Trade counts are monotonically
// non-decreasing per model.
type ModelPortfolio struct {
	ModelID        string          `json:"model_id"`
	Balance        decimal.Decimal `json:"balance"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	TotalTrades    int             `json:"total_trades"`
	WinningTrades  int             `json:"winning_trades"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ROI returns (balance - initialBalance) / initialBalance * 100.
func (p *ModelPortfolio) ROI() decimal.Decimal {
	if p.InitialBalance.IsZero() {
		return decimal.Zero
	}
	return p.Balance.Sub(p.InitialBalance).
		Div(p.InitialBalance).
		Mul(decimal.NewFromInt(100))
}

// PortfolioEvent is a Kafka message carrying model portfolio snapshots from
// the trading subsystem.
type PortfolioEvent struct {
	EventType string             `json:"event_type"`
	Source    string             `json:"source"`
	Timestamp string             `json:"timestamp"`
	Data      PortfolioEventData `json:"data"`
}

// PortfolioEventData holds the snapshots in a portfolio event.
type PortfolioEventData struct {
	Portfolios []PortfolioData `json:"portfolios"`
}

// PortfolioData is a single model snapshot as published by the trading
// subsystem. Monetary fields arrive as strings.
type PortfolioData struct {
	ModelID        string `json:"model_id"`
	Balance        string `json:"balance"`
	InitialBalance string `json:"initial_balance"`
	TotalTrades    int    `json:"total_trades"`
	WinningTrades  int    `json:"winning_trades"`
	UpdatedAt      string `json:"updated_at"`
}

// WinRate returns winningTrades / totalTrades * 100, or 0 with no trades.
func (p *ModelPortfolio) WinRate() decimal.Decimal {
	if p.TotalTrades == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(p.WinningTrades)).
		Div(decimal.NewFromInt(int64(p.TotalTrades))).
		Mul(decimal.NewFromInt(100))
}
