package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestModelPortfolio_ROI(t *testing.T) {
	p := &ModelPortfolio{
		Balance:        decimal.NewFromInt(10700),
		InitialBalance: decimal.NewFromInt(10000),
	}
	assert.True(t, p.ROI().Equal(decimal.NewFromFloat(7.0)), "roi = %s", p.ROI())

	loss := &ModelPortfolio{
		Balance:        decimal.NewFromInt(9500),
		InitialBalance: decimal.NewFromInt(10000),
	}
	assert.True(t, loss.ROI().Equal(decimal.NewFromFloat(-5.0)))
}

func TestModelPortfolio_ROI_ZeroInitialBalance(t *testing.T) {
	p := &ModelPortfolio{Balance: decimal.NewFromInt(100)}
	assert.True(t, p.ROI().IsZero())
}

func TestModelPortfolio_WinRate(t *testing.T) {
	p := &ModelPortfolio{TotalTrades: 150, WinningTrades: 90}
	assert.True(t, p.WinRate().Equal(decimal.NewFromFloat(60.0)), "win rate = %s", p.WinRate())
}

func TestModelPortfolio_WinRate_NoTrades(t *testing.T) {
	p := &ModelPortfolio{}
	assert.True(t, p.WinRate().IsZero())
}
