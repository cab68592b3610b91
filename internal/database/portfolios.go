package database

import (
	"database/sql"
	"fmt"

	"github.com/tradeboard/suggestion-service/internal/models"
)

// UpsertModelPortfolio stores the latest snapshot for a trading model. The
// trading subsystem owns these numbers; this table is just where they land.
func (db *DB) UpsertModelPortfolio(p *models.ModelPortfolio) error {
	query := `
		INSERT INTO model_portfolios (
			model_id, balance, initial_balance, total_trades, winning_trades, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (model_id)
		DO UPDATE SET
			balance = EXCLUDED.balance,
			initial_balance = EXCLUDED.initial_balance,
			total_trades = EXCLUDED.total_trades,
			winning_trades = EXCLUDED.winning_trades,
			updated_at = EXCLUDED.updated_at
	`
	_, err := db.conn.Exec(query,
		p.ModelID, p.Balance, p.InitialBalance, p.TotalTrades, p.WinningTrades, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert portfolio for model %s: %w", p.ModelID, err)
	}
	return nil
}

// GetModelPortfolio reads the current snapshot for a model. Missing models
// surface models.ErrPortfolioNotFound; the measurement engine never defaults
// missing snapshots to zero.
func (db *DB) GetModelPortfolio(modelID string) (*models.ModelPortfolio, error) {
	query := `
		SELECT model_id, balance, initial_balance, total_trades, winning_trades, updated_at
		FROM model_portfolios
		WHERE model_id = $1
	`
	var p models.ModelPortfolio
	err := db.conn.QueryRow(query, modelID).Scan(
		&p.ModelID, &p.Balance, &p.InitialBalance, &p.TotalTrades, &p.WinningTrades, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, models.ErrPortfolioNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio for model %s: %w", modelID, err)
	}
	return &p, nil
}
