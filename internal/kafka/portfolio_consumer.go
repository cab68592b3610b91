package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/tradeboard/suggestion-service/internal/models"
)

// PortfolioRepository defines the database operations for portfolio snapshots
type PortfolioRepository interface {
	UpsertModelPortfolio(p *models.ModelPortfolio) error
}

// PortfolioConsumer handles consuming model portfolio snapshots from Kafka
type PortfolioConsumer struct {
	reader *kafka.Reader
	repo   PortfolioRepository
}

// NewPortfolioConsumer creates a new Kafka consumer for portfolio events
func NewPortfolioConsumer(brokers []string, topic, groupID string, repo PortfolioRepository) *PortfolioConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID + "-portfolios", // Separate consumer group for snapshots
		MinBytes:       10e3,                    // 10KB
		MaxBytes:       10e6,                    // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.LastOffset, // Only read new snapshots (not historical)
		CommitInterval: time.Second,
	})

	return &PortfolioConsumer{
		reader: reader,
		repo:   repo,
	}
}

// Start begins consuming messages from Kafka
func (c *PortfolioConsumer) Start(ctx context.Context) error {
	log.Printf("Starting portfolio consumer for topic: %s", c.reader.Config().Topic)

	for {
		select {
		case <-ctx.Done():
			log.Println("Portfolio consumer shutting down...")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil // Context cancelled, normal shutdown
				}
				log.Printf("Error reading portfolio message: %v", err)
				continue
			}

			if err := c.processMessage(msg); err != nil {
				log.Printf("Error processing portfolio message: %v", err)
				// Continue processing other messages
			}
		}
	}
}

// processMessage handles a single Kafka message
func (c *PortfolioConsumer) processMessage(msg kafka.Message) error {
	var event models.PortfolioEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal portfolio event: %w", err)
	}

	if event.EventType != "PORTFOLIO_SNAPSHOT" {
		log.Printf("Ignoring unknown portfolio event type: %s", event.EventType)
		return nil
	}

	for _, data := range event.Data.Portfolios {
		portfolio, err := parsePortfolio(data)
		if err != nil {
			log.Printf("Skipping malformed portfolio for model %s: %v", data.ModelID, err)
			continue
		}
		if err := c.repo.UpsertModelPortfolio(portfolio); err != nil {
			log.Printf("Error upserting portfolio for model %s: %v", data.ModelID, err)
			continue
		}
	}

	return nil
}

// parsePortfolio converts the string-typed wire format into a snapshot row
func parsePortfolio(data models.PortfolioData) (*models.ModelPortfolio, error) {
	if data.ModelID == "" {
		return nil, fmt.Errorf("missing model_id")
	}

	balance, err := decimal.NewFromString(data.Balance)
	if err != nil {
		return nil, fmt.Errorf("invalid balance %q: %w", data.Balance, err)
	}
	initialBalance, err := decimal.NewFromString(data.InitialBalance)
	if err != nil {
		return nil, fmt.Errorf("invalid initial_balance %q: %w", data.InitialBalance, err)
	}

	updatedAt := time.Now()
	if data.UpdatedAt != "" {
		if ts, err := time.Parse(time.RFC3339, data.UpdatedAt); err == nil {
			updatedAt = ts
		}
	}

	return &models.ModelPortfolio{
		ModelID:        data.ModelID,
		Balance:        balance,
		InitialBalance: initialBalance,
		TotalTrades:    data.TotalTrades,
		WinningTrades:  data.WinningTrades,
		UpdatedAt:      updatedAt,
	}, nil
}

// Close closes the Kafka consumer
func (c *PortfolioConsumer) Close() error {
	return c.reader.Close()
}
