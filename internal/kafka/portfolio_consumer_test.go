package kafka

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradeboard/suggestion-service/internal/models"
)

type mockPortfolioRepo struct {
	mu      sync.Mutex
	upserts []*models.ModelPortfolio
}

func (m *mockPortfolioRepo) UpsertModelPortfolio(p *models.ModelPortfolio) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts = append(m.upserts, p)
	return nil
}

func portfolioMessage(t *testing.T, portfolios ...models.PortfolioData) kafkago.Message {
	t.Helper()
	event := models.PortfolioEvent{
		EventType: "PORTFOLIO_SNAPSHOT",
		Source:    "trading-engine",
		Timestamp: time.Now().Format(time.RFC3339),
		Data:      models.PortfolioEventData{Portfolios: portfolios},
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return kafkago.Message{Value: payload}
}

func TestPortfolioConsumer_processMessage_Snapshot(t *testing.T) {
	repo := &mockPortfolioRepo{}
	consumer := &PortfolioConsumer{repo: repo}

	msg := portfolioMessage(t, models.PortfolioData{
		ModelID:        "model-7",
		Balance:        "10200.50",
		InitialBalance: "10000",
		TotalTrades:    100,
		WinningTrades:  60,
	})
	require.NoError(t, consumer.processMessage(msg))

	require.Len(t, repo.upserts, 1)
	p := repo.upserts[0]
	assert.Equal(t, "model-7", p.ModelID)
	assert.True(t, p.Balance.Equal(decimal.NewFromFloat(10200.50)))
	assert.True(t, p.InitialBalance.Equal(decimal.NewFromInt(10000)))
	assert.Equal(t, 100, p.TotalTrades)
	assert.Equal(t, 60, p.WinningTrades)
}

func TestPortfolioConsumer_processMessage_SkipsMalformedEntry(t *testing.T) {
	repo := &mockPortfolioRepo{}
	consumer := &PortfolioConsumer{repo: repo}

	msg := portfolioMessage(t,
		models.PortfolioData{ModelID: "model-bad", Balance: "not-a-number", InitialBalance: "10000"},
		models.PortfolioData{ModelID: "", Balance: "1", InitialBalance: "1"},
		models.PortfolioData{ModelID: "model-ok", Balance: "10100", InitialBalance: "10000", TotalTrades: 5},
	)
	require.NoError(t, consumer.processMessage(msg))

	require.Len(t, repo.upserts, 1)
	assert.Equal(t, "model-ok", repo.upserts[0].ModelID)
}

func TestPortfolioConsumer_processMessage_UnknownEventType(t *testing.T) {
	repo := &mockPortfolioRepo{}
	consumer := &PortfolioConsumer{repo: repo}

	event := models.PortfolioEvent{EventType: "SOMETHING_ELSE"}
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	require.NoError(t, consumer.processMessage(kafkago.Message{Value: payload}))
	assert.Empty(t, repo.upserts)
}

func TestPortfolioConsumer_processMessage_MalformedJSON(t *testing.T) {
	consumer := &PortfolioConsumer{repo: &mockPortfolioRepo{}}

	err := consumer.processMessage(kafkago.Message{Value: []byte("{")})
	assert.Error(t, err)
}
