package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/tradeboard/suggestion-service/internal/models"
)

// SuggestionEvent is the envelope published for lifecycle changes.
type SuggestionEvent struct {
	EventType string              `json:"event_type"`
	Source    string              `json:"source"`
	Timestamp string              `json:"timestamp"`
	Data      SuggestionEventData `json:"data"`
}

// SuggestionEventData carries the suggestion and, for transitions, the
// action that caused the event.
type SuggestionEventData struct {
	Suggestion *models.Suggestion `json:"suggestion"`
	Action     string             `json:"action,omitempty"`
}

// Producer publishes suggestion lifecycle events
type Producer struct {
	writer *kafka.Writer
}

// NewProducer creates a Kafka producer for lifecycle events
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Producer{writer: writer}
}

func (p *Producer) publish(ctx context.Context, key string, event SuggestionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.EventType, err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.EventType, err)
	}
	return nil
}

// PublishSuggestionCreated publishes a SUGGESTION_CREATED event
func (p *Producer) PublishSuggestionCreated(ctx context.Context, s *models.Suggestion) error {
	return p.publish(ctx, s.ID, SuggestionEvent{
		EventType: "SUGGESTION_CREATED",
		Source:    "suggestion-service",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      SuggestionEventData{Suggestion: s},
	})
}

// PublishSuggestionTransitioned publishes a SUGGESTION_TRANSITIONED event
func (p *Producer) PublishSuggestionTransitioned(ctx context.Context, s *models.Suggestion, action string) error {
	return p.publish(ctx, s.ID, SuggestionEvent{
		EventType: "SUGGESTION_TRANSITIONED",
		Source:    "suggestion-service",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      SuggestionEventData{Suggestion: s, Action: action},
	})
}

// Close closes the Kafka writer
func (p *Producer) Close() error {
	return p.writer.Close()
}
