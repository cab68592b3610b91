package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/tradeboard/suggestion-service/internal/models"
)

// VoteRepository defines the database operations vote intake needs
type VoteRepository interface {
	RecordVote(voteID, suggestionID, voterID string) (bool, error)
	GetSuggestion(id string) (*models.Suggestion, error)
}

// VoteAwarder grants the per-vote bonus to a suggestion author
type VoteAwarder interface {
	AwardVote(authorID, voteID string) (bool, error)
}

// VoteEvent represents a vote event from the voting collaborator
type VoteEvent struct {
	EventType string        `json:"event_type"`
	Source    string        `json:"source"`
	Timestamp string        `json:"timestamp"`
	Data      VoteEventData `json:"data"`
}

// VoteEventData holds the vote payload
type VoteEventData struct {
	VoteID       string `json:"vote_id"`
	SuggestionID string `json:"suggestion_id"`
	VoterID      string `json:"voter_id"`
}

// VotesConsumer handles consuming vote events from Kafka
type VotesConsumer struct {
	reader  *kafka.Reader
	repo    VoteRepository
	awarder VoteAwarder
}

// NewVotesConsumer creates a new Kafka consumer for vote events
func NewVotesConsumer(brokers []string, topic, groupID string, repo VoteRepository, awarder VoteAwarder) *VotesConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID + "-votes",
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	return &VotesConsumer{
		reader:  reader,
		repo:    repo,
		awarder: awarder,
	}
}

// Start begins consuming messages from Kafka
func (c *VotesConsumer) Start(ctx context.Context) error {
	log.Printf("Starting votes consumer for topic: %s", c.reader.Config().Topic)

	for {
		select {
		case <-ctx.Done():
			log.Println("Votes consumer shutting down...")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil // Context cancelled, normal shutdown
				}
				log.Printf("Error reading vote message: %v", err)
				continue
			}

			if err := c.processMessage(msg); err != nil {
				log.Printf("Error processing vote message: %v", err)
				// Continue processing other messages
			}
		}
	}
}

// processMessage handles a single Kafka message
func (c *VotesConsumer) processMessage(msg kafka.Message) error {
	var event VoteEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal vote event: %w", err)
	}

	switch event.EventType {
	case "VOTE_CAST":
		return c.handleVoteCast(event)

	case "VOTE_RETRACTED":
		// Retractions are not clawed back; the tally projection simply
		// reflects whatever the vote collaborator reports next.
		log.Printf("Vote %s retracted on suggestion %s (no claw-back)",
			event.Data.VoteID, event.Data.SuggestionID)
		return nil

	default:
		log.Printf("Ignoring unknown vote event type: %s", event.EventType)
		return nil
	}
}

// handleVoteCast records the vote and pays the author. Both halves are
// idempotent per vote id, so a replayed message changes nothing even if a
// previous attempt died between the two writes.
func (c *VotesConsumer) handleVoteCast(event VoteEvent) error {
	if event.Data.VoteID == "" || event.Data.SuggestionID == "" {
		return fmt.Errorf("vote event missing vote_id or suggestion_id")
	}

	fresh, err := c.repo.RecordVote(event.Data.VoteID, event.Data.SuggestionID, event.Data.VoterID)
	if err != nil {
		return fmt.Errorf("failed to record vote %s: %w", event.Data.VoteID, err)
	}
	if !fresh {
		log.Printf("Vote %s already recorded, replay ignored", event.Data.VoteID)
	}

	suggestion, err := c.repo.GetSuggestion(event.Data.SuggestionID)
	if err != nil {
		return fmt.Errorf("failed to load suggestion %s for vote award: %w", event.Data.SuggestionID, err)
	}

	awarded, err := c.awarder.AwardVote(suggestion.AuthorID, event.Data.VoteID)
	if err != nil {
		return fmt.Errorf("failed to award vote %s: %w", event.Data.VoteID, err)
	}
	if awarded {
		log.Printf("Awarded vote bonus to %s for vote %s on suggestion %s",
			suggestion.AuthorID, event.Data.VoteID, event.Data.SuggestionID)
	}
	return nil
}

// Close closes the Kafka consumer
func (c *VotesConsumer) Close() error {
	return c.reader.Close()
}
