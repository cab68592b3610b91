package kafka

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradeboard/suggestion-service/internal/models"
)

// ---------------------------------------------------------------------------
// Mock VoteRepository / VoteAwarder
// ---------------------------------------------------------------------------

type mockVoteRepo struct {
	mu          sync.Mutex
	votes       map[string]bool
	suggestions map[string]*models.Suggestion
	err         error
}

func newMockVoteRepo() *mockVoteRepo {
	return &mockVoteRepo{
		votes: map[string]bool{},
		suggestions: map[string]*models.Suggestion{
			"sugg-1": {ID: "sugg-1", AuthorID: "user-1", Status: models.StatusPending},
		},
	}
}

func (m *mockVoteRepo) RecordVote(voteID, suggestionID, voterID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if m.votes[voteID] {
		return false, nil
	}
	m.votes[voteID] = true
	return true, nil
}

func (m *mockVoteRepo) GetSuggestion(id string) (*models.Suggestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.suggestions[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return s, nil
}

type mockVoteAwarder struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMockVoteAwarder() *mockVoteAwarder {
	return &mockVoteAwarder{seen: map[string]bool{}}
}

func (m *mockVoteAwarder) AwardVote(authorID, voteID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := authorID + "|" + voteID
	if m.seen[key] {
		return false, nil
	}
	m.seen[key] = true
	return true, nil
}

func (m *mockVoteAwarder) awards() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.seen)
}

func voteMessage(t *testing.T, eventType, voteID, suggestionID string) kafkago.Message {
	t.Helper()
	event := VoteEvent{
		EventType: eventType,
		Source:    "voting-service",
		Timestamp: time.Now().Format(time.RFC3339),
		Data: VoteEventData{
			VoteID:       voteID,
			SuggestionID: suggestionID,
			VoterID:      "voter-9",
		},
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return kafkago.Message{Value: payload}
}

// ---------------------------------------------------------------------------
// processMessage tests
// ---------------------------------------------------------------------------

func TestVotesConsumer_processMessage_VoteCast(t *testing.T) {
	repo := newMockVoteRepo()
	awarder := newMockVoteAwarder()
	consumer := &VotesConsumer{repo: repo, awarder: awarder}

	err := consumer.processMessage(voteMessage(t, "VOTE_CAST", "vote-1", "sugg-1"))
	require.NoError(t, err)

	assert.True(t, repo.votes["vote-1"])
	assert.Equal(t, 1, awarder.awards())
	assert.True(t, awarder.seen["user-1|vote-1"])
}

func TestVotesConsumer_processMessage_ReplayAwardsOnce(t *testing.T) {
	repo := newMockVoteRepo()
	awarder := newMockVoteAwarder()
	consumer := &VotesConsumer{repo: repo, awarder: awarder}

	msg := voteMessage(t, "VOTE_CAST", "vote-1", "sugg-1")
	require.NoError(t, consumer.processMessage(msg))
	require.NoError(t, consumer.processMessage(msg))

	assert.Equal(t, 1, awarder.awards())
}

func TestVotesConsumer_processMessage_DistinctVotesEachAward(t *testing.T) {
	repo := newMockVoteRepo()
	awarder := newMockVoteAwarder()
	consumer := &VotesConsumer{repo: repo, awarder: awarder}

	require.NoError(t, consumer.processMessage(voteMessage(t, "VOTE_CAST", "vote-1", "sugg-1")))
	require.NoError(t, consumer.processMessage(voteMessage(t, "VOTE_CAST", "vote-2", "sugg-1")))

	assert.Equal(t, 2, awarder.awards())
}

func TestVotesConsumer_processMessage_Retraction_NoClawback(t *testing.T) {
	repo := newMockVoteRepo()
	awarder := newMockVoteAwarder()
	consumer := &VotesConsumer{repo: repo, awarder: awarder}

	err := consumer.processMessage(voteMessage(t, "VOTE_RETRACTED", "vote-1", "sugg-1"))
	require.NoError(t, err)

	assert.Empty(t, repo.votes)
	assert.Zero(t, awarder.awards())
}

func TestVotesConsumer_processMessage_UnknownEventType(t *testing.T) {
	repo := newMockVoteRepo()
	awarder := newMockVoteAwarder()
	consumer := &VotesConsumer{repo: repo, awarder: awarder}

	err := consumer.processMessage(voteMessage(t, "VOTE_SOMETHING", "vote-1", "sugg-1"))
	require.NoError(t, err)
	assert.Zero(t, awarder.awards())
}

func TestVotesConsumer_processMessage_MissingVoteID(t *testing.T) {
	repo := newMockVoteRepo()
	awarder := newMockVoteAwarder()
	consumer := &VotesConsumer{repo: repo, awarder: awarder}

	err := consumer.processMessage(voteMessage(t, "VOTE_CAST", "", "sugg-1"))
	assert.Error(t, err)
}

func TestVotesConsumer_processMessage_UnknownSuggestion(t *testing.T) {
	repo := newMockVoteRepo()
	awarder := newMockVoteAwarder()
	consumer := &VotesConsumer{repo: repo, awarder: awarder}

	err := consumer.processMessage(voteMessage(t, "VOTE_CAST", "vote-1", "sugg-missing"))
	assert.Error(t, err)
	assert.Zero(t, awarder.awards())
}

func TestVotesConsumer_processMessage_MalformedJSON(t *testing.T) {
	consumer := &VotesConsumer{repo: newMockVoteRepo(), awarder: newMockVoteAwarder()}

	err := consumer.processMessage(kafkago.Message{Value: []byte("not json")})
	assert.Error(t, err)
}
