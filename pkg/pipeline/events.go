package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// EventVoteSynced is published after every stored vote.
const EventVoteSynced = "vote.synced"

// Publisher is the subset of the Redis client used for vote notifications.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) error
}

// Channel returns the pub/sub channel for a congress and event type.
// Example: votes:111:vote.synced
func Channel(congressNum int, eventType string) string {
	return fmt.Sprintf("votes:%d:%s", congressNum, eventType)
}

// VoteSyncedEvent announces a vote that is stored and queryable.
type VoteSyncedEvent struct {
	Event     string    `json:"event"`
	RunID     string    `json:"runId"`
	RollID    string    `json:"rollId"`
	Congress  int       `json:"congress"`
	Session   int       `json:"session"`
	Number    int       `json:"number"`
	VoteType  string    `json:"voteType"`
	Result    string    `json:"result"`
	VotedAt   time.Time `json:"votedAt"`
	Voters    int       `json:"voters"`
	Cached    bool      `json:"cached"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *VoteSyncedEvent) payload() ([]byte, error) {
	return json.Marshal(e)
}
