package db

import (
	"context"
	"errors"

	votemodels "github.com/civicdata/rollcall/pkg/db/models/votes"
)

// ErrNotFound is returned by reads for an unknown roll id.
var ErrNotFound = errors.New("not found")

// VoteStore persists canonical vote records, one per roll id.
type VoteStore interface {
	// UpsertVote creates the record for v.RollID or overwrites every field of
	// the existing one, atomically. Absent enrichment clears stored enrichment.
	UpsertVote(ctx context.Context, v *votemodels.Vote) error
	// GetVote returns ErrNotFound for unknown ids.
	GetVote(ctx context.Context, rollID string) (*votemodels.Vote, error)
	Health(ctx context.Context) error
	Close() error
}
