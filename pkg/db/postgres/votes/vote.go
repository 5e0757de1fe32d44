package votes

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	storage "github.com/civicdata/rollcall/pkg/db"
	votemodels "github.com/civicdata/rollcall/pkg/db/models/votes"
	"github.com/civicdata/rollcall/pkg/db/postgres"
)

func (db *DB) initVotes(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS votes (
			roll_id TEXT PRIMARY KEY,
			vote_type TEXT NOT NULL,
			chamber TEXT NOT NULL,
			year INTEGER NOT NULL,
			number INTEGER NOT NULL,
			congress INTEGER NOT NULL,
			session SMALLINT NOT NULL,
			roll_type TEXT NOT NULL DEFAULT '',
			question TEXT NOT NULL DEFAULT '',
			result TEXT NOT NULL DEFAULT '',
			required TEXT NOT NULL DEFAULT '',
			voted_at TIMESTAMPTZ NOT NULL,
			voter_ids JSONB NOT NULL DEFAULT '{}',
			voters JSONB NOT NULL DEFAULT '{}',
			breakdown JSONB NOT NULL DEFAULT '{}',
			source TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			bill_id TEXT,
			bill JSONB,
			amendment_id TEXT,
			amendment JSONB,
			nomination_id TEXT,
			nomination JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS votes_congress_session_number_idx ON votes (congress, session, number);
		CREATE INDEX IF NOT EXISTS votes_bill_id_idx ON votes (bill_id) WHERE bill_id IS NOT NULL;
		CREATE INDEX IF NOT EXISTS votes_nomination_id_idx ON votes (nomination_id) WHERE nomination_id IS NOT NULL;
	`
	return db.Exec(ctx, query)
}

const upsertVoteSQL = `
	INSERT INTO votes (
		roll_id, vote_type, chamber, year, number, congress, session,
		roll_type, question, result, required, voted_at,
		voter_ids, voters, breakdown, source, url,
		bill_id, bill, amendment_id, amendment, nomination_id, nomination
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7,
		$8, $9, $10, $11, $12,
		$13, $14, $15, $16, $17,
		$18, $19, $20, $21, $22, $23
	)
	ON CONFLICT (roll_id) DO UPDATE SET
		vote_type = EXCLUDED.vote_type,
		chamber = EXCLUDED.chamber,
		year = EXCLUDED.year,
		number = EXCLUDED.number,
		congress = EXCLUDED.congress,
		session = EXCLUDED.session,
		roll_type = EXCLUDED.roll_type,
		question = EXCLUDED.question,
		result = EXCLUDED.result,
		required = EXCLUDED.required,
		voted_at = EXCLUDED.voted_at,
		voter_ids = EXCLUDED.voter_ids,
		voters = EXCLUDED.voters,
		breakdown = EXCLUDED.breakdown,
		source = EXCLUDED.source,
		url = EXCLUDED.url,
		bill_id = EXCLUDED.bill_id,
		bill = EXCLUDED.bill,
		amendment_id = EXCLUDED.amendment_id,
		amendment = EXCLUDED.amendment,
		nomination_id = EXCLUDED.nomination_id,
		nomination = EXCLUDED.nomination,
		updated_at = NOW()
	RETURNING created_at, updated_at
`

// UpsertVote inserts or fully overwrites the record for v.RollID in one
// statement. created_at survives overwrites; v's timestamps are refreshed
// from the database.
func (db *DB) UpsertVote(ctx context.Context, v *votemodels.Vote) error {
	args, err := voteArgs(v)
	if err != nil {
		return err
	}
	if err := db.QueryRow(ctx, upsertVoteSQL, args...).Scan(&v.CreatedAt, &v.UpdatedAt); err != nil {
		return fmt.Errorf("upsert vote %s: %w", v.RollID, err)
	}
	return nil
}

// GetVote returns the stored record for rollID.
func (db *DB) GetVote(ctx context.Context, rollID string) (*votemodels.Vote, error) {
	query := `
		SELECT roll_id, vote_type, chamber, year, number, congress, session,
			   roll_type, question, result, required, voted_at,
			   voter_ids, voters, breakdown, source, url,
			   bill_id, bill, amendment_id, amendment, nomination_id, nomination,
			   created_at, updated_at
		FROM votes
		WHERE roll_id = $1
	`

	var (
		v                                 votemodels.Vote
		voterIDs, voters, breakdown       []byte
		bill, amendment, nomination       []byte
		billID, amendmentID, nominationID *string
	)
	err := db.QueryRow(ctx, query, rollID).Scan(
		&v.RollID, &v.VoteType, &v.Chamber, &v.Year, &v.Number, &v.Congress, &v.Session,
		&v.RollType, &v.Question, &v.Result, &v.Required, &v.VotedAt,
		&voterIDs, &voters, &breakdown, &v.Source, &v.URL,
		&billID, &bill, &amendmentID, &amendment, &nominationID, &nomination,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, fmt.Errorf("vote %s: %w", rollID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query vote %s: %w", rollID, err)
	}

	if err := unmarshalAll(
		field{"voter_ids", voterIDs, &v.VoterIDs},
		field{"voters", voters, &v.Voters},
		field{"breakdown", breakdown, &v.Breakdown},
	); err != nil {
		return nil, fmt.Errorf("vote %s: %w", rollID, err)
	}
	if billID != nil {
		v.BillID = *billID
	}
	if amendmentID != nil {
		v.AmendmentID = *amendmentID
	}
	if nominationID != nil {
		v.NominationID = *nominationID
	}
	if bill != nil {
		v.Bill = &votemodels.Bill{}
		if err := json.Unmarshal(bill, v.Bill); err != nil {
			return nil, fmt.Errorf("vote %s: bill: %w", rollID, err)
		}
	}
	if amendment != nil {
		v.Amendment = &votemodels.Amendment{}
		if err := json.Unmarshal(amendment, v.Amendment); err != nil {
			return nil, fmt.Errorf("vote %s: amendment: %w", rollID, err)
		}
	}
	if nomination != nil {
		v.Nomination = &votemodels.Nomination{}
		if err := json.Unmarshal(nomination, v.Nomination); err != nil {
			return nil, fmt.Errorf("vote %s: nomination: %w", rollID, err)
		}
	}
	v.VotedAt = v.VotedAt.UTC()
	return &v, nil
}

func voteArgs(v *votemodels.Vote) ([]any, error) {
	voterIDs, err := json.Marshal(nonNil(v.VoterIDs))
	if err != nil {
		return nil, fmt.Errorf("marshal voter_ids: %w", err)
	}
	voters, err := json.Marshal(nonNilVoters(v.Voters))
	if err != nil {
		return nil, fmt.Errorf("marshal voters: %w", err)
	}
	breakdown, err := json.Marshal(v.Breakdown)
	if err != nil {
		return nil, fmt.Errorf("marshal breakdown: %w", err)
	}
	bill, err := jsonOrNull(v.Bill != nil, v.Bill)
	if err != nil {
		return nil, fmt.Errorf("marshal bill: %w", err)
	}
	amendment, err := jsonOrNull(v.Amendment != nil, v.Amendment)
	if err != nil {
		return nil, fmt.Errorf("marshal amendment: %w", err)
	}
	nomination, err := jsonOrNull(v.Nomination != nil, v.Nomination)
	if err != nil {
		return nil, fmt.Errorf("marshal nomination: %w", err)
	}

	return []any{
		v.RollID, v.VoteType, v.Chamber, v.Year, v.Number, v.Congress, v.Session,
		v.RollType, v.Question, v.Result, v.Required, v.VotedAt.UTC().Truncate(time.Microsecond),
		voterIDs, voters, breakdown, v.Source, v.URL,
		textOrNull(v.BillID), bill, textOrNull(v.AmendmentID), amendment, textOrNull(v.NominationID), nomination,
	}, nil
}

type field struct {
	name string
	raw  []byte
	dest any
}

func unmarshalAll(fields ...field) error {
	for _, f := range fields {
		if len(f.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(f.raw, f.dest); err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
	}
	return nil
}

func jsonOrNull(present bool, v any) (any, error) {
	if !present {
		return nil, nil
	}
	return json.Marshal(v)
}

func textOrNull(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nonNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func nonNilVoters(m map[string]votemodels.Voter) map[string]votemodels.Voter {
	if m == nil {
		return map[string]votemodels.Voter{}
	}
	return m
}
