package votes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	storage "github.com/civicdata/rollcall/pkg/db"
	"github.com/civicdata/rollcall/pkg/db/clickhouse"
	votemodels "github.com/civicdata/rollcall/pkg/db/models/votes"
)

func createVotesSQL(database string) string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."%s" (
			%s
		) ENGINE = %s(version)
		ORDER BY roll_id
	`, database, votemodels.VotesTableName, votemodels.ColumnsSQL(votemodels.VoteColumns), clickhouse.ReplacingMergeTree)
}

func selectColumns() string {
	return strings.Join(votemodels.ColumnNames(votemodels.VoteColumns), ", ")
}

// UpsertVote writes a new version of v.RollID. The previous created_at is
// carried over so the first-sync time survives overwrites.
func (db *DB) UpsertVote(ctx context.Context, v *votemodels.Vote) error {
	now := db.now().UTC().Truncate(time.Millisecond)
	createdAt, err := db.createdAt(ctx, v.RollID)
	if err != nil {
		return err
	}
	if createdAt.IsZero() {
		createdAt = now
	}

	row, err := voteRow(v, createdAt, now, uint64(now.UnixNano()))
	if err != nil {
		return fmt.Errorf("vote %s: %w", v.RollID, err)
	}

	query := fmt.Sprintf(`INSERT INTO "%s"."%s" (%s) VALUES`, db.Database, votemodels.VotesTableName, selectColumns())
	batch, err := db.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare vote batch: %w", err)
	}
	defer func() { _ = batch.Close() }()

	if err := batch.Append(row...); err != nil {
		return fmt.Errorf("append vote %s: %w", v.RollID, err)
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("upsert vote %s: %w", v.RollID, err)
	}

	v.CreatedAt = createdAt
	v.UpdatedAt = now
	return nil
}

func (db *DB) createdAt(ctx context.Context, rollID string) (time.Time, error) {
	query := fmt.Sprintf(`SELECT created_at FROM "%s"."%s" FINAL WHERE roll_id = ?`, db.Database, votemodels.VotesTableName)
	var createdAt time.Time
	if err := db.QueryRow(ctx, query, rollID).Scan(&createdAt); err != nil {
		if clickhouse.IsNoRows(err) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("failed to query vote %s: %w", rollID, err)
	}
	return createdAt.UTC(), nil
}

// GetVote returns the newest version of rollID.
func (db *DB) GetVote(ctx context.Context, rollID string) (*votemodels.Vote, error) {
	query := fmt.Sprintf(`SELECT %s FROM "%s"."%s" FINAL WHERE roll_id = ?`, selectColumns(), db.Database, votemodels.VotesTableName)

	var r row
	if err := db.QueryRow(ctx, query, rollID).Scan(r.dest()...); err != nil {
		if clickhouse.IsNoRows(err) {
			return nil, fmt.Errorf("vote %s: %w", rollID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query vote %s: %w", rollID, err)
	}
	v, err := r.vote()
	if err != nil {
		return nil, fmt.Errorf("vote %s: %w", rollID, err)
	}
	return v, nil
}

// row mirrors votemodels.VoteColumns with ClickHouse scan types.
type row struct {
	RollID       string
	VoteType     string
	Chamber      string
	Year         uint16
	Number       uint32
	Congress     uint16
	Session      uint8
	RollType     string
	Question     string
	Result       string
	Required     string
	VotedAt      time.Time
	VoterIDs     string
	Voters       string
	Breakdown    string
	Source       string
	URL          string
	BillID       string
	Bill         string
	AmendmentID  string
	Amendment    string
	NominationID string
	Nomination   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Version      uint64
}

func (r *row) dest() []any {
	return []any{
		&r.RollID, &r.VoteType, &r.Chamber, &r.Year, &r.Number, &r.Congress, &r.Session,
		&r.RollType, &r.Question, &r.Result, &r.Required, &r.VotedAt,
		&r.VoterIDs, &r.Voters, &r.Breakdown, &r.Source, &r.URL,
		&r.BillID, &r.Bill, &r.AmendmentID, &r.Amendment, &r.NominationID, &r.Nomination,
		&r.CreatedAt, &r.UpdatedAt, &r.Version,
	}
}

func voteRow(v *votemodels.Vote, createdAt, updatedAt time.Time, version uint64) ([]any, error) {
	voterIDs, err := jsonString(v.VoterIDs, "{}")
	if err != nil {
		return nil, fmt.Errorf("marshal voter_ids: %w", err)
	}
	voters, err := jsonString(v.Voters, "{}")
	if err != nil {
		return nil, fmt.Errorf("marshal voters: %w", err)
	}
	breakdown, err := jsonString(v.Breakdown, "{}")
	if err != nil {
		return nil, fmt.Errorf("marshal breakdown: %w", err)
	}
	bill, err := optionalJSON(v.Bill != nil, v.Bill)
	if err != nil {
		return nil, fmt.Errorf("marshal bill: %w", err)
	}
	amendment, err := optionalJSON(v.Amendment != nil, v.Amendment)
	if err != nil {
		return nil, fmt.Errorf("marshal amendment: %w", err)
	}
	nomination, err := optionalJSON(v.Nomination != nil, v.Nomination)
	if err != nil {
		return nil, fmt.Errorf("marshal nomination: %w", err)
	}

	return []any{
		v.RollID, v.VoteType, v.Chamber, uint16(v.Year), uint32(v.Number), uint16(v.Congress), uint8(v.Session),
		v.RollType, v.Question, v.Result, v.Required, v.VotedAt.UTC(),
		voterIDs, voters, breakdown, v.Source, v.URL,
		v.BillID, bill, v.AmendmentID, amendment, v.NominationID, nomination,
		createdAt, updatedAt, version,
	}, nil
}

func (r *row) vote() (*votemodels.Vote, error) {
	v := &votemodels.Vote{
		RollID:       r.RollID,
		VoteType:     r.VoteType,
		Chamber:      r.Chamber,
		Year:         int(r.Year),
		Number:       int(r.Number),
		Congress:     int(r.Congress),
		Session:      int(r.Session),
		RollType:     r.RollType,
		Question:     r.Question,
		Result:       r.Result,
		Required:     r.Required,
		VotedAt:      r.VotedAt.UTC(),
		Source:       r.Source,
		URL:          r.URL,
		BillID:       r.BillID,
		AmendmentID:  r.AmendmentID,
		NominationID: r.NominationID,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
	if err := json.Unmarshal([]byte(orEmpty(r.VoterIDs)), &v.VoterIDs); err != nil {
		return nil, fmt.Errorf("voter_ids: %w", err)
	}
	if err := json.Unmarshal([]byte(orEmpty(r.Voters)), &v.Voters); err != nil {
		return nil, fmt.Errorf("voters: %w", err)
	}
	if err := json.Unmarshal([]byte(orEmpty(r.Breakdown)), &v.Breakdown); err != nil {
		return nil, fmt.Errorf("breakdown: %w", err)
	}
	if r.Bill != "" {
		v.Bill = &votemodels.Bill{}
		if err := json.Unmarshal([]byte(r.Bill), v.Bill); err != nil {
			return nil, fmt.Errorf("bill: %w", err)
		}
	}
	if r.Amendment != "" {
		v.Amendment = &votemodels.Amendment{}
		if err := json.Unmarshal([]byte(r.Amendment), v.Amendment); err != nil {
			return nil, fmt.Errorf("amendment: %w", err)
		}
	}
	if r.Nomination != "" {
		v.Nomination = &votemodels.Nomination{}
		if err := json.Unmarshal([]byte(r.Nomination), v.Nomination); err != nil {
			return nil, fmt.Errorf("nomination: %w", err)
		}
	}
	return v, nil
}

func jsonString(v any, empty string) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(b) == "null" {
		return empty, nil
	}
	return string(b), nil
}

// optionalJSON stores absent enrichment as "", which reads back as nil.
func optionalJSON(present bool, v any) (string, error) {
	if !present {
		return "", nil
	}
	return jsonString(v, "")
}

func orEmpty(s string) string {
	if s == "" {
		return "{}"
	}
	return s
}
