package corpus

import (
	"context"
	"encoding/json"
	"fmt"

	votemodels "github.com/civicdata/rollcall/pkg/db/models/votes"
	"github.com/civicdata/rollcall/pkg/db/postgres"
)

func (db *DB) initBills(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS bills (
			bill_id TEXT PRIMARY KEY,
			bill_type TEXT NOT NULL,
			number INTEGER NOT NULL,
			congress INTEGER NOT NULL,
			chamber TEXT NOT NULL DEFAULT '',
			official_title TEXT NOT NULL DEFAULT '',
			short_title TEXT NOT NULL DEFAULT '',
			popular_title TEXT NOT NULL DEFAULT '',
			sponsor_id TEXT NOT NULL DEFAULT '',
			introduced_on TEXT NOT NULL DEFAULT ''
		)
	`
	return db.Exec(ctx, query)
}

func (db *DB) initAmendments(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS amendments (
			amendment_id TEXT PRIMARY KEY,
			amendment_type TEXT NOT NULL,
			number INTEGER NOT NULL,
			congress INTEGER NOT NULL,
			chamber TEXT NOT NULL DEFAULT '',
			amends_bill_id TEXT NOT NULL DEFAULT '',
			purpose TEXT NOT NULL DEFAULT '',
			sponsor_id TEXT NOT NULL DEFAULT '',
			introduced_on TEXT NOT NULL DEFAULT ''
		)
	`
	return db.Exec(ctx, query)
}

func (db *DB) initNominations(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS nominations (
			nomination_id TEXT PRIMARY KEY,
			number TEXT NOT NULL,
			congress INTEGER NOT NULL,
			organization TEXT NOT NULL DEFAULT '',
			nominees JSONB NOT NULL DEFAULT '[]',
			received_on TEXT NOT NULL DEFAULT '',
			last_action TEXT NOT NULL DEFAULT ''
		)
	`
	return db.Exec(ctx, query)
}

// BillByID looks a bill up by canonical id.
func (db *DB) BillByID(ctx context.Context, billID string) (*votemodels.Bill, bool, error) {
	query := `
		SELECT bill_id, bill_type, number, congress, chamber,
			   official_title, short_title, popular_title, sponsor_id, introduced_on
		FROM bills
		WHERE bill_id = $1
	`
	var b votemodels.Bill
	err := db.QueryRow(ctx, query, billID).Scan(
		&b.BillID, &b.BillType, &b.Number, &b.Congress, &b.Chamber,
		&b.OfficialTitle, &b.ShortTitle, &b.PopularTitle, &b.SponsorID, &b.IntroducedOn,
	)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to query bill %s: %w", billID, err)
	}
	return &b, true, nil
}

// AmendmentByID looks an amendment up by canonical id.
func (db *DB) AmendmentByID(ctx context.Context, amendmentID string) (*votemodels.Amendment, bool, error) {
	query := `
		SELECT amendment_id, amendment_type, number, congress, chamber,
			   amends_bill_id, purpose, sponsor_id, introduced_on
		FROM amendments
		WHERE amendment_id = $1
	`
	var a votemodels.Amendment
	err := db.QueryRow(ctx, query, amendmentID).Scan(
		&a.AmendmentID, &a.AmendmentType, &a.Number, &a.Congress, &a.Chamber,
		&a.AmendsBillID, &a.Purpose, &a.SponsorID, &a.IntroducedOn,
	)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to query amendment %s: %w", amendmentID, err)
	}
	return &a, true, nil
}

// NominationByID looks a nomination up by canonical id.
func (db *DB) NominationByID(ctx context.Context, nominationID string) (*votemodels.Nomination, bool, error) {
	query := `
		SELECT nomination_id, number, congress, organization, nominees, received_on, last_action
		FROM nominations
		WHERE nomination_id = $1
	`
	var (
		n        votemodels.Nomination
		nominees []byte
	)
	err := db.QueryRow(ctx, query, nominationID).Scan(
		&n.NominationID, &n.Number, &n.Congress, &n.Organization, &nominees, &n.ReceivedOn, &n.LastAction,
	)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to query nomination %s: %w", nominationID, err)
	}
	if len(nominees) > 0 {
		if err := json.Unmarshal(nominees, &n.Nominees); err != nil {
			return nil, false, fmt.Errorf("nomination %s nominees: %w", nominationID, err)
		}
	}
	return &n, true, nil
}

// UpsertBill inserts or replaces a bill.
func (db *DB) UpsertBill(ctx context.Context, b *votemodels.Bill) error {
	query := `
		INSERT INTO bills (
			bill_id, bill_type, number, congress, chamber,
			official_title, short_title, popular_title, sponsor_id, introduced_on
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (bill_id) DO UPDATE SET
			bill_type = EXCLUDED.bill_type,
			number = EXCLUDED.number,
			congress = EXCLUDED.congress,
			chamber = EXCLUDED.chamber,
			official_title = EXCLUDED.official_title,
			short_title = EXCLUDED.short_title,
			popular_title = EXCLUDED.popular_title,
			sponsor_id = EXCLUDED.sponsor_id,
			introduced_on = EXCLUDED.introduced_on
	`
	if err := db.Exec(ctx, query,
		b.BillID, b.BillType, b.Number, b.Congress, b.Chamber,
		b.OfficialTitle, b.ShortTitle, b.PopularTitle, b.SponsorID, b.IntroducedOn,
	); err != nil {
		return fmt.Errorf("upsert bill %s: %w", b.BillID, err)
	}
	return nil
}

// UpsertAmendment inserts or replaces an amendment.
func (db *DB) UpsertAmendment(ctx context.Context, a *votemodels.Amendment) error {
	query := `
		INSERT INTO amendments (
			amendment_id, amendment_type, number, congress, chamber,
			amends_bill_id, purpose, sponsor_id, introduced_on
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (amendment_id) DO UPDATE SET
			amendment_type = EXCLUDED.amendment_type,
			number = EXCLUDED.number,
			congress = EXCLUDED.congress,
			chamber = EXCLUDED.chamber,
			amends_bill_id = EXCLUDED.amends_bill_id,
			purpose = EXCLUDED.purpose,
			sponsor_id = EXCLUDED.sponsor_id,
			introduced_on = EXCLUDED.introduced_on
	`
	if err := db.Exec(ctx, query,
		a.AmendmentID, a.AmendmentType, a.Number, a.Congress, a.Chamber,
		a.AmendsBillID, a.Purpose, a.SponsorID, a.IntroducedOn,
	); err != nil {
		return fmt.Errorf("upsert amendment %s: %w", a.AmendmentID, err)
	}
	return nil
}

// UpsertNomination inserts or replaces a nomination.
func (db *DB) UpsertNomination(ctx context.Context, n *votemodels.Nomination) error {
	nominees, err := json.Marshal(n.Nominees)
	if err != nil {
		return fmt.Errorf("marshal nominees: %w", err)
	}
	if n.Nominees == nil {
		nominees = []byte("[]")
	}
	query := `
		INSERT INTO nominations (
			nomination_id, number, congress, organization, nominees, received_on, last_action
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (nomination_id) DO UPDATE SET
			number = EXCLUDED.number,
			congress = EXCLUDED.congress,
			organization = EXCLUDED.organization,
			nominees = EXCLUDED.nominees,
			received_on = EXCLUDED.received_on,
			last_action = EXCLUDED.last_action
	`
	if err := db.Exec(ctx, query,
		n.NominationID, n.Number, n.Congress, n.Organization, nominees, n.ReceivedOn, n.LastAction,
	); err != nil {
		return fmt.Errorf("upsert nomination %s: %w", n.NominationID, err)
	}
	return nil
}
