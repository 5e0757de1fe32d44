package corpus

import (
	"context"
	"fmt"

	votemodels "github.com/civicdata/rollcall/pkg/db/models/votes"
	"github.com/civicdata/rollcall/pkg/db/postgres"
)

func (db *DB) initLegislators(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS legislators (
			bioguide_id TEXT PRIMARY KEY,
			lis_id TEXT,
			thomas_id TEXT NOT NULL DEFAULT '',
			govtrack_id TEXT NOT NULL DEFAULT '',
			first_name TEXT NOT NULL DEFAULT '',
			nickname TEXT NOT NULL DEFAULT '',
			middle_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			name_suffix TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			party TEXT NOT NULL DEFAULT '',
			state TEXT NOT NULL DEFAULT '',
			district INTEGER,
			chamber TEXT NOT NULL DEFAULT '',
			in_office BOOLEAN NOT NULL DEFAULT FALSE
		);
		CREATE UNIQUE INDEX IF NOT EXISTS legislators_lis_id_idx ON legislators (lis_id) WHERE lis_id IS NOT NULL;
	`
	return db.Exec(ctx, query)
}

// LegislatorByLisID looks a legislator up by Senate LIS member id.
func (db *DB) LegislatorByLisID(ctx context.Context, lisID string) (*votemodels.Legislator, bool, error) {
	query := `
		SELECT bioguide_id, COALESCE(lis_id, ''), thomas_id, govtrack_id,
			   first_name, nickname, middle_name, last_name, name_suffix, title,
			   party, state, district, chamber, in_office
		FROM legislators
		WHERE lis_id = $1
	`

	var l votemodels.Legislator
	err := db.QueryRow(ctx, query, lisID).Scan(
		&l.BioguideID, &l.LisID, &l.ThomasID, &l.GovtrackID,
		&l.FirstName, &l.Nickname, &l.MiddleName, &l.LastName, &l.NameSuffix, &l.Title,
		&l.Party, &l.State, &l.District, &l.Chamber, &l.InOffice,
	)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to query legislator %s: %w", lisID, err)
	}
	return &l, true, nil
}

// UpsertLegislator inserts or replaces a legislator.
func (db *DB) UpsertLegislator(ctx context.Context, l *votemodels.Legislator) error {
	query := `
		INSERT INTO legislators (
			bioguide_id, lis_id, thomas_id, govtrack_id,
			first_name, nickname, middle_name, last_name, name_suffix, title,
			party, state, district, chamber, in_office
		) VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (bioguide_id) DO UPDATE SET
			lis_id = EXCLUDED.lis_id,
			thomas_id = EXCLUDED.thomas_id,
			govtrack_id = EXCLUDED.govtrack_id,
			first_name = EXCLUDED.first_name,
			nickname = EXCLUDED.nickname,
			middle_name = EXCLUDED.middle_name,
			last_name = EXCLUDED.last_name,
			name_suffix = EXCLUDED.name_suffix,
			title = EXCLUDED.title,
			party = EXCLUDED.party,
			state = EXCLUDED.state,
			district = EXCLUDED.district,
			chamber = EXCLUDED.chamber,
			in_office = EXCLUDED.in_office
	`
	if err := db.Exec(ctx, query,
		l.BioguideID, l.LisID, l.ThomasID, l.GovtrackID,
		l.FirstName, l.Nickname, l.MiddleName, l.LastName, l.NameSuffix, l.Title,
		l.Party, l.State, l.District, l.Chamber, l.InOffice,
	); err != nil {
		return fmt.Errorf("upsert legislator %s: %w", l.BioguideID, err)
	}
	return nil
}
