// Package corpus reads the legislator, bill, amendment and nomination
// collections that roll calls are cross-referenced against.
package corpus

import (
	"context"
	"fmt"

	"github.com/civicdata/rollcall/pkg/db/postgres"
	"github.com/civicdata/rollcall/pkg/resolve"
	"go.uber.org/zap"
)

// DB serves the resolver lookups from Postgres.
type DB struct {
	postgres.Client
}

var (
	_ resolve.LegislatorLookup = (*DB)(nil)
	_ resolve.BillLookup       = (*DB)(nil)
	_ resolve.AmendmentLookup  = (*DB)(nil)
	_ resolve.NominationLookup = (*DB)(nil)
)

// New wraps an open client and creates the corpus tables if needed. The
// tables are owned by the corpus loaders; creating them here lets a fresh
// database run with every lookup missing.
func New(ctx context.Context, client postgres.Client) (*DB, error) {
	db := &DB{Client: client}
	if err := db.InitializeDB(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// Lookups returns the resolver collaborators backed by db.
func (db *DB) Lookups() resolve.Lookups {
	return resolve.Lookups{Legislators: db, Bills: db, Amendments: db, Nominations: db}
}

// InitializeDB ensures the corpus tables exist.
func (db *DB) InitializeDB(ctx context.Context) error {
	for name, init := range map[string]func(context.Context) error{
		"legislators": db.initLegislators,
		"bills":       db.initBills,
		"amendments":  db.initAmendments,
		"nominations": db.initNominations,
	} {
		db.Logger.Debug("Initialize corpus table", zap.String("table", name))
		if err := init(ctx); err != nil {
			return fmt.Errorf("init %s table: %w", name, err)
		}
	}
	return nil
}
