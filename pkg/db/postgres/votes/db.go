package votes

import (
	"context"
	"fmt"

	storage "github.com/civicdata/rollcall/pkg/db"
	"github.com/civicdata/rollcall/pkg/db/postgres"
	"go.uber.org/zap"
)

// DB is the Postgres vote store.
type DB struct {
	postgres.Client
}

var _ storage.VoteStore = (*DB)(nil)

// New wraps an open client and creates the votes table if needed.
func New(ctx context.Context, client postgres.Client) (*DB, error) {
	store := &DB{Client: client}
	if err := store.InitializeDB(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// Open connects to dbURL and initializes the schema.
func Open(ctx context.Context, logger *zap.Logger, dbURL string, poolConfig *postgres.PoolConfig) (*DB, error) {
	client, err := postgres.New(ctx, logger.With(zap.String("store", "votes")), dbURL, poolConfig)
	if err != nil {
		return nil, err
	}
	store, err := New(ctx, client)
	if err != nil {
		client.Close()
		return nil, err
	}
	return store, nil
}

// InitializeDB ensures the votes table and its indexes exist.
func (db *DB) InitializeDB(ctx context.Context) error {
	db.Logger.Info("Initialize votes table")
	if err := db.initVotes(ctx); err != nil {
		return fmt.Errorf("init votes table: %w", err)
	}
	return nil
}

// Close terminates the underlying PostgreSQL connection
func (db *DB) Close() error {
	db.Pool.Close()
	return nil
}
