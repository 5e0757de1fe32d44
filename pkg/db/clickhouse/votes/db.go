package votes

import (
	"context"
	"fmt"
	"time"

	storage "github.com/civicdata/rollcall/pkg/db"
	"github.com/civicdata/rollcall/pkg/db/clickhouse"
	"go.uber.org/zap"
)

// DB is the ClickHouse vote store. Overwrites are new row versions collapsed
// by ReplacingMergeTree; reads use FINAL so they always see the newest one.
type DB struct {
	*clickhouse.Client
	now func() time.Time
}

var _ storage.VoteStore = (*DB)(nil)

// New wraps an open client and creates the votes table if needed.
func New(ctx context.Context, client *clickhouse.Client) (*DB, error) {
	store := &DB{Client: client, now: time.Now}
	if err := store.InitializeDB(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// Open connects to dsn, creating dbName, and initializes the schema.
func Open(ctx context.Context, logger *zap.Logger, dsn, dbName string, poolConfig *clickhouse.PoolConfig) (*DB, error) {
	client, err := clickhouse.New(ctx, logger.With(zap.String("store", "votes")), dsn, dbName, poolConfig)
	if err != nil {
		return nil, err
	}
	store, err := New(ctx, client)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return store, nil
}

// InitializeDB ensures the votes table exists.
func (db *DB) InitializeDB(ctx context.Context) error {
	db.Logger.Info("Initialize votes table", zap.String("database", db.Database))
	if err := db.Exec(ctx, createVotesSQL(db.Database)); err != nil {
		return fmt.Errorf("init votes table: %w", err)
	}
	return nil
}
