//go:build integration

package containers

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	tcclickhouse "github.com/testcontainers/testcontainers-go/modules/clickhouse"
)

// ClickHouseContainer wraps a testcontainers ClickHouse instance.
type ClickHouseContainer struct {
	Container testcontainers.Container
	DSN       string
}

// NewClickHouseContainer starts a ClickHouse server terminated at test cleanup.
func NewClickHouseContainer(t *testing.T) *ClickHouseContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcclickhouse.Run(ctx, "clickhouse/clickhouse-server:24.8-alpine",
		tcclickhouse.WithUsername("votes"),
		tcclickhouse.WithPassword("votes"),
		tcclickhouse.WithDatabase("default"),
	)
	if err != nil {
		t.Fatalf("failed to start clickhouse container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.ConnectionHost(ctx)
	if err != nil {
		t.Fatalf("failed to get clickhouse host: %v", err)
	}

	return &ClickHouseContainer{Container: container, DSN: "clickhouse://votes:votes@" + host}
}
