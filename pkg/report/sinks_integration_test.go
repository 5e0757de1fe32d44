//go:build integration

package report_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/civicdata/rollcall/pkg/redis"
	"github.com/civicdata/rollcall/pkg/report"
	"github.com/civicdata/rollcall/pkg/testutil/containers"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap/zaptest"
)

func testSummary() report.Summary {
	return report.Summary{
		RunID:    "run-42",
		Level:    report.LevelWarning,
		Message:  "Some roll call votes need attention.",
		Congress: 111,
		Synced:   3,
	}
}

func TestRedisSinkIntegration(t *testing.T) {
	ctx := context.Background()
	rc := containers.NewRedisContainer(t)

	client, err := redis.NewClient(ctx, zaptest.NewLogger(t), redis.Options{Host: rc.Host, Port: rc.Port, StreamMaxLen: 100})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Health(ctx))

	raw := goredis.NewClient(&goredis.Options{Addr: rc.Host + ":" + rc.Port})
	t.Cleanup(func() { _ = raw.Close() })
	sub := raw.Subscribe(ctx, report.RunsChannel)
	t.Cleanup(func() { _ = sub.Close() })
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, report.RedisSink{Client: client}.Send(ctx, testSummary()))

	entries, err := raw.XRange(ctx, report.RunsStream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "run-42", entries[0].Values["run_id"])
	assert.Equal(t, "warning", entries[0].Values["level"])

	select {
	case msg := <-sub.Channel():
		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, "run-42", got["run_id"])
	case <-time.After(5 * time.Second):
		t.Fatal("no run.completed message")
	}
}

func TestKafkaSinkIntegration(t *testing.T) {
	ctx := context.Background()
	kc := containers.NewKafkaContainer(t)
	const topic = "rollcall.runs"

	producer, err := report.NewKafkaClient([]string{kc.Broker}, topic)
	require.NoError(t, err)
	t.Cleanup(producer.Close)

	require.NoError(t, report.KafkaSink{Client: producer, Topic: topic}.Send(ctx, testSummary()))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(kc.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	t.Cleanup(consumer.Close)

	pollCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(pollCtx)
	require.Empty(t, fetches.Errors())

	records := fetches.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "run-42", string(records[0].Key))
	var got map[string]any
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	assert.Equal(t, "warning", got["level"])
	assert.EqualValues(t, 3, got["synced"])
	assert.EqualValues(t, 111, got["congress"])
}
