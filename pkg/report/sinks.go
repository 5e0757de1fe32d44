package report

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"
)

// Redis destinations for run summaries.
const (
	RunsStream  = "votes:runs"
	RunsChannel = "votes:run.completed"
)

// LogSink writes the summary to the process log at a level matching its severity.
type LogSink struct {
	Logger *zap.Logger
}

func (LogSink) Name() string { return "log" }

func (l LogSink) Send(_ context.Context, s Summary) error {
	fields := []zap.Field{
		zap.String("run_id", s.RunID),
		zap.String("level", s.Level.String()),
		zap.Int("congress", s.Congress),
		zap.Int("synced", s.Synced),
		zap.Int("not_published", s.NotPublished),
		zap.Duration("duration", s.Duration),
	}
	for _, g := range s.Groups {
		l.Logger.Info(g.Message,
			zap.String("run_id", s.RunID),
			zap.String("kind", g.Kind),
			zap.String("level", g.Level.String()),
			zap.Int("count", g.Count),
			zap.Any("items", g.Items))
	}
	switch s.Level {
	case LevelError:
		l.Logger.Error(s.Message, fields...)
	case LevelWarning:
		l.Logger.Warn(s.Message, fields...)
	default:
		l.Logger.Info(s.Message, fields...)
	}
	return nil
}

// StreamPublisher is the subset of the Redis client the Redis sink uses.
type StreamPublisher interface {
	XAdd(ctx context.Context, stream string, values map[string]any) (string, error)
	Publish(ctx context.Context, channel string, message any) error
}

// RedisSink appends the summary to a stream and announces it on a channel.
type RedisSink struct {
	Client StreamPublisher
}

func (RedisSink) Name() string { return "redis" }

func (r RedisSink) Send(ctx context.Context, s Summary) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if _, err := r.Client.XAdd(ctx, RunsStream, map[string]any{
		"run_id":  s.RunID,
		"level":   s.Level.String(),
		"summary": string(payload),
	}); err != nil {
		return err
	}
	return r.Client.Publish(ctx, RunsChannel, payload)
}

// Producer is the subset of the Kafka client the Kafka sink uses.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaSink produces the summary as one record keyed by run id.
type KafkaSink struct {
	Client Producer
	Topic  string
}

func (KafkaSink) Name() string { return "kafka" }

func (k KafkaSink) Send(ctx context.Context, s Summary) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	rec := &kgo.Record{
		Topic: k.Topic,
		Key:   []byte(s.RunID),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "level", Value: []byte(s.Level.String())},
		},
	}
	if err := k.Client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", k.Topic, err)
	}
	return nil
}

// NewKafkaClient connects a producer for brokers.
func NewKafkaClient(brokers []string, topic string) (*kgo.Client, error) {
	return kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
}
