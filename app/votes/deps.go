package votes

import (
	"context"
	"errors"
	"fmt"

	"github.com/civicdata/rollcall/pkg/config"
	storage "github.com/civicdata/rollcall/pkg/db"
	"github.com/civicdata/rollcall/pkg/db/clickhouse"
	chvotes "github.com/civicdata/rollcall/pkg/db/clickhouse/votes"
	"github.com/civicdata/rollcall/pkg/db/postgres"
	"github.com/civicdata/rollcall/pkg/db/postgres/corpus"
	pgvotes "github.com/civicdata/rollcall/pkg/db/postgres/votes"
	"github.com/civicdata/rollcall/pkg/metrics"
	"github.com/civicdata/rollcall/pkg/pipeline"
	"github.com/civicdata/rollcall/pkg/redis"
	"github.com/civicdata/rollcall/pkg/report"
	"github.com/civicdata/rollcall/pkg/senate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"
)

// Deps is everything a sync process talks to. Shared by the one-shot
// command and the Temporal worker.
type Deps struct {
	Postgres postgres.Client
	Corpus   *corpus.DB
	Store    storage.VoteStore
	Redis    *redis.Client
	Kafka    *kgo.Client
	Reporter *report.Reporter
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Runner   *pipeline.Runner
	Logger   *zap.Logger

	// Checks are the health probes behind readiness, keyed by name.
	Checks map[string]func(context.Context) error
}

// NewDeps connects the stores and sinks configured in cfg and wires a Runner
// over them. component picks the connection pool sizes.
func NewDeps(ctx context.Context, logger *zap.Logger, cfg config.Config, component string) (*Deps, error) {
	d := &Deps{Logger: logger}

	pg, err := postgres.New(ctx, logger.Named("postgres"), cfg.PostgresURL, postgres.GetPoolConfigForComponent(component))
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	d.Postgres = pg

	if d.Corpus, err = corpus.New(ctx, pg); err != nil {
		d.Close()
		return nil, fmt.Errorf("corpus: %w", err)
	}

	if d.Store, err = openStore(ctx, logger, cfg, pg, component); err != nil {
		d.Close()
		return nil, fmt.Errorf("vote store %s: %w", cfg.Store, err)
	}
	logger.Info("Vote store ready", zap.String("store", cfg.Store))

	sinks := []report.Sink{report.LogSink{Logger: logger.Named("summary")}}
	if cfg.RedisEnabled {
		d.Redis, err = redis.NewClient(ctx, logger.Named("redis"), cfg.Redis)
		if err != nil {
			logger.Warn("Failed to initialize Redis client - run summaries and vote events will not be published", zap.Error(err))
			d.Redis = nil
		} else {
			sinks = append(sinks, report.RedisSink{Client: d.Redis})
		}
	} else {
		logger.Info("Redis disabled - run summaries and vote events will not be published")
	}
	if len(cfg.KafkaBrokers) > 0 {
		d.Kafka, err = report.NewKafkaClient(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			logger.Warn("Failed to initialize Kafka client - run summaries will not be produced", zap.Error(err))
			d.Kafka = nil
		} else {
			sinks = append(sinks, report.KafkaSink{Client: d.Kafka, Topic: cfg.KafkaTopic})
		}
	}

	d.Reporter = report.New(logger.Named("report"),
		report.WithSinks(sinks...),
		report.WithDownloadWarnThreshold(cfg.DownloadWarnThreshold),
		report.WithVerbose(cfg.Debug),
	)

	d.Registry = prometheus.NewRegistry()
	d.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	d.Metrics = metrics.New(d.Registry)

	client := senate.NewHTTPWithOpts(senate.Opts{
		BaseURL: cfg.SenateBaseURL,
		Timeout: cfg.RequestTimeout,
		Delay:   cfg.RequestDelay,
	})
	opts := []pipeline.Option{pipeline.WithMetrics(d.Metrics)}
	if d.Redis != nil {
		opts = append(opts, pipeline.WithEvents(d.Redis))
	}
	d.Checks = map[string]func(context.Context) error{
		"postgres":   d.Postgres.Health,
		"vote_store": d.Store.Health,
	}

	d.Runner = pipeline.New(logger.Named("pipeline"), client, cfg.CacheDir, d.Corpus.Lookups(), d.Store, d.Reporter, opts...)

	return d, nil
}

func openStore(ctx context.Context, logger *zap.Logger, cfg config.Config, pg postgres.Client, component string) (storage.VoteStore, error) {
	if cfg.Store == config.StoreClickHouse {
		store, err := chvotes.Open(ctx, logger.Named("clickhouse"), cfg.ClickHouseAddr, cfg.ClickHouseDBName, clickhouse.GetPoolConfigForComponent(component))
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	store, err := pgvotes.New(ctx, pg)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Ready runs every check and joins the failures.
func (d *Deps) Ready(ctx context.Context) error {
	var errs []error
	for name, check := range d.Checks {
		if err := check(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Close releases every connection. Safe on a partially built Deps.
func (d *Deps) Close() error {
	var errs []error
	if d.Reporter != nil {
		d.Reporter.Close()
	}
	if d.Kafka != nil {
		d.Kafka.Close()
	}
	if d.Redis != nil {
		errs = append(errs, d.Redis.Close())
	}
	// The Postgres store shares the corpus pool, closed below.
	if _, ok := d.Store.(*chvotes.DB); ok {
		errs = append(errs, d.Store.Close())
	}
	if d.Postgres.Pool != nil {
		d.Postgres.Close()
	}
	return errors.Join(errs...)
}
