package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/civicdata/rollcall/pkg/congress"
	storage "github.com/civicdata/rollcall/pkg/db"
	"github.com/civicdata/rollcall/pkg/fetch"
	"github.com/civicdata/rollcall/pkg/logging"
	"github.com/civicdata/rollcall/pkg/metrics"
	"github.com/civicdata/rollcall/pkg/plan"
	"github.com/civicdata/rollcall/pkg/report"
	"github.com/civicdata/rollcall/pkg/resolve"
	"github.com/civicdata/rollcall/pkg/senate"
	"github.com/civicdata/rollcall/pkg/votes"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/civicdata/rollcall/pkg/pipeline"

// Roll statuses, as counted in metrics.
const (
	StatusSynced         = "synced"
	StatusNotPublished   = "not_published"
	StatusDownloadFailed = "download_failed"
	StatusParseFailed    = "parse_failed"
	StatusPersistFailed  = "persist_failed"
)

// ErrCacheUnavailable is returned when the vote cache directories cannot be
// created.
var ErrCacheUnavailable = errors.New("vote cache unavailable")

// Options is one run's invocation.
type Options struct {
	Plan  plan.Options
	Force bool
	Debug bool
}

// Runner syncs planned rolls one at a time and reports once at the end.
type Runner struct {
	client   senate.Client
	planner  *plan.Planner
	fetcher  *fetch.Fetcher
	cacheDir string
	lookups  resolve.Lookups
	store    storage.VoteStore
	reporter *report.Reporter
	events   Publisher
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	logger   *zap.Logger
	now      func() time.Time
}

// Option customizes a Runner.
type Option func(*Runner)

// WithEvents publishes a vote.synced event for every stored vote.
func WithEvents(p Publisher) Option {
	return func(r *Runner) { r.events = p }
}

// WithMetrics records roll and run metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithTracer overrides the global otel tracer.
func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) { r.tracer = t }
}

// WithPlanner overrides the default planner, e.g. to change its retry policy.
func WithPlanner(p *plan.Planner) Option {
	return func(r *Runner) { r.planner = p }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// New wires a Runner over an upstream client, a cache directory, the corpus
// lookups and a vote store.
func New(logger *zap.Logger, client senate.Client, cacheDir string, lookups resolve.Lookups, store storage.VoteStore, reporter *report.Reporter, opts ...Option) *Runner {
	r := &Runner{
		client:   client,
		fetcher:  fetch.New(client, cacheDir, logger.Named("fetch")),
		cacheDir: cacheDir,
		lookups:  lookups,
		store:    store,
		reporter: reporter,
		logger:   logger,
		now:      time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	if r.planner == nil {
		r.planner = plan.New(client, logger.Named("plan"))
	}
	if r.tracer == nil {
		r.tracer = otel.Tracer(tracerName)
	}
	return r
}

// Plan resolves invocation options into roll ids and prepares the cache
// directories for them.
func (r *Runner) Plan(ctx context.Context, opts plan.Options) (plan.Plan, error) {
	p, err := r.plan(ctx, opts)
	if err != nil {
		return plan.Plan{}, err
	}
	if err := r.fetcher.EnsureDirs(p.Congress); err != nil {
		return plan.Plan{}, fmt.Errorf("%w: %w", ErrCacheUnavailable, err)
	}
	return p, nil
}

func (r *Runner) plan(ctx context.Context, opts plan.Options) (plan.Plan, error) {
	if opts.Now.IsZero() {
		opts.Now = r.now()
	}
	return r.planner.Plan(ctx, opts)
}

// Run plans, syncs every roll in order and emits exactly one summary. Only
// persistence failures, an unusable cache, cancellation and invalid options
// make it return an error; everything else is reported on the summary.
// Invalid options are rejected before a run starts, so they emit nothing.
func (r *Runner) Run(ctx context.Context, opts Options) (report.Summary, error) {
	started := r.now()
	p, err := r.plan(ctx, opts.Plan)
	if err != nil {
		return report.Summary{}, fmt.Errorf("plan: %w", err)
	}

	outcome := report.NewOutcome(p.Congress, started)
	for _, note := range p.Notes {
		outcome.AddDiscoveryNote(note)
	}
	log := r.logger.With(zap.String("run_id", outcome.RunID), zap.String("mode", string(p.Mode)))

	if err := r.fetcher.EnsureDirs(p.Congress); err != nil {
		outcome.AddDiscoveryNote("cache unavailable, no votes synced: " + err.Error())
		log.Error("Cannot prepare vote cache", zap.Error(err))
		return r.finish(ctx, p, outcome, started, log), fmt.Errorf("%w: %w", ErrCacheUnavailable, err)
	}

	log.Info("Starting vote sync",
		zap.Int("congress", p.Congress),
		zap.Ints("sessions", p.Sessions),
		zap.Int("rolls", len(p.IDs)),
		zap.Bool("force", opts.Force))

	session := r.NewSession(opts.Debug)
	var errs []error
	for _, id := range p.IDs {
		if err := session.SyncRoll(ctx, id, opts.Force, outcome); err != nil {
			errs = append(errs, err)
			var perr *PersistenceError
			if !errors.As(err, &perr) {
				break
			}
		}
	}

	return r.finish(ctx, p, outcome, started, log), errors.Join(errs...)
}

func (r *Runner) finish(ctx context.Context, p plan.Plan, outcome *report.Outcome, started time.Time, log *zap.Logger) report.Summary {
	summary := r.reporter.Summarize(outcome)
	r.reporter.Emit(context.WithoutCancel(ctx), summary)
	r.metrics.ObserveRun(string(p.Mode), summary.Level.String(), r.now().Sub(started), !summary.HasErrors(), r.now())
	log.Info("Finished vote sync",
		zap.String("level", summary.Level.String()),
		zap.Int("synced", summary.Synced),
		zap.Int("not_published", summary.NotPublished))
	return summary
}

// Summarize builds and emits the summary of an outcome assembled elsewhere,
// e.g. by the durable runner.
func (r *Runner) Summarize(ctx context.Context, outcome *report.Outcome, mode string) report.Summary {
	summary := r.reporter.Summarize(outcome)
	r.reporter.Emit(ctx, summary)
	r.metrics.ObserveRun(mode, summary.Level.String(), summary.Duration, !summary.HasErrors(), r.now())
	return summary
}

// Session holds the state shared by the rolls of one run, most importantly
// the resolver's legislator cache.
type Session struct {
	runner  *Runner
	fetcher *fetch.Fetcher
	parser  *votes.Parser
	logger  *zap.Logger
}

// NewSession starts a session with an empty resolver cache. debug forces
// per-roll tracing regardless of the configured log level.
func (r *Runner) NewSession(debug bool) *Session {
	logger := logging.WithDebug(r.logger, debug)
	resolver := resolve.New(r.lookups)
	return &Session{
		runner:  r,
		fetcher: fetch.New(r.client, r.cacheDir, logger.Named("fetch")),
		parser:  votes.NewParser(resolver, r.client.Paths(), logger.Named("votes")),
		logger:  logger,
	}
}

// SyncRoll fetches, parses and stores one roll, recording every problem on
// outcome. It returns a *PersistenceError when the store fails and the
// context error when cancelled; all other failures only touch outcome.
func (s *Session) SyncRoll(ctx context.Context, id congress.RollID, force bool, outcome *report.Outcome) error {
	r := s.runner
	rollID := id.String()
	ctx, span := r.tracer.Start(ctx, "SyncRoll", trace.WithAttributes(
		attribute.String("roll.id", rollID),
		attribute.Int("roll.congress", id.Congress),
		attribute.Int("roll.session", id.Session),
		attribute.Int("roll.number", id.Number),
	))
	defer span.End()

	started := r.now()
	defer func() { r.metrics.ObserveRoll(r.now().Sub(started)) }()

	log := s.logger.With(zap.String("roll_id", rollID))
	if err := ctx.Err(); err != nil {
		return err
	}

	res, err := s.fetcher.Fetch(ctx, id, force)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		failure := report.Failure{RollID: rollID, Message: err.Error()}
		var derr *fetch.DownloadError
		if errors.As(err, &derr) {
			failure.Message = derr.Reason
			failure.URL = derr.URL
			failure.Destination = derr.Destination
			failure.ContentLength = derr.ContentLength
		}
		outcome.AddDownloadFailure(failure)
		r.metrics.IncRoll(StatusDownloadFailed)
		span.SetStatus(codes.Error, failure.Message)
		log.Debug("Couldn't download", zap.Error(err))
		return nil
	}
	span.SetAttributes(attribute.String("fetch.status", res.Status.String()))

	if res.Status == fetch.StatusNotPublished {
		outcome.MarkNotPublished()
		r.metrics.IncRoll(StatusNotPublished)
		log.Debug("Not published yet", zap.String("url", res.URL))
		return nil
	}

	before := missingCounts(outcome)
	attrs, err := s.parser.Parse(ctx, res.Body, id, outcome)
	r.recordMissing(before, missingCounts(outcome))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		message := err.Error()
		var perr *votes.ParseError
		if !errors.As(err, &perr) {
			message = "lookup failed: " + message
		}
		outcome.AddParseFailure(report.Failure{RollID: rollID, Message: message, URL: res.URL, Destination: res.Path})
		r.metrics.IncRoll(StatusParseFailed)
		span.SetStatus(codes.Error, message)
		log.Warn("Failed to parse roll call vote", zap.Error(err))
		return nil
	}

	record := attrs.Record()
	if err := r.store.UpsertVote(ctx, record); err != nil {
		outcome.AddPersistenceFailure(report.Failure{RollID: rollID, Message: err.Error(), URL: res.URL})
		r.metrics.IncRoll(StatusPersistFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist")
		log.Error("Failed to save roll call vote", zap.Error(err))
		return &PersistenceError{RollID: rollID, Err: err}
	}

	outcome.MarkSynced()
	r.metrics.IncRoll(StatusSynced)
	log.Debug("Synced roll call vote",
		zap.String("vote_type", record.VoteType),
		zap.Int("voters", len(record.Voters)),
		zap.Bool("cached", res.Status == fetch.StatusCached))

	r.publish(ctx, outcome.RunID, attrs, res.Status == fetch.StatusCached, log)
	return nil
}

func (r *Runner) publish(ctx context.Context, runID string, attrs votes.Attributes, cached bool, log *zap.Logger) {
	if r.events == nil {
		return
	}
	id := attrs.RollID
	event := &VoteSyncedEvent{
		Event:     EventVoteSynced,
		RunID:     runID,
		RollID:    id.String(),
		Congress:  id.Congress,
		Session:   id.Session,
		Number:    id.Number,
		VoteType:  attrs.VoteType,
		Result:    attrs.Result,
		VotedAt:   attrs.VotedAt,
		Voters:    len(attrs.Voters),
		Cached:    cached,
		Timestamp: r.now().UTC(),
	}
	payload, err := event.payload()
	if err != nil {
		log.Warn("Failed to encode vote.synced event (non-fatal)", zap.Error(err))
		return
	}
	channel := Channel(id.Congress, EventVoteSynced)
	if err := r.events.Publish(ctx, channel, payload); err != nil {
		log.Warn("Failed to publish vote.synced event (non-fatal)", zap.String("channel", channel), zap.Error(err))
		return
	}
	log.Debug("Published vote.synced event", zap.String("channel", channel))
}

type missing struct {
	legislators, bills, amendments, nominations int
}

func missingCounts(o *report.Outcome) missing {
	return missing{
		legislators: len(o.MissingLegislators),
		bills:       len(o.MissingBills),
		amendments:  len(o.MissingAmendments),
		nominations: len(o.MissingNominations),
	}
}

func (r *Runner) recordMissing(before, after missing) {
	r.metrics.AddMissing("legislator", after.legislators-before.legislators)
	r.metrics.AddMissing("bill", after.bills-before.bills)
	r.metrics.AddMissing("amendment", after.amendments-before.amendments)
	r.metrics.AddMissing("nomination", after.nominations-before.nominations)
}
