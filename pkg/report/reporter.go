package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"
)

// DefaultDownloadWarnThreshold is the number of download failures tolerated
// before they are reported as a warning. A handful of transient failures per
// run is normal against the upstream host.
const DefaultDownloadWarnThreshold = 3

// Sink delivers a run summary somewhere.
type Sink interface {
	Name() string
	Send(ctx context.Context, s Summary) error
}

// Reporter turns outcomes into summaries and hands them to sinks.
type Reporter struct {
	logger        *zap.Logger
	sinks         []Sink
	pool          pond.Pool
	warnThreshold int
	verbose       bool
	now           func() time.Time
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithSinks adds delivery targets.
func WithSinks(sinks ...Sink) Option {
	return func(r *Reporter) { r.sinks = append(r.sinks, sinks...) }
}

// WithDownloadWarnThreshold overrides DefaultDownloadWarnThreshold.
func WithDownloadWarnThreshold(n int) Option {
	return func(r *Reporter) {
		if n >= 0 {
			r.warnThreshold = n
		}
	}
}

// WithVerbose reports every download failure as a warning.
func WithVerbose(v bool) Option {
	return func(r *Reporter) { r.verbose = v }
}

// New returns a Reporter. Sinks run on a small shared pool.
func New(logger *zap.Logger, opts ...Option) *Reporter {
	r := &Reporter{
		logger:        logger,
		warnThreshold: DefaultDownloadWarnThreshold,
		now:           time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	r.pool = pond.NewPool(max(len(r.sinks), 1))
	return r
}

// Summarize builds the one summary for a run.
func (r *Reporter) Summarize(o *Outcome) Summary {
	s := Summary{
		RunID:        o.RunID,
		Congress:     o.Congress,
		Synced:       o.Synced,
		NotPublished: o.NotPublished,
		StartedAt:    o.StartedAt,
	}
	if !o.StartedAt.IsZero() {
		s.Duration = r.now().Sub(o.StartedAt)
	}

	if n := len(o.DownloadFailures); n > 0 {
		level := LevelNote
		if r.verbose || n > r.warnThreshold {
			level = LevelWarning
		}
		s.add(Group{
			Kind:    GroupDownloadFailures,
			Level:   level,
			Message: fmt.Sprintf("Failed to download %d files while syncing against the Senate roll call collection", n),
			Count:   n,
			Items:   o.DownloadFailures,
		})
	}
	if n := len(o.MissingLegislators); n > 0 {
		s.add(Group{
			Kind:    GroupMissingLegislators,
			Level:   LevelWarning,
			Message: fmt.Sprintf("Couldn't look up %d legislators in Senate roll call listing. Vote counts on roll calls may be inaccurate until these are fixed.", n),
			Count:   n,
			Items:   o.MissingLegislators,
		})
	}
	if n := len(o.MissingBills); n > 0 {
		s.add(Group{
			Kind:    GroupMissingBills,
			Level:   LevelNote,
			Message: fmt.Sprintf("Found %d missing bill_id's while processing votes.", n),
			Count:   n,
			Items:   o.MissingBills,
		})
	}
	if n := len(o.MissingNominations); n > 0 {
		s.add(Group{
			Kind:    GroupMissingNominations,
			Level:   LevelWarning,
			Message: fmt.Sprintf("Found %d missing nomination_id's while processing votes.", n),
			Count:   n,
			Items:   o.MissingNominations,
		})
	}
	if n := len(o.MissingAmendments); n > 0 {
		s.add(Group{
			Kind:    GroupMissingAmendments,
			Level:   LevelNote,
			Message: fmt.Sprintf("Found %d missing amendment_id's while processing votes.", n),
			Count:   n,
			Items:   o.MissingAmendments,
		})
	}
	if n := len(o.DiscoveryNotes); n > 0 {
		s.add(Group{
			Kind:    GroupDiscovery,
			Level:   LevelNote,
			Message: "Failed to find the latest new roll on the Senate's site for some sessions.",
			Count:   n,
			Items:   o.DiscoveryNotes,
		})
	}
	if n := len(o.ParseFailures); n > 0 {
		s.add(Group{
			Kind:    GroupParseFailures,
			Level:   LevelWarning,
			Message: fmt.Sprintf("Failed to parse %d roll call documents.", n),
			Count:   n,
			Items:   o.ParseFailures,
		})
	}
	if n := len(o.PersistenceFailures); n > 0 {
		s.add(Group{
			Kind:    GroupPersistenceFailures,
			Level:   LevelError,
			Message: fmt.Sprintf("Failed to save %d roll call votes.", n),
			Count:   n,
			Items:   o.PersistenceFailures,
		})
	}

	if s.Level == LevelSuccess {
		s.Message = successMessage(o.Synced, o.Congress)
	} else {
		s.Message = fmt.Sprintf("%s (%d groups need attention)", successMessage(o.Synced, o.Congress), len(s.Groups))
	}
	return s
}

func (s *Summary) add(g Group) {
	s.Groups = append(s.Groups, g)
	s.Level = max(s.Level, g.Level)
}

// Emit delivers s to every sink concurrently and waits for all of them.
// Sink failures are logged and never returned.
func (r *Reporter) Emit(ctx context.Context, s Summary) {
	if len(r.sinks) == 0 {
		return
	}
	group := r.pool.NewGroupContext(ctx)
	groupCtx := group.Context()
	for _, sink := range r.sinks {
		group.Submit(func() {
			if err := sink.Send(groupCtx, s); err != nil {
				r.logger.Warn("Failed to deliver run summary",
					zap.String("sink", sink.Name()),
					zap.String("run_id", s.RunID),
					zap.Error(err))
			}
		})
	}
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
		r.logger.Warn("Run summary delivery interrupted", zap.String("run_id", s.RunID), zap.Error(err))
	}
}

// Report summarizes and emits in one call.
func (r *Reporter) Report(ctx context.Context, o *Outcome) Summary {
	s := r.Summarize(o)
	r.Emit(ctx, s)
	return s
}

// Close stops the sink pool.
func (r *Reporter) Close() {
	r.pool.StopAndWait()
}
