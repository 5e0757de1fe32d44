package plan

import (
	"context"
	"fmt"
	"time"

	"github.com/civicdata/rollcall/pkg/congress"
	"github.com/civicdata/rollcall/pkg/retry"
	"github.com/civicdata/rollcall/pkg/senate"
	"go.uber.org/zap"
)

// DefaultLimit bounds incremental runs.
const DefaultLimit = 20

// Mode is how a plan was derived.
type Mode string

const (
	ModeSingle      Mode = "single"
	ModeIncremental Mode = "incremental"
	ModeArchive     Mode = "archive"
)

// Options selects what to sync. RollID wins over everything else; a Congress
// switches to archive mode; otherwise the current session is synced.
type Options struct {
	RollID   string
	Congress int
	Session  int
	Limit    int
	Now      time.Time
}

// IndexResult is the outcome of reading a session's vote menu. Available is
// false when the menu could not be fetched or read, which is distinct from a
// session with zero votes.
type IndexResult struct {
	Available bool
	Latest    int
	Err       error
}

// Plan is the ordered list of rolls to sync, most recent first.
type Plan struct {
	Mode     Mode
	Congress int
	Sessions []int
	IDs      []congress.RollID
	Notes    []string
}

// Planner discovers roll ids from the upstream vote menus.
type Planner struct {
	client senate.Client
	logger *zap.Logger
	retry  retry.Config
}

// New returns a Planner. Menu reads are retried a few times before the
// session is given up on.
func New(client senate.Client, logger *zap.Logger) *Planner {
	return &Planner{
		client: client,
		logger: logger,
		retry: retry.Config{
			MaxRetries:    3,
			InitialDelay:  time.Second,
			MaxDelay:      5 * time.Second,
			Multiplier:    2,
			JitterEnabled: true,
		},
	}
}

// WithRetry overrides the menu retry policy.
func (p *Planner) WithRetry(cfg retry.Config) *Planner {
	p.retry = cfg
	return p
}

// Plan resolves opts into roll ids. Only invalid options return an error;
// unavailable menus become notes.
func (p *Planner) Plan(ctx context.Context, opts Options) (Plan, error) {
	if opts.RollID != "" {
		id, err := congress.ParseRollID(opts.RollID)
		if err != nil {
			return Plan{}, err
		}
		if id.Chamber != congress.Senate {
			return Plan{}, fmt.Errorf("roll %s is not a Senate vote", opts.RollID)
		}
		return Plan{Mode: ModeSingle, Congress: id.Congress, Sessions: []int{id.Session}, IDs: []congress.RollID{id}}, nil
	}

	if opts.Session != 0 && opts.Session != 1 && opts.Session != 2 {
		return Plan{}, fmt.Errorf("unsupported session %d", opts.Session)
	}
	if opts.Limit < 0 {
		return Plan{}, fmt.Errorf("negative limit %d", opts.Limit)
	}

	var out Plan
	limit := opts.Limit
	if opts.Congress > 0 {
		out.Mode = ModeArchive
		out.Congress = opts.Congress
		if opts.Session != 0 {
			out.Sessions = []int{opts.Session}
		} else {
			out.Sessions = []int{1, 2}
		}
	} else {
		now := opts.Now
		if now.IsZero() {
			now = time.Now()
		}
		c, s := congress.Current(now)
		out.Mode = ModeIncremental
		out.Congress = c
		out.Sessions = []int{s}
		if limit == 0 {
			limit = DefaultLimit
		}
	}

	for i := len(out.Sessions) - 1; i >= 0; i-- {
		session := out.Sessions[i]
		idx := p.LatestRoll(ctx, out.Congress, session)
		if !idx.Available {
			out.Notes = append(out.Notes, fmt.Sprintf("Failed to find the latest new roll on the Senate's site for %d-%d, can't go on: %v", out.Congress, session, idx.Err))
			continue
		}
		for n := idx.Latest; n >= 1; n-- {
			id, err := congress.NewRollID(n, out.Congress, session)
			if err != nil {
				return Plan{}, err
			}
			out.IDs = append(out.IDs, id)
		}
	}

	if limit > 0 && len(out.IDs) > limit {
		out.IDs = out.IDs[:limit]
	}
	return out, nil
}

// LatestRoll reads the highest roll number published for a session.
func (p *Planner) LatestRoll(ctx context.Context, congressNum, session int) IndexResult {
	p.logger.Debug("Fetching xml index page",
		zap.Int("congress", congressNum),
		zap.Int("session", session),
		zap.String("url", p.client.Paths().VoteMenu(congressNum, session)))

	var latest int
	err := retry.WithBackoff(ctx, p.retry, p.logger, "vote_menu", func() error {
		menu, err := p.client.VoteMenu(ctx, congressNum, session)
		if err != nil {
			return err
		}
		// A menu that decodes but lists a bad number will not fix itself.
		latest, err = menu.Latest()
		return retry.Permanent(err)
	})
	if err != nil {
		return IndexResult{Err: err}
	}
	return IndexResult{Available: true, Latest: latest}
}
