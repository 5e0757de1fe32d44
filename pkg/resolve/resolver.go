package resolve

import (
	"context"
	"fmt"

	votemodels "github.com/civicdata/rollcall/pkg/db/models/votes"
	"github.com/puzpuzpuz/xsync/v4"
)

// LegislatorLookup finds a legislator by LIS member id.
type LegislatorLookup interface {
	LegislatorByLisID(ctx context.Context, lisID string) (*votemodels.Legislator, bool, error)
}

// BillLookup finds a bill by canonical id, e.g. "s181-111".
type BillLookup interface {
	BillByID(ctx context.Context, billID string) (*votemodels.Bill, bool, error)
}

// AmendmentLookup finds an amendment by canonical id, e.g. "samdt21-111".
type AmendmentLookup interface {
	AmendmentByID(ctx context.Context, amendmentID string) (*votemodels.Amendment, bool, error)
}

// NominationLookup finds a nomination by canonical id, e.g. "PN64-111".
type NominationLookup interface {
	NominationByID(ctx context.Context, nominationID string) (*votemodels.Nomination, bool, error)
}

// Lookups bundles the read-only corpus collaborators.
type Lookups struct {
	Legislators LegislatorLookup
	Bills       BillLookup
	Amendments  AmendmentLookup
	Nominations NominationLookup
}

// Resolver maps upstream references to corpus snapshots. Legislators are
// cached for the lifetime of the Resolver; misses and errors are not cached
// so a later roll retries them.
type Resolver struct {
	lookups     Lookups
	legislators *xsync.Map[string, votemodels.Legislator]
}

// New returns a Resolver over lookups. Nil lookups always miss.
func New(lookups Lookups) *Resolver {
	return &Resolver{
		lookups:     lookups,
		legislators: xsync.NewMap[string, votemodels.Legislator](),
	}
}

// Legislator resolves a LIS member id.
func (r *Resolver) Legislator(ctx context.Context, lisID string) (*votemodels.Legislator, bool, error) {
	if lisID == "" {
		return nil, false, nil
	}
	if l, ok := r.legislators.Load(lisID); ok {
		return &l, true, nil
	}
	if r.lookups.Legislators == nil {
		return nil, false, nil
	}
	l, found, err := r.lookups.Legislators.LegislatorByLisID(ctx, lisID)
	if err != nil {
		return nil, false, fmt.Errorf("lookup legislator %s: %w", lisID, err)
	}
	if !found || l == nil {
		return nil, false, nil
	}
	r.legislators.Store(lisID, *l)
	cp := *l
	return &cp, true, nil
}

// Bill resolves a canonical bill id.
func (r *Resolver) Bill(ctx context.Context, billID string) (*votemodels.Bill, bool, error) {
	if billID == "" || r.lookups.Bills == nil {
		return nil, false, nil
	}
	b, found, err := r.lookups.Bills.BillByID(ctx, billID)
	if err != nil {
		return nil, false, fmt.Errorf("lookup bill %s: %w", billID, err)
	}
	return b, found && b != nil, nil
}

// Amendment resolves a canonical amendment id.
func (r *Resolver) Amendment(ctx context.Context, amendmentID string) (*votemodels.Amendment, bool, error) {
	if amendmentID == "" || r.lookups.Amendments == nil {
		return nil, false, nil
	}
	a, found, err := r.lookups.Amendments.AmendmentByID(ctx, amendmentID)
	if err != nil {
		return nil, false, fmt.Errorf("lookup amendment %s: %w", amendmentID, err)
	}
	return a, found && a != nil, nil
}

// Nomination resolves a canonical nomination id.
func (r *Resolver) Nomination(ctx context.Context, nominationID string) (*votemodels.Nomination, bool, error) {
	if nominationID == "" || r.lookups.Nominations == nil {
		return nil, false, nil
	}
	n, found, err := r.lookups.Nominations.NominationByID(ctx, nominationID)
	if err != nil {
		return nil, false, fmt.Errorf("lookup nomination %s: %w", nominationID, err)
	}
	return n, found && n != nil, nil
}

// CachedLegislators reports how many legislators are cached.
func (r *Resolver) CachedLegislators() int {
	return r.legislators.Size()
}
