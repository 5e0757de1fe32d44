// Package pipelinetest provides in-memory stores and corpora for pipeline tests.
package pipelinetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	storage "github.com/civicdata/rollcall/pkg/db"
	votemodels "github.com/civicdata/rollcall/pkg/db/models/votes"
	"github.com/civicdata/rollcall/pkg/report"
	"github.com/civicdata/rollcall/pkg/resolve"
	"github.com/civicdata/rollcall/pkg/senate/senatetest"
)

// ErrStoreDown is returned by MemStore for rolls listed in FailFor.
var ErrStoreDown = errors.New("connection reset")

var _ storage.VoteStore = (*MemStore)(nil)

// MemStore is a storage.VoteStore kept in memory.
type MemStore struct {
	mu      sync.Mutex
	votes   map[string]votemodels.Vote
	order   []string
	failFor map[string]int
}

func NewMemStore() *MemStore {
	return &MemStore{votes: map[string]votemodels.Vote{}, failFor: map[string]int{}}
}

// FailFor makes the next n writes of rollID fail. A negative n fails forever.
func (m *MemStore) FailFor(rollID string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failFor[rollID] = n
}

func (m *MemStore) UpsertVote(_ context.Context, v *votemodels.Vote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.failFor[v.RollID]; ok && n != 0 {
		if n > 0 {
			m.failFor[v.RollID] = n - 1
		}
		return ErrStoreDown
	}
	now := time.Now().UTC()
	if prev, ok := m.votes[v.RollID]; ok {
		v.CreatedAt = prev.CreatedAt
	} else {
		v.CreatedAt = now
	}
	v.UpdatedAt = now
	m.votes[v.RollID] = *v
	m.order = append(m.order, v.RollID)
	return nil
}

func (m *MemStore) GetVote(_ context.Context, rollID string) (*votemodels.Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.votes[rollID]
	if !ok {
		return nil, fmt.Errorf("vote %s: %w", rollID, storage.ErrNotFound)
	}
	return &v, nil
}

// Order returns the roll ids in write order.
func (m *MemStore) Order() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}

func (m *MemStore) Health(context.Context) error { return nil }
func (m *MemStore) Close() error                 { return nil }

// Corpus answers legislator and bill lookups from maps.
type Corpus struct {
	mu          sync.Mutex
	legislators map[string]votemodels.Legislator
	bills       map[string]votemodels.Bill
}

// CorpusFor knows every member (bioguide id "B"+LIS id) and bill s181-111.
func CorpusFor(members []senatetest.Member) *Corpus {
	c := &Corpus{
		legislators: map[string]votemodels.Legislator{},
		bills: map[string]votemodels.Bill{
			"s181-111": {BillID: "s181-111", BillType: "s", Number: 181, Congress: 111, ShortTitle: "Lilly Ledbetter Fair Pay Act of 2009"},
		},
	}
	for _, m := range members {
		c.legislators[m.LisID] = votemodels.Legislator{
			BioguideID: "B" + m.LisID,
			LisID:      m.LisID,
			LastName:   m.Last,
			Party:      m.Party,
			State:      m.State,
			Chamber:    "senate",
			InOffice:   true,
		}
	}
	return c
}

// Forget drops a legislator.
func (c *Corpus) Forget(lisID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.legislators, lisID)
}

func (c *Corpus) LegislatorByLisID(_ context.Context, lisID string) (*votemodels.Legislator, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.legislators[lisID]
	return &l, ok, nil
}

func (c *Corpus) BillByID(_ context.Context, id string) (*votemodels.Bill, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.bills[id]
	return &b, ok, nil
}

func (c *Corpus) AmendmentByID(context.Context, string) (*votemodels.Amendment, bool, error) {
	return nil, false, nil
}

func (c *Corpus) NominationByID(context.Context, string) (*votemodels.Nomination, bool, error) {
	return nil, false, nil
}

func (c *Corpus) Lookups() resolve.Lookups {
	return resolve.Lookups{Legislators: c, Bills: c, Amendments: c, Nominations: c}
}

// RecordingSink keeps every summary it is sent.
type RecordingSink struct {
	mu        sync.Mutex
	summaries []report.Summary
}

func (*RecordingSink) Name() string { return "recording" }

func (s *RecordingSink) Send(_ context.Context, summary report.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries = append(s.summaries, summary)
	return nil
}

func (s *RecordingSink) Summaries() []report.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]report.Summary(nil), s.summaries...)
}
