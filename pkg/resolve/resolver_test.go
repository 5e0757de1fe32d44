package resolve

import (
	"context"
	"errors"
	"testing"

	votemodels "github.com/civicdata/rollcall/pkg/db/models/votes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLegislators struct {
	byLis map[string]votemodels.Legislator
	err   error
	calls map[string]int
}

func (f *fakeLegislators) LegislatorByLisID(_ context.Context, lisID string) (*votemodels.Legislator, bool, error) {
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[lisID]++
	if f.err != nil {
		return nil, false, f.err
	}
	l, ok := f.byLis[lisID]
	if !ok {
		return nil, false, nil
	}
	return &l, true, nil
}

func TestLegislatorIsCachedAfterFirstLookup(t *testing.T) {
	lookup := &fakeLegislators{byLis: map[string]votemodels.Legislator{
		"S001": {BioguideID: "A000001", LisID: "S001", Party: "D"},
	}}
	r := New(Lookups{Legislators: lookup})

	for i := 0; i < 3; i++ {
		l, found, err := r.Legislator(context.Background(), "S001")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "A000001", l.BioguideID)
	}
	assert.Equal(t, 1, lookup.calls["S001"])
	assert.Equal(t, 1, r.CachedLegislators())
}

func TestLegislatorMissesAreRetried(t *testing.T) {
	lookup := &fakeLegislators{byLis: map[string]votemodels.Legislator{}}
	r := New(Lookups{Legislators: lookup})

	_, found, err := r.Legislator(context.Background(), "S404")
	require.NoError(t, err)
	require.False(t, found)

	lookup.byLis["S404"] = votemodels.Legislator{BioguideID: "B000404"}
	l, found, err := r.Legislator(context.Background(), "S404")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "B000404", l.BioguideID)
	assert.Equal(t, 2, lookup.calls["S404"])
}

func TestLegislatorErrorsAreNotCached(t *testing.T) {
	lookup := &fakeLegislators{err: errors.New("connection reset")}
	r := New(Lookups{Legislators: lookup})

	_, _, err := r.Legislator(context.Background(), "S001")
	require.ErrorContains(t, err, "connection reset")
	assert.Zero(t, r.CachedLegislators())
}

func TestReturnedLegislatorIsACopy(t *testing.T) {
	lookup := &fakeLegislators{byLis: map[string]votemodels.Legislator{"S001": {BioguideID: "A000001"}}}
	r := New(Lookups{Legislators: lookup})

	l, _, _ := r.Legislator(context.Background(), "S001")
	l.BioguideID = "mutated"

	again, _, _ := r.Legislator(context.Background(), "S001")
	assert.Equal(t, "A000001", again.BioguideID)
}

func TestNilLookupsMiss(t *testing.T) {
	r := New(Lookups{})
	ctx := context.Background()

	_, found, err := r.Legislator(ctx, "S001")
	require.NoError(t, err)
	assert.False(t, found)
	_, found, err = r.Bill(ctx, "s181-111")
	require.NoError(t, err)
	assert.False(t, found)
	_, found, err = r.Amendment(ctx, "samdt1-111")
	require.NoError(t, err)
	assert.False(t, found)
	_, found, err = r.Nomination(ctx, "PN1-111")
	require.NoError(t, err)
	assert.False(t, found)
}
