package plan

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/civicdata/rollcall/pkg/congress"
	"github.com/civicdata/rollcall/pkg/retry"
	"github.com/civicdata/rollcall/pkg/senate"
	"github.com/civicdata/rollcall/pkg/senate/senatetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func menuPath(c, s int) string {
	return fmt.Sprintf("/legislative/LIS/roll_call_lists/vote_menu_%d_%d.xml", c, s)
}

func newPlanner(t *testing.T, srv *senatetest.Server) *Planner {
	client := senate.NewHTTPWithOpts(senate.Opts{BaseURL: srv.URL})
	return New(client, zaptest.NewLogger(t)).WithRetry(retry.Config{
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
		MaxDelay:     time.Millisecond,
		Multiplier:   1,
	})
}

func ids(p Plan) []string {
	out := make([]string, 0, len(p.IDs))
	for _, id := range p.IDs {
		out = append(out, id.String())
	}
	return out
}

func TestPlanSingleRoll(t *testing.T) {
	srv := senatetest.NewServer(t)
	p, err := newPlanner(t, srv).Plan(context.Background(), Options{RollID: "s5-2009", Congress: 112, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, ModeSingle, p.Mode)
	assert.Equal(t, []string{"s5-2009"}, ids(p))
	assert.Equal(t, 111, p.Congress)
	assert.Zero(t, srv.Hits(menuPath(111, 1)))
}

func TestPlanRejectsBadOptions(t *testing.T) {
	srv := senatetest.NewServer(t)
	planner := newPlanner(t, srv)

	_, err := planner.Plan(context.Background(), Options{RollID: "bogus"})
	require.Error(t, err)
	_, err = planner.Plan(context.Background(), Options{RollID: "h5-2009"})
	require.Error(t, err)
	_, err = planner.Plan(context.Background(), Options{Congress: 111, Session: 3})
	require.Error(t, err)
}

func TestPlanIncrementalUsesCurrentSessionAndDefaultLimit(t *testing.T) {
	srv := senatetest.NewServer(t)
	srv.HandleXML(menuPath(119, 2), senatetest.MenuXML(119, 2, 45))

	now := time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)
	p, err := newPlanner(t, srv).Plan(context.Background(), Options{Now: now})
	require.NoError(t, err)

	assert.Equal(t, ModeIncremental, p.Mode)
	assert.Equal(t, 119, p.Congress)
	require.Len(t, p.IDs, DefaultLimit)
	assert.Equal(t, "s45-2026", p.IDs[0].String())
	assert.Equal(t, "s26-2026", p.IDs[DefaultLimit-1].String())
	assert.Empty(t, p.Notes)
}

func TestPlanIncrementalEarlyJanuaryBelongsToPreviousYear(t *testing.T) {
	srv := senatetest.NewServer(t)
	srv.HandleXML(menuPath(118, 2), senatetest.MenuXML(118, 2, 3))

	now := time.Date(2025, time.January, 2, 15, 0, 0, 0, time.UTC)
	p, err := newPlanner(t, srv).Plan(context.Background(), Options{Now: now, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, []string{"s3-2024", "s2-2024", "s1-2024"}, ids(p))
}

func TestPlanArchiveVisitsSessionsInReverse(t *testing.T) {
	srv := senatetest.NewServer(t)
	srv.HandleXML(menuPath(111, 1), senatetest.MenuXML(111, 1, 3))
	srv.HandleXML(menuPath(111, 2), senatetest.MenuXML(111, 2, 2))

	p, err := newPlanner(t, srv).Plan(context.Background(), Options{Congress: 111})
	require.NoError(t, err)
	assert.Equal(t, ModeArchive, p.Mode)
	assert.Equal(t, []string{"s2-2010", "s1-2010", "s3-2009", "s2-2009", "s1-2009"}, ids(p))
}

func TestPlanArchiveLimitAndSession(t *testing.T) {
	srv := senatetest.NewServer(t)
	srv.HandleXML(menuPath(111, 1), senatetest.MenuXML(111, 1, 30))

	p, err := newPlanner(t, srv).Plan(context.Background(), Options{Congress: 111, Session: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"s30-2009", "s29-2009"}, ids(p))
	assert.Zero(t, srv.Hits(menuPath(111, 2)))

	p, err = newPlanner(t, srv).Plan(context.Background(), Options{Congress: 111, Session: 1})
	require.NoError(t, err)
	assert.Len(t, p.IDs, 30)
}

func TestPlanUnavailableMenuIsANote(t *testing.T) {
	srv := senatetest.NewServer(t)
	srv.HandleXML(menuPath(111, 1), senatetest.MenuXML(111, 1, 2))
	// 111-2 is unrouted, so the fake host answers with its HTML error page.

	p, err := newPlanner(t, srv).Plan(context.Background(), Options{Congress: 111})
	require.NoError(t, err)
	assert.Equal(t, []string{"s2-2009", "s1-2009"}, ids(p))
	require.Len(t, p.Notes, 1)
	assert.Contains(t, p.Notes[0], "111-2")
	assert.Equal(t, 2, srv.Hits(menuPath(111, 2)))
}

func TestLatestRollDistinguishesEmptyFromUnavailable(t *testing.T) {
	srv := senatetest.NewServer(t)
	srv.HandleXML(menuPath(119, 1), senatetest.MenuXML(119, 1, 0))
	planner := newPlanner(t, srv)

	empty := planner.LatestRoll(context.Background(), 119, 1)
	assert.True(t, empty.Available)
	assert.Zero(t, empty.Latest)

	missing := planner.LatestRoll(context.Background(), 119, 2)
	assert.False(t, missing.Available)
	assert.Error(t, missing.Err)
}

func TestPlanIDsCarryCongressAndSession(t *testing.T) {
	srv := senatetest.NewServer(t)
	srv.HandleXML(menuPath(112, 2), senatetest.MenuXML(112, 2, 1))

	p, err := newPlanner(t, srv).Plan(context.Background(), Options{Congress: 112, Session: 2})
	require.NoError(t, err)
	require.Len(t, p.IDs, 1)
	assert.Equal(t, congress.RollID{Chamber: congress.Senate, Congress: 112, Session: 2, Year: 2012, Number: 1}, p.IDs[0])
}

func TestLatestRollDoesNotRetryMalformedMenu(t *testing.T) {
	srv := senatetest.NewServer(t)
	srv.HandleXML(menuPath(111, 1), []byte(`<?xml version="1.0"?><vote_summary><votes><vote><vote_number>five</vote_number></vote></votes></vote_summary>`))

	res := newPlanner(t, srv).LatestRoll(context.Background(), 111, 1)
	assert.False(t, res.Available)
	assert.ErrorContains(t, res.Err, `bad vote_number "five"`)
	assert.Equal(t, 1, srv.Hits(menuPath(111, 1)))
}
