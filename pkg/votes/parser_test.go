package votes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/civicdata/rollcall/pkg/congress"
	votemodels "github.com/civicdata/rollcall/pkg/db/models/votes"
	"github.com/civicdata/rollcall/pkg/report"
	"github.com/civicdata/rollcall/pkg/senate"
	"github.com/civicdata/rollcall/pkg/senate/senatetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeResolver struct {
	legislators map[string]votemodels.Legislator
	bills       map[string]votemodels.Bill
	amendments  map[string]votemodels.Amendment
	nominations map[string]votemodels.Nomination
	err         error

	amendmentCalls int
}

func (f *fakeResolver) Legislator(_ context.Context, lisID string) (*votemodels.Legislator, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	l, ok := f.legislators[lisID]
	return &l, ok, nil
}

func (f *fakeResolver) Bill(_ context.Context, id string) (*votemodels.Bill, bool, error) {
	b, ok := f.bills[id]
	return &b, ok, nil
}

func (f *fakeResolver) Amendment(_ context.Context, id string) (*votemodels.Amendment, bool, error) {
	f.amendmentCalls++
	a, ok := f.amendments[id]
	return &a, ok, nil
}

func (f *fakeResolver) Nomination(_ context.Context, id string) (*votemodels.Nomination, bool, error) {
	n, ok := f.nominations[id]
	return &n, ok, nil
}

// resolverFor knows every senator in members.
func resolverFor(members []senatetest.Member) *fakeResolver {
	r := &fakeResolver{
		legislators: map[string]votemodels.Legislator{},
		bills:       map[string]votemodels.Bill{},
		amendments:  map[string]votemodels.Amendment{},
		nominations: map[string]votemodels.Nomination{},
	}
	for _, m := range members {
		r.legislators[m.LisID] = votemodels.Legislator{
			BioguideID: "B" + m.LisID,
			LisID:      m.LisID,
			LastName:   m.Last,
			Party:      m.Party,
			State:      m.State,
			Chamber:    "senate",
			InOffice:   true,
		}
	}
	return r
}

func s5(t *testing.T) congress.RollID {
	t.Helper()
	id, err := congress.NewRollID(5, 111, 1)
	require.NoError(t, err)
	return id
}

func newParser(t *testing.T, r Resolver) *Parser {
	return NewParser(r, senate.NewPaths(""), zaptest.NewLogger(t))
}

func newTestOutcome() *report.Outcome {
	return report.NewOutcome(111, time.Now())
}

func TestParsePassageVote(t *testing.T) {
	v := senatetest.PassageVote(10)
	r := resolverFor(v.Members)
	r.bills["s181-111"] = votemodels.Bill{BillID: "s181-111", BillType: "s", Number: 181, Congress: 111}
	outcome := newTestOutcome()

	a, err := newParser(t, r).Parse(context.Background(), v.XML(), s5(t), outcome)
	require.NoError(t, err)

	assert.Equal(t, "s5-2009", a.RollID.String())
	assert.Equal(t, votemodels.TypePassage, a.VoteType)
	assert.Equal(t, "On Passage of the Bill", a.RollType)
	assert.Equal(t, "On Passage of the Bill (S. 181)", a.Question)
	assert.Equal(t, "Bill Passed", a.Result)
	assert.Equal(t, "1/2", a.Required)
	assert.Equal(t, time.Date(2009, time.January, 15, 17, 24, 0, 0, time.UTC), a.VotedAt)
	assert.Equal(t, "https://www.senate.gov/legislative/LIS/roll_call_votes/vote1111/vote_111_1_00005.xml", a.Source)
	assert.Equal(t, "https://www.senate.gov/legislative/LIS/roll_call_lists/roll_call_vote_cfm.cfm?congress=111&session=1&vote=00005", a.URL)

	assert.Equal(t, "s181-111", a.BillID)
	require.NotNil(t, a.Bill)
	assert.Equal(t, 181, a.Bill.Number)

	require.Len(t, a.VoterIDs, 10)
	assert.Equal(t, "Yea", a.VoterIDs["BS001"])
	assert.Equal(t, "Nay", a.VoterIDs["BS002"])
	assert.Equal(t, 5, a.Breakdown.Total["Yea"])
	assert.Equal(t, 5, a.Breakdown.Total["Nay"])
	assert.Equal(t, map[string]int{"Yea": 5}, a.Breakdown.Party["D"])

	assert.Empty(t, outcome.MissingLegislators)
	assert.Empty(t, outcome.MissingBills)
}

func TestParseVoterMapsShareKeys(t *testing.T) {
	v := senatetest.PassageVote(20)
	r := resolverFor(v.Members[:15])
	outcome := newTestOutcome()

	a, err := newParser(t, r).Parse(context.Background(), v.XML(), s5(t), outcome)
	require.NoError(t, err)

	require.Len(t, a.VoterIDs, 15)
	require.Len(t, a.Voters, 15)
	for id, vote := range a.VoterIDs {
		voter, ok := a.Voters[id]
		require.True(t, ok, id)
		assert.Equal(t, vote, voter.Vote)
		assert.Equal(t, id, voter.Voter.BioguideID)
	}
	sum := 0
	for _, n := range a.Breakdown.Total {
		sum += n
	}
	assert.Equal(t, len(a.Voters), sum)
}

func TestParseLivePairCountsAsPresent(t *testing.T) {
	v := senatetest.PassageVote(4)
	v.Members[0].Cast = LivePair
	r := resolverFor(v.Members)

	a, err := newParser(t, r).Parse(context.Background(), v.XML(), s5(t), newTestOutcome())
	require.NoError(t, err)

	assert.Equal(t, "Present", a.VoterIDs["BS001"])
	assert.Equal(t, "Present", a.Voters["BS001"].Vote)
	assert.Equal(t, 1, a.Breakdown.Total["Present"])
	assert.NotContains(t, a.Breakdown.Total, LivePair)
}

func TestParseDegradedEnrichment(t *testing.T) {
	v := senatetest.PassageVote(3)
	v.AmendmentNumber = "S.Amdt. 21"
	r := resolverFor(v.Members[:2])
	outcome := newTestOutcome()

	a, err := newParser(t, r).Parse(context.Background(), v.XML(), s5(t), outcome)
	require.NoError(t, err)

	assert.Empty(t, a.BillID)
	assert.Nil(t, a.Bill)
	assert.Empty(t, a.AmendmentID)
	assert.Len(t, a.Voters, 2)

	require.Len(t, outcome.MissingLegislators, 1)
	assert.Equal(t, report.MissingLegislator{RollID: "s5-2009", LisID: "S003", MemberFull: "Senator003 (D-AR)", Number: 5}, outcome.MissingLegislators[0])
	assert.Equal(t, []report.MissingReference{{RollID: "s5-2009", ID: "s181-111"}}, outcome.MissingBills)
	assert.Equal(t, []report.MissingReference{{RollID: "s5-2009", ID: "samdt21-111"}}, outcome.MissingAmendments)
}

func TestParseAmendmentNeedsBill(t *testing.T) {
	v := senatetest.PassageVote(2)
	v.DocumentName = "Treaty Doc. 110-17"
	v.AmendmentNumber = "S.Amdt. 21"
	r := resolverFor(v.Members)
	r.amendments["samdt21-111"] = votemodels.Amendment{AmendmentID: "samdt21-111"}
	outcome := newTestOutcome()

	a, err := newParser(t, r).Parse(context.Background(), v.XML(), s5(t), outcome)
	require.NoError(t, err)
	assert.Empty(t, a.AmendmentID)
	assert.Zero(t, r.amendmentCalls)
	assert.Empty(t, outcome.MissingAmendments)
}

func TestParseAmendmentResolved(t *testing.T) {
	v := senatetest.PassageVote(2)
	v.RollType = "On the Amendment"
	v.QuestionText = "On the Amendment S.Amdt. 21"
	v.AmendmentNumber = "S.Amdt. 21"
	r := resolverFor(v.Members)
	r.bills["s181-111"] = votemodels.Bill{BillID: "s181-111"}
	r.amendments["samdt21-111"] = votemodels.Amendment{AmendmentID: "samdt21-111", Purpose: "To improve the bill."}

	a, err := newParser(t, r).Parse(context.Background(), v.XML(), s5(t), newTestOutcome())
	require.NoError(t, err)
	assert.Equal(t, votemodels.TypeAmendment, a.VoteType)
	assert.Equal(t, "samdt21-111", a.AmendmentID)
	require.NotNil(t, a.Amendment)
	assert.Equal(t, "To improve the bill.", a.Amendment.Purpose)
}

func TestParseNomination(t *testing.T) {
	v := senatetest.PassageVote(2)
	v.RollType = "On the Nomination"
	v.QuestionText = "Confirmation Jane Doe, of Ohio, to be Secretary"
	v.DocumentType = "PN"
	v.DocumentName = "PN64-2"
	r := resolverFor(v.Members)
	outcome := newTestOutcome()

	a, err := newParser(t, r).Parse(context.Background(), v.XML(), s5(t), outcome)
	require.NoError(t, err)
	assert.Equal(t, votemodels.TypeNomination, a.VoteType)
	assert.Empty(t, a.NominationID)
	assert.Equal(t, []report.MissingReference{{RollID: "s5-2009", ID: "PN64-02-111"}}, outcome.MissingNominations)

	r.nominations["PN64-02-111"] = votemodels.Nomination{NominationID: "PN64-02-111", Organization: "Department of State"}
	a, err = newParser(t, r).Parse(context.Background(), v.XML(), s5(t), newTestOutcome())
	require.NoError(t, err)
	assert.Equal(t, "PN64-02-111", a.NominationID)
	assert.Equal(t, "Department of State", a.Nomination.Organization)
}

func TestParseErrors(t *testing.T) {
	r := resolverFor(nil)
	p := newParser(t, r)
	full := senatetest.PassageVote(2).XML()

	tests := []struct {
		name string
		doc  []byte
		id   int
	}{
		{"truncated", full[:len(full)/2], 5},
		{"missing vote_number", []byte(`<roll_call_vote><vote_date>January 15, 2009, 12:24 PM</vote_date></roll_call_vote>`), 5},
		{"missing vote_date", []byte(`<roll_call_vote><vote_number>5</vote_number></roll_call_vote>`), 5},
		{"bad vote_date", []byte(`<roll_call_vote><vote_number>5</vote_number><vote_date>sometime</vote_date></roll_call_vote>`), 5},
		{"wrong vote", full, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := congress.NewRollID(tt.id, 111, 1)
			require.NoError(t, err)
			_, err = p.Parse(context.Background(), tt.doc, id, newTestOutcome())
			var pErr *ParseError
			require.True(t, errors.As(err, &pErr), "got %v", err)
			assert.Equal(t, id.String(), pErr.RollID)
		})
	}
}

func TestParseLookupFailureIsNotAParseError(t *testing.T) {
	r := resolverFor(nil)
	r.err = errors.New("corpus unavailable")

	_, err := newParser(t, r).Parse(context.Background(), senatetest.PassageVote(2).XML(), s5(t), newTestOutcome())
	require.ErrorContains(t, err, "corpus unavailable")
	var pErr *ParseError
	assert.False(t, errors.As(err, &pErr))
}

func TestParseVoteDate(t *testing.T) {
	got, err := ParseVoteDate("January 15, 2009,  12:24 PM")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2009, time.January, 15, 17, 24, 0, 0, time.UTC), got)

	got, err = ParseVoteDate("July 7, 2010, 9:05 AM")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2010, time.July, 7, 13, 5, 0, 0, time.UTC), got)

	_, err = ParseVoteDate("not a date")
	require.Error(t, err)
}
