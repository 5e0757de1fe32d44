package votes

import (
	"maps"
	"time"

	"github.com/civicdata/rollcall/pkg/congress"
	votemodels "github.com/civicdata/rollcall/pkg/db/models/votes"
)

// Attributes is the canonical attribute set of one roll call, ready to be
// persisted. Build it with a Builder.
type Attributes struct {
	RollID   congress.RollID
	VoteType string

	RollType string
	Question string
	Result   string
	Required string
	VotedAt  time.Time

	VoterIDs  map[string]string
	Voters    map[string]votemodels.Voter
	Breakdown votemodels.Breakdown

	Source string
	URL    string

	BillID       string
	Bill         *votemodels.Bill
	AmendmentID  string
	Amendment    *votemodels.Amendment
	NominationID string
	Nomination   *votemodels.Nomination
}

// Builder assembles Attributes. Every With method returns a new Builder and
// leaves the receiver untouched.
type Builder struct {
	a Attributes
}

// NewBuilder starts attributes for id.
func NewBuilder(id congress.RollID) Builder {
	return Builder{a: Attributes{RollID: id, VoteType: votemodels.TypeOther}}
}

// WithText sets the verbatim roll type, question, result and required majority.
func (b Builder) WithText(rollType, question, result, required string) Builder {
	b.a.RollType, b.a.Question, b.a.Result, b.a.Required = rollType, question, result, required
	return b
}

func (b Builder) WithVoteType(voteType string) Builder {
	b.a.VoteType = voteType
	return b
}

func (b Builder) WithVotedAt(t time.Time) Builder {
	b.a.VotedAt = t.UTC()
	return b
}

// WithVoter adds one resolved ballot keyed by bioguide id.
func (b Builder) WithVoter(bioguideID, vote string, legislator votemodels.Legislator) Builder {
	ids := maps.Clone(b.a.VoterIDs)
	if ids == nil {
		ids = map[string]string{}
	}
	voters := maps.Clone(b.a.Voters)
	if voters == nil {
		voters = map[string]votemodels.Voter{}
	}
	ids[bioguideID] = vote
	voters[bioguideID] = votemodels.Voter{Vote: vote, Voter: legislator}
	b.a.VoterIDs, b.a.Voters = ids, voters
	return b
}

func (b Builder) WithSource(source, landing string) Builder {
	b.a.Source, b.a.URL = source, landing
	return b
}

func (b Builder) WithBill(id string, bill *votemodels.Bill) Builder {
	b.a.BillID, b.a.Bill = id, bill
	return b
}

func (b Builder) WithAmendment(id string, amendment *votemodels.Amendment) Builder {
	b.a.AmendmentID, b.a.Amendment = id, amendment
	return b
}

func (b Builder) WithNomination(id string, nomination *votemodels.Nomination) Builder {
	b.a.NominationID, b.a.Nomination = id, nomination
	return b
}

// Build returns the attributes with the breakdown computed from the voters.
func (b Builder) Build() Attributes {
	a := b.a
	a.VoterIDs = maps.Clone(a.VoterIDs)
	if a.VoterIDs == nil {
		a.VoterIDs = map[string]string{}
	}
	a.Voters = maps.Clone(a.Voters)
	if a.Voters == nil {
		a.Voters = map[string]votemodels.Voter{}
	}
	a.Breakdown = Breakdown(a.Voters)
	return a
}

// Record converts attributes into a storable vote. Bookkeeping timestamps are
// left to the store.
func (a Attributes) Record() *votemodels.Vote {
	return &votemodels.Vote{
		RollID:       a.RollID.String(),
		VoteType:     a.VoteType,
		Chamber:      string(a.RollID.Chamber),
		Year:         a.RollID.Year,
		Number:       a.RollID.Number,
		Congress:     a.RollID.Congress,
		Session:      a.RollID.Session,
		RollType:     a.RollType,
		Question:     a.Question,
		Result:       a.Result,
		Required:     a.Required,
		VotedAt:      a.VotedAt,
		VoterIDs:     maps.Clone(a.VoterIDs),
		Voters:       maps.Clone(a.Voters),
		Breakdown:    a.Breakdown,
		Source:       a.Source,
		URL:          a.URL,
		BillID:       a.BillID,
		Bill:         a.Bill,
		AmendmentID:  a.AmendmentID,
		Amendment:    a.Amendment,
		NominationID: a.NominationID,
		Nomination:   a.Nomination,
	}
}
