package votes

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/civicdata/rollcall/pkg/congress"
	votemodels "github.com/civicdata/rollcall/pkg/db/models/votes"
	"github.com/civicdata/rollcall/pkg/report"
	"github.com/civicdata/rollcall/pkg/senate"
	"go.uber.org/zap"
)

// Upstream vote_date layouts, after whitespace is collapsed.
var voteDateLayouts = []string{
	"January 2, 2006, 3:04 PM",
	"January 2, 2006 3:04 PM",
	"January 2, 2006",
}

// ParseError means a document could not be turned into attributes. Only the
// roll it belongs to is skipped.
type ParseError struct {
	RollID string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %s: %v", e.RollID, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse %s: %s", e.RollID, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Resolver is the entity lookup the parser depends on.
type Resolver interface {
	Legislator(ctx context.Context, lisID string) (*votemodels.Legislator, bool, error)
	Bill(ctx context.Context, billID string) (*votemodels.Bill, bool, error)
	Amendment(ctx context.Context, amendmentID string) (*votemodels.Amendment, bool, error)
	Nomination(ctx context.Context, nominationID string) (*votemodels.Nomination, bool, error)
}

// Parser turns raw roll call documents into Attributes.
type Parser struct {
	resolver Resolver
	paths    senate.Paths
	logger   *zap.Logger
}

// NewParser returns a Parser that builds source URLs with paths.
func NewParser(resolver Resolver, paths senate.Paths, logger *zap.Logger) *Parser {
	return &Parser{resolver: resolver, paths: paths, logger: logger}
}

// Parse decodes doc, resolves its references and records every miss on
// outcome. Missing references never fail the parse; malformed documents
// return a *ParseError and lookup failures a wrapped error.
func (p *Parser) Parse(ctx context.Context, doc []byte, id congress.RollID, outcome *report.Outcome) (Attributes, error) {
	rollID := id.String()
	v, err := senate.DecodeRollCallVote(doc)
	if err != nil {
		return Attributes{}, &ParseError{RollID: rollID, Reason: "malformed document", Err: err}
	}

	rawNumber := strings.TrimSpace(v.VoteNumber)
	if rawNumber == "" {
		return Attributes{}, &ParseError{RollID: rollID, Reason: "missing vote_number"}
	}
	number, err := strconv.Atoi(rawNumber)
	if err != nil {
		return Attributes{}, &ParseError{RollID: rollID, Reason: "bad vote_number", Err: err}
	}
	if number != id.Number {
		return Attributes{}, &ParseError{RollID: rollID, Reason: fmt.Sprintf("document is vote %d", number)}
	}

	rawDate := strings.TrimSpace(v.VoteDate)
	if rawDate == "" {
		return Attributes{}, &ParseError{RollID: rollID, Reason: "missing vote_date"}
	}
	votedAt, err := ParseVoteDate(rawDate)
	if err != nil {
		return Attributes{}, &ParseError{RollID: rollID, Reason: "bad vote_date", Err: err}
	}

	p.logger.Debug("Saving vote information", zap.String("roll_id", rollID))

	rollType := strings.TrimSpace(v.Question)
	question := strings.TrimSpace(v.VoteQuestionText)

	b := NewBuilder(id).
		WithText(rollType, question, strings.TrimSpace(v.VoteResult), strings.TrimSpace(v.MajorityRequirement)).
		WithVoteType(Classify(rollType, question)).
		WithVotedAt(votedAt).
		WithSource(p.paths.Vote(id), p.paths.Landing(id))

	for _, m := range v.Members {
		vote := NormalizeBallot(strings.TrimSpace(m.VoteCast))
		lisID := strings.TrimSpace(m.LisMemberID)
		legislator, found, err := p.resolver.Legislator(ctx, lisID)
		if err != nil {
			return Attributes{}, err
		}
		if !found {
			outcome.AddMissingLegislator(report.MissingLegislator{
				RollID:     rollID,
				LisID:      lisID,
				MemberFull: strings.TrimSpace(m.MemberFull),
				Number:     number,
			})
			continue
		}
		b = b.WithVoter(legislator.BioguideID, vote, *legislator)
	}

	billID := BillID(v, id.Congress)
	if billID != "" {
		bill, found, err := p.resolver.Bill(ctx, billID)
		if err != nil {
			return Attributes{}, err
		}
		if found {
			b = b.WithBill(billID, bill)
		} else {
			outcome.AddMissingBill(rollID, billID)
		}

		// Amendments are only looked up for votes on a known measure.
		if amendmentID := AmendmentID(v, id.Congress); amendmentID != "" {
			amendment, found, err := p.resolver.Amendment(ctx, amendmentID)
			if err != nil {
				return Attributes{}, err
			}
			if found {
				b = b.WithAmendment(amendmentID, amendment)
			} else {
				outcome.AddMissingAmendment(rollID, amendmentID)
			}
		}
	}

	if nominationID := NominationID(v, id.Congress); nominationID != "" {
		nomination, found, err := p.resolver.Nomination(ctx, nominationID)
		if err != nil {
			return Attributes{}, err
		}
		if found {
			b = b.WithNomination(nominationID, nomination)
		} else {
			outcome.AddMissingNomination(rollID, nominationID)
		}
	}

	return b.Build(), nil
}

// ParseVoteDate reads an upstream vote_date in US Eastern time and returns it in UTC.
func ParseVoteDate(raw string) (time.Time, error) {
	s := strings.Join(strings.Fields(raw), " ")
	var lastErr error
	for _, layout := range voteDateLayouts {
		t, err := time.ParseInLocation(layout, s, congress.Eastern())
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
