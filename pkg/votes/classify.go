package votes

import (
	"regexp"
	"strings"

	votemodels "github.com/civicdata/rollcall/pkg/db/models/votes"
)

type classification struct {
	pattern  *regexp.Regexp
	voteType string
}

// classifications is evaluated in order; the first match wins. Cloture and
// procedural motions are checked before the subject of the motion so that
// "Motion to Table Amendment No. 3" is procedural and "Cloture on the
// Nomination" is cloture.
var classifications = []classification{
	{regexp.MustCompile(`\bcloture\b`), votemodels.TypeCloture},
	{regexp.MustCompile(`\bmotion to (table|proceed|adjourn|instruct|recommit|reconsider|waive|postpone|commit|discharge|concur|suspend|refer|disagree)\b`), votemodels.TypeProcedural},
	{regexp.MustCompile(`\b(quorum|point of order|appeal the ruling|ruling of the chair|decision of the chair|motion to request attendance|question of order)\b`), votemodels.TypeProcedural},
	{regexp.MustCompile(`^on the motion\b`), votemodels.TypeProcedural},
	{regexp.MustCompile(`\b(nomination|confirmation)\b`), votemodels.TypeNomination},
	{regexp.MustCompile(`\bamendment\b`), votemodels.TypeAmendment},
	{regexp.MustCompile(`\b(passage|on the bill|on the joint resolution|on the concurrent resolution|on the resolution|resolution of ratification|conference report|veto|objections of the president)\b`), votemodels.TypePassage},
}

// Classify maps a roll type and question to a canonical vote type. The roll
// type decides when it is recognized; the question text is the fallback.
func Classify(rollType, question string) string {
	if t := classify(rollType); t != votemodels.TypeOther {
		return t
	}
	return classify(question)
}

func classify(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	if s == "" {
		return votemodels.TypeOther
	}
	for _, c := range classifications {
		if c.pattern.MatchString(s) {
			return c.voteType
		}
	}
	return votemodels.TypeOther
}
