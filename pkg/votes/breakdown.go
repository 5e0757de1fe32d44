package votes

import votemodels "github.com/civicdata/rollcall/pkg/db/models/votes"

// LivePair is the ballot a senator casts when paired with an absent colleague.
// It counts as Present.
const LivePair = "Present, Giving Live Pair"

// NormalizeBallot folds upstream ballot spellings into the stored vote values.
func NormalizeBallot(cast string) string {
	if cast == LivePair {
		return "Present"
	}
	return cast
}

// Breakdown tallies voters overall and per party. The totals always sum to len(voters).
func Breakdown(voters map[string]votemodels.Voter) votemodels.Breakdown {
	b := votemodels.Breakdown{
		Total: map[string]int{},
		Party: map[string]map[string]int{},
	}
	for _, v := range voters {
		b.Total[v.Vote]++
		party := v.Voter.Party
		if b.Party[party] == nil {
			b.Party[party] = map[string]int{}
		}
		b.Party[party][v.Vote]++
	}
	return b
}
