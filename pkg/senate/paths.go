package senate

import (
	"fmt"
	"strings"

	"github.com/civicdata/rollcall/pkg/congress"
)

// DefaultBaseURL is the Senate LIS publishing host.
const DefaultBaseURL = "https://www.senate.gov"

// Upstream paths, relative to the base URL.
const (
	voteMenuPath = "/legislative/LIS/roll_call_lists/vote_menu_%d_%d.xml"
	votePath     = "/legislative/LIS/roll_call_votes/vote%d%d/vote_%d_%d_%s.xml"
	landingPath  = "/legislative/LIS/roll_call_lists/roll_call_vote_cfm.cfm?congress=%d&session=%d&vote=%s"
)

// Paths builds upstream URLs against a base host.
type Paths struct {
	BaseURL string
}

// NewPaths returns Paths for base, falling back to DefaultBaseURL.
func NewPaths(base string) Paths {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return Paths{BaseURL: base}
}

// VoteMenu is the per-session index listing every published roll call.
func (p Paths) VoteMenu(congressNum, session int) string {
	return p.BaseURL + fmt.Sprintf(voteMenuPath, congressNum, session)
}

// Vote is the XML document of a single roll call.
func (p Paths) Vote(id congress.RollID) string {
	return p.BaseURL + fmt.Sprintf(votePath, id.Congress, id.Session, id.Congress, id.Session, congress.ZeroPrefix(id.Number))
}

// Landing is the human readable page of a single roll call.
func (p Paths) Landing(id congress.RollID) string {
	return p.BaseURL + fmt.Sprintf(landingPath, id.Congress, id.Session, congress.ZeroPrefix(id.Number))
}
