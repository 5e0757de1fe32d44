package report

import (
	"fmt"
	"time"

	"github.com/civicdata/rollcall/pkg/congress"
)

// Level is the severity of a summary or one of its groups.
type Level int

const (
	LevelSuccess Level = iota
	LevelNote
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelNote:
		return "note"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText renders the level by name in JSON payloads.
func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// Group kinds, in reporting order.
const (
	GroupDownloadFailures    = "download_failures"
	GroupMissingLegislators  = "missing_legislators"
	GroupMissingBills        = "missing_bill_ids"
	GroupMissingNominations  = "missing_nomination_ids"
	GroupMissingAmendments   = "missing_amendment_ids"
	GroupDiscovery           = "discovery"
	GroupParseFailures       = "parse_failures"
	GroupPersistenceFailures = "persistence_failures"
)

// Group is one category of problems found during a run.
type Group struct {
	Kind    string `json:"kind"`
	Level   Level  `json:"level"`
	Message string `json:"message"`
	Count   int    `json:"count"`
	Items   any    `json:"items"`
}

// Summary is the single end-of-run report.
type Summary struct {
	RunID        string        `json:"run_id"`
	Level        Level         `json:"level"`
	Message      string        `json:"message"`
	Congress     int           `json:"congress"`
	Synced       int           `json:"synced"`
	NotPublished int           `json:"not_published"`
	Groups       []Group       `json:"groups,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration"`
}

// HasErrors reports whether any group is at error level.
func (s Summary) HasErrors() bool { return s.Level >= LevelError }

// successMessage is the headline when nothing needs attention.
func successMessage(synced, congressNum int) string {
	return fmt.Sprintf("Synced %d Senate roll call votes from the %s Congress", synced, congress.Ordinal(congressNum))
}
