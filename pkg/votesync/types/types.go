package types

import (
	"time"

	"github.com/civicdata/rollcall/pkg/report"
)

// SyncInput is the input for the SyncVotesWorkflow. It mirrors the one-shot
// command's flags.
type SyncInput struct {
	RollID   string `json:"rollId,omitempty"`
	Congress int    `json:"congress,omitempty"`
	Session  int    `json:"session,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Force    bool   `json:"force,omitempty"`
	Debug    bool   `json:"debug,omitempty"`
}

// PlanOutput is the plan resolved by the PlanRolls activity. Run identity is
// minted there so workflow code stays deterministic.
type PlanOutput struct {
	RunID     string    `json:"runId"`
	StartedAt time.Time `json:"startedAt"`
	Mode      string    `json:"mode"`
	Congress  int       `json:"congress"`
	RollIDs   []string  `json:"rollIds"`
	Notes     []string  `json:"notes,omitempty"`
}

type SyncRollInput struct {
	RunID     string    `json:"runId"`
	StartedAt time.Time `json:"startedAt"`
	RollID    string    `json:"rollId"`
	Force     bool      `json:"force,omitempty"`
	Debug     bool      `json:"debug,omitempty"`
}

// SyncRollOutput carries what one roll added to the run's outcome.
type SyncRollOutput struct {
	Outcome    *report.Outcome `json:"outcome"`
	DurationMs float64         `json:"durationMs"`
}

type ReportInput struct {
	Mode    string          `json:"mode"`
	Outcome *report.Outcome `json:"outcome"`
}

// SyncOutput is the workflow result, a flat view of the summary.
type SyncOutput struct {
	RunID               string `json:"runId"`
	Level               string `json:"level"`
	Message             string `json:"message"`
	Congress            int    `json:"congress"`
	Synced              int    `json:"synced"`
	NotPublished        int    `json:"notPublished"`
	PersistenceFailures int    `json:"persistenceFailures"`
}
