package temporal

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/client"
)

// Defaults, overridable through the environment.
const (
	DefaultNamespace = "default"
	DefaultTaskQueue = "votes"
)

// Schedule IDs
const (
	ScheduleIncrementalSync = "votes:incremental"
)

// Workflow ID patterns
const (
	// WorkflowIDSync is keyed by the run's plan, e.g. "votes:sync:111-2" or "votes:sync:s5-2009".
	WorkflowIDSync = "votes:sync:%s"
)

// SyncWorkflowID returns the workflow id for a sync keyed by key.
func SyncWorkflowID(key string) string {
	return fmt.Sprintf(WorkflowIDSync, key)
}

// GetScheduleSpec returns a schedule spec for the given interval.
func GetScheduleSpec(interval time.Duration) client.ScheduleSpec {
	return client.ScheduleSpec{Intervals: []client.ScheduleIntervalSpec{{Every: interval}}}
}
