package workflow

import (
	"github.com/civicdata/rollcall/pkg/temporal"
	"github.com/civicdata/rollcall/pkg/votesync/activity"
)

type Context struct {
	TemporalClient  *temporal.Client
	ActivityContext *activity.Context
}
