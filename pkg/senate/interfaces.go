package senate

import "context"

// Client captures the upstream calls used by the planner and the fetcher.
type Client interface {
	Paths() Paths
	Get(ctx context.Context, url string) (*Response, error)
	VoteMenu(ctx context.Context, congress, session int) (*VoteMenu, error)
}

var _ Client = (*HTTPClient)(nil)
