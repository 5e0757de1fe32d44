package senate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// defaultUserAgent identifies the syncer to the upstream host.
const defaultUserAgent = "rollcall-sync/1.0 (+https://github.com/civicdata/rollcall)"

// HTTPClient is a wrapper around an http.Client that spaces out requests and bounds each one with a timeout.
// The upstream has no published rate limit, so requests are strictly serialized with a fixed delay.
type HTTPClient struct {
	paths     Paths
	client    *http.Client
	userAgent string
	maxBody   int64

	// throttle
	mu    sync.Mutex
	delay time.Duration
	last  time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Opts is the set of options for a new HTTPClient.
type Opts struct {
	BaseURL      string
	Timeout      time.Duration
	Delay        time.Duration
	UserAgent    string
	MaxBodyBytes int64
	HTTPClient   *http.Client
}

// NewHTTPWithOpts creates a new HTTPClient with the given options.
func NewHTTPWithOpts(o Opts) *HTTPClient {
	if o.Timeout <= 0 {
		o.Timeout = 8 * time.Second
	}
	if o.Delay < 0 {
		o.Delay = 0
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = 16 << 20
	}

	client := o.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: o.Timeout}
	} else if client.Timeout == 0 {
		client.Timeout = o.Timeout
	}

	return &HTTPClient{
		paths:     NewPaths(o.BaseURL),
		client:    client,
		userAgent: o.UserAgent,
		maxBody:   o.MaxBodyBytes,
		delay:     o.Delay,
		sleep:     sleepCtx,
	}
}

// Paths returns the URL builder bound to this client's base URL.
func (c *HTTPClient) Paths() Paths { return c.paths }

// Response is a fully read upstream response.
type Response struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// throttle blocks until at least delay has passed since the previous request.
func (c *HTTPClient) throttle(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.delay > 0 && !c.last.IsZero() {
		if wait := c.delay - time.Since(c.last); wait > 0 {
			if err := c.sleep(ctx, wait); err != nil {
				return err
			}
		}
	}
	c.last = time.Now()
	return nil
}

// Get issues a GET for url and reads the whole body. Transport failures are
// returned as errors; HTTP error statuses are returned in the Response so the
// caller can decide what they mean.
func (c *HTTPClient) Get(ctx context.Context, url string) (*Response, error) {
	if err := c.throttle(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/xml, text/xml;q=0.9, */*;q=0.1")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if cerr := drainAndClose(resp.Body); cerr != nil && readErr == nil {
		readErr = cerr
	}
	if readErr != nil {
		return nil, fmt.Errorf("read %s: %w", url, readErr)
	}

	return &Response{
		URL:         url,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// VoteMenu fetches and decodes the index for a congress session.
func (c *HTTPClient) VoteMenu(ctx context.Context, congressNum, session int) (*VoteMenu, error) {
	url := c.paths.VoteMenu(congressNum, session)
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("vote menu %s: http %d", url, resp.StatusCode)
	}
	if !IsXMLContentType(resp.ContentType) {
		return nil, fmt.Errorf("vote menu %s: unexpected content type %q", url, resp.ContentType)
	}
	return DecodeVoteMenu(resp.Body)
}

// drainAndClose lets the transport reuse the connection.
func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, rc)
	return rc.Close()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
