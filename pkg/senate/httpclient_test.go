package senate

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/civicdata/rollcall/pkg/senate/senatetest"
	"github.com/stretchr/testify/require"
)

func TestHTTPClientVoteMenu(t *testing.T) {
	srv := senatetest.NewServer(t)
	srv.HandleXML("/legislative/LIS/roll_call_lists/vote_menu_111_1.xml", senatetest.MenuXML(111, 1, 12))

	c := NewHTTPWithOpts(Opts{BaseURL: srv.URL})
	menu, err := c.VoteMenu(context.Background(), 111, 1)
	require.NoError(t, err)
	latest, err := menu.Latest()
	require.NoError(t, err)
	require.Equal(t, 12, latest)
}

func TestHTTPClientVoteMenuRejectsHTML(t *testing.T) {
	srv := senatetest.NewServer(t)

	c := NewHTTPWithOpts(Opts{BaseURL: srv.URL})
	_, err := c.VoteMenu(context.Background(), 111, 2)
	require.Error(t, err)
}

func TestHTTPClientVoteMenuHTTPError(t *testing.T) {
	srv := senatetest.NewServer(t)
	srv.Handle("/legislative/LIS/roll_call_lists/vote_menu_111_1.xml", senatetest.Route{Status: http.StatusBadGateway, ContentType: "text/xml"})

	c := NewHTTPWithOpts(Opts{BaseURL: srv.URL})
	_, err := c.VoteMenu(context.Background(), 111, 1)
	require.ErrorContains(t, err, "http 502")
}

func TestHTTPClientGetReturnsStatusAndContentType(t *testing.T) {
	srv := senatetest.NewServer(t)
	srv.Handle("/missing.xml", senatetest.Route{Status: http.StatusNotFound, ContentType: "text/html", Bodies: [][]byte{[]byte("nope")}})

	c := NewHTTPWithOpts(Opts{BaseURL: srv.URL})
	resp, err := c.Get(context.Background(), srv.URL+"/missing.xml")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "text/html", resp.ContentType)
	require.Equal(t, []byte("nope"), resp.Body)
}

func TestHTTPClientThrottlesRequests(t *testing.T) {
	srv := senatetest.NewServer(t)
	c := NewHTTPWithOpts(Opts{BaseURL: srv.URL, Delay: 50 * time.Millisecond})

	var slept []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	for i := 0; i < 3; i++ {
		_, err := c.Get(context.Background(), srv.URL+"/x")
		require.NoError(t, err)
	}
	require.Len(t, slept, 2)
	for _, d := range slept {
		require.Greater(t, d, time.Duration(0))
		require.LessOrEqual(t, d, 50*time.Millisecond)
	}
}

func TestHTTPClientThrottleHonorsContext(t *testing.T) {
	srv := senatetest.NewServer(t)
	c := NewHTTPWithOpts(Opts{BaseURL: srv.URL, Delay: time.Hour})

	_, err := c.Get(context.Background(), srv.URL+"/x")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Get(ctx, srv.URL+"/x")
	require.ErrorIs(t, err, context.Canceled)
}
