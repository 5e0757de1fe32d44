package senatetest

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Route is a canned upstream response. Bodies are served in order; the last
// one repeats once the list is exhausted. Statuses, when set, override Status
// per request the same way.
type Route struct {
	Status      int
	Statuses    []int
	ContentType string
	Bodies      [][]byte
}

// Server is a fake upstream host.
type Server struct {
	*httptest.Server

	mu     sync.Mutex
	routes map[string]*Route
	hits   map[string]int
}

// NewServer starts a fake upstream closed at test cleanup. Unknown paths get
// the HTML "not found" page the real host serves.
func NewServer(t *testing.T) *Server {
	t.Helper()
	s := &Server{routes: map[string]*Route{}, hits: map[string]int{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Handle registers a route for an exact request path.
func (s *Server) Handle(path string, r Route) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.Status == 0 {
		r.Status = http.StatusOK
	}
	s.routes[path] = &r
}

// HandleXML serves body as text/xml.
func (s *Server) HandleXML(path string, bodies ...[]byte) {
	s.Handle(path, Route{ContentType: "text/xml", Bodies: bodies})
}

// Hits returns how many times path was requested.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	n := s.hits[r.URL.Path]
	route, ok := s.routes[r.URL.Path]
	s.mu.Unlock()

	if !ok {
		w.Header().Set("Content-Type", "text/html; charset=UTF-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body>Page not found</body></html>"))
		return
	}

	var body []byte
	if len(route.Bodies) > 0 {
		body = route.Bodies[nth(n, len(route.Bodies))]
	}
	status := route.Status
	if len(route.Statuses) > 0 {
		status = route.Statuses[nth(n, len(route.Statuses))]
	}
	if route.ContentType != "" {
		w.Header().Set("Content-Type", route.ContentType)
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// nth maps the n-th hit (1-based) onto a list of size, repeating the last entry.
func nth(n, size int) int {
	return min(n, size) - 1
}
