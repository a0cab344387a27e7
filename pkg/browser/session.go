// Package browser exposes the driven-browser capability the collection
// engine consumes: open a session, navigate, read content nodes, scroll,
// measure page extent, authenticate, close. Callers depend only on the
// Session and Node interfaces, never on the automation library, so tests
// can substitute a fixture-backed double.
package browser

import "context"

// Node is one piece of page content. Lookups address stable semantic roles
// (see selectors.go), not visual position.
type Node interface {
	// Find returns the first descendant matching the selector.
	Find(selector string) (Node, bool)
	// FindAll returns every descendant matching the selector.
	FindAll(selector string) []Node
	// Attr returns the named attribute value.
	Attr(name string) (string, bool)
	// Text returns the node's visible text, trimmed.
	Text() string
}

// Session is one exclusive browsing session. It is owned by a single tag's
// collection loop and must be closed on every exit path.
type Session interface {
	// Authenticate performs the login flow with the given credentials.
	Authenticate(creds Credentials) error
	// Navigate loads the given URL and waits for the document to be ready.
	Navigate(url string) error
	// FindAll returns the currently visible nodes matching the selector.
	FindAll(selector string) ([]Node, error)
	// ScrollToEnd scrolls the page to its current bottom, prompting the
	// feed to load more content.
	ScrollToEnd() error
	// MeasureExtent returns the current page extent (scroll height), the
	// only progress signal an infinite-scroll feed offers.
	MeasureExtent() (float64, error)
	// Close releases the session. Safe to call more than once.
	Close() error
}

// Credentials is the login pair fed to Authenticate.
type Credentials struct {
	Username string
	Password string
}

// Factory opens sessions. One is passed to the orchestrator so each tag
// worker can acquire its own exclusive session.
type Factory interface {
	Open(ctx context.Context) (Session, error)
}
