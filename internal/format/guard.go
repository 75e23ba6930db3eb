package format

import "sync"

// Token identifies one request on one document.
type Token struct {
	Doc string
	Seq uint64
}

// Guard makes sure only the most recently issued request for a document
// applies its result. Interactive and background requests for the same
// document are otherwise unordered.
type Guard struct {
	mu      sync.Mutex
	seq     uint64
	current map[string]uint64
}

// NewGuard creates an empty guard.
func NewGuard() *Guard {
	return &Guard{current: make(map[string]uint64)}
}

// Begin issues a token for doc, superseding any earlier token for it.
func (g *Guard) Begin(doc string) Token {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	g.current[doc] = g.seq
	return Token{Doc: doc, Seq: g.seq}
}

// Current reports whether t is still the latest token for its document.
func (g *Guard) Current(t Token) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current[t.Doc] == t.Seq
}

// Commit runs apply if t is current and retires t. Apply runs under the
// guard's lock, so no newer request can be issued in between.
// It reports whether apply ran.
func (g *Guard) Commit(t Token, apply func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current[t.Doc] != t.Seq {
		return false
	}
	delete(g.current, t.Doc)
	if apply != nil {
		apply()
	}
	return true
}

// Release retires t without applying anything.
func (g *Guard) Release(t Token) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current[t.Doc] == t.Seq {
		delete(g.current, t.Doc)
	}
}

// InFlight returns the number of documents with an outstanding request.
func (g *Guard) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.current)
}
