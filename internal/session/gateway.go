package session

import (
	"net"
	"sync/atomic"

	"github.com/udisondev/lawnmower-room/internal/tokenstore"
)

// Gateway owns the process-wide player id counter and active-session
// count shared by every accepted connection, and routes non-auth
// envelopes to Handler. One Gateway serves the whole process.
type Gateway struct {
	tokens  *tokenstore.Store
	handler Handler

	nextPlayerID   atomic.Uint32
	activeSessions atomic.Int64
}

// NewGateway builds a Gateway backed by tokens and routing to handler.
func NewGateway(tokens *tokenstore.Store, handler Handler) *Gateway {
	return &Gateway{tokens: tokens, handler: handler}
}

// ActiveSessions returns the current count of sessions mid-Run.
func (g *Gateway) ActiveSessions() int64 { return g.activeSessions.Load() }

// Accept wraps conn in a Session. Call Run on the result from its own
// goroutine; Accept itself does no I/O.
func (g *Gateway) Accept(conn net.Conn) *Session {
	return newSession(g, conn)
}
