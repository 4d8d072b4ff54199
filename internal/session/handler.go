package session

import "github.com/udisondev/lawnmower-room/internal/wire"

// Handler receives every envelope the Gateway doesn't handle itself
// (everything but Login/Heartbeat) and is notified when a session closes,
// so the room registry / scene engine can mark the player disconnected
// without this package importing either.
type Handler interface {
	HandleEnvelope(s *Session, e wire.Envelope)
	HandleClose(s *Session, reason CloseReason)
}
