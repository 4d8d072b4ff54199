// Package datagram is the unreliable UDP channel: high-rate input
// ingress and delta/full-snapshot broadcast. The teacher repo (Lineage
// II) is TCP-only and has no direct analogue; this is built in the
// teacher's concurrency idiom (a goroutine reading a net.PacketConn) with
// an endpoint table modeled on the TTL-sweep style of the teacher's
// internal/world region registry.
package datagram

import (
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/udisondev/lawnmower-room/internal/tokenstore"
	"github.com/udisondev/lawnmower-room/internal/wire"
)

// kEndpointTTL evicts silent endpoints per §5.
const kEndpointTTL = 10 * time.Second

// InputHandler receives a player's parsed input once the endpoint table
// has been updated and the room lookup has succeeded.
type InputHandler interface {
	// RoomForPlayer returns the room id the player currently belongs to,
	// or (0, false) if the player isn't tracked by the room registry.
	RoomForPlayer(playerID uint32) (uint32, bool)
	// HandlePlayerInput forwards a parsed input to the scene engine.
	HandlePlayerInput(roomID uint32, in wire.PlayerInput)
}

type endpoint struct {
	addr     net.Addr
	roomID   uint32
	lastSeen time.Time
}

// Server is one UDP listener serving every room in the process.
type Server struct {
	conn    net.PacketConn
	tokens  *tokenstore.Store
	handler InputHandler

	mu        sync.RWMutex
	endpoints map[uint32]endpoint // player id -> endpoint
}

// NewServer wraps an already-bound net.PacketConn.
func NewServer(conn net.PacketConn, tokens *tokenstore.Store, handler InputHandler) *Server {
	return &Server{
		conn:      conn,
		tokens:    tokens,
		handler:   handler,
		endpoints: make(map[uint32]endpoint),
	}
}

// Run reads datagrams until conn is closed or an unrecoverable read error
// occurs. Intended to run on its own goroutine, supervised by errgroup.
func (s *Server) Run() error {
	buf := make([]byte, 2048)
	for {
		n, addr, err := s.conn.ReadFrom(buf)
		if err != nil {
			return err
		}
		s.handleDatagram(buf[:n], addr)
	}
}

func (s *Server) handleDatagram(data []byte, addr net.Addr) {
	e, err := wire.DecodeDatagram(data)
	if err != nil {
		return // silent drop per §4.4 step 1
	}
	if e.Type != wire.MsgPlayerInput {
		return
	}
	in, err := wire.UnmarshalPlayerInput(e.Payload)
	if err != nil {
		return
	}
	if in.PlayerID == 0 || !s.tokens.Verify(in.PlayerID, in.Token) {
		return // silent drop per §4.4 step 2, no endpoint entry gained
	}

	roomID, ok := s.handler.RoomForPlayer(in.PlayerID)
	if !ok {
		return // silent drop per §4.4 step 3
	}

	s.mu.Lock()
	s.endpoints[in.PlayerID] = endpoint{addr: addr, roomID: roomID, lastSeen: time.Now()}
	s.mu.Unlock()

	s.handler.HandlePlayerInput(roomID, in)
}

// sweep drops endpoints whose last input predates now-TTL. Called from
// Broadcast* before computing the recipient set.
func (s *Server) sweep() {
	cutoff := time.Now().Add(-kEndpointTTL)
	s.mu.Lock()
	for id, ep := range s.endpoints {
		if ep.lastSeen.Before(cutoff) {
			delete(s.endpoints, id)
		}
	}
	s.mu.Unlock()
}

func (s *Server) recipientsFor(roomID uint32) []net.Addr {
	s.sweep()
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]net.Addr, 0, len(s.endpoints))
	for _, ep := range s.endpoints {
		if ep.roomID == roomID {
			out = append(out, ep.addr)
		}
	}
	return out
}

// BroadcastState sends a full/forced snapshot envelope to every known
// endpoint for roomID, returning the recipient count so the sync builder
// can decide whether a reliable fallback is required.
func (s *Server) BroadcastState(roomID uint32, e wire.Envelope) int {
	return s.broadcast(roomID, e)
}

// BroadcastDeltaState sends a delta envelope to every known endpoint for
// roomID, returning the recipient count.
func (s *Server) BroadcastDeltaState(roomID uint32, e wire.Envelope) int {
	return s.broadcast(roomID, e)
}

func (s *Server) broadcast(roomID uint32, e wire.Envelope) int {
	recipients := s.recipientsFor(roomID)
	if len(recipients) == 0 {
		return 0
	}
	body := wire.EncodeDatagram(e)
	sent := 0
	for _, addr := range recipients {
		if _, err := s.conn.WriteTo(body, addr); err != nil {
			slog.Warn("datagram: send failed", "room", roomID, "addr", addr, "error", err)
			continue
		}
		sent++
	}
	return sent
}

// Forget removes a player's endpoint entry, used when a player leaves a
// room or disconnects so stale input routing can't resurrect them.
func (s *Server) Forget(playerID uint32) {
	s.mu.Lock()
	delete(s.endpoints, playerID)
	s.mu.Unlock()
}
