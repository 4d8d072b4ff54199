// Package session implements the reliable per-client transport: one
// goroutine-pumped TCP connection with an ordered write queue, login,
// heartbeat, and idempotent close. Message types outside login/heartbeat
// are handed to an injected Handler so this package stays free of any
// room/scene import cycle.
package session

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/lawnmower-room/internal/tokenstore"
	"github.com/udisondev/lawnmower-room/internal/wire"
)

// State is the connection lifecycle per §4.2.
type State int32

const (
	StateConnected State = iota
	StateLoggedIn
	StateClosed
)

// CloseReason distinguishes a deliberate quit (token revoked) from a
// network-level failure (token retained for the reconnect grace window).
type CloseReason int

const (
	CloseClientRequest CloseReason = iota
	CloseNetworkError
	CloseBackpressure
	CloseProtocolError
)

// kMaxWriteQueueSize is the backpressure ceiling from §4.2.
const kMaxWriteQueueSize = 1024

const defaultWriteTimeout = 5 * time.Second

// Session is one reliable client connection.
type Session struct {
	conn   net.Conn
	remote string

	gw *Gateway

	state    atomic.Int32
	playerID atomic.Uint32
	roomID   atomic.Uint32

	mu    sync.Mutex
	token string
	name  string

	sendCh    chan []byte
	closeCh   chan struct{}
	closeOnce sync.Once

	writeTimeout time.Duration
}

func newSession(gw *Gateway, conn net.Conn) *Session {
	remote := conn.RemoteAddr().String()
	s := &Session{
		conn:         conn,
		remote:       remote,
		gw:           gw,
		sendCh:       make(chan []byte, kMaxWriteQueueSize),
		closeCh:      make(chan struct{}),
		writeTimeout: defaultWriteTimeout,
	}
	s.state.Store(int32(StateConnected))
	return s
}

// State returns the current lifecycle state (lock-free hot-path read).
func (s *Session) State() State { return State(s.state.Load()) }

// PlayerID returns the assigned player id, 0 before login/reconnect.
func (s *Session) PlayerID() uint32 { return s.playerID.Load() }

// RoomID returns the room this session is currently attached to, 0 if none.
func (s *Session) RoomID() uint32 { return s.roomID.Load() }

// SetRoomID attaches this session to a room; used by room-registry handlers.
func (s *Session) SetRoomID(roomID uint32) { s.roomID.Store(roomID) }

// Token returns the session's currently registered auth token.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Name returns the display name chosen at login.
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// Run drives the read loop until the connection closes. Blocks; call from
// a dedicated goroutine per accepted connection.
func (s *Session) Run() {
	s.gw.activeSessions.Add(1)
	defer s.gw.activeSessions.Add(-1)

	go s.writePump()
	defer s.Close(CloseNetworkError)

	r := bufio.NewReaderSize(s.conn, 8192)
	for {
		e, err := wire.ReadFrame(r)
		if err != nil {
			slog.Warn("session: frame read failed", "remote", s.remote, "error", err)
			return
		}
		s.dispatch(e)
		if s.State() == StateClosed {
			return
		}
	}
}

func (s *Session) dispatch(e wire.Envelope) {
	switch e.Type {
	case wire.MsgLogin:
		s.handleLogin(e)
	case wire.MsgHeartbeat:
		s.handleHeartbeat()
	default:
		s.gw.handler.HandleEnvelope(s, e)
	}
}

func (s *Session) handleLogin(e wire.Envelope) {
	if s.State() != StateConnected {
		_ = s.Send(wire.MsgLoginResult, wire.LoginResult{Success: false, Message: "已登录"})
		return
	}
	login, err := wire.UnmarshalLogin(e.Payload)
	if err != nil {
		slog.Warn("session: malformed login", "remote", s.remote, "error", err)
		s.Close(CloseProtocolError)
		return
	}

	playerID := s.gw.nextPlayerID.Add(1)
	token, err := tokenstore.Mint(playerID)
	if err != nil {
		slog.Warn("session: mint token failed", "error", err)
		_ = s.Send(wire.MsgLoginResult, wire.LoginResult{Success: false, Message: "内部错误"})
		return
	}
	s.gw.tokens.Register(playerID, token)

	s.playerID.Store(playerID)
	s.mu.Lock()
	s.token = token
	s.name = login.Name
	s.mu.Unlock()
	s.state.Store(int32(StateLoggedIn))

	_ = s.Send(wire.MsgLoginResult, wire.LoginResult{
		Success: true, PlayerID: playerID, SessionToken: token,
	})
}

func (s *Session) handleHeartbeat() {
	_ = s.Send(wire.MsgHeartbeatResult, wire.HeartbeatResult{
		ServerTimeMs:   time.Now().UnixMilli(),
		ActiveSessions: int32(s.gw.activeSessions.Load()),
	})
}

// AssignReconnected installs a player id/token/name onto an already
// Run-ing session, used by the reconnect handler once AttachSession and
// TryReconnectPlayer have both succeeded.
func (s *Session) AssignReconnected(playerID uint32, token, name string) {
	s.playerID.Store(playerID)
	s.mu.Lock()
	s.token = token
	s.name = name
	s.mu.Unlock()
	s.state.Store(int32(StateLoggedIn))
}

// Send marshals and enqueues a message. Non-blocking; closes the session
// on queue overflow per §4.2's backpressure rule.
func (s *Session) Send(msgType wire.MsgType, msg interface{ Marshal() []byte }) error {
	return s.SendEnvelope(wire.Envelope{Type: msgType, Payload: msg.Marshal()})
}

// SendEnvelope is Send for callers that already hold an Envelope (the
// event dispatcher and sync builder build envelopes directly).
func (s *Session) SendEnvelope(e wire.Envelope) error {
	body := wire.EncodeEnvelope(e)
	if len(body) == 0 || len(body) > wire.MaxFrameLen {
		return fmt.Errorf("session: frame length %d outside bounds", len(body))
	}
	frame := make([]byte, 4+len(body))
	frame[0] = byte(len(body) >> 24)
	frame[1] = byte(len(body) >> 16)
	frame[2] = byte(len(body) >> 8)
	frame[3] = byte(len(body))
	copy(frame[4:], body)

	select {
	case s.sendCh <- frame:
		return nil
	default:
		slog.Warn("session: write queue full, closing", "remote", s.remote, "player", s.playerID.Load())
		s.Close(CloseBackpressure)
		return fmt.Errorf("session: write queue full")
	}
}

func (s *Session) writePump() {
	bufs := make(net.Buffers, 0, 32)
	for {
		select {
		case body, ok := <-s.sendCh:
			if !ok {
				return
			}
			if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
				slog.Warn("session: set write deadline failed", "remote", s.remote, "error", err)
				return
			}
			queued := len(s.sendCh)
			if queued == 0 {
				if _, err := s.conn.Write(body); err != nil {
					slog.Warn("session: write failed", "remote", s.remote, "error", err)
					return
				}
				continue
			}

			bufs = bufs[:0]
			bufs = append(bufs, body)
			for range queued {
				bufs = append(bufs, <-s.sendCh)
			}
			if _, err := bufs.WriteTo(s.conn); err != nil {
				slog.Warn("session: batch write failed", "remote", s.remote, "error", err)
				return
			}
		case <-s.closeCh:
			return
		}
	}
}

// Close idempotently tears the session down. Token revocation only
// happens on CloseClientRequest; network errors retain the token for the
// reconnect grace window.
func (s *Session) Close(reason CloseReason) error {
	s.closeOnce.Do(func() {
		s.state.Store(int32(StateClosed))
		close(s.closeCh)
		if reason == CloseClientRequest {
			s.gw.tokens.Revoke(s.playerID.Load())
		}
		if s.gw.handler != nil {
			s.gw.handler.HandleClose(s, reason)
		}
	})
	return s.conn.Close()
}
