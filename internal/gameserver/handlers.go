package gameserver

import (
	"log/slog"

	"github.com/udisondev/lawnmower-room/internal/session"
	"github.com/udisondev/lawnmower-room/internal/wire"
)

// HandleEnvelope satisfies session.Handler: the main dispatch switch for
// every message type besides Login/Heartbeat, which session.Session
// handles inline. Grounded on the teacher's gameserver client dispatch
// loop (internal/gameserver/client.go), generalized from packet opcodes
// to wire.MsgType.
func (a *App) HandleEnvelope(s *session.Session, e wire.Envelope) {
	switch e.Type {
	case wire.MsgCreateRoom:
		a.handleCreateRoom(s, e)
	case wire.MsgGetRoomList:
		a.handleGetRoomList(s)
	case wire.MsgJoinRoom:
		a.handleJoinRoom(s, e)
	case wire.MsgLeaveRoom:
		a.handleLeaveRoom(s)
	case wire.MsgSetReady:
		a.handleSetReady(s, e)
	case wire.MsgRequestQuit:
		a.handleRequestQuit(s)
	case wire.MsgStartGame:
		a.handleStartGame(s)
	case wire.MsgPlayerInput:
		a.handlePlayerInputTCP(s, e)
	case wire.MsgReconnectRequest:
		a.handleReconnectRequest(s, e)
	case wire.MsgUpgradeRequestAck:
		a.handleUpgradeRequestAck(s)
	case wire.MsgUpgradeOptionsAck:
		a.handleUpgradeOptionsAck(s)
	case wire.MsgUpgradeSelect:
		a.handleUpgradeSelect(s, e)
	case wire.MsgUpgradeRefreshRequest:
		a.handleUpgradeRefreshRequest(s)
	default:
		slog.Warn("gameserver: unhandled envelope", "type", e.Type, "player", s.PlayerID())
	}
}

// requireLoggedIn reports whether s has completed Login/ReconnectRequest.
// It sends nothing; callers send their own localized "please log in
// first" reply when it returns false.
func requireLoggedIn(s *session.Session) bool {
	return s.PlayerID() != 0
}
