package gameserver

import (
	"log/slog"

	"github.com/udisondev/lawnmower-room/internal/room"
	"github.com/udisondev/lawnmower-room/internal/session"
	"github.com/udisondev/lawnmower-room/internal/wire"
)

// sceneForSession resolves the Scene backing s's current room, if a
// match is running there.
func (a *App) sceneForSession(s *session.Session) (*room.Scene, bool) {
	roomID, ok := a.rooms.RoomForPlayer(s.PlayerID())
	if !ok {
		return nil, false
	}
	return a.getScene(roomID)
}

func (a *App) handleUpgradeRequestAck(s *session.Session) {
	scene, ok := a.sceneForSession(s)
	if !ok {
		slog.Debug("gameserver: ignoring UpgradeRequestAck, player not in a running match", "player", s.PlayerID())
		return
	}
	opts, ok := scene.HandleUpgradeRequestAck(s.PlayerID())
	if !ok {
		return
	}
	_ = s.Send(wire.MsgUpgradeOptions, opts)
}

func (a *App) handleUpgradeOptionsAck(s *session.Session) {
	scene, ok := a.sceneForSession(s)
	if !ok {
		slog.Debug("gameserver: ignoring UpgradeOptionsAck, player not in a running match", "player", s.PlayerID())
		return
	}
	scene.HandleUpgradeOptionsAck(s.PlayerID())
}

func (a *App) handleUpgradeSelect(s *session.Session, e wire.Envelope) {
	req, err := wire.UnmarshalUpgradeSelect(e.Payload)
	if err != nil {
		slog.Warn("gameserver: malformed UpgradeSelect", "player", s.PlayerID(), "error", err)
		return
	}
	scene, ok := a.sceneForSession(s)
	if !ok {
		_ = s.Send(wire.MsgUpgradeSelectAck, wire.UpgradeSelectAck{Message: "未在房间中"})
		return
	}
	result, ok := scene.HandleUpgradeSelect(s.PlayerID(), req.OptionIndex)
	if !ok {
		_ = s.Send(wire.MsgUpgradeSelectAck, wire.UpgradeSelectAck{Message: "选择无效"})
		return
	}
	_ = s.Send(wire.MsgUpgradeSelectAck, result.Ack)
	if result.NextRequest != nil {
		_ = s.Send(wire.MsgUpgradeRequest, *result.NextRequest)
	}
	if result.Resumed {
		full := scene.BuildFullSnapshot()
		a.rooms.ForEachSession(scene.RoomID, func(sess *session.Session) {
			_ = sess.Send(wire.MsgGameStateSync, full)
		})
	}
}

func (a *App) handleUpgradeRefreshRequest(s *session.Session) {
	scene, ok := a.sceneForSession(s)
	if !ok {
		slog.Debug("gameserver: ignoring UpgradeRefreshRequest, player not in a running match", "player", s.PlayerID())
		return
	}
	req, ok := scene.HandleUpgradeRefreshRequest(s.PlayerID())
	if !ok {
		return
	}
	_ = s.Send(wire.MsgUpgradeRequest, req)
}
