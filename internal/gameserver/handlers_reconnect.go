package gameserver

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/lawnmower-room/internal/session"
	"github.com/udisondev/lawnmower-room/internal/wire"
)

// handleReconnectRequest is spec §4.12's reconnect flow: reject an
// already-logged-in session, an empty player id, a room mismatch, or a
// stale/unknown token; otherwise reattach the session to its room
// membership and, if a match is running, fast-forward the player back
// into the live Scene. singleflight collapses concurrent
// ReconnectRequests for the same player id (for example two reliable
// connections racing with the same credentials) into one attach.
func (a *App) handleReconnectRequest(s *session.Session, e wire.Envelope) {
	if requireLoggedIn(s) {
		_ = s.Send(wire.MsgReconnectAck, wire.ReconnectAck{Message: "已登录"})
		return
	}
	req, err := wire.UnmarshalReconnectRequest(e.Payload)
	if err != nil {
		slog.Warn("gameserver: malformed ReconnectRequest", "error", err)
		return
	}
	if req.PlayerID == 0 {
		_ = s.Send(wire.MsgReconnectAck, wire.ReconnectAck{Message: "玩家编号无效"})
		return
	}

	registered, ok := a.tokens.Lookup(req.PlayerID)
	if !ok {
		_ = s.Send(wire.MsgReconnectAck, wire.ReconnectAck{PlayerID: req.PlayerID, Message: "重连已过期"})
		return
	}
	if registered != req.SessionToken {
		_ = s.Send(wire.MsgReconnectAck, wire.ReconnectAck{PlayerID: req.PlayerID, Message: "令牌无效"})
		return
	}

	v, _, _ := a.reconnectGroup.Do(fmt.Sprint(req.PlayerID), func() (any, error) {
		return a.doReconnect(s, req, registered), nil
	})
	ack, ok := v.(wire.ReconnectAck)
	if !ok {
		ack = wire.ReconnectAck{PlayerID: req.PlayerID, Message: "内部错误"}
	}
	_ = s.Send(wire.MsgReconnectAck, ack)

	if ack.Success && ack.IsPlaying {
		if scene, ok := a.getScene(ack.RoomID); ok {
			_ = s.Send(wire.MsgGameStateSync, scene.BuildFullSnapshot())
		}
	}
}

func (a *App) doReconnect(s *session.Session, req wire.ReconnectRequest, token string) wire.ReconnectAck {
	room, err := a.rooms.AttachSession(req.PlayerID, req.RoomID, s)
	if err != nil {
		return wire.ReconnectAck{PlayerID: req.PlayerID, Message: roomErrorMessage(err)}
	}

	name := ""
	for _, p := range room.Players() {
		if p.ID == req.PlayerID {
			name = p.Name
			break
		}
	}
	s.AssignReconnected(req.PlayerID, token, name)
	s.SetRoomID(room.ID)

	ack := wire.ReconnectAck{Success: true, PlayerID: req.PlayerID, RoomID: room.ID, SessionToken: token}
	if room.IsPlaying {
		if scene, ok := a.getScene(room.ID); ok {
			if scene.TryReconnectPlayer(req.PlayerID, req.LastInputSeq, req.LastServerTick) {
				tick, paused, _ := scene.Snapshot()
				ack.IsPlaying = true
				ack.IsPaused = paused
				ack.ServerTick = tick
			}
		}
	}

	a.broadcastRoomUpdate(room.ID)
	return ack
}
