package gameserver

import (
	"errors"
	"log/slog"

	"github.com/udisondev/lawnmower-room/internal/room"
	"github.com/udisondev/lawnmower-room/internal/roomreg"
	"github.com/udisondev/lawnmower-room/internal/session"
	"github.com/udisondev/lawnmower-room/internal/wire"
)

const msgNotLoggedIn = "请先登录"

// roomErrorMessage translates a roomreg sentinel into the localized
// string a client displays; unrecognized errors fall back to a generic
// internal-error message rather than leaking Go error text to clients.
func roomErrorMessage(err error) string {
	switch {
	case errors.Is(err, roomreg.ErrRoomNotFound):
		return "房间不存在"
	case errors.Is(err, roomreg.ErrRoomFull):
		return "房间已满"
	case errors.Is(err, roomreg.ErrAlreadyInRoom):
		return "已在房间中"
	case errors.Is(err, roomreg.ErrNotInRoom):
		return "未在房间中"
	case errors.Is(err, roomreg.ErrNotHost):
		return "只有房主可以开始游戏"
	case errors.Is(err, roomreg.ErrAlreadyPlaying):
		return "游戏已经开始"
	case errors.Is(err, roomreg.ErrNotAllReady):
		return "还有玩家未准备"
	case errors.Is(err, roomreg.ErrTokenMismatch):
		return "房间编号不匹配"
	default:
		return "内部错误"
	}
}

func (a *App) handleCreateRoom(s *session.Session, e wire.Envelope) {
	if !requireLoggedIn(s) {
		_ = s.Send(wire.MsgCreateRoomResult, wire.CreateRoomResult{Message: msgNotLoggedIn})
		return
	}
	req, err := wire.UnmarshalCreateRoom(e.Payload)
	if err != nil {
		slog.Warn("gameserver: malformed CreateRoom", "player", s.PlayerID(), "error", err)
		return
	}

	room, err := a.rooms.CreateRoom(req.RoomName, req.MaxPlayers, s.PlayerID(), s.Name(), s)
	if err != nil {
		_ = s.Send(wire.MsgCreateRoomResult, wire.CreateRoomResult{Message: roomErrorMessage(err)})
		return
	}
	s.SetRoomID(room.ID)
	_ = s.Send(wire.MsgCreateRoomResult, wire.CreateRoomResult{Success: true, RoomID: room.ID})
	a.broadcastRoomUpdate(room.ID)
}

func (a *App) handleGetRoomList(s *session.Session) {
	if !requireLoggedIn(s) {
		return
	}
	summaries := a.rooms.ListRooms()
	out := make([]wire.RoomSummary, len(summaries))
	for i, r := range summaries {
		out[i] = wire.RoomSummary{RoomID: r.RoomID, Name: r.Name, PlayerCt: r.PlayerCt, MaxPlayers: r.MaxPlayers, IsPlaying: r.IsPlaying}
	}
	_ = s.Send(wire.MsgRoomList, wire.RoomList{Rooms: out})
}

func (a *App) handleJoinRoom(s *session.Session, e wire.Envelope) {
	if !requireLoggedIn(s) {
		_ = s.Send(wire.MsgJoinRoomResult, wire.JoinRoomResult{Message: msgNotLoggedIn})
		return
	}
	req, err := wire.UnmarshalJoinRoom(e.Payload)
	if err != nil {
		slog.Warn("gameserver: malformed JoinRoom", "player", s.PlayerID(), "error", err)
		return
	}

	room, err := a.rooms.JoinRoom(req.RoomID, s.PlayerID(), s.Name(), s)
	if err != nil {
		_ = s.Send(wire.MsgJoinRoomResult, wire.JoinRoomResult{Message: roomErrorMessage(err)})
		return
	}
	s.SetRoomID(room.ID)
	_ = s.Send(wire.MsgJoinRoomResult, wire.JoinRoomResult{Success: true, RoomID: room.ID})
	a.broadcastRoomUpdate(room.ID)
}

func (a *App) handleLeaveRoom(s *session.Session) {
	if !requireLoggedIn(s) {
		_ = s.Send(wire.MsgLeaveRoomResult, wire.LeaveRoomResult{Message: msgNotLoggedIn})
		return
	}
	roomID, err := a.rooms.LeaveRoom(s.PlayerID())
	if err != nil {
		_ = s.Send(wire.MsgLeaveRoomResult, wire.LeaveRoomResult{Message: roomErrorMessage(err)})
		return
	}
	s.SetRoomID(0)
	if scene, ok := a.getScene(roomID); ok {
		scene.MarkPlayerDisconnected(s.PlayerID())
	}
	_ = s.Send(wire.MsgLeaveRoomResult, wire.LeaveRoomResult{Success: true})
	a.broadcastRoomUpdate(roomID)
	a.stopSceneIfEmpty(roomID)
}

func (a *App) handleSetReady(s *session.Session, e wire.Envelope) {
	if !requireLoggedIn(s) {
		_ = s.Send(wire.MsgSetReadyResult, wire.SetReadyResult{Message: msgNotLoggedIn})
		return
	}
	req, err := wire.UnmarshalSetReady(e.Payload)
	if err != nil {
		slog.Warn("gameserver: malformed SetReady", "player", s.PlayerID(), "error", err)
		return
	}
	room, err := a.rooms.SetReady(s.PlayerID(), req.IsReady)
	if err != nil {
		_ = s.Send(wire.MsgSetReadyResult, wire.SetReadyResult{Message: roomErrorMessage(err)})
		return
	}
	_ = s.Send(wire.MsgSetReadyResult, wire.SetReadyResult{Success: true})
	a.broadcastRoomUpdate(room.ID)
}

// handleRequestQuit ends the session outright (spec §4.2/§4.5: an
// explicit quit request revokes the token immediately, unlike a network
// drop which retains it for the reconnect grace window).
func (a *App) handleRequestQuit(s *session.Session) {
	s.Close(session.CloseClientRequest)
}

func (a *App) handleStartGame(s *session.Session) {
	if !requireLoggedIn(s) {
		_ = s.Send(wire.MsgGameStart, wire.GameStart{Message: msgNotLoggedIn})
		return
	}
	snap, err := a.rooms.TryStartGame(s.PlayerID())
	if err != nil {
		_ = s.Send(wire.MsgGameStart, wire.GameStart{Message: roomErrorMessage(err)})
		return
	}

	scene := room.NewSceneFromRoomSnapshot(snap, a.cfg.sceneConfig(), a.rooms, a.net, a.metrics)
	a.putScene(snap.RoomID, scene)
	interval := scene.TickInterval()
	go a.runSceneLoop(snap.RoomID, scene, interval)

	a.rooms.ForEachSession(snap.RoomID, func(sess *session.Session) {
		_ = sess.Send(wire.MsgGameStart, wire.GameStart{Success: true, RoomID: snap.RoomID})
	})
	full := scene.BuildFullSnapshot()
	a.rooms.ForEachSession(snap.RoomID, func(sess *session.Session) {
		_ = sess.Send(wire.MsgGameStateSync, full)
	})
}

func (a *App) handlePlayerInputTCP(s *session.Session, e wire.Envelope) {
	in, err := wire.UnmarshalPlayerInput(e.Payload)
	if err != nil {
		slog.Warn("gameserver: malformed PlayerInput", "player", s.PlayerID(), "error", err)
		return
	}
	if in.PlayerID != s.PlayerID() || !a.tokens.Verify(in.PlayerID, in.Token) {
		return
	}
	roomID, ok := a.rooms.RoomForPlayer(in.PlayerID)
	if !ok {
		return
	}
	scene, ok := a.getScene(roomID)
	if !ok {
		return
	}
	scene.HandlePlayerInput(in)
}

func (a *App) broadcastRoomUpdate(roomID uint32) {
	view, ok := a.rooms.BuildRoomUpdate(roomID)
	if !ok {
		return
	}
	update := wire.RoomUpdate{RoomID: view.RoomID, IsPlaying: view.IsPlaying}
	for _, p := range view.Players {
		update.Players = append(update.Players, wire.RoomPlayerView{PlayerID: p.PlayerID, Name: p.Name, Ready: p.Ready, Host: p.Host})
	}
	a.rooms.ForEachSession(roomID, func(sess *session.Session) {
		_ = sess.Send(wire.MsgRoomUpdate, update)
	})
}
