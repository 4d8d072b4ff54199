// Package gameserver wires the transport-agnostic pieces (room registry,
// token store, scene engine, metrics sink) into the session.Handler and
// datagram.InputHandler contracts. It owns the live scene registry and
// starts the per-scene tick goroutines; the session write pumps and the
// listener loops are started by internal/session and cmd/roomserver.
// Grounded on the teacher's cmd/gameserver, which
// plays the same "glue" role between internal/gameserver/client.go and
// internal/ai, internal/db.
package gameserver

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/udisondev/lawnmower-room/internal/config"
	"github.com/udisondev/lawnmower-room/internal/room"
	"github.com/udisondev/lawnmower-room/internal/roomreg"
	"github.com/udisondev/lawnmower-room/internal/session"
	"github.com/udisondev/lawnmower-room/internal/tokenstore"
	"github.com/udisondev/lawnmower-room/internal/wire"
)

// Configs bundles the five JSON-loaded config files a new Scene needs.
type Configs struct {
	Server  config.ServerConfig
	Roles   config.PlayerRolesConfig
	Enemies config.EnemyTypesConfig
	Items   config.ItemsConfig
	Upgrade config.UpgradeConfig
}

func (c Configs) sceneConfig() room.SceneConfig {
	return room.SceneConfig{
		Server: c.Server, Roles: c.Roles, Enemies: c.Enemies,
		Items: c.Items, Upgrade: c.Upgrade,
	}
}

// App is the process-wide orchestrator: one instance serves every room.
// It implements session.Handler (routes every non-auth envelope) and
// datagram.InputHandler (routes UDP input into the right Scene).
type App struct {
	tokens  *tokenstore.Store
	rooms   *roomreg.Registry
	cfg     Configs
	metrics room.MetricsSink
	net     room.Broadcaster

	reconnectGroup singleflight.Group

	scenesMu sync.RWMutex
	scenes   map[uint32]*room.Scene
}

// New builds an App. SetBroadcaster must be called once the datagram
// server exists, before StartGame can create a Scene (the two have a
// circular dependency: the datagram server needs App as its
// InputHandler, App needs the datagram server as room.Broadcaster).
func New(tokens *tokenstore.Store, rooms *roomreg.Registry, cfg Configs, metrics room.MetricsSink) *App {
	return &App{
		tokens:  tokens,
		rooms:   rooms,
		cfg:     cfg,
		metrics: metrics,
		scenes:  make(map[uint32]*room.Scene),
	}
}

// SetBroadcaster installs the datagram server as this App's room.Broadcaster.
func (a *App) SetBroadcaster(net room.Broadcaster) { a.net = net }

// RoomForPlayer satisfies datagram.InputHandler by delegating to the room
// registry's reverse index.
func (a *App) RoomForPlayer(playerID uint32) (uint32, bool) {
	return a.rooms.RoomForPlayer(playerID)
}

// HandlePlayerInput satisfies datagram.InputHandler: forward the
// already room-resolved input straight to that room's Scene, dropping
// it silently if no match is currently running for roomID (spec §4.13's
// "room lookup miss on input" row).
func (a *App) HandlePlayerInput(roomID uint32, in wire.PlayerInput) {
	scene, ok := a.getScene(roomID)
	if !ok {
		return
	}
	scene.HandlePlayerInput(in)
}

func (a *App) getScene(roomID uint32) (*room.Scene, bool) {
	a.scenesMu.RLock()
	defer a.scenesMu.RUnlock()
	s, ok := a.scenes[roomID]
	return s, ok
}

func (a *App) putScene(roomID uint32, s *room.Scene) {
	a.scenesMu.Lock()
	a.scenes[roomID] = s
	a.scenesMu.Unlock()
}

func (a *App) removeScene(roomID uint32) {
	a.scenesMu.Lock()
	delete(a.scenes, roomID)
	a.scenesMu.Unlock()
}

// runSceneLoop ticks scene at the configured rate until the match ends
// (game over) or the scene is explicitly stopped (room emptied). One
// goroutine per active room; the scene's own mutex keeps this safe
// alongside concurrent session/datagram ingress.
func (a *App) runSceneLoop(roomID uint32, s *room.Scene, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			s.Step(now)
			if _, _, gameOver := s.Snapshot(); gameOver {
				a.removeScene(roomID)
				s.Stop()
				slog.Info("gameserver: match ended", "room", roomID)
				return
			}
		case <-s.Done():
			a.removeScene(roomID)
			return
		}
	}
}

// stopSceneIfEmpty tears a room's Scene down when LeaveRoom has just
// emptied it (spec §3's Scene lifecycle: "destroyed when last player
// leaves").
func (a *App) stopSceneIfEmpty(roomID uint32) {
	if _, stillExists := a.rooms.Room(roomID); stillExists {
		return
	}
	if scene, ok := a.getScene(roomID); ok {
		scene.Stop()
	}
}

// HandleClose satisfies session.Handler: mark the player disconnected in
// both the room registry and, if a match is running, the Scene (spec
// §4.2's Close contract: "marks player disconnected in both Scene Engine
// and Room Registry").
func (a *App) HandleClose(s *session.Session, reason session.CloseReason) {
	playerID := s.PlayerID()
	if playerID == 0 {
		return
	}
	now := time.Now()
	roomID, inRoom := a.rooms.RoomForPlayer(playerID)
	a.rooms.MarkPlayerDisconnected(playerID, now)
	if inRoom {
		if scene, ok := a.getScene(roomID); ok {
			scene.MarkPlayerDisconnected(playerID)
		}
	}
}
