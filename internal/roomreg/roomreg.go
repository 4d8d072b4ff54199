// Package roomreg is the process-wide room membership registry: room id
// -> membership, ready flags, host, playing flag, plus the reverse
// player id -> room id lookup. Grounded on the teacher's ClientManager
// (internal/gameserver/clients.go): RWMutex-guarded maps, ForEach*
// iteration with early-exit, generalized from "connected clients" to
// "room membership". Session references are held as weak pointers per
// spec §9's design note ("rooms do not extend session lifetime").
package roomreg

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"weak"

	"github.com/udisondev/lawnmower-room/internal/session"
)

var (
	ErrNotLoggedIn    = errors.New("roomreg: not logged in")
	ErrRoomNotFound   = errors.New("roomreg: room not found")
	ErrRoomFull       = errors.New("roomreg: room full")
	ErrAlreadyInRoom  = errors.New("roomreg: already in a room")
	ErrNotInRoom      = errors.New("roomreg: not in a room")
	ErrNotHost        = errors.New("roomreg: not host")
	ErrAlreadyPlaying = errors.New("roomreg: already playing")
	ErrNotAllReady    = errors.New("roomreg: not all ready")
	ErrTokenMismatch  = errors.New("roomreg: room id mismatch")
)

// RoomPlayer is one member of a Room.
type RoomPlayer struct {
	ID      uint32
	Name    string
	Ready   bool
	Host    bool
	session weak.Pointer[session.Session]

	disconnectedAt time.Time
	connected      bool
}

// Session resolves the member's live session, or nil if it has been
// garbage collected or was never set (disconnected member).
func (p *RoomPlayer) Session() *session.Session { return p.session.Value() }

// Room is one room's membership state.
type Room struct {
	ID         uint32
	Name       string
	MaxPlayers int32
	IsPlaying  bool

	players         []*RoomPlayer
	playerIndexByID map[uint32]int
}

// Players returns a snapshot slice of the current membership.
func (r *Room) Players() []RoomPlayer {
	out := make([]RoomPlayer, len(r.players))
	for i, p := range r.players {
		out[i] = *p
	}
	return out
}

// RoomSummary is the listing row returned by ListRooms.
type RoomSummary struct {
	RoomID     uint32
	Name       string
	PlayerCt   int32
	MaxPlayers int32
	IsPlaying  bool
}

// SnapshotPlayer is one player handed to the scene engine at game start.
type SnapshotPlayer struct {
	PlayerID uint32
	Name     string
}

// RoomSnapshot is what TryStartGame emits for scene creation.
type RoomSnapshot struct {
	RoomID  uint32
	Players []SnapshotPlayer
}

// Registry is the process-wide singleton; construct one per process.
type Registry struct {
	mu         sync.RWMutex
	rooms      map[uint32]*Room
	playerRoom map[uint32]uint32
	nextRoomID atomic.Uint32
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		rooms:      make(map[uint32]*Room),
		playerRoom: make(map[uint32]uint32),
	}
}

// CreateRoom creates a room with hostID as its sole, ready-by-default host.
func (r *Registry) CreateRoom(name string, maxPlayers int32, hostID uint32, hostName string, sess *session.Session) (*Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, in := r.playerRoom[hostID]; in {
		return nil, ErrAlreadyInRoom
	}
	if maxPlayers <= 0 {
		maxPlayers = 4
	}

	id := r.nextRoomID.Add(1)
	room := &Room{
		ID:              id,
		Name:            name,
		MaxPlayers:      maxPlayers,
		playerIndexByID: make(map[uint32]int),
	}
	host := &RoomPlayer{ID: hostID, Name: hostName, Ready: true, Host: true, connected: true}
	if sess != nil {
		host.session = weak.Make(sess)
	}
	room.players = append(room.players, host)
	room.playerIndexByID[hostID] = 0

	r.rooms[id] = room
	r.playerRoom[hostID] = id
	return room, nil
}

// ListRooms returns a summary of every room, in no particular order.
func (r *Registry) ListRooms() []RoomSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RoomSummary, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, RoomSummary{
			RoomID: room.ID, Name: room.Name,
			PlayerCt: int32(len(room.players)), MaxPlayers: room.MaxPlayers,
			IsPlaying: room.IsPlaying,
		})
	}
	return out
}

// JoinRoom adds playerID to roomID as a non-ready, non-host member.
func (r *Registry) JoinRoom(roomID, playerID uint32, name string, sess *session.Session) (*Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, in := r.playerRoom[playerID]; in {
		return nil, ErrAlreadyInRoom
	}
	room, ok := r.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	if room.IsPlaying {
		return nil, ErrAlreadyPlaying
	}
	if int32(len(room.players)) >= room.MaxPlayers {
		return nil, ErrRoomFull
	}

	member := &RoomPlayer{ID: playerID, Name: name, connected: true}
	if sess != nil {
		member.session = weak.Make(sess)
	}
	room.playerIndexByID[playerID] = len(room.players)
	room.players = append(room.players, member)
	r.playerRoom[playerID] = roomID
	return room, nil
}

// LeaveRoom removes playerID from its room, promoting the next member to
// host if the departing player was host. Returns the room id left.
func (r *Registry) LeaveRoom(playerID uint32) (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomID, ok := r.playerRoom[playerID]
	if !ok {
		return 0, ErrNotInRoom
	}
	room := r.rooms[roomID]
	r.removeMemberLocked(room, playerID)
	delete(r.playerRoom, playerID)

	if len(room.players) == 0 {
		delete(r.rooms, roomID)
	} else if !r.hasHostLocked(room) {
		room.players[0].Host = true
	}
	return roomID, nil
}

func (r *Registry) hasHostLocked(room *Room) bool {
	for _, p := range room.players {
		if p.Host {
			return true
		}
	}
	return false
}

func (r *Registry) removeMemberLocked(room *Room, playerID uint32) {
	idx, ok := room.playerIndexByID[playerID]
	if !ok {
		return
	}
	room.players = append(room.players[:idx], room.players[idx+1:]...)
	delete(room.playerIndexByID, playerID)
	for i := idx; i < len(room.players); i++ {
		room.playerIndexByID[room.players[i].ID] = i
	}
}

// SetReady updates playerID's ready flag within its room.
func (r *Registry) SetReady(playerID uint32, ready bool) (*Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomID, ok := r.playerRoom[playerID]
	if !ok {
		return nil, ErrNotInRoom
	}
	room := r.rooms[roomID]
	idx := room.playerIndexByID[playerID]
	room.players[idx].Ready = ready
	return room, nil
}

// TryStartGame succeeds only if the requester is host, the room isn't
// already playing, and every non-host member is ready.
func (r *Registry) TryStartGame(playerID uint32) (RoomSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomID, ok := r.playerRoom[playerID]
	if !ok {
		return RoomSnapshot{}, ErrNotInRoom
	}
	room := r.rooms[roomID]
	idx := room.playerIndexByID[playerID]
	if !room.players[idx].Host {
		return RoomSnapshot{}, ErrNotHost
	}
	if room.IsPlaying {
		return RoomSnapshot{}, ErrAlreadyPlaying
	}
	for _, p := range room.players {
		if !p.Host && !p.Ready {
			return RoomSnapshot{}, ErrNotAllReady
		}
	}

	room.IsPlaying = true
	snap := RoomSnapshot{RoomID: roomID}
	for _, p := range room.players {
		p.Ready = false
		snap.Players = append(snap.Players, SnapshotPlayer{PlayerID: p.ID, Name: p.Name})
	}
	return snap, nil
}

// FinishGame idempotently resets is_playing for roomID.
func (r *Registry) FinishGame(roomID uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return
	}
	room.IsPlaying = false
	for _, p := range room.players {
		p.Ready = p.Host
	}
}

// AttachSession installs sess as playerID's live session. If roomID is
// nonzero, it must match the player's currently recorded room.
func (r *Registry) AttachSession(playerID, roomID uint32, sess *session.Session) (*Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	curRoom, ok := r.playerRoom[playerID]
	if !ok {
		return nil, ErrNotInRoom
	}
	if roomID != 0 && roomID != curRoom {
		return nil, ErrTokenMismatch
	}
	room := r.rooms[curRoom]
	idx, ok := room.playerIndexByID[playerID]
	if !ok {
		return nil, fmt.Errorf("roomreg: inconsistent index for player %d", playerID)
	}
	room.players[idx].session = weak.Make(sess)
	room.players[idx].connected = true
	room.players[idx].disconnectedAt = time.Time{}
	return room, nil
}

// MarkPlayerDisconnected clears the live session reference but keeps
// membership, recording the disconnect time for the grace-window sweep.
func (r *Registry) MarkPlayerDisconnected(playerID uint32, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	roomID, ok := r.playerRoom[playerID]
	if !ok {
		return
	}
	room := r.rooms[roomID]
	idx, ok := room.playerIndexByID[playerID]
	if !ok {
		return
	}
	room.players[idx].session = weak.Pointer[session.Session]{}
	room.players[idx].connected = false
	room.players[idx].disconnectedAt = at
}

// RoomForPlayer returns the room id currently tracked for playerID.
func (r *Registry) RoomForPlayer(playerID uint32) (uint32, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.playerRoom[playerID]
	return id, ok
}

// Room returns a pointer to the live room for inspection; callers must
// not retain it across registry mutations without re-locking.
func (r *Registry) Room(roomID uint32) (*Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[roomID]
	return room, ok
}

// ExpireDisconnected returns the ids of players whose disconnect
// timestamp is older than graceSeconds, removing their membership.
func (r *Registry) ExpireDisconnected(roomID uint32, graceSeconds float64, now time.Time) []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	grace := time.Duration(graceSeconds * float64(time.Second))
	var expired []uint32
	for _, p := range room.players {
		if !p.connected && !p.disconnectedAt.IsZero() && now.Sub(p.disconnectedAt) >= grace {
			expired = append(expired, p.ID)
		}
	}
	for _, id := range expired {
		r.removeMemberLocked(room, id)
		delete(r.playerRoom, id)
	}
	return expired
}

// ForEachSession invokes fn with every live (non-expired weak) session
// currently attached to roomID. Dead weaks are skipped silently.
func (r *Registry) ForEachSession(roomID uint32, fn func(*session.Session)) {
	r.mu.RLock()
	room, ok := r.rooms[roomID]
	if !ok {
		r.mu.RUnlock()
		return
	}
	sessions := make([]*session.Session, 0, len(room.players))
	for _, p := range room.players {
		if s := p.session.Value(); s != nil {
			sessions = append(sessions, s)
		}
	}
	r.mu.RUnlock()

	for _, s := range sessions {
		fn(s)
	}
}

// BuildRoomUpdate composes a membership broadcast view for roomID.
func (r *Registry) BuildRoomUpdate(roomID uint32) (RoomSnapshotView, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return RoomSnapshotView{}, false
	}
	view := RoomSnapshotView{RoomID: roomID, IsPlaying: room.IsPlaying}
	for _, p := range room.players {
		view.Players = append(view.Players, RoomPlayerView{
			PlayerID: p.ID, Name: p.Name, Ready: p.Ready, Host: p.Host,
		})
	}
	return view, true
}

// RoomPlayerView and RoomSnapshotView mirror wire.RoomPlayerView/RoomUpdate
// without importing the wire package from this one, keeping roomreg a
// transport-agnostic membership model.
type RoomPlayerView struct {
	PlayerID uint32
	Name     string
	Ready    bool
	Host     bool
}

type RoomSnapshotView struct {
	RoomID    uint32
	IsPlaying bool
	Players   []RoomPlayerView
}
