package events

import (
	"github.com/udisondev/lawnmower-room/internal/session"
	"github.com/udisondev/lawnmower-room/internal/wire"
)

// Item pairs a message type with its already-built payload so Dispatch
// can call Session.Send without the room package reaching into session
// internals itself.
type Item struct {
	Type wire.MsgType
	Msg  interface{ Marshal() []byte }
}

// NewItem wraps a wire message for storage in a Bundle slot.
func NewItem(t wire.MsgType, m interface{ Marshal() []byte }) Item {
	return Item{Type: t, Msg: m}
}

// Fanout is the subset of the room registry Dispatch needs to reach
// every live session in a room.
type Fanout interface {
	ForEachSession(roomID uint32, fn func(*session.Session))
}

// Dispatch unicasts every item accumulated in b to every session
// attached to roomID, in the fixed category order spawns, despawns,
// drops, attack-state, hurts, deaths, level-ups, upgrades, game-over —
// mirroring the priority order the original engine's event dispatcher
// flushes in. Called after the scene mutex has been released.
func Dispatch(b *Bundle, roomID uint32, fanout Fanout) {
	if !b.HasPriorityActivity() {
		return
	}
	var sessions []*session.Session
	fanout.ForEachSession(roomID, func(sess *session.Session) {
		sessions = append(sessions, sess)
	})
	if len(sessions) == 0 {
		return
	}

	sendAll := func(items []any) {
		for _, raw := range items {
			item, ok := raw.(Item)
			if !ok {
				continue
			}
			for _, sess := range sessions {
				_ = sess.Send(item.Type, item.Msg)
			}
		}
	}

	sendAll(b.Spawns)
	sendAll(b.Despawns)
	sendAll(b.Drops)
	sendAll(b.AttackState)
	sendAll(b.Hurts)
	sendAll(b.Deaths)
	sendAll(b.LevelUps)
	sendAll(b.Upgrades)
	if b.GameOver != nil {
		if item, ok := b.GameOver.(Item); ok {
			for _, sess := range sessions {
				_ = sess.Send(item.Type, item.Msg)
			}
		}
	}
}
