package room

import (
	"github.com/udisondev/lawnmower-room/internal/room/events"
	"github.com/udisondev/lawnmower-room/internal/wire"
)

type dropCandidate struct {
	typeID int32
	weight float64
}

func (s *Scene) buildDropCandidates() ([]dropCandidate, float64) {
	pool := s.cfg.Items.HealPool()
	cands := make([]dropCandidate, 0, len(pool))
	var total float64
	for _, t := range pool {
		cands = append(cands, dropCandidate{typeID: t.TypeID, weight: t.DropWeight})
		total += t.DropWeight
	}
	return cands, total
}

// pickDropTypeID is the roulette-wheel selection over the weighted drop
// table: roll a uniform value in [0,total) and walk the cumulative
// weight until it's exceeded.
func (s *Scene) pickDropTypeID(cands []dropCandidate, total float64) int32 {
	if len(cands) == 0 || total <= 0 {
		return 0
	}
	roll := s.rng.Float64() * total
	var accum float64
	for _, c := range cands {
		accum += c.weight
		if roll < accum {
			return c.typeID
		}
	}
	return cands[len(cands)-1].typeID
}

func (s *Scene) spawnDropItem(typeID int32, x, y float32) {
	maxAlive := s.cfg.Items.MaxItemsAlive
	if maxAlive <= 0 {
		maxAlive = 64
	}
	if int32(len(s.items)) >= maxAlive {
		return
	}
	typeCfg, ok := s.cfg.Items.Find(typeID)
	if !ok {
		return
	}

	id := s.nextItemID
	s.nextItemID++
	pos := wire.Vec2{
		X: clampf(x, 0, float32(s.cfg.Server.MapWidth)),
		Y: clampf(y, 0, float32(s.cfg.Server.MapHeight)),
	}
	s.items[id] = &ItemRuntime{
		ID: id, TypeID: typeCfg.TypeID, Effect: typeCfg.Effect, Value: typeCfg.Value,
		Position: pos, ForceSyncLeft: 1,
	}
	s.MarkItemDirty(id)
	s.bundle.AddDrop(events.NewItem(wire.MsgDroppedItem, wire.DroppedItem{
		Tick: s.Tick, ServerTimeMs: nowMs(), ItemID: id, TypeID: typeCfg.TypeID, Position: pos,
	}))
}

// processEnemyDropStage is ProcessEnemyDropStage: for every enemy killed
// this tick, roll its type's drop chance, then roll the weighted heal
// pool for which item type to spawn at its death position.
func (s *Scene) processEnemyDropStage(killedEnemyIDs []uint32) {
	if len(killedEnemyIDs) == 0 {
		return
	}
	cands, total := s.buildDropCandidates()
	if total <= 0 {
		return
	}
	for _, id := range killedEnemyIDs {
		e, ok := s.enemies[id]
		if !ok || e.IsAlive {
			continue
		}
		typeCfg, _ := s.cfg.Enemies.Find(e.TypeID)
		chance := typeCfg.DropChance
		if chance <= 0 {
			continue
		}
		if chance > 100 {
			chance = 100
		}
		if s.rng.Float64()*100 >= chance {
			continue
		}
		typeID := s.pickDropTypeID(cands, total)
		if typeID == 0 {
			continue
		}
		s.spawnDropItem(typeID, e.Position.X, e.Position.Y)
	}
}
