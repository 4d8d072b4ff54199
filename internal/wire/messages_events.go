package wire

// DespawnReason tags why a projectile left the scene.
type DespawnReason int32

const (
	DespawnExpired DespawnReason = iota
	DespawnHit
	DespawnOutOfBounds
)

// ProjectileSpawn is a priority event; spawn/despawn lists are de-duplicated
// by id within one tick by the event dispatcher.
type ProjectileSpawn struct {
	Tick         uint64
	ServerTimeMs int64
	ProjectileID uint32
	OwnerID      uint32
	Position     Vec2
	Dir          Vec2
	Speed        float32
	IsFriendly   bool
}

func (m ProjectileSpawn) Marshal() []byte {
	w := NewWriter(48)
	w.WriteUint64(m.Tick)
	w.WriteUint64(uint64(m.ServerTimeMs))
	w.WriteUint32(m.ProjectileID)
	w.WriteUint32(m.OwnerID)
	w.WriteFloat32(m.Position.X)
	w.WriteFloat32(m.Position.Y)
	w.WriteFloat32(m.Dir.X)
	w.WriteFloat32(m.Dir.Y)
	w.WriteFloat32(m.Speed)
	w.WriteBool(m.IsFriendly)
	return w.Bytes()
}

type ProjectileDespawn struct {
	Tick         uint64
	ServerTimeMs int64
	ProjectileID uint32
	Reason       DespawnReason
	HitPosition  Vec2
}

func (m ProjectileDespawn) Marshal() []byte {
	w := NewWriter(32)
	w.WriteUint64(m.Tick)
	w.WriteUint64(uint64(m.ServerTimeMs))
	w.WriteUint32(m.ProjectileID)
	w.WriteInt32(int32(m.Reason))
	w.WriteFloat32(m.HitPosition.X)
	w.WriteFloat32(m.HitPosition.Y)
	return w.Bytes()
}

// DroppedItem announces a newly spawned item (separate from the regular
// item sync channel so clients can play a drop effect immediately).
type DroppedItem struct {
	Tick         uint64
	ServerTimeMs int64
	ItemID       uint32
	TypeID       int32
	Position     Vec2
}

func (m DroppedItem) Marshal() []byte {
	w := NewWriter(32)
	w.WriteUint64(m.Tick)
	w.WriteUint64(uint64(m.ServerTimeMs))
	w.WriteUint32(m.ItemID)
	w.WriteInt32(m.TypeID)
	w.WriteFloat32(m.Position.X)
	w.WriteFloat32(m.Position.Y)
	return w.Bytes()
}

// EnemyAttackStateSync announces a melee attack-state transition (entering
// or leaving combat against a specific target).
type EnemyAttackStateSync struct {
	Tick         uint64
	ServerTimeMs int64
	EnemyID      uint32
	Attacking    bool
	TargetID     uint32
}

func (m EnemyAttackStateSync) Marshal() []byte {
	w := NewWriter(32)
	w.WriteUint64(m.Tick)
	w.WriteUint64(uint64(m.ServerTimeMs))
	w.WriteUint32(m.EnemyID)
	w.WriteBool(m.Attacking)
	w.WriteUint32(m.TargetID)
	return w.Bytes()
}

type PlayerHurt struct {
	Tick         uint64
	ServerTimeMs int64
	PlayerID     uint32
	AttackerID   uint32
	Damage       int32
	HealthAfter  int32
}

func (m PlayerHurt) Marshal() []byte {
	w := NewWriter(36)
	w.WriteUint64(m.Tick)
	w.WriteUint64(uint64(m.ServerTimeMs))
	w.WriteUint32(m.PlayerID)
	w.WriteUint32(m.AttackerID)
	w.WriteInt32(m.Damage)
	w.WriteInt32(m.HealthAfter)
	return w.Bytes()
}

type EnemyDied struct {
	Tick         uint64
	ServerTimeMs int64
	EnemyID      uint32
	KillerID     uint32
}

func (m EnemyDied) Marshal() []byte {
	w := NewWriter(28)
	w.WriteUint64(m.Tick)
	w.WriteUint64(uint64(m.ServerTimeMs))
	w.WriteUint32(m.EnemyID)
	w.WriteUint32(m.KillerID)
	return w.Bytes()
}

type PlayerLevelUp struct {
	Tick         uint64
	ServerTimeMs int64
	PlayerID     uint32
	NewLevel     int32
}

func (m PlayerLevelUp) Marshal() []byte {
	w := NewWriter(24)
	w.WriteUint64(m.Tick)
	w.WriteUint64(uint64(m.ServerTimeMs))
	w.WriteUint32(m.PlayerID)
	w.WriteInt32(m.NewLevel)
	return w.Bytes()
}

// PlayerSummary is one row of the GameOver scoreboard.
type PlayerSummary struct {
	PlayerID     uint32
	Name         string
	Level        int32
	Kills        int32
	DamageDealt  int64
}

type GameOver struct {
	Tick         uint64
	ServerTimeMs int64
	Victory      bool
	SurviveTime  int32
	Players      []PlayerSummary
}

func (m GameOver) Marshal() []byte {
	w := NewWriter(32 + len(m.Players)*32)
	w.WriteUint64(m.Tick)
	w.WriteUint64(uint64(m.ServerTimeMs))
	w.WriteBool(m.Victory)
	w.WriteInt32(m.SurviveTime)
	w.WriteUint32(uint32(len(m.Players)))
	for _, p := range m.Players {
		w.WriteUint32(p.PlayerID)
		w.WriteString(p.Name)
		w.WriteInt32(p.Level)
		w.WriteInt32(p.Kills)
		w.WriteUint64(uint64(p.DamageDealt))
	}
	return w.Bytes()
}

func UnmarshalGameOver(data []byte) (GameOver, error) {
	r := NewReader(data)
	var m GameOver
	var err error
	if m.Tick, err = r.ReadUint64(); err != nil {
		return m, err
	}
	t, err := r.ReadUint64()
	if err != nil {
		return m, err
	}
	m.ServerTimeMs = int64(t)
	if m.Victory, err = r.ReadBool(); err != nil {
		return m, err
	}
	if m.SurviveTime, err = r.ReadInt32(); err != nil {
		return m, err
	}
	n, err := r.ReadUint32()
	if err != nil {
		return m, err
	}
	m.Players = make([]PlayerSummary, 0, n)
	for i := uint32(0); i < n; i++ {
		var p PlayerSummary
		if p.PlayerID, err = r.ReadUint32(); err != nil {
			return m, err
		}
		if p.Name, err = r.ReadString(); err != nil {
			return m, err
		}
		if p.Level, err = r.ReadInt32(); err != nil {
			return m, err
		}
		if p.Kills, err = r.ReadInt32(); err != nil {
			return m, err
		}
		dmg, err := r.ReadUint64()
		if err != nil {
			return m, err
		}
		p.DamageDealt = int64(dmg)
		m.Players = append(m.Players, p)
	}
	return m, nil
}
