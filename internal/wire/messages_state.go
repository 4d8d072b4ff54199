package wire

// Vec2 is a world-space position or direction.
type Vec2 struct {
	X, Y float32
}

// PlayerInput is accepted over either the datagram channel (hot path) or the
// reliable channel. Stale input is rejected by Seq; ClientTick is carried
// on the wire but the scene does not read it.
type PlayerInput struct {
	PlayerID       uint32
	Token          string
	Seq            uint32
	Dir            Vec2
	DeltaMs        uint32
	WantsAttacking bool
	ClientTick     uint64
}

func (m PlayerInput) Marshal() []byte {
	w := NewWriter(48 + len(m.Token))
	w.WriteUint32(m.PlayerID)
	w.WriteString(m.Token)
	w.WriteUint32(m.Seq)
	w.WriteFloat32(m.Dir.X)
	w.WriteFloat32(m.Dir.Y)
	w.WriteUint32(m.DeltaMs)
	w.WriteBool(m.WantsAttacking)
	w.WriteUint64(m.ClientTick)
	return w.Bytes()
}

func UnmarshalPlayerInput(data []byte) (PlayerInput, error) {
	r := NewReader(data)
	var m PlayerInput
	var err error
	if m.PlayerID, err = r.ReadUint32(); err != nil {
		return m, err
	}
	if m.Token, err = r.ReadString(); err != nil {
		return m, err
	}
	if m.Seq, err = r.ReadUint32(); err != nil {
		return m, err
	}
	if m.Dir.X, err = r.ReadFloat32(); err != nil {
		return m, err
	}
	if m.Dir.Y, err = r.ReadFloat32(); err != nil {
		return m, err
	}
	if m.DeltaMs, err = r.ReadUint32(); err != nil {
		return m, err
	}
	if m.WantsAttacking, err = r.ReadBool(); err != nil {
		return m, err
	}
	m.ClientTick, err = r.ReadUint64()
	return m, err
}

// PlayerState is the full, low-frequency description of a player's
// synchronized fields, emitted in the snapshot channel when low_freq_dirty.
type PlayerState struct {
	PlayerID            uint32
	Name                string
	Position            Vec2
	Rotation            float32
	Health              int32
	MaxHealth           int32
	IsAlive             bool
	Attack              int32
	AttackSpeed         float32
	CriticalHitRate     int32
	MoveSpeed           float32
	Level               int32
	Exp                 int64
	PendingUpgradeCount int32
	RoleID              int32
	LastProcessedInputSeq uint32
}

func (m PlayerState) marshalInto(w *Writer) {
	w.WriteUint32(m.PlayerID)
	w.WriteString(m.Name)
	w.WriteFloat32(m.Position.X)
	w.WriteFloat32(m.Position.Y)
	w.WriteFloat32(m.Rotation)
	w.WriteInt32(m.Health)
	w.WriteInt32(m.MaxHealth)
	w.WriteBool(m.IsAlive)
	w.WriteInt32(m.Attack)
	w.WriteFloat32(m.AttackSpeed)
	w.WriteInt32(m.CriticalHitRate)
	w.WriteFloat32(m.MoveSpeed)
	w.WriteInt32(m.Level)
	w.WriteUint64(uint64(m.Exp))
	w.WriteInt32(m.PendingUpgradeCount)
	w.WriteInt32(m.RoleID)
	w.WriteUint32(m.LastProcessedInputSeq)
}

func readPlayerState(r *Reader) (PlayerState, error) {
	var m PlayerState
	var err error
	if m.PlayerID, err = r.ReadUint32(); err != nil {
		return m, err
	}
	if m.Name, err = r.ReadString(); err != nil {
		return m, err
	}
	if m.Position.X, err = r.ReadFloat32(); err != nil {
		return m, err
	}
	if m.Position.Y, err = r.ReadFloat32(); err != nil {
		return m, err
	}
	if m.Rotation, err = r.ReadFloat32(); err != nil {
		return m, err
	}
	if m.Health, err = r.ReadInt32(); err != nil {
		return m, err
	}
	if m.MaxHealth, err = r.ReadInt32(); err != nil {
		return m, err
	}
	if m.IsAlive, err = r.ReadBool(); err != nil {
		return m, err
	}
	if m.Attack, err = r.ReadInt32(); err != nil {
		return m, err
	}
	if m.AttackSpeed, err = r.ReadFloat32(); err != nil {
		return m, err
	}
	if m.CriticalHitRate, err = r.ReadInt32(); err != nil {
		return m, err
	}
	if m.MoveSpeed, err = r.ReadFloat32(); err != nil {
		return m, err
	}
	if m.Level, err = r.ReadInt32(); err != nil {
		return m, err
	}
	exp, err := r.ReadUint64()
	if err != nil {
		return m, err
	}
	m.Exp = int64(exp)
	if m.PendingUpgradeCount, err = r.ReadInt32(); err != nil {
		return m, err
	}
	if m.RoleID, err = r.ReadInt32(); err != nil {
		return m, err
	}
	m.LastProcessedInputSeq, err = r.ReadUint32()
	return m, err
}

// EnemyState is the full description of an enemy, emitted for force-synced
// entries and inside a full snapshot.
type EnemyState struct {
	EnemyID    uint32
	TypeID     int32
	Position   Vec2
	Health     int32
	MaxHealth  int32
	IsAlive    bool
	WaveID     int32
	IsFriendly bool
}

func (m EnemyState) marshalInto(w *Writer) {
	w.WriteUint32(m.EnemyID)
	w.WriteInt32(m.TypeID)
	w.WriteFloat32(m.Position.X)
	w.WriteFloat32(m.Position.Y)
	w.WriteInt32(m.Health)
	w.WriteInt32(m.MaxHealth)
	w.WriteBool(m.IsAlive)
	w.WriteInt32(m.WaveID)
	w.WriteBool(m.IsFriendly)
}

func readEnemyState(r *Reader) (EnemyState, error) {
	var m EnemyState
	var err error
	if m.EnemyID, err = r.ReadUint32(); err != nil {
		return m, err
	}
	if m.TypeID, err = r.ReadInt32(); err != nil {
		return m, err
	}
	if m.Position.X, err = r.ReadFloat32(); err != nil {
		return m, err
	}
	if m.Position.Y, err = r.ReadFloat32(); err != nil {
		return m, err
	}
	if m.Health, err = r.ReadInt32(); err != nil {
		return m, err
	}
	if m.MaxHealth, err = r.ReadInt32(); err != nil {
		return m, err
	}
	if m.IsAlive, err = r.ReadBool(); err != nil {
		return m, err
	}
	if m.WaveID, err = r.ReadInt32(); err != nil {
		return m, err
	}
	m.IsFriendly, err = r.ReadBool()
	return m, err
}

// ItemState is the full description of a dropped item.
type ItemState struct {
	ItemID   uint32
	TypeID   int32
	Position Vec2
	IsPicked bool
}

func (m ItemState) marshalInto(w *Writer) {
	w.WriteUint32(m.ItemID)
	w.WriteInt32(m.TypeID)
	w.WriteFloat32(m.Position.X)
	w.WriteFloat32(m.Position.Y)
	w.WriteBool(m.IsPicked)
}

func readItemState(r *Reader) (ItemState, error) {
	var m ItemState
	var err error
	if m.ItemID, err = r.ReadUint32(); err != nil {
		return m, err
	}
	if m.TypeID, err = r.ReadInt32(); err != nil {
		return m, err
	}
	if m.Position.X, err = r.ReadFloat32(); err != nil {
		return m, err
	}
	if m.Position.Y, err = r.ReadFloat32(); err != nil {
		return m, err
	}
	m.IsPicked, err = r.ReadBool()
	return m, err
}

// GameStateSync carries full, low-frequency state. IsFullSnapshot is true
// for the periodic forced resync; low_freq_dirty-only sends still travel on
// this channel per spec (only high-frequency fields use the delta channel).
type GameStateSync struct {
	Tick           uint64
	ServerTimeMs   int64
	IsFullSnapshot bool
	Players        []PlayerState
	Enemies        []EnemyState
	Items          []ItemState
}

func (m GameStateSync) Marshal() []byte {
	w := NewWriter(64 + len(m.Players)*64 + len(m.Enemies)*32 + len(m.Items)*24)
	w.WriteUint64(m.Tick)
	w.WriteUint64(uint64(m.ServerTimeMs))
	w.WriteBool(m.IsFullSnapshot)
	w.WriteUint32(uint32(len(m.Players)))
	for _, p := range m.Players {
		p.marshalInto(w)
	}
	w.WriteUint32(uint32(len(m.Enemies)))
	for _, e := range m.Enemies {
		e.marshalInto(w)
	}
	w.WriteUint32(uint32(len(m.Items)))
	for _, it := range m.Items {
		it.marshalInto(w)
	}
	return w.Bytes()
}

func UnmarshalGameStateSync(data []byte) (GameStateSync, error) {
	r := NewReader(data)
	var m GameStateSync
	var err error
	tick, err := r.ReadUint64()
	if err != nil {
		return m, err
	}
	m.Tick = tick
	t, err := r.ReadUint64()
	if err != nil {
		return m, err
	}
	m.ServerTimeMs = int64(t)
	if m.IsFullSnapshot, err = r.ReadBool(); err != nil {
		return m, err
	}
	np, err := r.ReadUint32()
	if err != nil {
		return m, err
	}
	m.Players = make([]PlayerState, 0, np)
	for i := uint32(0); i < np; i++ {
		p, err := readPlayerState(r)
		if err != nil {
			return m, err
		}
		m.Players = append(m.Players, p)
	}
	ne, err := r.ReadUint32()
	if err != nil {
		return m, err
	}
	m.Enemies = make([]EnemyState, 0, ne)
	for i := uint32(0); i < ne; i++ {
		e, err := readEnemyState(r)
		if err != nil {
			return m, err
		}
		m.Enemies = append(m.Enemies, e)
	}
	ni, err := r.ReadUint32()
	if err != nil {
		return m, err
	}
	m.Items = make([]ItemState, 0, ni)
	for i := uint32(0); i < ni; i++ {
		it, err := readItemState(r)
		if err != nil {
			return m, err
		}
		m.Items = append(m.Items, it)
	}
	return m, nil
}

// Delta change masks. A field is present in the payload iff its bit is set.
const (
	PlayerDeltaPosition             uint32 = 1 << 0
	PlayerDeltaRotation             uint32 = 1 << 1
	PlayerDeltaIsAlive              uint32 = 1 << 2
	PlayerDeltaLastProcessedInputSeq uint32 = 1 << 3

	EnemyDeltaPosition uint32 = 1 << 0
	EnemyDeltaHealth   uint32 = 1 << 1
	EnemyDeltaIsAlive  uint32 = 1 << 2

	ItemDeltaPosition uint32 = 1 << 0
	ItemDeltaIsPicked uint32 = 1 << 1
	ItemDeltaType     uint32 = 1 << 2
)

type PlayerDelta struct {
	PlayerID              uint32
	Mask                  uint32
	Position              Vec2
	Rotation              float32
	IsAlive               bool
	LastProcessedInputSeq uint32
}

type EnemyDelta struct {
	EnemyID  uint32
	Mask     uint32
	Position Vec2
	Health   int32
	IsAlive  bool
}

type ItemDelta struct {
	ItemID   uint32
	Mask     uint32
	Position Vec2
	IsPicked bool
	TypeID   int32
}

// GameStateDeltaSync carries only the entities and fields that changed since
// the last sync of that entity.
type GameStateDeltaSync struct {
	Tick         uint64
	ServerTimeMs int64
	Players      []PlayerDelta
	Enemies      []EnemyDelta
	Items        []ItemDelta
}

func (m GameStateDeltaSync) Marshal() []byte {
	w := NewWriter(32 + len(m.Players)*20 + len(m.Enemies)*16 + len(m.Items)*16)
	w.WriteUint64(m.Tick)
	w.WriteUint64(uint64(m.ServerTimeMs))
	w.WriteUint32(uint32(len(m.Players)))
	for _, p := range m.Players {
		w.WriteUint32(p.PlayerID)
		w.WriteUint32(p.Mask)
		if p.Mask&PlayerDeltaPosition != 0 {
			w.WriteFloat32(p.Position.X)
			w.WriteFloat32(p.Position.Y)
		}
		if p.Mask&PlayerDeltaRotation != 0 {
			w.WriteFloat32(p.Rotation)
		}
		if p.Mask&PlayerDeltaIsAlive != 0 {
			w.WriteBool(p.IsAlive)
		}
		if p.Mask&PlayerDeltaLastProcessedInputSeq != 0 {
			w.WriteUint32(p.LastProcessedInputSeq)
		}
	}
	w.WriteUint32(uint32(len(m.Enemies)))
	for _, e := range m.Enemies {
		w.WriteUint32(e.EnemyID)
		w.WriteUint32(e.Mask)
		if e.Mask&EnemyDeltaPosition != 0 {
			w.WriteFloat32(e.Position.X)
			w.WriteFloat32(e.Position.Y)
		}
		if e.Mask&EnemyDeltaHealth != 0 {
			w.WriteInt32(e.Health)
		}
		if e.Mask&EnemyDeltaIsAlive != 0 {
			w.WriteBool(e.IsAlive)
		}
	}
	w.WriteUint32(uint32(len(m.Items)))
	for _, it := range m.Items {
		w.WriteUint32(it.ItemID)
		w.WriteUint32(it.Mask)
		if it.Mask&ItemDeltaPosition != 0 {
			w.WriteFloat32(it.Position.X)
			w.WriteFloat32(it.Position.Y)
		}
		if it.Mask&ItemDeltaIsPicked != 0 {
			w.WriteBool(it.IsPicked)
		}
		if it.Mask&ItemDeltaType != 0 {
			w.WriteInt32(it.TypeID)
		}
	}
	return w.Bytes()
}

func UnmarshalGameStateDeltaSync(data []byte) (GameStateDeltaSync, error) {
	r := NewReader(data)
	var m GameStateDeltaSync
	var err error
	if m.Tick, err = r.ReadUint64(); err != nil {
		return m, err
	}
	t, err := r.ReadUint64()
	if err != nil {
		return m, err
	}
	m.ServerTimeMs = int64(t)

	np, err := r.ReadUint32()
	if err != nil {
		return m, err
	}
	m.Players = make([]PlayerDelta, 0, np)
	for i := uint32(0); i < np; i++ {
		var p PlayerDelta
		if p.PlayerID, err = r.ReadUint32(); err != nil {
			return m, err
		}
		if p.Mask, err = r.ReadUint32(); err != nil {
			return m, err
		}
		if p.Mask&PlayerDeltaPosition != 0 {
			if p.Position.X, err = r.ReadFloat32(); err != nil {
				return m, err
			}
			if p.Position.Y, err = r.ReadFloat32(); err != nil {
				return m, err
			}
		}
		if p.Mask&PlayerDeltaRotation != 0 {
			if p.Rotation, err = r.ReadFloat32(); err != nil {
				return m, err
			}
		}
		if p.Mask&PlayerDeltaIsAlive != 0 {
			if p.IsAlive, err = r.ReadBool(); err != nil {
				return m, err
			}
		}
		if p.Mask&PlayerDeltaLastProcessedInputSeq != 0 {
			if p.LastProcessedInputSeq, err = r.ReadUint32(); err != nil {
				return m, err
			}
		}
		m.Players = append(m.Players, p)
	}

	ne, err := r.ReadUint32()
	if err != nil {
		return m, err
	}
	m.Enemies = make([]EnemyDelta, 0, ne)
	for i := uint32(0); i < ne; i++ {
		var e EnemyDelta
		if e.EnemyID, err = r.ReadUint32(); err != nil {
			return m, err
		}
		if e.Mask, err = r.ReadUint32(); err != nil {
			return m, err
		}
		if e.Mask&EnemyDeltaPosition != 0 {
			if e.Position.X, err = r.ReadFloat32(); err != nil {
				return m, err
			}
			if e.Position.Y, err = r.ReadFloat32(); err != nil {
				return m, err
			}
		}
		if e.Mask&EnemyDeltaHealth != 0 {
			if e.Health, err = r.ReadInt32(); err != nil {
				return m, err
			}
		}
		if e.Mask&EnemyDeltaIsAlive != 0 {
			if e.IsAlive, err = r.ReadBool(); err != nil {
				return m, err
			}
		}
		m.Enemies = append(m.Enemies, e)
	}

	ni, err := r.ReadUint32()
	if err != nil {
		return m, err
	}
	m.Items = make([]ItemDelta, 0, ni)
	for i := uint32(0); i < ni; i++ {
		var it ItemDelta
		if it.ItemID, err = r.ReadUint32(); err != nil {
			return m, err
		}
		if it.Mask, err = r.ReadUint32(); err != nil {
			return m, err
		}
		if it.Mask&ItemDeltaPosition != 0 {
			if it.Position.X, err = r.ReadFloat32(); err != nil {
				return m, err
			}
			if it.Position.Y, err = r.ReadFloat32(); err != nil {
				return m, err
			}
		}
		if it.Mask&ItemDeltaIsPicked != 0 {
			if it.IsPicked, err = r.ReadBool(); err != nil {
				return m, err
			}
		}
		if it.Mask&ItemDeltaType != 0 {
			if it.TypeID, err = r.ReadInt32(); err != nil {
				return m, err
			}
		}
		m.Items = append(m.Items, it)
	}
	return m, nil
}
