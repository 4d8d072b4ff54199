package wire

// UpgradeRequestAck acknowledges an UpgradeRequest (None -> RequestSent ->
// OptionsSent transition trigger).
type UpgradeRequestAck struct{}

func (UpgradeRequestAck) Marshal() []byte { return nil }

// UpgradeOptionsAck acknowledges UpgradeOptions (OptionsSent -> WaitingSelect).
type UpgradeOptionsAck struct{}

func (UpgradeOptionsAck) Marshal() []byte { return nil }

// UpgradeSelect chooses one of the offered options (WaitingSelect -> ...).
type UpgradeSelect struct {
	OptionIndex int32
}

func (m UpgradeSelect) Marshal() []byte {
	w := NewWriter(4)
	w.WriteInt32(m.OptionIndex)
	return w.Bytes()
}

func UnmarshalUpgradeSelect(data []byte) (UpgradeSelect, error) {
	r := NewReader(data)
	v, err := r.ReadInt32()
	return UpgradeSelect{OptionIndex: v}, err
}

// UpgradeRefreshRequest rerolls the current offer, valid in any non-None
// stage for the designated player.
type UpgradeRefreshRequest struct{}

func (UpgradeRefreshRequest) Marshal() []byte { return nil }

// UpgradeRequest notifies the designated player that an upgrade is pending.
type UpgradeRequest struct {
	PlayerID uint32
	Reason   string
}

func (m UpgradeRequest) Marshal() []byte {
	w := NewWriter(8 + len(m.Reason))
	w.WriteUint32(m.PlayerID)
	w.WriteString(m.Reason)
	return w.Bytes()
}

func UnmarshalUpgradeRequest(data []byte) (UpgradeRequest, error) {
	r := NewReader(data)
	var m UpgradeRequest
	var err error
	if m.PlayerID, err = r.ReadUint32(); err != nil {
		return m, err
	}
	m.Reason, err = r.ReadString()
	return m, err
}

// UpgradeEffect describes one weight-sampled upgrade effect.
type UpgradeEffect struct {
	Type  string
	Level int32
	Value float32
}

// UpgradeOption is one of the (fixed at 3) offered choices.
type UpgradeOption struct {
	Index  int32
	Effect UpgradeEffect
}

type UpgradeOptions struct {
	PlayerID        uint32
	RefreshRemaining int32
	Options         []UpgradeOption
}

func (m UpgradeOptions) Marshal() []byte {
	w := NewWriter(16 + len(m.Options)*24)
	w.WriteUint32(m.PlayerID)
	w.WriteInt32(m.RefreshRemaining)
	w.WriteUint32(uint32(len(m.Options)))
	for _, o := range m.Options {
		w.WriteInt32(o.Index)
		w.WriteString(o.Effect.Type)
		w.WriteInt32(o.Effect.Level)
		w.WriteFloat32(o.Effect.Value)
	}
	return w.Bytes()
}

func UnmarshalUpgradeOptions(data []byte) (UpgradeOptions, error) {
	r := NewReader(data)
	var m UpgradeOptions
	var err error
	if m.PlayerID, err = r.ReadUint32(); err != nil {
		return m, err
	}
	if m.RefreshRemaining, err = r.ReadInt32(); err != nil {
		return m, err
	}
	n, err := r.ReadUint32()
	if err != nil {
		return m, err
	}
	m.Options = make([]UpgradeOption, 0, n)
	for i := uint32(0); i < n; i++ {
		var o UpgradeOption
		if o.Index, err = r.ReadInt32(); err != nil {
			return m, err
		}
		if o.Effect.Type, err = r.ReadString(); err != nil {
			return m, err
		}
		if o.Effect.Level, err = r.ReadInt32(); err != nil {
			return m, err
		}
		if o.Effect.Value, err = r.ReadFloat32(); err != nil {
			return m, err
		}
		m.Options = append(m.Options, o)
	}
	return m, nil
}

type UpgradeSelectAck struct {
	Success bool
	Message string
}

func (m UpgradeSelectAck) Marshal() []byte {
	w := NewWriter(4 + len(m.Message))
	w.WriteBool(m.Success)
	w.WriteString(m.Message)
	return w.Bytes()
}

func UnmarshalUpgradeSelectAck(data []byte) (UpgradeSelectAck, error) {
	r := NewReader(data)
	var m UpgradeSelectAck
	var err error
	if m.Success, err = r.ReadBool(); err != nil {
		return m, err
	}
	m.Message, err = r.ReadString()
	return m, err
}
