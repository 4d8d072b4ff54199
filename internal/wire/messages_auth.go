package wire

// Login is the first message a session is allowed to send; a session that
// sends it twice is rejected (see internal/session).
type Login struct {
	Name string
}

func (m Login) Marshal() []byte {
	w := NewWriter(2 + len(m.Name))
	w.WriteString(m.Name)
	return w.Bytes()
}

func UnmarshalLogin(data []byte) (Login, error) {
	r := NewReader(data)
	name, err := r.ReadString()
	return Login{Name: name}, err
}

// LoginResult replies to Login. Message carries a localized failure reason
// when Success is false.
type LoginResult struct {
	Success      bool
	PlayerID     uint32
	SessionToken string
	Message      string
}

func (m LoginResult) Marshal() []byte {
	w := NewWriter(32 + len(m.SessionToken) + len(m.Message))
	w.WriteBool(m.Success)
	w.WriteUint32(m.PlayerID)
	w.WriteString(m.SessionToken)
	w.WriteString(m.Message)
	return w.Bytes()
}

func UnmarshalLoginResult(data []byte) (LoginResult, error) {
	r := NewReader(data)
	var m LoginResult
	var err error
	if m.Success, err = r.ReadBool(); err != nil {
		return m, err
	}
	if m.PlayerID, err = r.ReadUint32(); err != nil {
		return m, err
	}
	if m.SessionToken, err = r.ReadString(); err != nil {
		return m, err
	}
	m.Message, err = r.ReadString()
	return m, err
}

// Heartbeat has no payload; it never mutates scene state.
type Heartbeat struct{}

func (Heartbeat) Marshal() []byte { return nil }

// HeartbeatResult reports server wall time and active session count.
type HeartbeatResult struct {
	ServerTimeMs   int64
	ActiveSessions int32
}

func (m HeartbeatResult) Marshal() []byte {
	w := NewWriter(12)
	w.WriteUint64(uint64(m.ServerTimeMs))
	w.WriteInt32(m.ActiveSessions)
	return w.Bytes()
}

func UnmarshalHeartbeatResult(data []byte) (HeartbeatResult, error) {
	r := NewReader(data)
	var m HeartbeatResult
	v, err := r.ReadUint64()
	if err != nil {
		return m, err
	}
	m.ServerTimeMs = int64(v)
	m.ActiveSessions, err = r.ReadInt32()
	return m, err
}

// ReconnectRequest asks to resume a session for an existing player.
// SessionToken is empty when none was retained by the client.
type ReconnectRequest struct {
	PlayerID       uint32
	RoomID         uint32
	SessionToken   string
	LastInputSeq   uint32
	LastServerTick uint64
}

func (m ReconnectRequest) Marshal() []byte {
	w := NewWriter(24 + len(m.SessionToken))
	w.WriteUint32(m.PlayerID)
	w.WriteUint32(m.RoomID)
	w.WriteString(m.SessionToken)
	w.WriteUint32(m.LastInputSeq)
	w.WriteUint64(m.LastServerTick)
	return w.Bytes()
}

func UnmarshalReconnectRequest(data []byte) (ReconnectRequest, error) {
	r := NewReader(data)
	var m ReconnectRequest
	var err error
	if m.PlayerID, err = r.ReadUint32(); err != nil {
		return m, err
	}
	if m.RoomID, err = r.ReadUint32(); err != nil {
		return m, err
	}
	if m.SessionToken, err = r.ReadString(); err != nil {
		return m, err
	}
	if m.LastInputSeq, err = r.ReadUint32(); err != nil {
		return m, err
	}
	m.LastServerTick, err = r.ReadUint64()
	return m, err
}

// ReconnectAck replies to ReconnectRequest. Failure cases never mutate scene
// state beyond idempotent lookups.
type ReconnectAck struct {
	Success      bool
	PlayerID     uint32
	RoomID       uint32
	SessionToken string
	ServerTick   uint64
	IsPlaying    bool
	IsPaused     bool
	Message      string
}

func (m ReconnectAck) Marshal() []byte {
	w := NewWriter(40 + len(m.SessionToken) + len(m.Message))
	w.WriteBool(m.Success)
	w.WriteUint32(m.PlayerID)
	w.WriteUint32(m.RoomID)
	w.WriteString(m.SessionToken)
	w.WriteUint64(m.ServerTick)
	w.WriteBool(m.IsPlaying)
	w.WriteBool(m.IsPaused)
	w.WriteString(m.Message)
	return w.Bytes()
}

func UnmarshalReconnectAck(data []byte) (ReconnectAck, error) {
	r := NewReader(data)
	var m ReconnectAck
	var err error
	if m.Success, err = r.ReadBool(); err != nil {
		return m, err
	}
	if m.PlayerID, err = r.ReadUint32(); err != nil {
		return m, err
	}
	if m.RoomID, err = r.ReadUint32(); err != nil {
		return m, err
	}
	if m.SessionToken, err = r.ReadString(); err != nil {
		return m, err
	}
	if m.ServerTick, err = r.ReadUint64(); err != nil {
		return m, err
	}
	if m.IsPlaying, err = r.ReadBool(); err != nil {
		return m, err
	}
	if m.IsPaused, err = r.ReadBool(); err != nil {
		return m, err
	}
	m.Message, err = r.ReadString()
	return m, err
}
