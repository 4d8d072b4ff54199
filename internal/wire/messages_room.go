package wire

// CreateRoom asks the registry to create a new room with the sender as host.
type CreateRoom struct {
	RoomName   string
	MaxPlayers int32
}

func (m CreateRoom) Marshal() []byte {
	w := NewWriter(8 + len(m.RoomName))
	w.WriteString(m.RoomName)
	w.WriteInt32(m.MaxPlayers)
	return w.Bytes()
}

func UnmarshalCreateRoom(data []byte) (CreateRoom, error) {
	r := NewReader(data)
	var m CreateRoom
	var err error
	if m.RoomName, err = r.ReadString(); err != nil {
		return m, err
	}
	m.MaxPlayers, err = r.ReadInt32()
	return m, err
}

type CreateRoomResult struct {
	Success bool
	RoomID  uint32
	Message string
}

func (m CreateRoomResult) Marshal() []byte {
	w := NewWriter(8 + len(m.Message))
	w.WriteBool(m.Success)
	w.WriteUint32(m.RoomID)
	w.WriteString(m.Message)
	return w.Bytes()
}

func UnmarshalCreateRoomResult(data []byte) (CreateRoomResult, error) {
	r := NewReader(data)
	var m CreateRoomResult
	var err error
	if m.Success, err = r.ReadBool(); err != nil {
		return m, err
	}
	if m.RoomID, err = r.ReadUint32(); err != nil {
		return m, err
	}
	m.Message, err = r.ReadString()
	return m, err
}

type GetRoomList struct{}

func (GetRoomList) Marshal() []byte { return nil }

type RoomSummary struct {
	RoomID     uint32
	Name       string
	PlayerCt   int32
	MaxPlayers int32
	IsPlaying  bool
}

type RoomList struct {
	Rooms []RoomSummary
}

func (m RoomList) Marshal() []byte {
	w := NewWriter(4 + len(m.Rooms)*24)
	w.WriteUint32(uint32(len(m.Rooms)))
	for _, rm := range m.Rooms {
		w.WriteUint32(rm.RoomID)
		w.WriteString(rm.Name)
		w.WriteInt32(rm.PlayerCt)
		w.WriteInt32(rm.MaxPlayers)
		w.WriteBool(rm.IsPlaying)
	}
	return w.Bytes()
}

func UnmarshalRoomList(data []byte) (RoomList, error) {
	r := NewReader(data)
	n, err := r.ReadUint32()
	if err != nil {
		return RoomList{}, err
	}
	rooms := make([]RoomSummary, 0, n)
	for i := uint32(0); i < n; i++ {
		var rm RoomSummary
		if rm.RoomID, err = r.ReadUint32(); err != nil {
			return RoomList{}, err
		}
		if rm.Name, err = r.ReadString(); err != nil {
			return RoomList{}, err
		}
		if rm.PlayerCt, err = r.ReadInt32(); err != nil {
			return RoomList{}, err
		}
		if rm.MaxPlayers, err = r.ReadInt32(); err != nil {
			return RoomList{}, err
		}
		if rm.IsPlaying, err = r.ReadBool(); err != nil {
			return RoomList{}, err
		}
		rooms = append(rooms, rm)
	}
	return RoomList{Rooms: rooms}, nil
}

type JoinRoom struct {
	RoomID uint32
}

func (m JoinRoom) Marshal() []byte {
	w := NewWriter(4)
	w.WriteUint32(m.RoomID)
	return w.Bytes()
}

func UnmarshalJoinRoom(data []byte) (JoinRoom, error) {
	r := NewReader(data)
	id, err := r.ReadUint32()
	return JoinRoom{RoomID: id}, err
}

type JoinRoomResult struct {
	Success bool
	RoomID  uint32
	Message string
}

func (m JoinRoomResult) Marshal() []byte {
	w := NewWriter(8 + len(m.Message))
	w.WriteBool(m.Success)
	w.WriteUint32(m.RoomID)
	w.WriteString(m.Message)
	return w.Bytes()
}

func UnmarshalJoinRoomResult(data []byte) (JoinRoomResult, error) {
	r := NewReader(data)
	var m JoinRoomResult
	var err error
	if m.Success, err = r.ReadBool(); err != nil {
		return m, err
	}
	if m.RoomID, err = r.ReadUint32(); err != nil {
		return m, err
	}
	m.Message, err = r.ReadString()
	return m, err
}

type LeaveRoom struct{}

func (LeaveRoom) Marshal() []byte { return nil }

type LeaveRoomResult struct {
	Success bool
	Message string
}

func (m LeaveRoomResult) Marshal() []byte {
	w := NewWriter(4 + len(m.Message))
	w.WriteBool(m.Success)
	w.WriteString(m.Message)
	return w.Bytes()
}

func UnmarshalLeaveRoomResult(data []byte) (LeaveRoomResult, error) {
	r := NewReader(data)
	var m LeaveRoomResult
	var err error
	if m.Success, err = r.ReadBool(); err != nil {
		return m, err
	}
	m.Message, err = r.ReadString()
	return m, err
}

type SetReady struct {
	IsReady bool
}

func (m SetReady) Marshal() []byte {
	w := NewWriter(1)
	w.WriteBool(m.IsReady)
	return w.Bytes()
}

func UnmarshalSetReady(data []byte) (SetReady, error) {
	r := NewReader(data)
	v, err := r.ReadBool()
	return SetReady{IsReady: v}, err
}

type SetReadyResult struct {
	Success bool
	Message string
}

func (m SetReadyResult) Marshal() []byte {
	w := NewWriter(4 + len(m.Message))
	w.WriteBool(m.Success)
	w.WriteString(m.Message)
	return w.Bytes()
}

func UnmarshalSetReadyResult(data []byte) (SetReadyResult, error) {
	r := NewReader(data)
	var m SetReadyResult
	var err error
	if m.Success, err = r.ReadBool(); err != nil {
		return m, err
	}
	m.Message, err = r.ReadString()
	return m, err
}

type RequestQuit struct{}

func (RequestQuit) Marshal() []byte { return nil }

type StartGame struct{}

func (StartGame) Marshal() []byte { return nil }

type GameStart struct {
	Success bool
	RoomID  uint32
	Message string
}

func (m GameStart) Marshal() []byte {
	w := NewWriter(8 + len(m.Message))
	w.WriteBool(m.Success)
	w.WriteUint32(m.RoomID)
	w.WriteString(m.Message)
	return w.Bytes()
}

func UnmarshalGameStart(data []byte) (GameStart, error) {
	r := NewReader(data)
	var m GameStart
	var err error
	if m.Success, err = r.ReadBool(); err != nil {
		return m, err
	}
	if m.RoomID, err = r.ReadUint32(); err != nil {
		return m, err
	}
	m.Message, err = r.ReadString()
	return m, err
}

type RoomPlayerView struct {
	PlayerID uint32
	Name     string
	Ready    bool
	Host     bool
}

type RoomUpdate struct {
	RoomID    uint32
	IsPlaying bool
	Players   []RoomPlayerView
}

func (m RoomUpdate) Marshal() []byte {
	w := NewWriter(16 + len(m.Players)*24)
	w.WriteUint32(m.RoomID)
	w.WriteBool(m.IsPlaying)
	w.WriteUint32(uint32(len(m.Players)))
	for _, p := range m.Players {
		w.WriteUint32(p.PlayerID)
		w.WriteString(p.Name)
		w.WriteBool(p.Ready)
		w.WriteBool(p.Host)
	}
	return w.Bytes()
}

func UnmarshalRoomUpdate(data []byte) (RoomUpdate, error) {
	r := NewReader(data)
	var m RoomUpdate
	var err error
	if m.RoomID, err = r.ReadUint32(); err != nil {
		return m, err
	}
	if m.IsPlaying, err = r.ReadBool(); err != nil {
		return m, err
	}
	n, err := r.ReadUint32()
	if err != nil {
		return m, err
	}
	m.Players = make([]RoomPlayerView, 0, n)
	for i := uint32(0); i < n; i++ {
		var p RoomPlayerView
		if p.PlayerID, err = r.ReadUint32(); err != nil {
			return m, err
		}
		if p.Name, err = r.ReadString(); err != nil {
			return m, err
		}
		if p.Ready, err = r.ReadBool(); err != nil {
			return m, err
		}
		if p.Host, err = r.ReadBool(); err != nil {
			return m, err
		}
		m.Players = append(m.Players, p)
	}
	return m, nil
}
