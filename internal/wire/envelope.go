package wire

// MsgType tags the payload carried by an Envelope. Values are stable across
// the reliable and unreliable channels.
type MsgType uint32

const (
	MsgUnknown MsgType = iota

	// Client -> Server
	MsgLogin
	MsgHeartbeat
	MsgReconnectRequest
	MsgCreateRoom
	MsgGetRoomList
	MsgJoinRoom
	MsgLeaveRoom
	MsgSetReady
	MsgRequestQuit
	MsgStartGame
	MsgPlayerInput
	MsgUpgradeRequestAck
	MsgUpgradeOptionsAck
	MsgUpgradeSelect
	MsgUpgradeRefreshRequest

	// Server -> Client
	MsgLoginResult
	MsgHeartbeatResult
	MsgReconnectAck
	MsgCreateRoomResult
	MsgRoomList
	MsgJoinRoomResult
	MsgLeaveRoomResult
	MsgSetReadyResult
	MsgGameStart
	MsgRoomUpdate
	MsgGameStateSync
	MsgGameStateDeltaSync
	MsgProjectileSpawn
	MsgProjectileDespawn
	MsgDroppedItem
	MsgEnemyAttackStateSync
	MsgPlayerHurt
	MsgEnemyDied
	MsgPlayerLevelUp
	MsgUpgradeRequest
	MsgUpgradeOptions
	MsgUpgradeSelectAck
	MsgGameOver
)

// MaxFrameLen is the largest accepted reliable-frame body, per spec.
const MaxFrameLen = 64 * 1024

// Envelope is the unit carried on both channels: a type tag plus an opaque
// payload blob produced by one of the Marshal methods in messages_*.go.
type Envelope struct {
	Type    MsgType
	Payload []byte
}

// EncodeEnvelope serializes an envelope's type tag and payload into a single
// blob (no outer length prefix — that is added separately for the reliable
// channel by WriteFrame, and omitted entirely on datagrams).
func EncodeEnvelope(e Envelope) []byte {
	w := NewWriter(4 + len(e.Payload))
	w.WriteUint32(uint32(e.Type))
	w.buf = append(w.buf, e.Payload...)
	return w.Bytes()
}

// DecodeEnvelope parses a blob produced by EncodeEnvelope.
func DecodeEnvelope(data []byte) (Envelope, error) {
	r := NewReader(data)
	t, err := r.ReadUint32()
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: MsgType(t), Payload: data[r.pos:]}, nil
}
