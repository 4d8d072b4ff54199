package gameserver

import (
	"net"
	"testing"
	"time"

	"github.com/udisondev/lawnmower-room/internal/config"
	"github.com/udisondev/lawnmower-room/internal/room"
	"github.com/udisondev/lawnmower-room/internal/roomreg"
	"github.com/udisondev/lawnmower-room/internal/session"
	"github.com/udisondev/lawnmower-room/internal/tokenstore"
	"github.com/udisondev/lawnmower-room/internal/wire"
)

// stubBroadcaster satisfies room.Broadcaster without touching a network,
// so the background tick goroutine a running match spawns has somewhere
// harmless to send to.
type stubBroadcaster struct{}

func (stubBroadcaster) BroadcastState(roomID uint32, e wire.Envelope) int      { return 0 }
func (stubBroadcaster) BroadcastDeltaState(roomID uint32, e wire.Envelope) int { return 0 }
func (stubBroadcaster) Forget(playerID uint32)                                {}

// stubMetrics satisfies room.MetricsSink with no persistence, for tests
// that only care about the session/room-registry/scene wiring.
type stubMetrics struct{}

func (stubMetrics) RecordSample(roomID uint32, sample room.TickSample)   {}
func (stubMetrics) RecordMatchEnd(roomID uint32, summary room.MatchSummary) {}

func testConfigs() Configs {
	return Configs{
		Server:  config.DefaultServerConfig(),
		Roles:   config.DefaultPlayerRolesConfig(),
		Enemies: config.DefaultEnemyTypesConfig(),
		Items:   config.DefaultItemsConfig(),
		Upgrade: config.DefaultUpgradeConfig(),
	}
}

func newTestApp() *App {
	tokens := tokenstore.New()
	rooms := roomreg.New()
	app := New(tokens, rooms, testConfigs(), stubMetrics{})
	app.SetBroadcaster(stubBroadcaster{})
	return app
}

// testClient is one logged-in player wired through a real session.Session
// over net.Pipe, driven by the App under test.
type testClient struct {
	t    *testing.T
	sess *session.Session
	conn net.Conn
}

func connectAndLogin(t *testing.T, app *App, name string) *testClient {
	t.Helper()
	server, client := net.Pipe()
	gw := session.NewGateway(app.tokens, app)
	s := gw.Accept(server)
	go s.Run()
	t.Cleanup(func() { client.Close() })

	if err := wire.WriteFrame(client, wire.Envelope{Type: wire.MsgLogin, Payload: wire.Login{Name: name}.Marshal()}); err != nil {
		t.Fatalf("WriteFrame(login) error = %v", err)
	}
	e := readEnvelope(t, client)
	if e.Type != wire.MsgLoginResult {
		t.Fatalf("login reply type = %v, want MsgLoginResult", e.Type)
	}
	result, err := wire.UnmarshalLoginResult(e.Payload)
	if err != nil || !result.Success {
		t.Fatalf("login failed: err=%v result=%+v", err, result)
	}
	return &testClient{t: t, sess: s, conn: client}
}

func (c *testClient) send(e wire.Envelope) {
	c.t.Helper()
	if err := wire.WriteFrame(c.conn, e); err != nil {
		c.t.Fatalf("WriteFrame() error = %v", err)
	}
}

func readEnvelope(t *testing.T, conn net.Conn) wire.Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	e, err := wire.ReadFrame(conn)
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	return e
}

// readUntil reads envelopes until one of the given types shows up, or the
// deadline elapses; other message types (e.g. RoomUpdate broadcasts
// interleaved with the direct reply) are discarded.
func readUntil(t *testing.T, conn net.Conn, want wire.MsgType) wire.Envelope {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		e, err := wire.ReadFrame(conn)
		if err != nil {
			t.Fatalf("ReadFrame() error = %v", err)
		}
		if e.Type == want {
			return e
		}
	}
	t.Fatalf("did not see message type %v before deadline", want)
	return wire.Envelope{}
}

func TestRoomOperationsRejectedWithoutLogin(t *testing.T) {
	app := newTestApp()
	server, client := net.Pipe()
	gw := session.NewGateway(app.tokens, app)
	s := gw.Accept(server)
	go s.Run()
	t.Cleanup(func() { client.Close() })

	wire.WriteFrame(client, wire.Envelope{Type: wire.MsgCreateRoom, Payload: wire.CreateRoom{RoomName: "x", MaxPlayers: 4}.Marshal()})
	e := readEnvelope(t, client)
	if e.Type != wire.MsgCreateRoomResult {
		t.Fatalf("reply type = %v, want MsgCreateRoomResult", e.Type)
	}
	result, _ := wire.UnmarshalCreateRoomResult(e.Payload)
	if result.Success {
		t.Fatal("CreateRoom before login should be rejected")
	}
}

func TestTwoPlayerRoomStart(t *testing.T) {
	app := newTestApp()
	host := connectAndLogin(t, app, "host")
	guest := connectAndLogin(t, app, "guest")

	host.send(wire.Envelope{Type: wire.MsgCreateRoom, Payload: wire.CreateRoom{RoomName: "room", MaxPlayers: 4}.Marshal()})
	e := readEnvelope(t, host.conn)
	createResult, err := wire.UnmarshalCreateRoomResult(e.Payload)
	if err != nil || !createResult.Success {
		t.Fatalf("CreateRoom failed: err=%v result=%+v", err, createResult)
	}

	guest.send(wire.Envelope{Type: wire.MsgJoinRoom, Payload: wire.JoinRoom{RoomID: createResult.RoomID}.Marshal()})
	e = readUntil(t, guest.conn, wire.MsgJoinRoomResult)
	joinResult, err := wire.UnmarshalJoinRoomResult(e.Payload)
	if err != nil || !joinResult.Success {
		t.Fatalf("JoinRoom failed: err=%v result=%+v", err, joinResult)
	}
	readUntil(t, host.conn, wire.MsgRoomUpdate) // host sees guest join

	guest.send(wire.Envelope{Type: wire.MsgSetReady, Payload: wire.SetReady{IsReady: true}.Marshal()})
	e = readUntil(t, guest.conn, wire.MsgSetReadyResult)
	readyResult, _ := wire.UnmarshalSetReadyResult(e.Payload)
	if !readyResult.Success {
		t.Fatalf("SetReady failed: %+v", readyResult)
	}
	readUntil(t, host.conn, wire.MsgRoomUpdate)

	host.send(wire.Envelope{Type: wire.MsgStartGame})
	e = readUntil(t, host.conn, wire.MsgGameStart)
	startResult, _ := wire.UnmarshalGameStart(e.Payload)
	if !startResult.Success || startResult.RoomID != createResult.RoomID {
		t.Fatalf("GameStart = %+v, want success for room %d", startResult, createResult.RoomID)
	}
	readUntil(t, host.conn, wire.MsgGameStateSync)

	if _, ok := app.getScene(createResult.RoomID); !ok {
		t.Fatal("a Scene should be running for the started room")
	}

	// Tear the match down so the background tick goroutine exits: both
	// players leaving empties the room, which stops the Scene.
	host.send(wire.Envelope{Type: wire.MsgLeaveRoom})
	readUntil(t, host.conn, wire.MsgLeaveRoomResult)
	guest.send(wire.Envelope{Type: wire.MsgLeaveRoom})
	readUntil(t, guest.conn, wire.MsgLeaveRoomResult)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := app.getScene(createResult.RoomID); !ok {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("scene was not torn down after both players left")
}
