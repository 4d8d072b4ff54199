package datagram

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/udisondev/lawnmower-room/internal/tokenstore"
	"github.com/udisondev/lawnmower-room/internal/wire"
)

type fakeHandler struct {
	mu      sync.Mutex
	room    map[uint32]uint32
	inputs  []wire.PlayerInput
	rooms   []uint32
}

func (h *fakeHandler) RoomForPlayer(playerID uint32) (uint32, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.room[playerID]
	return r, ok
}

func (h *fakeHandler) HandlePlayerInput(roomID uint32, in wire.PlayerInput) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.inputs = append(h.inputs, in)
	h.rooms = append(h.rooms, roomID)
}

func encodeInput(in wire.PlayerInput) []byte {
	return wire.EncodeDatagram(wire.Envelope{Type: wire.MsgPlayerInput, Payload: in.Marshal()})
}

func newTestServer(t *testing.T, handler InputHandler, tokens *tokenstore.Store) *Server {
	t.Helper()
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return NewServer(conn, tokens, handler)
}

func TestHandleDatagramDropsInvalidToken(t *testing.T) {
	tokens := tokenstore.New()
	tokens.Register(1, "real-token")
	handler := &fakeHandler{room: map[uint32]uint32{1: 7}}
	srv := newTestServer(t, handler, tokens)

	srv.handleDatagram(encodeInput(wire.PlayerInput{PlayerID: 1, Token: "wrong-token", Seq: 1}), &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 1234})

	handler.mu.Lock()
	defer handler.mu.Unlock()
	if len(handler.inputs) != 0 {
		t.Fatalf("expected input with bad token to be dropped")
	}
	if len(srv.endpoints) != 0 {
		t.Fatalf("expected no endpoint entry to be created for a bad token")
	}
}

func TestHandleDatagramDropsZeroPlayerID(t *testing.T) {
	tokens := tokenstore.New()
	handler := &fakeHandler{room: map[uint32]uint32{}}
	srv := newTestServer(t, handler, tokens)

	srv.handleDatagram(encodeInput(wire.PlayerInput{PlayerID: 0, Seq: 1}), &net.UDPAddr{})

	if len(handler.inputs) != 0 {
		t.Fatalf("expected input with zero player id to be dropped")
	}
}

func TestHandleDatagramDropsWhenRoomLookupFails(t *testing.T) {
	tokens := tokenstore.New()
	tokens.Register(1, "tok")
	handler := &fakeHandler{room: map[uint32]uint32{}}
	srv := newTestServer(t, handler, tokens)

	srv.handleDatagram(encodeInput(wire.PlayerInput{PlayerID: 1, Token: "tok", Seq: 1}), &net.UDPAddr{})

	if len(handler.inputs) != 0 {
		t.Fatalf("expected input to be dropped when the player isn't in any room")
	}
	if len(srv.endpoints) != 0 {
		t.Fatalf("expected no endpoint entry when the room lookup fails")
	}
}

func TestHandleDatagramAcceptsValidInputAndRecordsEndpoint(t *testing.T) {
	tokens := tokenstore.New()
	tokens.Register(1, "tok")
	handler := &fakeHandler{room: map[uint32]uint32{1: 7}}
	srv := newTestServer(t, handler, tokens)
	addr := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 9999}

	srv.handleDatagram(encodeInput(wire.PlayerInput{PlayerID: 1, Token: "tok", Seq: 5}), addr)

	handler.mu.Lock()
	defer handler.mu.Unlock()
	if len(handler.inputs) != 1 || handler.inputs[0].Seq != 5 {
		t.Fatalf("expected the input to be forwarded, got %+v", handler.inputs)
	}
	if handler.rooms[0] != 7 {
		t.Fatalf("expected room id 7 to be forwarded, got %d", handler.rooms[0])
	}
	if _, ok := srv.endpoints[1]; !ok {
		t.Fatalf("expected an endpoint entry for player 1")
	}
}

func TestHandleDatagramSilentlyDropsMalformedPayload(t *testing.T) {
	tokens := tokenstore.New()
	handler := &fakeHandler{room: map[uint32]uint32{}}
	srv := newTestServer(t, handler, tokens)
	srv.handleDatagram([]byte{0xff, 0xff}, &net.UDPAddr{})
	if len(handler.inputs) != 0 {
		t.Fatalf("expected malformed payload to be dropped silently")
	}
}

func TestSweepEvictsExpiredEndpoints(t *testing.T) {
	tokens := tokenstore.New()
	handler := &fakeHandler{room: map[uint32]uint32{}}
	srv := newTestServer(t, handler, tokens)

	srv.mu.Lock()
	srv.endpoints[1] = endpoint{addr: &net.UDPAddr{}, roomID: 1, lastSeen: time.Now().Add(-2 * kEndpointTTL)}
	srv.endpoints[2] = endpoint{addr: &net.UDPAddr{}, roomID: 1, lastSeen: time.Now()}
	srv.mu.Unlock()

	recipients := srv.recipientsFor(1)
	if len(recipients) != 1 {
		t.Fatalf("expected only the fresh endpoint to survive the sweep, got %d", len(recipients))
	}
}

func TestForgetRemovesEndpoint(t *testing.T) {
	tokens := tokenstore.New()
	handler := &fakeHandler{room: map[uint32]uint32{}}
	srv := newTestServer(t, handler, tokens)

	srv.mu.Lock()
	srv.endpoints[1] = endpoint{addr: &net.UDPAddr{}, roomID: 1, lastSeen: time.Now()}
	srv.mu.Unlock()

	srv.Forget(1)
	if _, ok := srv.endpoints[1]; ok {
		t.Fatalf("expected endpoint to be removed")
	}
}
