package roomreg

import (
	"errors"
	"testing"
	"time"
)

func TestCreateRoomRejectsDoubleMembership(t *testing.T) {
	r := New()
	room, err := r.CreateRoom("first", 4, 1, "alice", nil)
	if err != nil {
		t.Fatalf("CreateRoom() error = %v", err)
	}
	if !room.Players()[0].Host || !room.Players()[0].Ready {
		t.Fatal("host should start Host=true, Ready=true")
	}

	if _, err := r.CreateRoom("second", 4, 1, "alice", nil); !errors.Is(err, ErrAlreadyInRoom) {
		t.Fatalf("CreateRoom() for already-in-room player error = %v, want ErrAlreadyInRoom", err)
	}
}

func TestJoinRoomEnforcesCapacityAndPlayingState(t *testing.T) {
	r := New()
	room, _ := r.CreateRoom("room", 2, 1, "host", nil)

	if _, err := r.JoinRoom(room.ID, 2, "bob", nil); err != nil {
		t.Fatalf("JoinRoom() error = %v", err)
	}
	if _, err := r.JoinRoom(room.ID, 3, "carol", nil); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("JoinRoom() on full room error = %v, want ErrRoomFull", err)
	}
	if _, err := r.JoinRoom(999, 4, "dave", nil); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("JoinRoom() on missing room error = %v, want ErrRoomNotFound", err)
	}

	if _, err := r.SetReady(2, true); err != nil {
		t.Fatalf("SetReady() error = %v", err)
	}
	if _, err := r.TryStartGame(1); err != nil {
		t.Fatalf("TryStartGame() error = %v", err)
	}
	if _, err := r.JoinRoom(room.ID, 5, "erin", nil); !errors.Is(err, ErrAlreadyPlaying) {
		t.Fatalf("JoinRoom() on playing room error = %v, want ErrAlreadyPlaying", err)
	}
}

func TestTryStartGameRequiresHostAndAllReady(t *testing.T) {
	r := New()
	room, _ := r.CreateRoom("room", 4, 1, "host", nil)
	r.JoinRoom(room.ID, 2, "bob", nil)

	if _, err := r.TryStartGame(2); !errors.Is(err, ErrNotHost) {
		t.Fatalf("TryStartGame() by non-host error = %v, want ErrNotHost", err)
	}
	if _, err := r.TryStartGame(1); !errors.Is(err, ErrNotAllReady) {
		t.Fatalf("TryStartGame() with unready member error = %v, want ErrNotAllReady", err)
	}

	r.SetReady(2, true)
	snap, err := r.TryStartGame(1)
	if err != nil {
		t.Fatalf("TryStartGame() error = %v", err)
	}
	if snap.RoomID != room.ID || len(snap.Players) != 2 {
		t.Fatalf("TryStartGame() snapshot = %+v, want room %d with 2 players", snap, room.ID)
	}
}

func TestLeaveRoomPromotesNextHostAndDeletesEmptyRoom(t *testing.T) {
	r := New()
	room, _ := r.CreateRoom("room", 4, 1, "host", nil)
	r.JoinRoom(room.ID, 2, "bob", nil)

	if _, err := r.LeaveRoom(1); err != nil {
		t.Fatalf("LeaveRoom() error = %v", err)
	}
	got, ok := r.Room(room.ID)
	if !ok {
		t.Fatal("room should still exist with one member left")
	}
	if !got.Players()[0].Host {
		t.Fatal("remaining member should be promoted to host")
	}

	if _, err := r.LeaveRoom(2); err != nil {
		t.Fatalf("LeaveRoom() error = %v", err)
	}
	if _, ok := r.Room(room.ID); ok {
		t.Fatal("room should be deleted once empty")
	}
}

func TestAttachSessionRejectsRoomMismatch(t *testing.T) {
	r := New()
	roomA, _ := r.CreateRoom("a", 4, 1, "host", nil)
	r.CreateRoom("b", 4, 2, "other", nil)

	if _, err := r.AttachSession(1, roomA.ID+1, nil); !errors.Is(err, ErrTokenMismatch) {
		t.Fatalf("AttachSession() with wrong room id error = %v, want ErrTokenMismatch", err)
	}
	if _, err := r.AttachSession(1, roomA.ID, nil); err != nil {
		t.Fatalf("AttachSession() with matching room id error = %v", err)
	}
	if _, err := r.AttachSession(1, 0, nil); err != nil {
		t.Fatalf("AttachSession() with zero room id (unknown) error = %v", err)
	}
}

func TestExpireDisconnectedRemovesOnlyPastGraceWindow(t *testing.T) {
	r := New()
	room, _ := r.CreateRoom("room", 4, 1, "host", nil)
	r.JoinRoom(room.ID, 2, "bob", nil)

	base := time.Now()
	r.MarkPlayerDisconnected(2, base)

	expired := r.ExpireDisconnected(room.ID, 30, base.Add(10*time.Second))
	if len(expired) != 0 {
		t.Fatalf("ExpireDisconnected() before grace elapsed = %v, want none expired", expired)
	}

	expired = r.ExpireDisconnected(room.ID, 30, base.Add(31*time.Second))
	if len(expired) != 1 || expired[0] != 2 {
		t.Fatalf("ExpireDisconnected() after grace elapsed = %v, want [2]", expired)
	}
	if _, in := r.RoomForPlayer(2); in {
		t.Fatal("expired player should no longer be tracked in the room")
	}
}
