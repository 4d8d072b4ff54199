package room

// MarkPlayerDisconnected flips playerID's connection flag and records the
// scene-relative elapsed time of the disconnect. Pending inputs and attack
// intent are cleared so nothing fires for an absent player while the room
// registry's wall-clock grace window (see roomreg.ExpireDisconnected) runs.
func (s *Scene) MarkPlayerDisconnected(playerID uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[playerID]
	if !ok {
		return
	}
	p.Connected = false
	p.DisconnectedAt = s.Elapsed
	p.FlushPendingInputs()
	p.wantsAttacking = false
}

// TryReconnectPlayer is TryReconnectPlayerLocked (spec §4.12 step 6):
// reattaches a returning player mid-match. Pending inputs, locked target,
// and attack intent are cleared so stale pre-drop intent doesn't fire the
// instant the player reappears, and last_input_seq/last_sync_input_seq are
// fast-forwarded to the client's reported value so monotonicity holds
// across the gap. Returns false if the scene no longer tracks playerID
// (e.g. it already expired past the grace window).
func (s *Scene) TryReconnectPlayer(playerID, lastInputSeq uint32, lastServerTick uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[playerID]
	if !ok {
		return false
	}
	p.Connected = true
	p.DisconnectedAt = 0
	p.FlushPendingInputs()
	p.wantsAttacking = false
	p.lockedTargetID = 0
	p.attackDirStale = true
	p.LastInputSeq = lastInputSeq
	p.lastSyncInputSeq = lastInputSeq
	s.MarkPlayerDirty(playerID, true)
	return true
}

// Snapshot returns a consistent read of the scene's tick counter and
// pause/game-over flags, used by callers outside the package (the
// reconnect ack, the tick loop's game-over check) that must not reach
// into Scene's unexported fields directly.
func (s *Scene) Snapshot() (tick uint64, paused, gameOver bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Tick, s.Paused, s.GameOver
}

// Done returns a channel closed when Stop is called, so a tick-driving
// goroutine can select on it alongside its ticker.
func (s *Scene) Done() <-chan struct{} { return s.stopCh }
