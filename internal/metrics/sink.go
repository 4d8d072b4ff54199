// Package metrics is the scene engine's MetricsSink implementation: a
// per-tick sample and end-of-match summary land here from
// internal/room, and are persisted either as one JSON file per match
// (the default, zero-dependency backend) or as rows in Postgres when
// the operator config asks for it. Grounded on the teacher's
// internal/db/persistence.go (one writer type per storage shape, a
// single DB handle injected at construction) and internal/db/migrate.go
// (goose bootstrap for the Postgres path).
package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/lawnmower-room/internal/room"
)

// Sink implements room.MetricsSink. A zero-value Sink is not usable;
// construct with New.
type Sink struct {
	root string
	pg   *postgresWriter

	mu     sync.Mutex
	runIDs map[uint32]string
}

// New builds a file-backed Sink rooted at root (the five-minute-match
// JSON dump path from spec §6). Pass a non-nil pg to also mirror
// samples into Postgres.
func New(root string, pg *postgresWriter) *Sink {
	return &Sink{root: root, pg: pg, runIDs: make(map[uint32]string)}
}

func (s *Sink) runID(roomID uint32) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.runIDs[roomID]
	if !ok {
		id = uuid.NewString()
		s.runIDs[roomID] = id
	}
	return id
}

// RecordSample mirrors a single tick's perf sample into Postgres when a
// backend is configured; the file backend only writes the end-of-match
// summary, so this is a no-op there.
func (s *Sink) RecordSample(roomID uint32, sample room.TickSample) {
	if s.pg == nil {
		return
	}
	runID := s.runID(roomID)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.pg.insertSample(ctx, roomID, runID, sample); err != nil {
		slog.Warn("metrics: postgres sample insert failed", "room", roomID, "error", err)
	}
}

// RecordMatchEnd writes the match summary to a JSON file under
// root/YYYY-MM-DD/room_<id>_run_<epoch_ms>.json and, if configured,
// upserts a summary row in Postgres. The run id is consumed here so the
// next match in the same room gets a fresh one.
func (s *Sink) RecordMatchEnd(roomID uint32, summary room.MatchSummary) {
	s.mu.Lock()
	runID, ok := s.runIDs[roomID]
	delete(s.runIDs, roomID)
	s.mu.Unlock()
	if !ok {
		runID = uuid.NewString()
	}

	now := time.Now()
	if err := s.writeFile(roomID, runID, now, summary); err != nil {
		slog.Warn("metrics: file write failed", "room", roomID, "error", err)
	}

	if s.pg != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.pg.insertMatchEnd(ctx, roomID, runID, summary); err != nil {
			slog.Warn("metrics: postgres match-end insert failed", "room", roomID, "error", err)
		}
	}
}

type matchRecord struct {
	RunID string `json:"run_id"`
	room.MatchSummary
}

func (s *Sink) writeFile(roomID uint32, runID string, at time.Time, summary room.MatchSummary) error {
	dir := filepath.Join(s.root, at.Format("2006-01-02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("metrics: creating %s: %w", dir, err)
	}
	name := fmt.Sprintf("room_%d_run_%d.json", roomID, at.UnixMilli())
	data, err := json.MarshalIndent(matchRecord{RunID: runID, MatchSummary: summary}, "", "  ")
	if err != nil {
		return fmt.Errorf("metrics: marshaling summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("metrics: writing %s: %w", name, err)
	}
	return nil
}
