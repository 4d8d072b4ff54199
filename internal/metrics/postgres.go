package metrics

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/lawnmower-room/internal/room"
)

// postgresWriter mirrors tick samples and match summaries into Postgres.
// Grounded on the teacher's internal/db repositories: a thin struct
// wrapping a *pgxpool.Pool, one method per statement, errors wrapped
// with the operation name.
type postgresWriter struct {
	pool *pgxpool.Pool
}

// NewPostgresWriter connects to dsn and verifies the connection. Callers
// own the returned pool's lifetime via Close.
func NewPostgresWriter(ctx context.Context, dsn string) (*postgresWriter, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("metrics: connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("metrics: pinging postgres: %w", err)
	}
	return &postgresWriter{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (w *postgresWriter) Close() {
	w.pool.Close()
}

func (w *postgresWriter) insertSample(ctx context.Context, roomID uint32, runID string, sample room.TickSample) error {
	_, err := w.pool.Exec(ctx, `
		INSERT INTO room_ticks (room_id, run_id, tick, tick_duration_ms, player_count, enemy_count,
			projectile_count, item_count, dirty_players, dirty_enemies, dirty_items, paused)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		roomID, runID, sample.Tick, sample.TickDurationMs, sample.PlayerCount, sample.EnemyCount,
		sample.ProjectileCount, sample.ItemCount, sample.DirtyPlayers, sample.DirtyEnemies, sample.DirtyItems, sample.Paused,
	)
	if err != nil {
		return fmt.Errorf("inserting tick sample: %w", err)
	}
	return nil
}

func (w *postgresWriter) insertMatchEnd(ctx context.Context, roomID uint32, runID string, summary room.MatchSummary) error {
	_, err := w.pool.Exec(ctx, `
		INSERT INTO room_matches (room_id, run_id, tick_count, avg_tick_ms, max_tick_ms, min_tick_ms,
			p95_tick_ms, survive_seconds, victory)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (room_id, run_id) DO UPDATE SET
			tick_count = EXCLUDED.tick_count, avg_tick_ms = EXCLUDED.avg_tick_ms,
			max_tick_ms = EXCLUDED.max_tick_ms, min_tick_ms = EXCLUDED.min_tick_ms,
			p95_tick_ms = EXCLUDED.p95_tick_ms, survive_seconds = EXCLUDED.survive_seconds,
			victory = EXCLUDED.victory`,
		roomID, runID, summary.TickCount, summary.AvgTickMs, summary.MaxTickMs, summary.MinTickMs,
		summary.P95TickMs, summary.SurviveSeconds, summary.Victory,
	)
	if err != nil {
		return fmt.Errorf("inserting match summary: %w", err)
	}
	return nil
}
