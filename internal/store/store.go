// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/aimtui/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for run history. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Single connection: concurrent SSH sessions queue on the one writer.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY,
			uuid TEXT NOT NULL UNIQUE,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			mode INTEGER NOT NULL,
			duration_sec INTEGER NOT NULL,
			target_size INTEGER NOT NULL,
			delay_ms INTEGER NOT NULL,
			hits INTEGER NOT NULL,
			misses INTEGER NOT NULL,
			elapsed_ms INTEGER NOT NULL,
			reason TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_reactions (
			run_id INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			reaction_ms REAL NOT NULL,
			PRIMARY KEY (run_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ended_at ON runs(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_mode ON runs(mode);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores a finished run and its reaction samples.
func (s *Store) InsertRun(ctx context.Context, rec model.RunRecord) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (uuid, started_at, ended_at, mode, duration_sec, target_size, delay_ms, hits, misses, elapsed_ms, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.UUID,
		rec.StartedAt.Format(time.RFC3339Nano),
		rec.EndedAt.Format(time.RFC3339Nano),
		int(rec.Config.Mode),
		rec.Config.DurationSec,
		rec.Config.TargetSizePx,
		rec.Config.DelayMs,
		rec.Hits,
		rec.Misses,
		rec.ElapsedMs,
		string(rec.Reason),
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(rec.ReactionsMs) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO run_reactions (run_id, seq, reaction_ms) VALUES (?, ?, ?)`)
		if perr != nil {
			err = perr
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, ms := range rec.ReactionsMs {
			if _, err = stmt.ExecContext(ctx, id, i, ms); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListRuns returns run aggregates filtered by stats config, oldest first.
func (s *Store) ListRuns(ctx context.Context, cfg model.StatsConfig) ([]model.RunAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Mode != 0 {
		clauses = append(clauses, "r.mode = ?")
		args = append(args, int(cfg.Mode))
	}
	if cfg.Since != nil {
		clauses = append(clauses, "r.ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT r.id, r.uuid, r.ended_at, r.mode, r.duration_sec, r.target_size,
			r.hits, r.misses, r.elapsed_ms, r.reason,
			COUNT(rr.seq), COALESCE(AVG(rr.reaction_ms), 0.0), COALESCE(MIN(rr.reaction_ms), 0.0)
		FROM runs r
		LEFT JOIN run_reactions rr ON rr.run_id = r.id
		WHERE %s
		GROUP BY r.id
		ORDER BY r.ended_at ASC, r.id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.RunAggregate
	for rows.Next() {
		var agg model.RunAggregate
		var endedAt, reason string
		var mode int
		if err := rows.Scan(&agg.RunID, &agg.UUID, &endedAt, &mode, &agg.DurationSec, &agg.TargetSizePx,
			&agg.Hits, &agg.Misses, &agg.ElapsedMs, &reason,
			&agg.Samples, &agg.AvgReactionMs, &agg.BestReactionMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		agg.Mode = model.Mode(mode)
		agg.Reason = model.EndReason(reason)
		runs = append(runs, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// ListReactions returns the ordered reaction samples for the given runs.
func (s *Store) ListReactions(ctx context.Context, runIDs []int64) (map[int64][]float64, error) {
	result := map[int64][]float64{}
	if len(runIDs) == 0 {
		return result, nil
	}
	placeholders := make([]string, len(runIDs))
	args := make([]any, len(runIDs))
	for i, id := range runIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT run_id, reaction_ms
		FROM run_reactions
		WHERE run_id IN (%s)
		ORDER BY run_id, seq`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	for rows.Next() {
		var runID int64
		var ms float64
		if err := rows.Scan(&runID, &ms); err != nil {
			return nil, err
		}
		result[runID] = append(result[runID], ms)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
