// Package sqlite persists agent snapshots in an embedded SQLite database.
// It is the single-node option: no external services, one file on disk.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/saworbit/spectra/snapshot"
)

const schema = `
	CREATE TABLE IF NOT EXISTS agent_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		agent_id TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		hostname TEXT,
		total_size_bytes INTEGER NOT NULL,
		file_count INTEGER NOT NULL,
		top_extensions TEXT NOT NULL DEFAULT '[]'
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_agent_ts ON agent_snapshots(agent_id, timestamp DESC);
`

// Store implements snapshot.Store on a SQLite file. Rows accumulate
// append-only; duplicate (agent, timestamp) pairs both persist, and the
// later insert wins timestamp ties on lookup.
type Store struct {
	db *sql.DB
}

// Open opens (creating on first use) the snapshot database at path and
// applies the schema. WAL mode keeps ingest writes from blocking readers.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal_mode = WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append validates and inserts one snapshot row.
func (s *Store) Append(ctx context.Context, snap *snapshot.AgentSnapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}

	exts, err := json.Marshal(snap.TopExtensions)
	if err != nil {
		return fmt.Errorf("failed to marshal extensions: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO agent_snapshots (agent_id, timestamp, hostname, total_size_bytes, file_count, top_extensions)
		VALUES (?, ?, ?, ?, ?, ?)`,
		snap.AgentID, snap.Timestamp, snap.Hostname,
		int64(snap.TotalSizeBytes), int64(snap.FileCount), string(exts))
	if err != nil {
		return fmt.Errorf("%w: %v", snapshot.ErrStoreUnavailable, err)
	}
	return nil
}

// LatestAt resolves the most recent snapshot for agentID at or before ts.
// A miss is (nil, nil); only database failures surface as errors.
func (s *Store) LatestAt(ctx context.Context, agentID string, ts int64) (*snapshot.AgentSnapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT agent_id, timestamp, hostname, total_size_bytes, file_count, top_extensions
		FROM agent_snapshots
		WHERE agent_id = ? AND timestamp <= ?
		ORDER BY timestamp DESC, id DESC
		LIMIT 1`, agentID, ts)

	var snap snapshot.AgentSnapshot
	var size, count int64
	var exts string
	err := row.Scan(&snap.AgentID, &snap.Timestamp, &snap.Hostname, &size, &count, &exts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", snapshot.ErrStoreUnavailable, err)
	}

	snap.TotalSizeBytes = uint64(size)
	snap.FileCount = uint64(count)
	if err := json.Unmarshal([]byte(exts), &snap.TopExtensions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal extensions: %w", err)
	}
	return &snap, nil
}

// Timestamps lists every stored timestamp for agentID, newest first.
func (s *Store) Timestamps(ctx context.Context, agentID string) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp FROM agent_snapshots
		WHERE agent_id = ?
		ORDER BY timestamp DESC`, agentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", snapshot.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var stamps []int64
	for rows.Next() {
		var ts int64
		if err := rows.Scan(&ts); err != nil {
			return nil, fmt.Errorf("%w: %v", snapshot.ErrStoreUnavailable, err)
		}
		stamps = append(stamps, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", snapshot.ErrStoreUnavailable, err)
	}
	return stamps, nil
}
