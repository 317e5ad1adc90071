package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/saworbit/spectra/snapshot"
)

// Store implements snapshot.Store on a gorm connection. Rows accumulate
// append-only; duplicate (agent, timestamp) pairs both persist, and the
// later insert wins timestamp ties on lookup.
type Store struct {
	db *gorm.DB
}

// NewStore wraps an existing connection, typically the one from Connect.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Append validates and inserts one snapshot row.
func (s *Store) Append(ctx context.Context, snap *snapshot.AgentSnapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}

	rec := recordFromSnapshot(snap)
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("%w: %v", snapshot.ErrStoreUnavailable, err)
	}
	return nil
}

// LatestAt resolves the most recent snapshot for agentID at or before ts.
// A miss is (nil, nil); only database failures surface as errors.
func (s *Store) LatestAt(ctx context.Context, agentID string, ts int64) (*snapshot.AgentSnapshot, error) {
	var rec SnapshotRecord
	err := s.db.WithContext(ctx).
		Where("agent_id = ? AND timestamp <= ?", agentID, ts).
		Order("timestamp DESC, id DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", snapshot.ErrStoreUnavailable, err)
	}
	return rec.Snapshot(), nil
}

// Timestamps lists every stored timestamp for agentID, newest first.
func (s *Store) Timestamps(ctx context.Context, agentID string) ([]int64, error) {
	var stamps []int64
	err := s.db.WithContext(ctx).
		Model(&SnapshotRecord{}).
		Where("agent_id = ?", agentID).
		Order("timestamp DESC").
		Pluck("timestamp", &stamps).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", snapshot.ErrStoreUnavailable, err)
	}
	return stamps, nil
}
