package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/saworbit/spectra/snapshot"
)

// snapshotKeyPrefix is the Valkey key prefix for stored agent snapshots.
// Full keys look like spectra:snapshot:<agent_id>:<unix_timestamp>.
const snapshotKeyPrefix = "spectra:snapshot:"

// SnapshotStore persists agent snapshots in Valkey, one key per
// (agent, timestamp) pair. It implements snapshot.Store. Unlike the
// in-memory store, re-ingesting an identical (agent, timestamp) pair
// overwrites the earlier copy: the key is the identity.
type SnapshotStore struct {
	kv KVStore
}

// NewSnapshotStore wraps an existing KV connection.
func NewSnapshotStore(kv KVStore) *SnapshotStore {
	return &SnapshotStore{kv: kv}
}

func snapshotKey(agentID string, ts int64) string {
	return fmt.Sprintf("%s%s:%d", snapshotKeyPrefix, agentID, ts)
}

// Append validates and stores one snapshot.
func (s *SnapshotStore) Append(ctx context.Context, snap *snapshot.AgentSnapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := s.kv.SetValue(ctx, snapshotKey(snap.AgentID, snap.Timestamp), string(data)); err != nil {
		return fmt.Errorf("%w: %v", snapshot.ErrStoreUnavailable, err)
	}
	return nil
}

// LatestAt resolves the most recent snapshot for agentID at or before ts.
// A miss is (nil, nil); only backend failures surface as errors.
func (s *SnapshotStore) LatestAt(ctx context.Context, agentID string, ts int64) (*snapshot.AgentSnapshot, error) {
	stamps, err := s.ascendingTimestamps(ctx, agentID)
	if err != nil {
		return nil, err
	}
	i := sort.Search(len(stamps), func(i int) bool { return stamps[i] > ts })
	if i == 0 {
		return nil, nil
	}

	value, err := s.kv.GetValue(ctx, snapshotKey(agentID, stamps[i-1]))
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			// Deleted between KEYS and GET; treat as missing.
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", snapshot.ErrStoreUnavailable, err)
	}

	var snap snapshot.AgentSnapshot
	if err := json.Unmarshal([]byte(value), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// Timestamps lists every stored timestamp for agentID, newest first.
func (s *SnapshotStore) Timestamps(ctx context.Context, agentID string) ([]int64, error) {
	stamps, err := s.ascendingTimestamps(ctx, agentID)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(stamps)-1; i < j; i, j = i+1, j-1 {
		stamps[i], stamps[j] = stamps[j], stamps[i]
	}
	return stamps, nil
}

// ascendingTimestamps scans the agent's key range and parses out the
// timestamps, sorted ascending. Timestamps sort numerically, not
// lexically: key order from KEYS is never trusted.
func (s *SnapshotStore) ascendingTimestamps(ctx context.Context, agentID string) ([]int64, error) {
	prefix := snapshotKeyPrefix + agentID + ":"
	keys, err := s.kv.ListKeys(ctx, prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", snapshot.ErrStoreUnavailable, err)
	}

	stamps := make([]int64, 0, len(keys))
	for _, key := range keys {
		// Everything after the agent-scoped prefix must be the bare
		// timestamp. Agent IDs may themselves contain colons, so the
		// prefix scan also matches agents that extend agentID with a
		// colon ("a" vs "a:b"); their remainder keeps a colon and fails
		// the parse, which filters them out.
		ts, err := strconv.ParseInt(strings.TrimPrefix(key, prefix), 10, 64)
		if err != nil {
			continue
		}
		stamps = append(stamps, ts)
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i] < stamps[j] })
	return stamps, nil
}
