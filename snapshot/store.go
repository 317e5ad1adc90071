package snapshot

import (
	"context"
	"errors"
)

// ErrStoreUnavailable marks a snapshot store that cannot be reached or
// errored on read/write. Callers degrade (empty history, zeroed velocity,
// error acknowledgement) rather than crash.
var ErrStoreUnavailable = errors.New("snapshot store unavailable")

// Store is the persistence contract for agent snapshots. Implementations
// are append-only: ingesting two snapshots with the same (agent, timestamp)
// identity persists both.
type Store interface {
	// Append durably persists one snapshot.
	Append(ctx context.Context, snap *AgentSnapshot) error

	// LatestAt resolves the most recent snapshot for agentID whose
	// timestamp is at or before ts. A missing snapshot is (nil, nil),
	// never an error.
	LatestAt(ctx context.Context, agentID string, ts int64) (*AgentSnapshot, error)

	// Timestamps lists every known snapshot timestamp for agentID,
	// newest first. Unknown agents yield an empty list.
	Timestamps(ctx context.Context, agentID string) ([]int64, error)
}
