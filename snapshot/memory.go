package snapshot

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process Store, the default backend for single-node
// servers and tests. Snapshots are kept per agent in ascending timestamp
// order; among identical timestamps the latest append sorts last, so exact
// timestamp ties resolve newest-append-wins on lookup.
type Memory struct {
	mu     sync.RWMutex
	agents map[string][]*AgentSnapshot
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{agents: make(map[string][]*AgentSnapshot)}
}

// Append stores a copy of snap.
func (m *Memory) Append(_ context.Context, snap *AgentSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.agents[snap.AgentID]
	i := sort.Search(len(list), func(i int) bool { return list[i].Timestamp > snap.Timestamp })

	list = append(list, nil)
	copy(list[i+1:], list[i:])
	list[i] = snap.Clone()
	m.agents[snap.AgentID] = list
	return nil
}

// LatestAt returns the most recent snapshot at or before ts, or (nil, nil).
func (m *Memory) LatestAt(_ context.Context, agentID string, ts int64) (*AgentSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.agents[agentID]
	i := sort.Search(len(list), func(i int) bool { return list[i].Timestamp > ts })
	if i == 0 {
		return nil, nil
	}
	return list[i-1].Clone(), nil
}

// Timestamps lists all snapshot timestamps for agentID, newest first.
func (m *Memory) Timestamps(_ context.Context, agentID string) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.agents[agentID]
	out := make([]int64, len(list))
	for i, snap := range list {
		out[len(list)-1-i] = snap.Timestamp
	}
	return out, nil
}
