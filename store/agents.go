package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

const (
	// agentKeyPrefix is the Valkey key prefix for agent registry entries.
	agentKeyPrefix = "spectra:agent:"

	// agentPresencePrefix marks agents that reported recently. Presence
	// keys carry a TTL and expire on their own.
	agentPresencePrefix = "spectra:presence:"

	// PresenceTTLSeconds is how long an agent counts as active after its
	// last snapshot. Wide enough that a daily-cron fleet stays visible
	// across one missed run.
	PresenceTTLSeconds = 36 * 60 * 60
)

// AgentMeta is the registry record for an agent that has uploaded at least
// one snapshot. It exists for fleet visibility, not authentication. Active
// is recomputed from the presence marker on every read; whatever the stored
// record carries is ignored.
type AgentMeta struct {
	AgentID       string `json:"agent_id"`
	Hostname      string `json:"hostname,omitempty"`
	FirstSeen     string `json:"first_seen"`
	LastSeen      string `json:"last_seen"`
	SnapshotCount uint64 `json:"snapshot_count"`
	Active        bool   `json:"active"`
}

// agentKey returns the Valkey key for a given agent ID.
func agentKey(agentID string) string {
	return agentKeyPrefix + agentID
}

// presenceKey returns the Valkey key for an agent's presence marker.
func presenceKey(agentID string) string {
	return agentPresencePrefix + agentID
}

// RegisterAgent upserts the registry record for an agent. FirstSeen is
// preserved from any existing record; LastSeen always moves forward and
// SnapshotCount is incremented.
func RegisterAgent(ctx context.Context, s KVStore, agentID, hostname string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	meta := AgentMeta{
		AgentID:       agentID,
		Hostname:      hostname,
		FirstSeen:     now,
		LastSeen:      now,
		SnapshotCount: 1,
	}

	if value, err := s.GetValue(ctx, agentKey(agentID)); err == nil {
		var existing AgentMeta
		if unmarshalErr := json.Unmarshal([]byte(value), &existing); unmarshalErr == nil {
			meta.FirstSeen = existing.FirstSeen
			meta.SnapshotCount = existing.SnapshotCount + 1
			if hostname == "" {
				meta.Hostname = existing.Hostname
			}
		}
	}

	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal agent meta: %w", err)
	}
	if err := s.SetValue(ctx, agentKey(agentID), string(data)); err != nil {
		return err
	}

	// Refresh the presence marker. It expires on its own, so an agent that
	// stops reporting drops out of the active set without any cleanup job.
	return s.SetValueWithTTL(ctx, presenceKey(agentID), meta.LastSeen, PresenceTTLSeconds)
}

// agentActive reports whether an unexpired presence marker exists.
func agentActive(ctx context.Context, s KVStore, agentID string) bool {
	_, err := s.GetValue(ctx, presenceKey(agentID))
	return err == nil
}

// GetAgent retrieves the registry record for a single agent.
func GetAgent(ctx context.Context, s KVStore, agentID string) (AgentMeta, error) {
	value, err := s.GetValue(ctx, agentKey(agentID))
	if err != nil {
		return AgentMeta{}, fmt.Errorf("no registry entry for agent %s: %w", agentID, err)
	}

	var meta AgentMeta
	if err := json.Unmarshal([]byte(value), &meta); err != nil {
		return AgentMeta{}, fmt.Errorf("failed to unmarshal agent meta: %w", err)
	}
	meta.Active = agentActive(ctx, s, agentID)
	return meta, nil
}

// ListAgents returns every registered agent, sorted by ID for stable
// output.
func ListAgents(ctx context.Context, s KVStore) ([]AgentMeta, error) {
	keys, err := s.ListKeys(ctx, agentKeyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}

	result := make([]AgentMeta, 0, len(keys))
	for _, k := range keys {
		value, err := s.GetValue(ctx, k)
		if err != nil {
			continue // key may have been deleted between list and get
		}
		var meta AgentMeta
		if err := json.Unmarshal([]byte(value), &meta); err != nil {
			continue
		}
		meta.Active = agentActive(ctx, s, meta.AgentID)
		result = append(result, meta)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].AgentID < result[j].AgentID })
	return result, nil
}
