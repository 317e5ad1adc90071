// Package snapshot defines the point-in-time telemetry record uploaded by
// scanning agents, and the store contract used to persist and resolve those
// records over time.
package snapshot

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/saworbit/spectra/scan"
)

// MaxTopExtensions bounds how many extension volumes a snapshot carries.
const MaxTopExtensions = 10

// ExtensionVolume is one entry of a snapshot's top-extension list. On the
// wire it is a 3-element JSON array ["ext", size, count], not an object.
type ExtensionVolume struct {
	Extension string
	SizeBytes uint64
	Count     uint64
}

// MarshalJSON encodes the volume as ["ext", size, count].
func (v ExtensionVolume) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]any{v.Extension, v.SizeBytes, v.Count})
}

// UnmarshalJSON decodes a strict 3-element array: a string followed by two
// unsigned integers. Anything else is rejected.
func (v *ExtensionVolume) UnmarshalJSON(data []byte) error {
	var tuple []json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return fmt.Errorf("extension volume must be a JSON array: %w", err)
	}
	if len(tuple) != 3 {
		return fmt.Errorf("extension volume must have exactly 3 elements, got %d", len(tuple))
	}
	if err := json.Unmarshal(tuple[0], &v.Extension); err != nil {
		return fmt.Errorf("extension volume name: %w", err)
	}
	if err := json.Unmarshal(tuple[1], &v.SizeBytes); err != nil {
		return fmt.Errorf("extension volume size: %w", err)
	}
	if err := json.Unmarshal(tuple[2], &v.Count); err != nil {
		return fmt.Errorf("extension volume count: %w", err)
	}
	return nil
}

// AgentSnapshot is a compact, immutable summary of one agent's filesystem
// state at a moment in time. Identity is (AgentID, Timestamp); snapshots
// accumulate append-only and are never updated or deleted.
type AgentSnapshot struct {
	AgentID        string            `json:"agent_id"`
	Timestamp      int64             `json:"timestamp"`
	Hostname       string            `json:"hostname"`
	TotalSizeBytes uint64            `json:"total_size_bytes"`
	FileCount      uint64            `json:"file_count"`
	TopExtensions  []ExtensionVolume `json:"top_extensions"`
}

// Validate checks the fields required for ingestion.
func (s *AgentSnapshot) Validate() error {
	if s.AgentID == "" {
		return fmt.Errorf("agent_id is required")
	}
	if s.Timestamp <= 0 {
		return fmt.Errorf("timestamp must be a positive Unix time, got %d", s.Timestamp)
	}
	return nil
}

// Clone returns a deep copy, so stored records stay immutable when handed
// out to callers.
func (s *AgentSnapshot) Clone() *AgentSnapshot {
	out := *s
	out.TopExtensions = append([]ExtensionVolume(nil), s.TopExtensions...)
	return &out
}

// FromScan reduces a completed scan into a snapshot, keeping the
// MaxTopExtensions largest extensions by cumulative size. Size ties order
// alphabetically so repeated reductions of the same stats are identical.
func FromScan(agentID, hostname string, ts time.Time, stats *scan.ScanStats) AgentSnapshot {
	vols := make([]ExtensionVolume, 0, len(stats.Extensions))
	for ext, stat := range stats.Extensions {
		vols = append(vols, ExtensionVolume{Extension: ext, SizeBytes: stat.Size, Count: stat.Count})
	}
	sort.Slice(vols, func(i, j int) bool {
		if vols[i].SizeBytes != vols[j].SizeBytes {
			return vols[i].SizeBytes > vols[j].SizeBytes
		}
		return vols[i].Extension < vols[j].Extension
	})
	if len(vols) > MaxTopExtensions {
		vols = vols[:MaxTopExtensions]
	}

	return AgentSnapshot{
		AgentID:        agentID,
		Timestamp:      ts.Unix(),
		Hostname:       hostname,
		TotalSizeBytes: stats.TotalSizeBytes,
		FileCount:      stats.TotalFiles,
		TopExtensions:  vols,
	}
}
