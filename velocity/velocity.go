// Package velocity computes growth reports between two snapshots of the
// same agent: byte and file deltas, per-second rate, and a reconciled
// per-extension delta list covering extensions that grew, shrank, appeared,
// or disappeared between the endpoints.
package velocity

import (
	"sort"

	"github.com/saworbit/spectra/snapshot"
)

// ExtensionDelta is the signed change of one extension between the start
// and end snapshots.
type ExtensionDelta struct {
	Extension  string `json:"extension"`
	SizeDelta  int64  `json:"size_delta"`
	CountDelta int64  `json:"count_delta"`
}

// Report describes growth between two resolved snapshots. TStart and TEnd
// are the timestamps of the snapshots that actually resolved, which may be
// earlier than the requested boundaries.
type Report struct {
	AgentID         string           `json:"agent_id"`
	TStart          int64            `json:"t_start"`
	TEnd            int64            `json:"t_end"`
	DurationSeconds int64            `json:"duration_seconds"`
	GrowthBytes     int64            `json:"growth_bytes"`
	GrowthFiles     int64            `json:"growth_files"`
	BytesPerSecond  float64          `json:"bytes_per_second"`
	ExtensionDeltas []ExtensionDelta `json:"extension_deltas"`
}

// Compute derives a growth report from two resolved snapshot endpoints.
// When either endpoint is missing the report is fully zeroed - a defined
// fallback, not an error. Zero or negative duration yields a zero rate,
// never a division failure.
func Compute(agentID string, start, end *snapshot.AgentSnapshot) Report {
	if start == nil || end == nil {
		return Report{
			AgentID:         agentID,
			ExtensionDeltas: []ExtensionDelta{},
		}
	}

	duration := end.Timestamp - start.Timestamp
	growthBytes := int64(end.TotalSizeBytes) - int64(start.TotalSizeBytes)
	growthFiles := int64(end.FileCount) - int64(start.FileCount)

	var rate float64
	if duration > 0 {
		rate = float64(growthBytes) / float64(duration)
	}

	return Report{
		AgentID:         agentID,
		TStart:          start.Timestamp,
		TEnd:            end.Timestamp,
		DurationSeconds: duration,
		GrowthBytes:     growthBytes,
		GrowthFiles:     growthFiles,
		BytesPerSecond:  rate,
		ExtensionDeltas: reconcileExtensions(start.TopExtensions, end.TopExtensions),
	}
}

// reconcileExtensions pairs the two top-extension lists. Extensions present
// at the end yield end-start (or their full end value when new); extensions
// present only at the start disappeared and yield their negated start
// value. The result orders the largest absolute size impact first; ties
// keep their discovery order.
func reconcileExtensions(start, end []snapshot.ExtensionVolume) []ExtensionDelta {
	startByExt := make(map[string]snapshot.ExtensionVolume, len(start))
	for _, vol := range start {
		startByExt[vol.Extension] = vol
	}

	deltas := make([]ExtensionDelta, 0, len(start)+len(end))
	for _, vol := range end {
		if prev, ok := startByExt[vol.Extension]; ok {
			delete(startByExt, vol.Extension)
			deltas = append(deltas, ExtensionDelta{
				Extension:  vol.Extension,
				SizeDelta:  int64(vol.SizeBytes) - int64(prev.SizeBytes),
				CountDelta: int64(vol.Count) - int64(prev.Count),
			})
		} else {
			deltas = append(deltas, ExtensionDelta{
				Extension:  vol.Extension,
				SizeDelta:  int64(vol.SizeBytes),
				CountDelta: int64(vol.Count),
			})
		}
	}

	// Whatever was not consumed disappeared between the snapshots; walk the
	// start list to keep its order rather than ranging over the map.
	for _, vol := range start {
		if _, ok := startByExt[vol.Extension]; !ok {
			continue
		}
		deltas = append(deltas, ExtensionDelta{
			Extension:  vol.Extension,
			SizeDelta:  -int64(vol.SizeBytes),
			CountDelta: -int64(vol.Count),
		})
	}

	sort.SliceStable(deltas, func(i, j int) bool {
		return absInt64(deltas[i].SizeDelta) > absInt64(deltas[j].SizeDelta)
	})
	return deltas
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
