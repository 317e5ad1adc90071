package postgres

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/saworbit/spectra/snapshot"
)

// SnapshotRecord is the relational form of an agent snapshot. The
// composite index serves the hot query: latest row for an agent at or
// before a timestamp.
type SnapshotRecord struct {
	ID             uint64        `gorm:"primaryKey;autoIncrement" json:"id"`
	AgentID        string        `gorm:"not null;size:255;index:idx_snapshots_agent_ts,priority:1" json:"agent_id"`
	Timestamp      int64         `gorm:"not null;index:idx_snapshots_agent_ts,priority:2,sort:desc" json:"timestamp"`
	Hostname       string        `gorm:"size:255" json:"hostname,omitempty"`
	TotalSizeBytes uint64        `gorm:"not null" json:"total_size_bytes"`
	FileCount      uint64        `gorm:"not null" json:"file_count"`
	TopExtensions  ExtensionJSON `gorm:"type:jsonb" json:"top_extensions,omitempty"`
	CreatedAt      time.Time     `gorm:"not null;default:NOW()" json:"created_at"`
}

// TableName specifies the table name for the SnapshotRecord model
func (SnapshotRecord) TableName() string {
	return "agent_snapshots"
}

// recordFromSnapshot maps the wire-level snapshot onto a row.
func recordFromSnapshot(snap *snapshot.AgentSnapshot) SnapshotRecord {
	return SnapshotRecord{
		AgentID:        snap.AgentID,
		Timestamp:      snap.Timestamp,
		Hostname:       snap.Hostname,
		TotalSizeBytes: snap.TotalSizeBytes,
		FileCount:      snap.FileCount,
		TopExtensions:  ExtensionJSON(snap.TopExtensions),
	}
}

// Snapshot converts the row back to the wire-level type.
func (r *SnapshotRecord) Snapshot() *snapshot.AgentSnapshot {
	return &snapshot.AgentSnapshot{
		AgentID:        r.AgentID,
		Timestamp:      r.Timestamp,
		Hostname:       r.Hostname,
		TotalSizeBytes: r.TotalSizeBytes,
		FileCount:      r.FileCount,
		TopExtensions:  []snapshot.ExtensionVolume(r.TopExtensions),
	}
}

// ExtensionJSON stores a snapshot's extension volumes in a jsonb column,
// using the same 3-tuple encoding the ingest API speaks.
type ExtensionJSON []snapshot.ExtensionVolume

// Value implements driver.Valuer.
func (e ExtensionJSON) Value() (driver.Value, error) {
	if e == nil {
		return nil, nil
	}
	return json.Marshal(e)
}

// Scan implements sql.Scanner.
func (e *ExtensionJSON) Scan(value any) error {
	if value == nil {
		*e = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", value)
	}
	return json.Unmarshal(data, e)
}
