package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/saworbit/spectra/queue"
	"github.com/saworbit/spectra/snapshot"
	"github.com/saworbit/spectra/store"
)

// SnapshotConsumer adapts the ingest pipeline to broker delivery. A queue
// message goes through the same strict decode and validation as an HTTP
// ingest; bad or unappendable messages are logged and dropped, since a
// consumer has no caller to answer.
func (h *Handlers) SnapshotConsumer(ctx context.Context) queue.MessageProcessor {
	return func(msg string) {
		snap, err := decodeSnapshot(strings.NewReader(msg))
		if err != nil {
			slog.Warn("dropping malformed queue snapshot", "error", err)
			return
		}

		if err := h.Snapshots.Append(ctx, snap); err != nil {
			slog.Error("queue snapshot append failed", "agent", snap.AgentID, "error", err)
			return
		}
		if h.KV != nil {
			if err := store.RegisterAgent(ctx, h.KV, snap.AgentID, snap.Hostname); err != nil {
				slog.Warn("agent registry update failed", "agent", snap.AgentID, "error", err)
			}
		}
		slog.Info("snapshot ingested", "agent", snap.AgentID, "timestamp", snap.Timestamp, "via", "queue")
	}
}

// decodeSnapshot reads one AgentSnapshot as strict JSON and validates it.
func decodeSnapshot(r io.Reader) (*snapshot.AgentSnapshot, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var snap snapshot.AgentSnapshot
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot payload: %v", err)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}
