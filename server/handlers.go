package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/saworbit/spectra/governance"
	"github.com/saworbit/spectra/snapshot"
	"github.com/saworbit/spectra/store"
	"github.com/saworbit/spectra/velocity"
)

// Handlers carries the dependencies behind the HTTP API. KV is optional:
// without it the agent registry serves empty results and the policy
// endpoint falls back to Defaults (or the built-in DefaultPolicies).
type Handlers struct {
	Snapshots snapshot.Store
	KV        store.KVStore
	Defaults  []governance.Policy
}

// DefaultPolicies is served when no policy store is attached. Report-only:
// distributing destructive actions by default would be hostile.
var DefaultPolicies = []governance.Policy{
	{
		Name:   "stale-logs",
		Rule:   governance.Rule{Extension: "log", MinSizeBytes: 64 << 20, MinAgeDays: 30},
		Action: governance.Action{Type: governance.ActionReport},
	},
	{
		Name:   "old-temp-files",
		Rule:   governance.Rule{Extension: "tmp", MinAgeDays: 14},
		Action: governance.Action{Type: governance.ActionReport},
	},
}

// handleIngest accepts one AgentSnapshot as strict JSON. The acknowledgement
// body is plain text: "Snapshot stored" on success, "Error: ..." otherwise.
func (h *Handlers) handleIngest(w http.ResponseWriter, r *http.Request) {
	snap, err := decodeSnapshot(r.Body)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error: %v", err), http.StatusBadRequest)
		return
	}

	if err := h.Snapshots.Append(r.Context(), snap); err != nil {
		slog.Error("snapshot append failed", "agent", snap.AgentID, "error", err)
		http.Error(w, fmt.Sprintf("Error: %v", err), http.StatusInternalServerError)
		return
	}

	// Registry update is best-effort; the snapshot is already durable.
	if h.KV != nil {
		if err := store.RegisterAgent(r.Context(), h.KV, snap.AgentID, snap.Hostname); err != nil {
			slog.Warn("agent registry update failed", "agent", snap.AgentID, "error", err)
		}
	}

	slog.Info("snapshot ingested", "agent", snap.AgentID, "timestamp", snap.Timestamp)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, "Snapshot stored")
}

// handleHistory lists an agent's snapshot timestamps, newest first. Store
// failures degrade to an empty list, never a 5xx.
func (h *Handlers) handleHistory(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentID")

	stamps, err := h.Snapshots.Timestamps(r.Context(), agentID)
	if err != nil {
		slog.Warn("history query failed", "agent", agentID, "error", err)
		stamps = nil
	}
	if stamps == nil {
		stamps = []int64{}
	}
	writeJSON(w, http.StatusOK, stamps)
}

// handleVelocity computes growth between the snapshots resolved at start
// and end. Both lookups run concurrently; a lookup failure degrades that
// endpoint to missing, which yields the zeroed report.
func (h *Handlers) handleVelocity(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentID")

	start, err := queryInt64(r, "start")
	if err != nil {
		http.Error(w, fmt.Sprintf("Error: %v", err), http.StatusBadRequest)
		return
	}
	end, err := queryInt64(r, "end")
	if err != nil {
		http.Error(w, fmt.Sprintf("Error: %v", err), http.StatusBadRequest)
		return
	}

	var from, to *snapshot.AgentSnapshot
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		from = h.resolve(ctx, agentID, start)
		return nil
	})
	g.Go(func() error {
		to = h.resolve(ctx, agentID, end)
		return nil
	})
	_ = g.Wait()

	writeJSON(w, http.StatusOK, velocity.Compute(agentID, from, to))
}

// resolve degrades store failures to a missing endpoint.
func (h *Handlers) resolve(ctx context.Context, agentID string, ts int64) *snapshot.AgentSnapshot {
	snap, err := h.Snapshots.LatestAt(ctx, agentID, ts)
	if err != nil {
		slog.Warn("velocity endpoint lookup failed", "agent", agentID, "ts", ts, "error", err)
		return nil
	}
	return snap
}

// handlePolicies serves the governance policy set: the stored policies
// when a policy store holds any, otherwise the defaults.
func (h *Handlers) handlePolicies(w http.ResponseWriter, r *http.Request) {
	if h.KV != nil {
		policies, err := store.ListPolicies(r.Context(), h.KV)
		if err != nil {
			slog.Warn("policy store list failed, serving defaults", "error", err)
		} else if len(policies) > 0 {
			writeJSON(w, http.StatusOK, policies)
			return
		}
	}

	defaults := h.Defaults
	if defaults == nil {
		defaults = DefaultPolicies
	}
	writeJSON(w, http.StatusOK, defaults)
}

// handleAgents lists the agent registry; empty without a KV store.
func (h *Handlers) handleAgents(w http.ResponseWriter, r *http.Request) {
	agents := []store.AgentMeta{}
	if h.KV != nil {
		list, err := store.ListAgents(r.Context(), h.KV)
		if err != nil {
			slog.Warn("agent registry list failed", "error", err)
		} else {
			agents = list
		}
	}
	writeJSON(w, http.StatusOK, agents)
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(`{"status":"healthy","service":"spectra-server"}`)); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

// queryInt64 extracts a required integer query parameter.
func queryInt64(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("missing required query parameter %q", name)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("query parameter %q must be a Unix timestamp", name)
	}
	return v, nil
}
