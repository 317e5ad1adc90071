package store

import (
	"context"
	"errors"
	"testing"

	"github.com/saworbit/spectra/snapshot"
)

func kvSnap(agentID string, ts int64, size uint64) *snapshot.AgentSnapshot {
	return &snapshot.AgentSnapshot{
		AgentID:        agentID,
		Timestamp:      ts,
		Hostname:       "host-1",
		TotalSizeBytes: size,
		FileCount:      size / 10,
		TopExtensions: []snapshot.ExtensionVolume{
			{Extension: "log", SizeBytes: size / 2, Count: 3},
		},
	}
}

func TestSnapshotStoreRoundTrip(t *testing.T) {
	t.Log("\n🔍 Testing snapshot store round trip...")

	kv := NewMockKVStore()
	s := NewSnapshotStore(kv)
	ctx := context.Background()

	for _, ts := range []int64{100, 300, 200} {
		if err := s.Append(ctx, kvSnap("agent-1", ts, uint64(ts)*10)); err != nil {
			t.Fatalf("❌ Append(%d): %v", ts, err)
		}
	}

	got, err := s.LatestAt(ctx, "agent-1", 250)
	if err != nil {
		t.Fatalf("❌ LatestAt: %v", err)
	}
	if got == nil || got.Timestamp != 200 {
		t.Fatalf("❌ LatestAt(250) = %+v, want timestamp 200", got)
	}
	if got.TotalSizeBytes != 2000 {
		t.Errorf("TotalSizeBytes = %d, want 2000", got.TotalSizeBytes)
	}
	if len(got.TopExtensions) != 1 || got.TopExtensions[0].Extension != "log" {
		t.Errorf("TopExtensions = %+v", got.TopExtensions)
	}
	t.Log("✅ Round trip preserved the snapshot")
}

func TestSnapshotStoreLatestAtMiss(t *testing.T) {
	kv := NewMockKVStore()
	s := NewSnapshotStore(kv)
	ctx := context.Background()

	if err := s.Append(ctx, kvSnap("agent-1", 500, 100)); err != nil {
		t.Fatal(err)
	}

	// Before the first snapshot.
	got, err := s.LatestAt(ctx, "agent-1", 499)
	if err != nil {
		t.Fatalf("LatestAt: %v", err)
	}
	if got != nil {
		t.Errorf("LatestAt(499) = %+v, want nil", got)
	}

	// Unknown agent.
	got, err = s.LatestAt(ctx, "agent-2", 9999)
	if err != nil {
		t.Fatalf("LatestAt unknown agent: %v", err)
	}
	if got != nil {
		t.Errorf("LatestAt for unknown agent = %+v, want nil", got)
	}
}

func TestSnapshotStoreTimestampsDescending(t *testing.T) {
	kv := NewMockKVStore()
	s := NewSnapshotStore(kv)
	ctx := context.Background()

	// Includes 1000 vs 200 to catch lexical ordering ("1000" < "200").
	for _, ts := range []int64{200, 1000, 30, 900} {
		if err := s.Append(ctx, kvSnap("agent-1", ts, 10)); err != nil {
			t.Fatal(err)
		}
	}

	stamps, err := s.Timestamps(ctx, "agent-1")
	if err != nil {
		t.Fatalf("Timestamps: %v", err)
	}
	want := []int64{1000, 900, 200, 30}
	if len(stamps) != len(want) {
		t.Fatalf("Timestamps = %v, want %v", stamps, want)
	}
	for i := range want {
		if stamps[i] != want[i] {
			t.Fatalf("Timestamps = %v, want %v", stamps, want)
		}
	}
}

func TestSnapshotStoreOverwritesSameIdentity(t *testing.T) {
	kv := NewMockKVStore()
	s := NewSnapshotStore(kv)
	ctx := context.Background()

	if err := s.Append(ctx, kvSnap("agent-1", 100, 10)); err != nil {
		t.Fatal(err)
	}
	if err := s.Append(ctx, kvSnap("agent-1", 100, 999990)); err != nil {
		t.Fatal(err)
	}

	stamps, err := s.Timestamps(ctx, "agent-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(stamps) != 1 {
		t.Fatalf("Timestamps = %v, want a single entry", stamps)
	}

	got, err := s.LatestAt(ctx, "agent-1", 100)
	if err != nil {
		t.Fatal(err)
	}
	if got.TotalSizeBytes != 999990 {
		t.Errorf("TotalSizeBytes = %d, want the later write", got.TotalSizeBytes)
	}
}

func TestSnapshotStoreColonsInAgentID(t *testing.T) {
	kv := NewMockKVStore()
	s := NewSnapshotStore(kv)
	ctx := context.Background()

	if err := s.Append(ctx, kvSnap("dc:rack7:node3", 42, 10)); err != nil {
		t.Fatal(err)
	}

	got, err := s.LatestAt(ctx, "dc:rack7:node3", 100)
	if err != nil {
		t.Fatalf("LatestAt: %v", err)
	}
	if got == nil || got.Timestamp != 42 {
		t.Fatalf("LatestAt = %+v, want timestamp 42", got)
	}
}

func TestSnapshotStoreAgentKeysDoNotCollide(t *testing.T) {
	kv := NewMockKVStore()
	s := NewSnapshotStore(kv)
	ctx := context.Background()

	// "a:b" extends "a" with a colon, so a prefix scan for "a" also
	// matches its keys. Neither agent may see the other's snapshots.
	if err := s.Append(ctx, kvSnap("a", 400, 10)); err != nil {
		t.Fatal(err)
	}
	if err := s.Append(ctx, kvSnap("a:b", 500, 20)); err != nil {
		t.Fatal(err)
	}

	stamps, err := s.Timestamps(ctx, "a")
	if err != nil {
		t.Fatalf("Timestamps: %v", err)
	}
	if len(stamps) != 1 || stamps[0] != 400 {
		t.Fatalf("Timestamps(a) = %v, want [400]", stamps)
	}

	got, err := s.LatestAt(ctx, "a", 1000)
	if err != nil {
		t.Fatalf("LatestAt: %v", err)
	}
	if got == nil || got.Timestamp != 400 {
		t.Fatalf("LatestAt(a, 1000) = %+v, want the timestamp-400 snapshot", got)
	}

	stamps, err = s.Timestamps(ctx, "a:b")
	if err != nil {
		t.Fatal(err)
	}
	if len(stamps) != 1 || stamps[0] != 500 {
		t.Fatalf("Timestamps(a:b) = %v, want [500]", stamps)
	}
}

func TestSnapshotStoreRejectsInvalid(t *testing.T) {
	s := NewSnapshotStore(NewMockKVStore())

	err := s.Append(context.Background(), &snapshot.AgentSnapshot{Timestamp: 100})
	if err == nil {
		t.Fatal("Append accepted a snapshot without an agent ID")
	}
}

func TestSnapshotStoreUnavailable(t *testing.T) {
	s := NewSnapshotStore(brokenKVStore{})
	ctx := context.Background()

	if err := s.Append(ctx, kvSnap("agent-1", 100, 10)); !errors.Is(err, snapshot.ErrStoreUnavailable) {
		t.Errorf("Append error = %v, want ErrStoreUnavailable", err)
	}
	if _, err := s.LatestAt(ctx, "agent-1", 100); !errors.Is(err, snapshot.ErrStoreUnavailable) {
		t.Errorf("LatestAt error = %v, want ErrStoreUnavailable", err)
	}
	if _, err := s.Timestamps(ctx, "agent-1"); !errors.Is(err, snapshot.ErrStoreUnavailable) {
		t.Errorf("Timestamps error = %v, want ErrStoreUnavailable", err)
	}
}
