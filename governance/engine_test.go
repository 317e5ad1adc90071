package governance

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func seedTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]int{
		"app.log":      2048,
		"trace.log":    4096,
		"notes.txt":    128,
		"sub/core.log": 8192,
	}
	for name, size := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestSweepReport(t *testing.T) {
	dir := seedTree(t)
	policies := []Policy{
		{Name: "log-report", Rule: Rule{Extension: "log"}, Action: Action{Type: ActionReport}},
	}

	res, err := NewEngine(false).Sweep(context.Background(), dir, policies)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if res.Evaluated != 4 {
		t.Errorf("Evaluated = %d, want 4", res.Evaluated)
	}
	if res.Matched != 3 || res.Reported != 3 {
		t.Errorf("Matched = %d, Reported = %d, want 3 each", res.Matched, res.Reported)
	}
	if res.Deleted != 0 || res.Archived != 0 || res.Failures != 0 {
		t.Errorf("report sweep mutated counters: %+v", res)
	}
	// Reporting never touches the tree.
	if _, err := os.Stat(filepath.Join(dir, "app.log")); err != nil {
		t.Errorf("app.log missing after report sweep: %v", err)
	}
}

func TestSweepDeleteDryRun(t *testing.T) {
	dir := seedTree(t)
	policies := []Policy{
		{Name: "log-purge", Rule: Rule{Extension: "log"}, Action: Action{Type: ActionDelete}},
	}

	res, err := NewEngine(true).Sweep(context.Background(), dir, policies)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if res.Deleted != 3 {
		t.Errorf("Deleted = %d, want 3", res.Deleted)
	}
	for _, name := range []string{"app.log", "trace.log", "sub/core.log"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("dry run removed %s: %v", name, err)
		}
	}
}

func TestSweepDelete(t *testing.T) {
	dir := seedTree(t)
	policies := []Policy{
		{Name: "log-purge", Rule: Rule{Extension: "log"}, Action: Action{Type: ActionDelete}},
	}

	res, err := NewEngine(false).Sweep(context.Background(), dir, policies)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if res.Deleted != 3 || res.Failures != 0 {
		t.Errorf("Deleted = %d, Failures = %d, want 3 and 0", res.Deleted, res.Failures)
	}
	for _, name := range []string{"app.log", "trace.log", "sub/core.log"} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("%s still present after delete sweep", name)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "notes.txt")); err != nil {
		t.Errorf("notes.txt should survive: %v", err)
	}
}

func TestSweepArchive(t *testing.T) {
	dir := seedTree(t)
	target := filepath.Join(t.TempDir(), "cold")
	policies := []Policy{
		{Name: "log-archive", Rule: Rule{Extension: "log", MinSizeBytes: 4096}, Action: Action{Type: ActionArchive, TargetPath: target}},
	}

	res, err := NewEngine(false).Sweep(context.Background(), dir, policies)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if res.Archived != 2 {
		t.Errorf("Archived = %d, want 2", res.Archived)
	}
	for _, name := range []string{"trace.log", "core.log"} {
		if _, err := os.Stat(filepath.Join(target, name)); err != nil {
			t.Errorf("%s not in archive: %v", name, err)
		}
	}
	// Below the size threshold, left in place.
	if _, err := os.Stat(filepath.Join(dir, "app.log")); err != nil {
		t.Errorf("app.log should remain: %v", err)
	}
}

func TestSweepPolicyOrder(t *testing.T) {
	dir := seedTree(t)
	policies := []Policy{
		{Name: "log-report", Rule: Rule{Extension: "log"}, Action: Action{Type: ActionReport}},
		{Name: "log-purge", Rule: Rule{Extension: "log"}, Action: Action{Type: ActionDelete}},
	}

	res, err := NewEngine(false).Sweep(context.Background(), dir, policies)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	// Both policies fire for each log file: report first, then delete.
	if res.Reported != 3 || res.Deleted != 3 {
		t.Errorf("Reported = %d, Deleted = %d, want 3 each", res.Reported, res.Deleted)
	}
	if res.Matched != 6 {
		t.Errorf("Matched = %d, want 6", res.Matched)
	}
}

func TestSweepRootUnreadable(t *testing.T) {
	policies := []Policy{
		{Name: "log-report", Rule: Rule{Extension: "log"}, Action: Action{Type: ActionReport}},
	}

	_, err := NewEngine(true).Sweep(context.Background(),
		filepath.Join(t.TempDir(), "missing"), policies)
	if err == nil {
		t.Fatal("Sweep over a missing root succeeded")
	}
}

func TestSweepRejectsInvalidPolicy(t *testing.T) {
	dir := seedTree(t)
	policies := []Policy{
		{Name: "broken", Rule: Rule{Extension: "log"}, Action: Action{Type: "shred"}},
	}

	if _, err := NewEngine(false).Sweep(context.Background(), dir, policies); err == nil {
		t.Fatal("Sweep accepted an invalid policy")
	}
	if _, err := os.Stat(filepath.Join(dir, "app.log")); err != nil {
		t.Errorf("invalid policy sweep touched the tree: %v", err)
	}
}
