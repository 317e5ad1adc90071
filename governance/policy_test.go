package governance

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestActionValidate(t *testing.T) {
	tests := []struct {
		name    string
		action  Action
		wantErr bool
	}{
		{"report", Action{Type: ActionReport}, false},
		{"delete", Action{Type: ActionDelete}, false},
		{"archive with target", Action{Type: ActionArchive, TargetPath: "/mnt/cold"}, false},
		{"archive without target", Action{Type: ActionArchive}, true},
		{"empty type", Action{}, true},
		{"unknown type", Action{Type: "purge"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.action.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParsePolicies(t *testing.T) {
	good := `[
		{"name": "stale-logs", "rule": {"extension": "log", "min_size_bytes": 1048576, "min_age_days": 30}, "action": {"type": "report"}},
		{"name": "old-dumps", "rule": {"extension": "sql", "min_age_days": 90}, "action": {"type": "archive", "target_path": "/mnt/cold"}}
	]`

	policies, err := ParsePolicies([]byte(good))
	if err != nil {
		t.Fatalf("ParsePolicies: %v", err)
	}
	if len(policies) != 2 {
		t.Fatalf("parsed %d policies, want 2", len(policies))
	}
	if policies[0].Name != "stale-logs" || policies[0].Action.Type != ActionReport {
		t.Errorf("policies[0] = %+v", policies[0])
	}
	if policies[1].Action.TargetPath != "/mnt/cold" {
		t.Errorf("policies[1].Action = %+v", policies[1].Action)
	}
}

func TestParsePoliciesRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not json", `{{{`},
		{"missing name", `[{"rule": {"extension": "log"}, "action": {"type": "report"}}]`},
		{"unknown action", `[{"name": "x", "rule": {}, "action": {"type": "shred"}}]`},
		{"archive without target", `[{"name": "x", "rule": {}, "action": {"type": "archive"}}]`},
		{"unknown field", `[{"name": "x", "rule": {}, "action": {"type": "report"}, "severity": "high"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePolicies([]byte(tt.in)); err == nil {
				t.Errorf("ParsePolicies accepted %s", tt.in)
			}
		})
	}
}

func TestPolicyMatches(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "app.log")
	if err := os.WriteFile(logPath, make([]byte, 2048), 0o644); err != nil {
		t.Fatal(err)
	}
	// Backdate by ten days.
	old := time.Now().Add(-10 * 24 * time.Hour)
	if err := os.Chtimes(logPath, old, old); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(logPath)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		rule Rule
		want bool
	}{
		{"extension and size", Rule{Extension: "log", MinSizeBytes: 1024}, true},
		{"dotted uppercase rule", Rule{Extension: ".LOG"}, true},
		{"wrong extension", Rule{Extension: "tmp"}, false},
		{"size too small", Rule{Extension: "log", MinSizeBytes: 1 << 20}, false},
		{"age satisfied", Rule{Extension: "log", MinAgeDays: 5}, true},
		{"age not reached", Rule{Extension: "log", MinAgeDays: 30}, false},
		{"empty extension matches all", Rule{MinSizeBytes: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Policy{Name: "t", Rule: tt.rule, Action: Action{Type: ActionReport}}
			if got := p.Matches(info.Name(), info); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}
