// Package governance evaluates retention policies against scanned trees and
// executes their actions. Policies arrive as JSON from the control server
// and are validated strictly at the boundary: unknown action types or
// incomplete payloads are rejected, never defaulted.
package governance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/saworbit/spectra/scan"
)

// ActionType discriminates the action tagged union.
type ActionType string

const (
	ActionReport  ActionType = "report"
	ActionDelete  ActionType = "delete"
	ActionArchive ActionType = "archive"
)

// Action is what a matching policy does to a file. Archive is the only
// variant carrying a payload: the directory files are moved into.
type Action struct {
	Type       ActionType `json:"type"`
	TargetPath string     `json:"target_path,omitempty"`
}

// Validate rejects unknown action types and archive actions without a
// target directory.
func (a Action) Validate() error {
	switch a.Type {
	case ActionReport, ActionDelete:
		return nil
	case ActionArchive:
		if a.TargetPath == "" {
			return fmt.Errorf("archive action requires target_path")
		}
		return nil
	case "":
		return fmt.Errorf("action type is required")
	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}
}

// Rule is the match side of a policy. An empty Extension matches any file;
// zero thresholds always pass.
type Rule struct {
	Extension    string `json:"extension"`
	MinSizeBytes uint64 `json:"min_size_bytes"`
	MinAgeDays   uint64 `json:"min_age_days"`
}

// Policy pairs a named rule with its action.
type Policy struct {
	Name   string `json:"name"`
	Rule   Rule   `json:"rule"`
	Action Action `json:"action"`
}

// Validate checks the fields required before a policy may be evaluated.
func (p *Policy) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("policy name is required")
	}
	if err := p.Action.Validate(); err != nil {
		return fmt.Errorf("policy %q: %w", p.Name, err)
	}
	return nil
}

// Matches reports whether the file at path with metadata info falls under
// this policy's rule. The rule extension is compared against the same
// normalized extension the scanner tracks.
func (p *Policy) Matches(name string, info fs.FileInfo) bool {
	if !info.Mode().IsRegular() {
		return false
	}
	if p.Rule.Extension != "" {
		ext, ok := scan.NormalizeExt(name)
		if !ok || ext != normalizeRuleExt(p.Rule.Extension) {
			return false
		}
	}
	if uint64(info.Size()) < p.Rule.MinSizeBytes {
		return false
	}
	if p.Rule.MinAgeDays > 0 {
		age := time.Since(info.ModTime())
		if age < time.Duration(p.Rule.MinAgeDays)*24*time.Hour {
			return false
		}
	}
	return true
}

// ParsePolicies decodes and validates a JSON policy list, rejecting the
// whole payload on the first malformed entry. Unknown fields are refused
// so typos in policy documents surface instead of silently defaulting.
func ParsePolicies(data []byte) ([]Policy, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var policies []Policy
	if err := dec.Decode(&policies); err != nil {
		return nil, fmt.Errorf("decoding policies: %w", err)
	}
	for i := range policies {
		if err := policies[i].Validate(); err != nil {
			return nil, fmt.Errorf("policy %d: %w", i, err)
		}
	}
	return policies, nil
}

// normalizeRuleExt tolerates rules written with a leading dot or mixed
// case; plain extensions only, no glob syntax.
func normalizeRuleExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
