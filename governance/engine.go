package governance

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/charlievieth/fastwalk"
)

// SweepResult counts what a sweep did (or, in dry-run mode, would do).
type SweepResult struct {
	Evaluated uint64 `json:"evaluated"`
	Matched   uint64 `json:"matched"`
	Reported  uint64 `json:"reported"`
	Deleted   uint64 `json:"deleted"`
	Archived  uint64 `json:"archived"`
	Failures  uint64 `json:"failures"`
}

// Engine applies policies to a directory tree. DryRun logs intended
// actions without touching the filesystem.
type Engine struct {
	DryRun bool

	mu  sync.Mutex
	res SweepResult
}

// NewEngine returns an engine; dryRun disables destructive actions.
func NewEngine(dryRun bool) *Engine {
	return &Engine{DryRun: dryRun}
}

// Sweep walks the tree under root and executes every matching policy per
// file, in policy order. Policies must be validated before the sweep;
// invalid ones abort it. Action failures are logged and counted, never
// fatal.
func (e *Engine) Sweep(ctx context.Context, root string, policies []Policy) (*SweepResult, error) {
	for i := range policies {
		if err := policies[i].Validate(); err != nil {
			return nil, err
		}
	}

	e.mu.Lock()
	e.res = SweepResult{}
	e.mu.Unlock()

	conf := &fastwalk.Config{Follow: false}
	err := fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// An unreadable root fails the whole sweep; unreadable
			// entries below it are skipped.
			if path == root {
				return err
			}
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		e.count(func(r *SweepResult) { r.Evaluated++ })
		for i := range policies {
			if !policies[i].Matches(d.Name(), info) {
				continue
			}
			e.count(func(r *SweepResult) { r.Matched++ })
			e.execute(&policies[i], path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sweeping %q: %w", root, err)
	}

	e.mu.Lock()
	out := e.res
	e.mu.Unlock()
	return &out, nil
}

func (e *Engine) count(apply func(*SweepResult)) {
	e.mu.Lock()
	apply(&e.res)
	e.mu.Unlock()
}

func (e *Engine) execute(p *Policy, path string) {
	switch p.Action.Type {
	case ActionReport:
		slog.Info("policy violation", "policy", p.Name, "path", path)
		e.count(func(r *SweepResult) { r.Reported++ })

	case ActionDelete:
		if e.DryRun {
			slog.Info("dry-run: would delete", "policy", p.Name, "path", path)
			e.count(func(r *SweepResult) { r.Deleted++ })
			return
		}
		if err := os.Remove(path); err != nil {
			slog.Warn("delete failed", "policy", p.Name, "path", path, "error", err)
			e.count(func(r *SweepResult) { r.Failures++ })
			return
		}
		slog.Info("deleted", "policy", p.Name, "path", path)
		e.count(func(r *SweepResult) { r.Deleted++ })

	case ActionArchive:
		if e.DryRun {
			slog.Info("dry-run: would archive", "policy", p.Name, "path", path, "target", p.Action.TargetPath)
			e.count(func(r *SweepResult) { r.Archived++ })
			return
		}
		if err := archiveFile(path, p.Action.TargetPath); err != nil {
			slog.Warn("archive failed", "policy", p.Name, "path", path, "error", err)
			e.count(func(r *SweepResult) { r.Failures++ })
			return
		}
		slog.Info("archived", "policy", p.Name, "path", path, "target", p.Action.TargetPath)
		e.count(func(r *SweepResult) { r.Archived++ })
	}
}

// archiveFile moves path into the target directory, creating it on demand
// and preserving the base name.
func archiveFile(path, target string) error {
	if err := os.MkdirAll(target, 0o755); err != nil {
		return fmt.Errorf("creating archive dir: %w", err)
	}
	dest := filepath.Join(target, filepath.Base(path))
	if err := os.Rename(path, dest); err != nil {
		return fmt.Errorf("moving to archive: %w", err)
	}
	return nil
}
