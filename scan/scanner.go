// Package scan implements the streaming scan-and-aggregate engine: a single
// pass over a directory tree producing exact totals, per-extension rollups,
// and a bounded list of the largest files, without ever holding the full
// file list in memory.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
)

// ErrRootUnreadable marks a scan whose root could not be opened or statted
// at all. Individual entries below a readable root never trigger it; they
// are skipped and counted in ScanStats.SkippedEntries instead.
var ErrRootUnreadable = errors.New("scan root unreadable")

// DefaultProgressInterval is the cadence of progress callbacks.
const DefaultProgressInterval = 500 * time.Millisecond

// ScanStats is the immutable result of one scan. Totals cover every regular
// file visited regardless of the top-file limit; TopFiles is a bounded view,
// never a separate source of truth.
type ScanStats struct {
	RootPath       string                   `json:"root_path"`
	TotalFiles     uint64                   `json:"total_files"`
	TotalFolders   uint64                   `json:"total_folders"`
	TotalSizeBytes uint64                   `json:"total_size_bytes"`
	ScanDurationMS uint64                   `json:"scan_duration_ms"`
	Extensions     map[string]ExtensionStat `json:"extensions"`
	TopFiles       []FileRecord             `json:"top_files"`
	SkippedEntries uint64                   `json:"skipped_entries,omitempty"`
}

// ProgressFunc receives running file and byte counts while a scan is in
// flight. It is invoked from a separate goroutine.
type ProgressFunc func(files, bytes uint64)

// collector aggregates callback results behind a mutex; fastwalk invokes
// the walk function from multiple goroutines concurrently, and all mutation
// of the ledger, the tracker, and the running totals must be serialized.
type collector struct {
	mu      sync.Mutex
	ledger  *Ledger
	top     *TopK
	files   uint64
	folders uint64
	bytes   uint64
	skipped uint64
}

func newCollector(topLimit int) *collector {
	return &collector{
		ledger: NewLedger(),
		top:    NewTopK(topLimit),
	}
}

func (c *collector) addFile(path string, size uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.files++
	c.bytes += size
	c.ledger.Record(filepath.Base(path), size)
	c.top.Offer(FileRecord{Path: path, SizeBytes: size})
}

func (c *collector) addFolder() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.folders++
}

func (c *collector) addSkipped() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.skipped++
}

func (c *collector) progress() (files, bytes uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.files, c.bytes
}

// Scan walks the tree rooted at root and returns its aggregate statistics,
// retaining at most topLimit largest files. The root itself counts as a
// folder. Traversal order is unspecified and parallel; entries that fail to
// stat are skipped, symlinks and other non-file, non-directory entries are
// ignored. Scan fails only when the root is unreadable or ctx is cancelled.
//
// When more than topLimit files tie at the cut-off size, which of the tied
// files are retained depends on traversal order and may vary between scans
// of an unchanged tree; all sizes and totals are exact regardless.
func Scan(ctx context.Context, root string, topLimit int) (*ScanStats, error) {
	return ScanWithProgress(ctx, root, topLimit, nil)
}

// ScanWithProgress behaves like Scan and additionally reports running
// totals to hook roughly twice a second until the walk finishes.
func ScanWithProgress(ctx context.Context, root string, topLimit int, hook ProgressFunc) (*ScanStats, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRootUnreadable, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %q is not a directory", ErrRootUnreadable, root)
	}

	c := newCollector(topLimit)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	startProgressReporter(ctx, c, hook)

	start := time.Now()

	conf := &fastwalk.Config{
		Follow: false,
	}

	walkErr := fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			c.addSkipped()
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if d.IsDir() {
			c.addFolder()
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			c.addSkipped()
			return nil
		}

		c.addFile(path, uint64(fi.Size()))
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walking %q: %w", root, walkErr)
	}

	stats := &ScanStats{
		RootPath:       root,
		TotalFiles:     c.files,
		TotalFolders:   c.folders,
		TotalSizeBytes: c.bytes,
		ScanDurationMS: uint64(time.Since(start).Milliseconds()),
		Extensions:     c.ledger.Extensions(),
		TopFiles:       c.top.Drain(),
		SkippedEntries: c.skipped,
	}
	return stats, nil
}

// startProgressReporter invokes hook(files, bytes) on each tick until ctx
// is done. No goroutine is started when hook is nil.
func startProgressReporter(ctx context.Context, c *collector, hook ProgressFunc) {
	if hook == nil {
		return
	}

	ticker := time.NewTicker(DefaultProgressInterval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				hook(c.progress())
			case <-ctx.Done():
				return
			}
		}
	}()
}
