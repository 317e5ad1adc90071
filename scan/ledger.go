package scan

import "strings"

// ExtensionStat accumulates the file count and cumulative size for one
// normalized extension within a single scan.
type ExtensionStat struct {
	Count uint64 `json:"count"`
	Size  uint64 `json:"size"`
}

// Ledger maps normalized file extensions to running count/size totals.
// Entries are created on first sight and always hold Count >= 1.
//
// A Ledger is scan-scoped and not safe for concurrent use; the scan engine
// serializes all mutation.
type Ledger struct {
	exts map[string]ExtensionStat
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{exts: make(map[string]ExtensionStat)}
}

// Record accounts one file under its normalized extension. Files whose name
// carries no extension are excluded from the ledger entirely; callers still
// count them toward global totals.
func (l *Ledger) Record(name string, size uint64) {
	ext, ok := NormalizeExt(name)
	if !ok {
		return
	}

	stat := l.exts[ext]
	stat.Count++
	stat.Size += size
	l.exts[ext] = stat
}

// Len reports the number of distinct extensions seen so far.
func (l *Ledger) Len() int {
	return len(l.exts)
}

// Extensions hands over the accumulated mapping. The ledger must not be
// used after the map has been handed to a ScanStats.
func (l *Ledger) Extensions() map[string]ExtensionStat {
	return l.exts
}

// NormalizeExt extracts the lower-cased extension of a file name, without
// the leading dot. The second return is false when the name has no
// extension: no dot at all, or a hidden-file name whose only dot is the
// leading one (".env"). A trailing dot ("archive.") yields the empty
// extension, which is considered present and tracked under "".
func NormalizeExt(name string) (string, bool) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return "", false
	}
	return strings.ToLower(name[i+1:]), true
}
