package scan

import "container/heap"

// FileRecord identifies one file by path and exact size. The three trailing
// fields are optional enrichment attached after a scan by analysis
// collaborators; the scan engine itself never sets them and their absence is
// always valid.
type FileRecord struct {
	Path      string `json:"path"`
	SizeBytes uint64 `json:"size_bytes"`

	Entropy     *float64 `json:"entropy,omitempty"`
	RiskLevel   string   `json:"risk_level,omitempty"`
	SemanticTag string   `json:"semantic_tag,omitempty"`
}

// TopK retains the K largest-by-size file records seen so far. It is a
// size-bounded min-heap: the smallest retained record sits at the root and
// is evicted when a strictly larger one arrives, so each Offer costs
// O(log K) and memory never exceeds K records.
//
// Ties on size are deterministic: the earliest-offered record wins
// retention, and Drain orders equal-size records by ascending insertion.
//
// Not safe for concurrent use.
type TopK struct {
	h     topHeap
	limit int
	seq   uint64
}

// NewTopK returns a tracker that retains at most limit records. A limit of
// zero (or below) retains nothing.
func NewTopK(limit int) *TopK {
	if limit < 0 {
		limit = 0
	}
	t := &TopK{limit: limit}
	if limit > 0 {
		t.h = make(topHeap, 0, limit)
	}
	return t
}

// Offer considers one record for retention. Records smaller than or equal
// in size to the current minimum of a full tracker are discarded.
func (t *TopK) Offer(rec FileRecord) {
	if t.limit <= 0 {
		return
	}
	t.seq++
	e := topEntry{rec: rec, seq: t.seq}

	if len(t.h) < t.limit {
		heap.Push(&t.h, e)
		return
	}
	if rec.SizeBytes > t.h[0].rec.SizeBytes {
		t.h[0] = e
		heap.Fix(&t.h, 0)
	}
}

// Len reports how many records are currently retained.
func (t *TopK) Len() int {
	return len(t.h)
}

// Drain consumes the tracker and returns the retained records ordered by
// descending size. The tracker is empty afterwards.
func (t *TopK) Drain() []FileRecord {
	out := make([]FileRecord, len(t.h))
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&t.h).(topEntry).rec
	}
	return out
}

// topEntry pairs a record with a monotonic insertion sequence used to break
// size ties deterministically.
type topEntry struct {
	rec FileRecord
	seq uint64
}

// topHeap is a min-heap on size. Among equal sizes the latest insertion is
// ordered first so it is the eviction candidate, leaving the
// earliest-offered record retained.
type topHeap []topEntry

func (h topHeap) Len() int { return len(h) }

func (h topHeap) Less(i, j int) bool {
	if h[i].rec.SizeBytes != h[j].rec.SizeBytes {
		return h[i].rec.SizeBytes < h[j].rec.SizeBytes
	}
	return h[i].seq > h[j].seq
}

func (h topHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *topHeap) Push(x any) {
	*h = append(*h, x.(topEntry))
}

func (h *topHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}
