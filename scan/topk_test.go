package scan

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"
)

func TestTopKRetainsLargest(t *testing.T) {
	tk := NewTopK(3)
	for _, size := range []uint64{5, 1, 9, 3, 7, 2, 8} {
		tk.Offer(FileRecord{Path: fmt.Sprintf("f%d", size), SizeBytes: size})
	}

	got := tk.Drain()
	want := []uint64{9, 8, 7}
	if len(got) != len(want) {
		t.Fatalf("drained %d records, want %d", len(got), len(want))
	}
	for i, rec := range got {
		if rec.SizeBytes != want[i] {
			t.Errorf("drain[%d].SizeBytes = %d, want %d", i, rec.SizeBytes, want[i])
		}
	}
}

func TestTopKCapacityInvariant(t *testing.T) {
	tk := NewTopK(4)
	for i := 0; i < 100; i++ {
		tk.Offer(FileRecord{Path: fmt.Sprintf("f%d", i), SizeBytes: uint64(i % 17)})
		if tk.Len() > 4 {
			t.Fatalf("tracker holds %d records after offer %d, capacity is 4", tk.Len(), i)
		}
	}
}

func TestTopKZeroCapacity(t *testing.T) {
	tk := NewTopK(0)
	tk.Offer(FileRecord{Path: "a", SizeBytes: 100})
	tk.Offer(FileRecord{Path: "b", SizeBytes: 200})

	if tk.Len() != 0 {
		t.Fatalf("zero-capacity tracker retained %d records", tk.Len())
	}
	if got := tk.Drain(); len(got) != 0 {
		t.Fatalf("Drain() = %v, want empty", got)
	}
}

func TestTopKFewerThanK(t *testing.T) {
	tk := NewTopK(10)
	tk.Offer(FileRecord{Path: "a", SizeBytes: 2})
	tk.Offer(FileRecord{Path: "b", SizeBytes: 1})

	got := tk.Drain()
	if len(got) != 2 || got[0].Path != "a" || got[1].Path != "b" {
		t.Fatalf("Drain() = %v, want [a b]", got)
	}
}

func TestTopKMatchesFullSort(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, k := range []int{0, 1, 5, 50, 500} {
		k := k
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			sizes := make([]uint64, 200)
			tk := NewTopK(k)
			for i := range sizes {
				sizes[i] = uint64(rng.Intn(1000))
				tk.Offer(FileRecord{Path: fmt.Sprintf("f%d", i), SizeBytes: sizes[i]})
			}

			sort.Slice(sizes, func(i, j int) bool { return sizes[i] > sizes[j] })
			wantLen := k
			if wantLen > len(sizes) {
				wantLen = len(sizes)
			}

			got := tk.Drain()
			if len(got) != wantLen {
				t.Fatalf("drained %d records, want %d", len(got), wantLen)
			}
			for i, rec := range got {
				if rec.SizeBytes != sizes[i] {
					t.Errorf("drain[%d].SizeBytes = %d, want %d", i, rec.SizeBytes, sizes[i])
				}
			}
		})
	}
}

// Equal sizes must resolve deterministically: the earliest-offered record is
// retained under eviction pressure, and equal-size records drain in
// insertion order.
func TestTopKTieBreakDeterministic(t *testing.T) {
	tk := NewTopK(2)
	tk.Offer(FileRecord{Path: "first", SizeBytes: 10})
	tk.Offer(FileRecord{Path: "second", SizeBytes: 10})
	tk.Offer(FileRecord{Path: "third", SizeBytes: 10})

	got := tk.Drain()
	if len(got) != 2 {
		t.Fatalf("drained %d records, want 2", len(got))
	}
	if got[0].Path != "first" || got[1].Path != "second" {
		t.Errorf("drain = [%s %s], want [first second]", got[0].Path, got[1].Path)
	}
}

func TestTopKEqualSizeNotEvictedByEqual(t *testing.T) {
	tk := NewTopK(1)
	tk.Offer(FileRecord{Path: "keep", SizeBytes: 10})
	tk.Offer(FileRecord{Path: "discard", SizeBytes: 10})

	got := tk.Drain()
	if len(got) != 1 || got[0].Path != "keep" {
		t.Fatalf("drain = %v, want the earliest-offered record", got)
	}
}
