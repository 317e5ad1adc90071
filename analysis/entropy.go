// Package analysis enriches scan results with optional per-file signals:
// a Shannon-entropy estimate of the file header, a filename-based risk
// level, and a coarse semantic category. All three are additive; aggregate
// scan counters are never touched.
package analysis

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// entropySampleSize bounds how much of a file the entropy estimate reads.
const entropySampleSize = 8 * 1024

// Entropy estimates the Shannon entropy of the first 8 KiB of the file in
// bits per byte, in [0.0, 8.0]. An empty file scores 0.0.
func Entropy(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, entropySampleSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return 0, fmt.Errorf("sampling %s: %w", path, err)
	}
	return shannon(buf[:n]), nil
}

func shannon(sample []byte) float64 {
	if len(sample) == 0 {
		return 0
	}

	var freq [256]uint32
	for _, b := range sample {
		freq[b]++
	}

	total := float64(len(sample))
	var h float64
	for _, c := range freq {
		if c == 0 {
			continue
		}
		p := float64(c) / total
		h -= p * math.Log2(p)
	}
	return h
}
