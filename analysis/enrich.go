package analysis

import (
	"log/slog"

	"github.com/saworbit/spectra/scan"
)

// Options selects which enrichment passes run.
type Options struct {
	// Semantic additionally assigns content categories. Entropy and risk
	// always run.
	Semantic bool
}

// Enrich decorates the top files of a completed scan in place. Files that
// cannot be sampled keep their optional fields empty; enrichment never
// fails a scan and never alters aggregate counters.
func Enrich(stats *scan.ScanStats, opts Options) {
	for i := range stats.TopFiles {
		rec := &stats.TopFiles[i]

		ent, err := Entropy(rec.Path)
		if err != nil {
			slog.Debug("skipping enrichment", "path", rec.Path, "error", err)
			continue
		}
		rec.Entropy = &ent

		if level := ClassifyRisk(rec.Path); level != RiskNone {
			rec.RiskLevel = level.String()
		}
		if opts.Semantic {
			if tag, ok := SemanticTag(rec.Path, ent); ok {
				rec.SemanticTag = tag
			}
		}
	}
}
