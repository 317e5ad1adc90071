// Package report renders scan results for humans and machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/saworbit/spectra/scan"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2

	// topExtensionRows bounds the extension table in the human report.
	topExtensionRows = 5
)

// PrintJSON outputs statistics in JSON format.
func PrintJSON(stats *scan.ScanStats, writer io.Writer) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintTable outputs statistics in human-readable table format.
func PrintTable(stats *scan.ScanStats, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	fmt.Fprintf(w, "Scanned:\t%s\n", stats.RootPath)
	fmt.Fprintf(w, "Files:\t%d\n", stats.TotalFiles)
	fmt.Fprintf(w, "Folders:\t%d\n", stats.TotalFolders)
	fmt.Fprintf(w, "Total size:\t%s (%d bytes)\n",
		humanize.Bytes(stats.TotalSizeBytes), stats.TotalSizeBytes)
	fmt.Fprintf(w, "Elapsed:\t%v\n", time.Duration(stats.ScanDurationMS)*time.Millisecond)
	if stats.SkippedEntries > 0 {
		fmt.Fprintf(w, "Skipped:\t%d unreadable entries\n", stats.SkippedEntries)
	}

	if exts := topExtensions(stats); len(exts) > 0 {
		fmt.Fprintln(w, "\nTop extensions:\t\t")
		for i, ext := range exts {
			stat := stats.Extensions[ext]
			pct := 0.0
			if stats.TotalSizeBytes > 0 {
				pct = 100.0 * float64(stat.Size) / float64(stats.TotalSizeBytes)
			}
			fmt.Fprintf(w, "  %d) %s:\t%d files, %s (%.1f%%)\n",
				i+1, ext, stat.Count, humanize.Bytes(stat.Size), pct)
		}
	}

	if len(stats.TopFiles) > 0 {
		fmt.Fprintln(w, "\nTop files:\t\t")
		for i, f := range stats.TopFiles {
			fmt.Fprintf(w, "  %d) %s\t%s%s\n",
				i+1, f.Path, humanize.Bytes(f.SizeBytes), decorations(f))
		}
	}

	return w.Flush()
}

// topExtensions returns up to topExtensionRows extension names, largest
// volume first, name ascending on ties so output is stable.
func topExtensions(stats *scan.ScanStats) []string {
	exts := make([]string, 0, len(stats.Extensions))
	for ext := range stats.Extensions {
		exts = append(exts, ext)
	}
	sort.Slice(exts, func(i, j int) bool {
		a, b := stats.Extensions[exts[i]], stats.Extensions[exts[j]]
		if a.Size != b.Size {
			return a.Size > b.Size
		}
		return exts[i] < exts[j]
	})
	if len(exts) > topExtensionRows {
		exts = exts[:topExtensionRows]
	}
	return exts
}

// decorations renders whichever enrichment fields are present on a record.
func decorations(f scan.FileRecord) string {
	var parts []string
	if f.Entropy != nil {
		parts = append(parts, fmt.Sprintf("entropy %.2f", *f.Entropy))
	}
	if f.RiskLevel != "" {
		parts = append(parts, "risk "+colorizeRisk(f.RiskLevel))
	}
	if f.SemanticTag != "" {
		parts = append(parts, f.SemanticTag)
	}
	if len(parts) == 0 {
		return ""
	}
	return "\t" + strings.Join(parts, ", ")
}

// colorizeRisk highlights the risk level. The color package already
// disables itself when stdout is not a terminal.
func colorizeRisk(level string) string {
	switch level {
	case "critical":
		return color.RedString(level)
	case "high":
		return color.YellowString(level)
	case "medium":
		return color.CyanString(level)
	default:
		return level
	}
}
