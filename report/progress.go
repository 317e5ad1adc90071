package report

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/saworbit/spectra/scan"
)

// ProgressPrinter returns a scan progress hook that live-updates a single
// status line on stderr, plus a done function that clears the line. When
// stderr is not a terminal both the hook and done are inert, so callers can
// wire them unconditionally.
func ProgressPrinter() (scan.ProgressFunc, func()) {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil, func() {}
	}

	// Hide the cursor while the status line is being rewritten.
	fmt.Fprint(os.Stderr, "\033[?25l")

	hook := func(files, bytes uint64) {
		status := fmt.Sprintf("Scanning… %d files, %s", files, humanize.Bytes(bytes))
		fmt.Fprintf(os.Stderr, "\r\033[2K%s\r", status)
	}

	done := func() {
		fmt.Fprint(os.Stderr, "\r\033[2K")
		fmt.Fprint(os.Stderr, "\033[?25h")
	}

	return hook, done
}
