package commands

import (
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// newScanSpinner returns an indeterminate progress spinner for the
// scan command, or nil when progress shouldn't be shown (quiet/JSON
// mode, or stderr isn't a TTY). Assemble runs as a single blocking
// call with no per-file callback, so a spinner rather than a bar
// tracks it.
func newScanSpinner(quiet, noColor bool) *progressbar.ProgressBar {
	if quiet || !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}

	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("scanning"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionEnableColorCodes(!noColor),
		progressbar.OptionThrottle(65*time.Millisecond),
	)
}

// stopSpinner finishes and clears bar if non-nil.
func stopSpinner(bar *progressbar.ProgressBar) {
	if bar == nil {
		return
	}

	_ = bar.Finish()
}
