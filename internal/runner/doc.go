// Package runner drives the external extraction tool.
//
// # Basic Usage
//
//	r := runner.New(logger)
//	err := r.Run(ctx, toolPath, args, outputFolder, func(line string) {
//	    status.Set(line) // each line replaces the previous one
//	})
//
// The tool's standard error is merged into its standard output and the
// combined stream is split into lines on '\n' and '\r'. Backspace
// sequences, which console rar uses to redraw percentages in place, are
// applied before a line is reported.
//
// # Failure Handling
//
// A non-zero exit removes outputFolder (ignoring errors) and returns an
// *ExitError, which matches ErrExtractionFailed with errors.Is. When the
// tool reports a bad password the error also matches ErrWrongPassword.
// Cancelling ctx kills the tool, removes outputFolder the same way, and
// returns an *ExitError with Cancelled set that also matches
// context.Canceled. Output that cannot be split into lines is discarded
// and does not by itself fail a run that exits cleanly.
package runner
