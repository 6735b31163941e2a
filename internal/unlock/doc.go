// Package unlock provides the extraction orchestration logic for
// password-protected zip and rar archives.
//
// # Manager
//
// The Manager coordinates a single extraction:
//
//  1. Validate the input path (exists, not a directory, .zip or .rar)
//  2. Locate the extraction tool
//  3. Check whether the archive requires a password
//  4. Read the archive comment and ask Gemini for the password (protected archives only)
//  5. Run the tool, streaming its output
//
// Steps run strictly in order and every failure ends the run early.
//
// # Basic Usage
//
//	manager := unlock.NewManager(settings, logger, func(event unlock.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	result, err := manager.Extract(ctx, "photos.rar")
//	if err != nil {
//	    // The archive could not be inspected.
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Outcome)
//
// # Outcomes
//
// Extract only returns an error when the archive cannot be inspected.
// Everything else is a handled outcome reported through the Result:
//
//   - OutcomeDone: the tool exited cleanly
//   - OutcomeFailed: the tool exited non-zero and its output folder was removed
//   - OutcomeSkipped: a protected archive had no usable comment or password
//   - OutcomeAborted: bad input or no extraction tool
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message    string
//	    Level      ProgressLevel // Info, Verbose, Warning, Error, Success, Output
//	    Percent    float64       // Output only, when HasPercent is set
//	    HasPercent bool
//	}
//
// LevelOutput events carry one line of tool output each. Front ends show
// them on a single line that each new event replaces.
package unlock
