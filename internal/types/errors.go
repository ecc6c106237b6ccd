package types

import "fmt"

// PhaseError records a restore phase whose process failed. The orchestrator
// logs it and moves on to the next phase.
type PhaseError struct {
	Phase    Phase
	ExitCode int
	Err      error
}

func (e *PhaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s phase failed: %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("%s phase failed: exit code %d", e.Phase, e.ExitCode)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// DownloadItemError records one candidate that could not be fetched.
type DownloadItemError struct {
	URL string
	Err error
}

func (e *DownloadItemError) Error() string {
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *DownloadItemError) Unwrap() error {
	return e.Err
}
