package core

// Process exit codes. An interrupt is a normal way to stop the demo, so
// signal-driven shutdown exits with ExitCodeSuccess rather than a signal
// convention code.
const (
	// ExitCodeSuccess indicates normal termination, including Ctrl+C.
	ExitCodeSuccess = 0

	// ExitCodeError indicates a fatal error: configuration failure,
	// pipeline initialization failure, or an unrecoverable server error.
	ExitCodeError = 1
)

// ExitCodeName returns a human-readable name for an exit code.
func ExitCodeName(code int) string {
	switch code {
	case ExitCodeSuccess:
		return "success"
	case ExitCodeError:
		return "error"
	default:
		return "unknown"
	}
}
