package capture

// ErrorKind discriminates capture failures.
type ErrorKind int

const (
	// ErrNoMatchingDisplay marks a configured screen absent from the live
	// display set at start time.
	ErrNoMatchingDisplay ErrorKind = iota
	// ErrNoWindowsFound marks a target application that currently owns no
	// windows.
	ErrNoWindowsFound
	// ErrStartFailed marks an engine-level start failure.
	ErrStartFailed
	// ErrCaptureFailed marks a failure reported mid-session by the engine.
	ErrCaptureFailed
)

// Error is an engine-level or content-targeting failure.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}
