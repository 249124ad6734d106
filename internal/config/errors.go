package config

import "fmt"

// ValidationError is a malformed or out-of-range user input, caught before
// any resource is allocated. It always carries a corrective suggestion.
type ValidationError struct {
	Field      string
	Message    string
	Suggestion string
}

func (e *ValidationError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("invalid %s: %s (%s)", e.Field, e.Message, e.Suggestion)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ConfigurationErrorKind discriminates resolution failures.
type ConfigurationErrorKind int

const (
	// ErrConflictingOperation marks mutually-exclusive flags requested
	// together.
	ErrConflictingOperation ConfigurationErrorKind = iota
	// ErrTargetNotFound marks a named screen or application absent from
	// the live enumeration.
	ErrTargetNotFound
	// ErrOutputUnwritable marks an output path that cannot be written.
	ErrOutputUnwritable
)

// ConfigurationError is a resolution failure: a conflicting operation, a
// missing target, or an unusable output path.
type ConfigurationError struct {
	Kind ConfigurationErrorKind
	Msg  string
	Err  error
}

func (e *ConfigurationError) Error() string {
	return e.Msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
