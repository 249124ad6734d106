package geometry

// ErrorKind discriminates geometry failures.
type ErrorKind int

const (
	ErrInvalidFormat ErrorKind = iota
	ErrOutOfBounds
	ErrTooSmall
)

func (k ErrorKind) String() string {
	switch k {
	case ErrInvalidFormat:
		return "invalid format"
	case ErrOutOfBounds:
		return "out of bounds"
	case ErrTooSmall:
		return "too small"
	default:
		return "unknown"
	}
}

// Error is a geometry validation or parse failure.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}
