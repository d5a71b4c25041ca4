package digest

import (
	"errors"
	"fmt"
)

// Kind classifies a digest engine failure.
type Kind int

const (
	// KindConfig is bad or missing configuration, including unknown tier names.
	KindConfig Kind = iota + 1
	// KindValidation is a malformed input observed at the boundary.
	KindValidation
	// KindDigest is a domain-level failure: finalize failed, cascade
	// inconsistency, corrupt grand-digest structure.
	KindDigest
	// KindFileIO wraps an underlying OS read/write/delete failure.
	KindFileIO
	// KindCorruptedData is persisted JSON that parses but is missing a
	// required section.
	KindCorruptedData
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindValidation:
		return "validation"
	case KindDigest:
		return "digest"
	case KindFileIO:
		return "file io"
	case KindCorruptedData:
		return "corrupted data"
	default:
		return "unknown"
	}
}

// Error is the engine's error type. Op names the failing operation,
// Err holds the underlying cause when there is one.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	s := e.Op + ": " + e.Msg
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by Kind, so errors.Is(err, &Error{Kind: k})
// works as a classification check.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Msg == ""
}

// IsKind reports whether err is (or wraps) an engine error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

func newErr(k Kind, op, format string, args ...any) *Error {
	return &Error{Kind: k, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func wrapErr(k Kind, op string, err error, format string, args ...any) *Error {
	return &Error{Kind: k, Op: op, Msg: fmt.Sprintf(format, args...), Err: err}
}
