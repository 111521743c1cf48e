package types

import (
	"errors"
	"fmt"
)

// Kind classifies the failures a fit or load can surface to callers
type Kind int

const (
	KindUnknown Kind = iota
	// InvalidPlatform: the requested platform is not in the frame table.
	InvalidPlatform
	// SourceFetch: network transport, HTTP status or allow-list failure.
	SourceFetch
	// SourceLoad: unreadable path or undecodable bytes.
	SourceLoad
	// DegenerateImage: the decoded source has no height (or width).
	DegenerateImage
)

func (k Kind) String() string {
	switch k {
	case InvalidPlatform:
		return "InvalidPlatform"
	case SourceFetch:
		return "SourceFetchError"
	case SourceLoad:
		return "SourceLoadError"
	case DegenerateImage:
		return "DegenerateImageError"
	default:
		return "Unknown"
	}
}

// Error is the typed error returned by the loading and fitting components
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

// NewError builds an Error of the given kind
func NewError(kind Kind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

// Errorf builds an Error with a formatted message and no cause
func Errorf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	s := e.Kind.String()
	if e.Op != "" {
		s += ": " + e.Op
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so callers can compare
// against a bare &Error{Kind: ...} target.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Msg == "" && t.Err == nil
}

// KindOf returns the Kind of the first *Error in err's chain
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind anywhere in its chain
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
