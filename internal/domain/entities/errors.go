package entities

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of failures surfaced by engine operations
type ErrorKind int

const (
	// KindNotFound means the target path does not exist
	KindNotFound ErrorKind = iota + 1
	// KindWrongKind means the path is a file where a directory was expected or vice versa
	KindWrongKind
	// KindConfigInvalid means a threshold or concurrency parameter is out of range
	KindConfigInvalid
	// KindCorpusInvalid means the corpus is missing, unreadable, malformed or fails verification
	KindCorpusInvalid
	// KindNotReady means the engine was never constructed successfully
	KindNotReady
)

// Sentinel errors, one per kind, for errors.Is matching
var (
	ErrNotFound       = errors.New("not found")
	ErrWrongKind      = errors.New("wrong path kind")
	ErrConfigInvalid  = errors.New("invalid configuration")
	ErrCorpusInvalid  = errors.New("invalid corpus")
	ErrEngineNotReady = errors.New("engine not ready")
)

// String returns the kind name
func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindWrongKind:
		return "WrongKind"
	case KindConfigInvalid:
		return "ConfigInvalid"
	case KindCorpusInvalid:
		return "CorpusInvalid"
	case KindNotReady:
		return "NotReady"
	default:
		return "Unknown"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindWrongKind:
		return ErrWrongKind
	case KindConfigInvalid:
		return ErrConfigInvalid
	case KindCorpusInvalid:
		return ErrCorpusInvalid
	case KindNotReady:
		return ErrEngineNotReady
	default:
		return nil
	}
}

// EngineError is the typed failure returned by engine operations
type EngineError struct {
	Kind ErrorKind
	Op   string
	Path string
	Err  error
}

// NewEngineError creates an EngineError
func NewEngineError(kind ErrorKind, op, path string, err error) *EngineError {
	return &EngineError{Kind: kind, Op: op, Path: path, Err: err}
}

func (e *EngineError) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	msg += ": " + e.Kind.sentinel().Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the kind sentinel and the underlying cause
func (e *EngineError) Unwrap() []error {
	errs := []error{e.Kind.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the ErrorKind carried by err, or 0 when err is not an EngineError
func KindOf(err error) ErrorKind {
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr.Kind
	}
	return 0
}

// NotFoundf is shorthand for a KindNotFound error
func NotFoundf(op, path string) *EngineError {
	return NewEngineError(KindNotFound, op, path, nil)
}

// WrongKindf is shorthand for a KindWrongKind error
func WrongKindf(op, path, format string, args ...any) *EngineError {
	return NewEngineError(KindWrongKind, op, path, fmt.Errorf(format, args...))
}

// CorpusInvalidf is shorthand for a KindCorpusInvalid error
func CorpusInvalidf(path string, err error) *EngineError {
	return NewEngineError(KindCorpusInvalid, "load corpus", path, err)
}
