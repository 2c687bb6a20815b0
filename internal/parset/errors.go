package parset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidParset tags every loader failure so callers can classify them with
// errors.Is regardless of the concrete error type.
var ErrInvalidParset = errors.New("invalid parset")

// ParseError reports a structurally invalid parset file.
type ParseError struct {
	File   string
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	file := e.File
	if file == "" {
		file = "<parset>"
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse %s:%d: %s", file, e.Line, e.Reason)
	}
	return fmt.Sprintf("parse %s: %s", file, e.Reason)
}

func (e *ParseError) Is(target error) bool { return target == ErrInvalidParset }

// MissingRequiredParameterError reports a required key that is absent and has
// no default.
type MissingRequiredParameterError struct {
	Section string
	Key     string
	// Reason optionally explains a conditional requirement.
	Reason string
}

func (e *MissingRequiredParameterError) Error() string {
	msg := fmt.Sprintf("%s.%s is required", e.Section, e.Key)
	if strings.TrimSpace(e.Reason) != "" {
		msg += " " + e.Reason
	}
	return msg
}

func (e *MissingRequiredParameterError) Is(target error) bool { return target == ErrInvalidParset }

// TypeCoercionError reports a value that cannot be converted to the kind its
// parameter expects.
type TypeCoercionError struct {
	Section string
	Key     string
	Value   string
	Kind    Kind
	Err     error
}

func (e *TypeCoercionError) Error() string {
	target := e.Key
	if e.Section != "" {
		target = e.Section + "." + e.Key
	}
	if target == "" {
		target = "value"
	}
	msg := fmt.Sprintf("%s: cannot convert %q to %s", target, e.Value, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TypeCoercionError) Unwrap() error { return e.Err }

func (e *TypeCoercionError) Is(target error) bool { return target == ErrInvalidParset }

// withLocation fills section and key on coercion errors raised by the
// standalone Parse* helpers.
func withLocation(err error, section, key string) error {
	var coerceErr *TypeCoercionError
	if errors.As(err, &coerceErr) {
		coerceErr.Section = section
		coerceErr.Key = key
	}
	return err
}

// loadError wraps I/O and path failures met while loading so they match
// ErrInvalidParset like the typed errors do.
type loadError struct {
	err error
}

func (e *loadError) Error() string { return e.err.Error() }

func (e *loadError) Unwrap() error { return e.err }

func (e *loadError) Is(target error) bool { return target == ErrInvalidParset }

func loadFailure(format string, args ...any) error {
	return &loadError{err: fmt.Errorf(format, args...)}
}
