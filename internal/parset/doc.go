// Package parset loads Factor parameter files ("parsets").
//
// A parset is a section-delimited key/value file. Parse turns the text into an
// immutable Document of raw strings, preserving section and key order so it
// can be written back out. Resolve then applies the static table of known
// parameters: defaults for optional keys, type coercion, required-key checks,
// measurement-set discovery in dir_ms and scoping of per-file override
// sections. Unknown keys are carried through untouched.
//
// Every failure is fail-fast and matches ErrInvalidParset via errors.Is. Use
// errors.As with ParseError, MissingRequiredParameterError or
// TypeCoercionError to inspect the details.
package parset
