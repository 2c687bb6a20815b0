// Package recipe renders pipeline parset templates.
//
// Templates are plain text with "{{ name }}" placeholders. Parse splits a
// template into a Descriptor, and Descriptor.Render substitutes Bindings
// without any I/O, so the same inputs always give the same text. A Catalog
// serves the builtin templates compiled into the binary plus an optional
// directory of user templates.
package recipe
