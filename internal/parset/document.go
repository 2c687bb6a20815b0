package parset

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Fixed section names. Every other section is a per-file override.
const (
	SectionGlobal     = "global"
	SectionDirections = "directions"
	SectionCluster    = "cluster"
)

// Entry is a single key/value assignment together with the line it came from.
type Entry struct {
	Key   string
	Value string
	Line  int
}

// Section is a named group of raw parameter values. Lookups are by key; the
// textual order of entries is kept for serialization.
type Section struct {
	name    string
	line    int
	entries []Entry
	index   map[string]int
}

func newSection(name string, line int) *Section {
	return &Section{name: name, line: line, index: make(map[string]int)}
}

// Name returns the section name as written between brackets.
func (s *Section) Name() string { return s.name }

// Line returns the line number of the section header.
func (s *Section) Line() int { return s.line }

// Get returns the raw value for key. Keys match case-insensitively, as
// parsets written for ConfigParser expect.
func (s *Section) Get(key string) (string, bool) {
	if s == nil {
		return "", false
	}
	i, ok := s.index[foldKey(key)]
	if !ok {
		return "", false
	}
	return s.entries[i].Value, true
}

// Has reports whether key is assigned in the section.
func (s *Section) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Keys returns the keys in textual order.
func (s *Section) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, len(s.entries))
	for i, e := range s.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of the section's entries in textual order.
func (s *Section) Entries() []Entry {
	if s == nil {
		return nil
	}
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Map returns the section as a plain map.
func (s *Section) Map() map[string]string {
	if s == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(s.entries))
	for _, e := range s.entries {
		out[e.Key] = e.Value
	}
	return out
}

// Len returns the number of entries.
func (s *Section) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

func (s *Section) add(e Entry) bool {
	folded := foldKey(e.Key)
	if _, exists := s.index[folded]; exists {
		return false
	}
	s.index[folded] = len(s.entries)
	s.entries = append(s.entries, e)
	return true
}

func foldKey(key string) string { return strings.ToLower(key) }

// Document is a parsed parset file. It is built once by Parse and is not
// modified afterwards.
type Document struct {
	source   string
	sections []*Section
	index    map[string]int
}

func newDocument(source string) *Document {
	return &Document{source: source, index: make(map[string]int)}
}

// Source returns the file name the document was parsed from.
func (d *Document) Source() string { return d.source }

// Section returns the named section, or nil when it is absent.
func (d *Document) Section(name string) *Section {
	if d == nil {
		return nil
	}
	i, ok := d.index[name]
	if !ok {
		return nil
	}
	return d.sections[i]
}

// Sections returns the sections in textual order.
func (d *Document) Sections() []*Section {
	if d == nil {
		return nil
	}
	out := make([]*Section, len(d.sections))
	copy(out, d.sections)
	return out
}

// SectionNames returns section names in textual order.
func (d *Document) SectionNames() []string {
	if d == nil {
		return nil
	}
	names := make([]string, len(d.sections))
	for i, s := range d.sections {
		names[i] = s.name
	}
	return names
}

// OverrideSections returns every section that is not global, directions or
// cluster, in textual order.
func (d *Document) OverrideSections() []*Section {
	var out []*Section
	for _, s := range d.Sections() {
		if !IsFixedSection(s.name) {
			out = append(out, s)
		}
	}
	return out
}

// IsFixedSection reports whether name is one of the recognized top-level
// sections.
func IsFixedSection(name string) bool {
	switch name {
	case SectionGlobal, SectionDirections, SectionCluster:
		return true
	default:
		return false
	}
}

func (d *Document) addSection(s *Section) bool {
	if _, exists := d.index[s.name]; exists {
		return false
	}
	d.index[s.name] = len(d.sections)
	d.sections = append(d.sections, s)
	return true
}

// Equal reports whether both documents hold the same sections and entries in
// the same order. Line numbers and the source name are ignored.
func (d *Document) Equal(other *Document) bool {
	if d == nil || other == nil {
		return d == other
	}
	if len(d.sections) != len(other.sections) {
		return false
	}
	for i, s := range d.sections {
		o := other.sections[i]
		if s.name != o.name || len(s.entries) != len(o.entries) {
			return false
		}
		for j, e := range s.entries {
			if e.Key != o.entries[j].Key || e.Value != o.entries[j].Value {
				return false
			}
		}
	}
	return true
}

// WriteTo serializes the document in parset syntax, preserving section and
// key order. Comments are not retained.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var total int64
	for i, s := range d.sections {
		if i > 0 {
			n, _ := bw.WriteString("\n")
			total += int64(n)
		}
		n, _ := fmt.Fprintf(bw, "[%s]\n", s.name)
		total += int64(n)
		for _, e := range s.entries {
			n, _ := fmt.Fprintf(bw, "%s = %s\n", e.Key, e.Value)
			total += int64(n)
		}
	}
	return total, bw.Flush()
}
