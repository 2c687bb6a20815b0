package recipe

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Placeholder delimiters.
const (
	OpenMarker  = "{{"
	CloseMarker = "}}"
	// ListSeparator joins list values so they fit inside bracket literals.
	ListSeparator = ", "
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Segment is either literal text or a placeholder reference.
type Segment struct {
	Text        string
	Placeholder string
}

// IsPlaceholder reports whether the segment refers to a binding.
func (s Segment) IsPlaceholder() bool { return s.Placeholder != "" }

// Descriptor is a parsed template: an ordered list of literal and placeholder
// segments.
type Descriptor struct {
	Name     string
	Segments []Segment
}

// Parse splits text into segments. Placeholders are "{{ name }}" where name is
// a bare identifier; whitespace inside the markers is optional.
func Parse(name, text string) (*Descriptor, error) {
	d := &Descriptor{Name: name}
	line := 1
	rest := text
	for {
		open := strings.Index(rest, OpenMarker)
		if open < 0 {
			d.appendText(rest)
			return d, nil
		}
		d.appendText(rest[:open])
		line += strings.Count(rest[:open], "\n")

		body := rest[open+len(OpenMarker):]
		end := strings.Index(body, CloseMarker)
		if end < 0 {
			return nil, &TemplateSyntaxError{Template: name, Line: line, Reason: "unterminated placeholder"}
		}
		ident := strings.TrimSpace(body[:end])
		if !identifierPattern.MatchString(ident) {
			return nil, &TemplateSyntaxError{Template: name, Line: line, Reason: fmt.Sprintf("invalid placeholder %q", body[:end])}
		}
		d.Segments = append(d.Segments, Segment{Placeholder: ident})
		line += strings.Count(body[:end], "\n")
		rest = body[end+len(CloseMarker):]
	}
}

// MustParse is like Parse but panics on error. Use it for templates compiled
// into the binary.
func MustParse(name, text string) *Descriptor {
	d, err := Parse(name, text)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Descriptor) appendText(text string) {
	if text == "" {
		return
	}
	d.Segments = append(d.Segments, Segment{Text: text})
}

// Placeholders returns the distinct placeholder names in order of first use.
func (d *Descriptor) Placeholders() []string {
	var names []string
	seen := map[string]struct{}{}
	for _, seg := range d.Segments {
		if !seg.IsPlaceholder() {
			continue
		}
		if _, ok := seen[seg.Placeholder]; ok {
			continue
		}
		seen[seg.Placeholder] = struct{}{}
		names = append(names, seg.Placeholder)
	}
	return names
}

// Bindings maps placeholder names to values.
type Bindings map[string]any

// Render substitutes every placeholder. It fails with
// UnresolvedPlaceholderError naming all placeholders without a binding; a
// nil value counts as unbound.
func (d *Descriptor) Render(b Bindings) (string, error) {
	var missing []string
	for _, name := range d.Placeholders() {
		if value, ok := b[name]; !ok || value == nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", &UnresolvedPlaceholderError{Template: d.Name, Names: missing}
	}

	var sb strings.Builder
	for _, seg := range d.Segments {
		if seg.IsPlaceholder() {
			sb.WriteString(FormatValue(b[seg.Placeholder]))
			continue
		}
		sb.WriteString(seg.Text)
	}
	return sb.String(), nil
}

// FormatValue renders a binding value as template text. Lists are joined
// with ListSeparator and booleans use the parset spelling True/False.
func FormatValue(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case []string:
		return strings.Join(value, ListSeparator)
	case []int:
		parts := make([]string, len(value))
		for i, n := range value {
			parts[i] = strconv.Itoa(n)
		}
		return strings.Join(parts, ListSeparator)
	case []any:
		parts := make([]string, len(value))
		for i, item := range value {
			parts[i] = FormatValue(item)
		}
		return strings.Join(parts, ListSeparator)
	case bool:
		if value {
			return "True"
		}
		return "False"
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case fmt.Stringer:
		return value.String()
	default:
		return fmt.Sprint(value)
	}
}
