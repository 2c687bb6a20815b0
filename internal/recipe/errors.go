package recipe

import (
	"fmt"
	"strings"
)

// UnresolvedPlaceholderError reports placeholders that had no binding.
type UnresolvedPlaceholderError struct {
	Template string
	Names    []string
}

func (e *UnresolvedPlaceholderError) Error() string {
	return fmt.Sprintf("render %s: unresolved placeholder(s): %s", templateLabel(e.Template), strings.Join(e.Names, ", "))
}

// TemplateSyntaxError reports a malformed template.
type TemplateSyntaxError struct {
	Template string
	Line     int
	Reason   string
}

func (e *TemplateSyntaxError) Error() string {
	return fmt.Sprintf("template %s:%d: %s", templateLabel(e.Template), e.Line, e.Reason)
}

func templateLabel(name string) string {
	if strings.TrimSpace(name) == "" {
		return "<template>"
	}
	return name
}
