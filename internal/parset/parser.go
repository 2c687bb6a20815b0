package parset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

const maxLineBytes = 1 << 20

// ReadFile opens and parses the parset at path.
func ReadFile(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, loadFailure("open parset: %w", err)
	}
	defer file.Close()
	return Parse(file, path)
}

// Parse reads a parset from r. name is only used in error messages.
//
// Lines starting with '#' or ';' are comments and blank lines are skipped. A
// "[name]" line opens a section and "key = value" lines assign raw values to
// the most recently opened section.
func Parse(r io.Reader, name string) (*Document, error) {
	doc := newDocument(name)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var current *Section
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(strings.TrimSuffix(scanner.Text(), "\r"))
		if line == "" || isComment(line) {
			continue
		}

		if strings.HasPrefix(line, "[") {
			sectionName, err := parseSectionHeader(line)
			if err != nil {
				return nil, &ParseError{File: name, Line: lineNo, Reason: err.Error()}
			}
			section := newSection(sectionName, lineNo)
			if !doc.addSection(section) {
				prev := doc.Section(sectionName)
				return nil, &ParseError{File: name, Line: lineNo, Reason: fmt.Sprintf("duplicate section [%s] (first defined on line %d)", sectionName, prev.line)}
			}
			current = section
			continue
		}

		key, value, err := parseAssignment(line)
		if err != nil {
			return nil, &ParseError{File: name, Line: lineNo, Reason: err.Error()}
		}
		if current == nil {
			return nil, &ParseError{File: name, Line: lineNo, Reason: fmt.Sprintf("key %q appears before any section header", key)}
		}
		if !current.add(Entry{Key: key, Value: value, Line: lineNo}) {
			prev := current.entries[current.index[foldKey(key)]]
			return nil, &ParseError{File: name, Line: lineNo, Reason: fmt.Sprintf("duplicate key %q in section [%s] (first defined on line %d)", key, current.name, prev.Line)}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, loadFailure("read parset %s: %w", name, err)
	}
	return doc, nil
}

func isComment(line string) bool {
	return strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";")
}

func parseSectionHeader(line string) (string, error) {
	end := strings.IndexByte(line, ']')
	if end < 0 {
		return "", fmt.Errorf("unterminated section header %q", line)
	}
	if rest := strings.TrimSpace(line[end+1:]); rest != "" && !isComment(rest) {
		return "", fmt.Errorf("unexpected text %q after section header", rest)
	}
	name := strings.TrimSpace(line[1:end])
	if name == "" {
		return "", fmt.Errorf("empty section name")
	}
	if strings.ContainsAny(name, "[]") {
		return "", fmt.Errorf("malformed section header %q", line)
	}
	return name, nil
}

func parseAssignment(line string) (string, string, error) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", fmt.Errorf("expected \"key = value\", got %q", line)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", fmt.Errorf("missing key before '=' in %q", line)
	}
	if strings.ContainsAny(key, " \t[]") {
		return "", "", fmt.Errorf("invalid key %q", key)
	}
	return key, strings.TrimSpace(value), nil
}
