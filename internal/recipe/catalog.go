package recipe

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

const templateExt = ".tpl"

//go:embed templates/*.tpl
var builtinFS embed.FS

// ErrUnknownTemplate is returned by Catalog.Get for names it does not hold.
var ErrUnknownTemplate = errors.New("unknown template")

// Entry is a catalog template together with where it was loaded from.
type Entry struct {
	Descriptor *Descriptor
	Origin     string
}

// Catalog holds named templates: the builtins compiled into the binary,
// optionally overlaid by a directory of user templates.
type Catalog struct {
	entries map[string]Entry
}

// NewCatalog loads the builtin templates and, when dir is non-empty, every
// *.tpl file in dir. User templates replace builtins of the same name.
func NewCatalog(dir string) (*Catalog, error) {
	c := &Catalog{entries: make(map[string]Entry)}
	if err := c.loadFS(builtinFS, "templates", "builtin"); err != nil {
		return nil, err
	}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return c, nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("template directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("template directory: %s is not a directory", dir)
	}
	if err := c.loadFS(os.DirFS(dir), ".", dir); err != nil {
		return nil, err
	}
	return c, nil
}

// Builtin returns a catalog with only the compiled-in templates.
func Builtin() *Catalog {
	c, err := NewCatalog("")
	if err != nil {
		panic(fmt.Sprintf("builtin templates: %v", err))
	}
	return c
}

func (c *Catalog) loadFS(fsys fs.FS, root, origin string) error {
	matches, err := fs.Glob(fsys, path.Join(root, "*"+templateExt))
	if err != nil {
		return fmt.Errorf("list templates in %s: %w", origin, err)
	}
	for _, match := range matches {
		data, err := fs.ReadFile(fsys, match)
		if err != nil {
			return fmt.Errorf("read template %s: %w", match, err)
		}
		name := strings.TrimSuffix(path.Base(match), templateExt)
		// A single trailing newline is file formatting, not template text.
		text := strings.TrimSuffix(strings.TrimSuffix(string(data), "\n"), "\r")
		d, err := Parse(name, text)
		if err != nil {
			return err
		}
		entryOrigin := origin
		if origin != "builtin" {
			entryOrigin = filepath.Join(origin, filepath.FromSlash(match))
		}
		c.entries[name] = Entry{Descriptor: d, Origin: entryOrigin}
	}
	return nil
}

// Get returns the named template.
func (c *Catalog) Get(name string) (*Descriptor, error) {
	entry, ok := c.entries[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownTemplate, name, strings.Join(c.Names(), ", "))
	}
	return entry.Descriptor, nil
}

// Entry returns the named template and its origin.
func (c *Catalog) Entry(name string) (Entry, bool) {
	entry, ok := c.entries[strings.TrimSpace(name)]
	return entry, ok
}

// Names returns the template names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render looks up name and renders it with b.
func (c *Catalog) Render(name string, b Bindings) (string, error) {
	d, err := c.Get(name)
	if err != nil {
		return "", err
	}
	return d.Render(b)
}
