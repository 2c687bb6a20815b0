package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"factor/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Render.OutputDir = filepath.Join(base, "rendered")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithTemplate writes a user template into a templates directory under the
// config's base dir and points Templates.Dir at it.
func WithTemplate(name, body string) ConfigOption {
	return func(b *configBuilder) {
		dir := filepath.Join(b.baseDir, "templates")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			b.t.Fatalf("mkdir templates dir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, name+".tpl"), []byte(body), 0o644); err != nil {
			b.t.Fatalf("write template %s: %v", name, err)
		}
		b.cfg.Templates.Dir = dir
	}
}

// WithLogLevel overrides the log level on the test config.
func WithLogLevel(level string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Logging.Level = level
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Render.OutputDir)
}

// WriteConfig writes a TOML settings body to dir/factor.toml and returns the path.
func WriteConfig(t testing.TB, dir string, body string) string {
	t.Helper()
	path := filepath.Join(dir, "factor.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
