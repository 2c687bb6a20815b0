package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// WriteParset writes body to name inside dir and returns the full path.
func WriteParset(t testing.TB, dir, name, body string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", name, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// MakeMeasurementSets creates empty measurement-set directories in dir.
func MakeMeasurementSets(t testing.TB, dir string, names ...string) {
	t.Helper()

	for _, name := range names {
		if err := os.MkdirAll(filepath.Join(dir, name), 0o755); err != nil {
			t.Fatalf("mkdir measurement set %s: %v", name, err)
		}
	}
}

// Workspace is a temp layout with a working directory and a data directory
// holding measurement sets.
type Workspace struct {
	Root       string
	DirWorking string
	DirMS      string
}

// NewWorkspace creates a workspace with the given measurement sets.
func NewWorkspace(t testing.TB, msNames ...string) Workspace {
	t.Helper()

	root := t.TempDir()
	ws := Workspace{
		Root:       root,
		DirWorking: filepath.Join(root, "work"),
		DirMS:      filepath.Join(root, "data"),
	}
	if err := os.MkdirAll(ws.DirWorking, 0o755); err != nil {
		t.Fatalf("mkdir working dir: %v", err)
	}
	if err := os.MkdirAll(ws.DirMS, 0o755); err != nil {
		t.Fatalf("mkdir ms dir: %v", err)
	}
	MakeMeasurementSets(t, ws.DirMS, msNames...)
	return ws
}

// SampleParset returns a complete parset pointing at the workspace, with one
// per-file section for ms1.ms. extra is appended verbatim.
func (ws Workspace) SampleParset(extra string) string {
	return fmt.Sprintf(`# Factor parset used in tests
[global]
dir_working = %s
dir_ms = %s
parmdb_name = instrument_directionindependent
interactive = False

[directions]
flux_min_Jy = 0.3
size_max_arcmin = 1.0
separation_max_arcmin = 9.0
max_num = 40
groupings = 1:5, 4:0

[cluster]
ncpu = 6
ndir_per_node = 2

[ms1.ms]
init_skymodel = /data/sky/ms1.skymodel
param1 = 123
%s`, ws.DirWorking, ws.DirMS, extra)
}

// WriteSampleParset writes SampleParset(extra) into the workspace root.
func (ws Workspace) WriteSampleParset(t testing.TB, extra string) string {
	t.Helper()
	return WriteParset(t, ws.Root, "factor.parset", ws.SampleParset(extra))
}
