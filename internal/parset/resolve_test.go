package parset_test

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"factor/internal/parset"
	"factor/internal/testsupport"
)

func TestLoadSampleParset(t *testing.T) {
	ws := testsupport.NewWorkspace(t, "ms1.ms", "ms2.ms", "notes.txt")
	path := ws.WriteSampleParset(t, "")

	p, err := parset.Load(path, parset.ResolveOptions{})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	wantGlobal := parset.Global{
		DirWorking:           ws.DirWorking,
		DirMS:                ws.DirMS,
		ParmDBName:           "instrument_directionindependent",
		MakeMosaic:           true,
		Interactive:          false,
		UseChgCentre:         false,
		KeepAvgFacetData:     false,
		ExitOnSelfcalFailure: true,
	}
	if diff := cmp.Diff(wantGlobal, p.Global); diff != "" {
		t.Fatalf("global mismatch (-want +got):\n%s", diff)
	}

	wantDirections := parset.Directions{
		FluxMinJy:           0.3,
		SizeMaxArcmin:       1.0,
		SeparationMaxArcmin: 9.0,
		MaxNum:              40,
		Groupings:           []parset.Grouping{{Size: 1, Count: 5}, {Size: 4, Count: 0}},
	}
	if diff := cmp.Diff(wantDirections, p.Directions); diff != "" {
		t.Fatalf("directions mismatch (-want +got):\n%s", diff)
	}
	if !p.Directions.SelectsAutomatically() {
		t.Fatal("expected automatic direction selection without directions_file")
	}

	if p.Cluster.Mode != parset.ClusterSingle {
		t.Fatalf("expected single-node mode, got %s", p.Cluster.Mode)
	}
	if p.Cluster.NCPU != 6 || p.Cluster.NDirPerNode != 2 {
		t.Fatalf("unexpected cluster values: %+v", p.Cluster)
	}

	if diff := cmp.Diff([]string{"ms1.ms", "ms2.ms"}, p.MeasurementSets); diff != "" {
		t.Fatalf("measurement sets mismatch (-want +got):\n%s", diff)
	}
	if len(p.UnmatchedOverrides) != 0 {
		t.Fatalf("expected no unmatched overrides, got %v", p.UnmatchedOverrides)
	}
}

func TestResolveAppliesDefaults(t *testing.T) {
	ws := testsupport.NewWorkspace(t)
	body := fmt.Sprintf("[global]\ndir_working = %s\ndir_ms = %s\n\n[directions]\ndirections_file = %s\n",
		ws.DirWorking, ws.DirMS, filepath.Join(ws.Root, "directions.txt"))
	path := testsupport.WriteParset(t, ws.Root, "minimal.parset", body)

	p, err := parset.Load(path, parset.ResolveOptions{NumCPU: 12})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Global.ParmDBName != "instrument" {
		t.Fatalf("expected default parmdb_name, got %q", p.Global.ParmDBName)
	}
	if !p.Global.MakeMosaic {
		t.Fatal("expected make_mosaic to default to true")
	}
	if p.Global.Interactive || p.Global.UseChgCentre {
		t.Fatal("expected interactive and use_chgcentre to default to false")
	}
	if p.Directions.CheckEdges {
		t.Fatal("expected check_edges to default to false")
	}
	if diff := cmp.Diff([]parset.Grouping{{Size: 1, Count: 0}}, p.Directions.Groupings); diff != "" {
		t.Fatalf("default groupings mismatch (-want +got):\n%s", diff)
	}
	if p.Directions.MaxNum != 0 || p.Directions.NDir != 0 {
		t.Fatalf("expected unlimited max_num and ndir, got %d and %d", p.Directions.MaxNum, p.Directions.NDir)
	}
	if p.Directions.SelectsAutomatically() {
		t.Fatal("expected directions file to disable automatic selection")
	}
	if p.Cluster.Mode != parset.ClusterSingle {
		t.Fatalf("expected single-node mode when clusterdesc_file is absent, got %s", p.Cluster.Mode)
	}
	if p.Cluster.NCPU != 12 {
		t.Fatalf("expected ncpu to default to all available CPUs, got %d", p.Cluster.NCPU)
	}
	if p.Cluster.NDirPerNode != 1 {
		t.Fatalf("expected ndir_per_node default 1, got %d", p.Cluster.NDirPerNode)
	}
}

func TestResolveMissingRequired(t *testing.T) {
	ws := testsupport.NewWorkspace(t)
	thresholds := "[directions]\nflux_min_Jy = 0.3\nsize_max_arcmin = 1.0\nseparation_max_arcmin = 9.0\n"
	tests := []struct {
		name    string
		body    string
		section string
		key     string
	}{
		{
			name:    "dir_working",
			body:    fmt.Sprintf("[global]\ndir_ms = %s\n%s", ws.DirMS, thresholds),
			section: "global",
			key:     "dir_working",
		},
		{
			name:    "dir_ms",
			body:    fmt.Sprintf("[global]\ndir_working = %s\n%s", ws.DirWorking, thresholds),
			section: "global",
			key:     "dir_ms",
		},
		{
			name:    "no global section",
			body:    thresholds,
			section: "global",
			key:     "dir_working",
		},
		{
			name:    "empty value counts as absent",
			body:    fmt.Sprintf("[global]\ndir_working =\ndir_ms = %s\n%s", ws.DirMS, thresholds),
			section: "global",
			key:     "dir_working",
		},
		{
			name:    "threshold without directions file",
			body:    fmt.Sprintf("[global]\ndir_working = %s\ndir_ms = %s\n[directions]\nflux_min_Jy = 0.3\nsize_max_arcmin = 1.0\n", ws.DirWorking, ws.DirMS),
			section: "directions",
			key:     "separation_max_arcmin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := parset.Parse(strings.NewReader(tt.body), tt.name)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			_, err = parset.Resolve(doc, parset.ResolveOptions{})
			var missing *parset.MissingRequiredParameterError
			if !errors.As(err, &missing) {
				t.Fatalf("expected MissingRequiredParameterError, got %v", err)
			}
			if missing.Section != tt.section || missing.Key != tt.key {
				t.Fatalf("expected %s.%s, got %s.%s", tt.section, tt.key, missing.Section, missing.Key)
			}
			if !errors.Is(err, parset.ErrInvalidParset) {
				t.Fatal("expected error to match ErrInvalidParset")
			}
		})
	}
}

func TestResolveCoercionErrors(t *testing.T) {
	ws := testsupport.NewWorkspace(t)
	base := fmt.Sprintf("[global]\ndir_working = %s\ndir_ms = %s\n", ws.DirWorking, ws.DirMS)
	tests := []struct {
		name    string
		extra   string
		section string
		key     string
	}{
		{name: "boolean", extra: "make_mosaic = sometimes\n[directions]\ndirections_file = d.txt\n", section: "global", key: "make_mosaic"},
		{name: "flux", extra: "[directions]\nflux_min_Jy = bright\nsize_max_arcmin = 1\nseparation_max_arcmin = 9\n", section: "directions", key: "flux_min_Jy"},
		{name: "negative size", extra: "[directions]\nflux_min_Jy = 0.3\nsize_max_arcmin = -1\nseparation_max_arcmin = 9\n", section: "directions", key: "size_max_arcmin"},
		{name: "groupings", extra: "[directions]\ndirections_file = d.txt\ngroupings = 1:0, 2:3\n", section: "directions", key: "groupings"},
		{name: "ncpu", extra: "[directions]\ndirections_file = d.txt\n[cluster]\nncpu = many\n", section: "cluster", key: "ncpu"},
		{name: "ndir_per_node zero", extra: "[directions]\ndirections_file = d.txt\n[cluster]\nndir_per_node = 0\n", section: "cluster", key: "ndir_per_node"},
		{name: "max_num negative", extra: "[directions]\ndirections_file = d.txt\nmax_num = -3\n", section: "directions", key: "max_num"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := parset.Parse(strings.NewReader(base+tt.extra), tt.name)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			_, err = parset.Resolve(doc, parset.ResolveOptions{SkipDiscovery: true})
			var coerceErr *parset.TypeCoercionError
			if !errors.As(err, &coerceErr) {
				t.Fatalf("expected TypeCoercionError, got %v", err)
			}
			if coerceErr.Section != tt.section || coerceErr.Key != tt.key {
				t.Fatalf("expected %s.%s, got %s.%s (%v)", tt.section, tt.key, coerceErr.Section, coerceErr.Key, err)
			}
		})
	}
}

func TestPerFileSectionsDoNotLeak(t *testing.T) {
	ws := testsupport.NewWorkspace(t, "ms1.ms", "ms2.ms")
	path := ws.WriteSampleParset(t, "\n[ms2.ms]\nparam2 = abc\n")

	p, err := parset.Load(path, parset.ResolveOptions{})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	ms1 := p.FileParams("ms1.ms")
	if ms1["param1"] != "123" {
		t.Fatalf("expected param1 for ms1.ms, got %v", ms1)
	}
	ms2 := p.FileParams("ms2.ms")
	if _, leaked := ms2["param1"]; leaked {
		t.Fatalf("param1 leaked into ms2.ms: %v", ms2)
	}
	if ms2["param2"] != "abc" {
		t.Fatalf("expected param2 for ms2.ms, got %v", ms2)
	}
	if got := p.FileParams("MS1.ms"); len(got) != 0 {
		t.Fatalf("expected exact filename matching, got %v", got)
	}

	if _, ok := p.Global.Extra["param1"]; ok {
		t.Fatal("per-file parameter leaked into global")
	}
	if _, ok := p.Document().Section(parset.SectionGlobal).Get("param1"); ok {
		t.Fatal("per-file parameter leaked into raw global section")
	}

	// Mutating the returned map must not change the parset.
	ms1["param1"] = "changed"
	if p.FileParams("ms1.ms")["param1"] != "123" {
		t.Fatal("FileParams returned shared state")
	}
}

func TestFileValueShadowsGlobal(t *testing.T) {
	ws := testsupport.NewWorkspace(t, "ms1.ms", "ms2.ms")
	path := ws.WriteSampleParset(t, "parmdb_name = instrument_ms1\n")

	p, err := parset.Load(path, parset.ResolveOptions{})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got, _ := p.FileValue("ms1.ms", "parmdb_name"); got != "instrument_ms1" {
		t.Fatalf("expected per-file value to shadow global, got %q", got)
	}
	if got, _ := p.FileValue("ms2.ms", "parmdb_name"); got != "instrument_directionindependent" {
		t.Fatalf("expected global fallback for ms2.ms, got %q", got)
	}
	if p.Global.ParmDBName != "instrument_directionindependent" {
		t.Fatalf("per-file value changed global: %q", p.Global.ParmDBName)
	}
}

func TestUnmatchedOverridesAreReported(t *testing.T) {
	ws := testsupport.NewWorkspace(t, "ms2.ms")
	path := ws.WriteSampleParset(t, "")

	p, err := parset.Load(path, parset.ResolveOptions{})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"ms1.ms"}, p.UnmatchedOverrides); diff != "" {
		t.Fatalf("unmatched overrides mismatch (-want +got):\n%s", diff)
	}
	if len(p.FileParams("ms1.ms")) != 0 {
		t.Fatal("expected unmatched section to be dropped from overrides")
	}

	skipped, err := parset.Load(path, parset.ResolveOptions{SkipDiscovery: true})
	if err != nil {
		t.Fatalf("Load with SkipDiscovery: %v", err)
	}
	if skipped.FileParams("ms1.ms")["param1"] != "123" {
		t.Fatal("expected override to be kept when discovery is skipped")
	}
}

func TestResolveMissingDataDirectory(t *testing.T) {
	ws := testsupport.NewWorkspace(t)
	body := fmt.Sprintf("[global]\ndir_working = %s\ndir_ms = %s\n[directions]\ndirections_file = d.txt\n",
		ws.DirWorking, filepath.Join(ws.Root, "absent"))
	path := testsupport.WriteParset(t, ws.Root, "absent.parset", body)

	_, err := parset.Load(path, parset.ResolveOptions{})
	if err == nil || !strings.Contains(err.Error(), "global.dir_ms") {
		t.Fatalf("expected dir_ms discovery error, got %v", err)
	}
	if !errors.Is(err, parset.ErrInvalidParset) {
		t.Fatalf("expected discovery failure to match ErrInvalidParset, got %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected underlying not-exist error to be kept, got %v", err)
	}
}

func TestLoadMissingFileIsInvalidParset(t *testing.T) {
	_, err := parset.Load(filepath.Join(t.TempDir(), "absent.parset"), parset.ResolveOptions{})
	if !errors.Is(err, parset.ErrInvalidParset) {
		t.Fatalf("expected ErrInvalidParset, got %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "open parset: ") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestFileValueFallsBackToResolvedGlobal(t *testing.T) {
	ws := testsupport.NewWorkspace(t, "ms1.ms", "ms2.ms")
	body := fmt.Sprintf("[global]\ndir_working = %s\ndir_ms = %s\n[directions]\ndirections_file = d.txt\n[ms1.ms]\nx = 1\n",
		ws.DirWorking, ws.DirMS)
	path := testsupport.WriteParset(t, ws.Root, "defaults.parset", body)

	p, err := parset.Load(path, parset.ResolveOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, ms := range []string{"ms1.ms", "ms2.ms"} {
		got, ok := p.FileValue(ms, "parmdb_name")
		if !ok || got != p.Global.ParmDBName || got != "instrument" {
			t.Fatalf("FileValue(%s, parmdb_name) = %q, %v; want default %q", ms, got, ok, "instrument")
		}
		if got, _ := p.FileValue(ms, "make_mosaic"); got != "true" {
			t.Fatalf("FileValue(%s, make_mosaic) = %q, want default true", ms, got)
		}
		if got, _ := p.FileValue(ms, "dir_ms"); got != p.Global.DirMS {
			t.Fatalf("FileValue(%s, dir_ms) = %q, want resolved %q", ms, got, p.Global.DirMS)
		}
	}
	if got, _ := p.FileValue("ms1.ms", "x"); got != "1" {
		t.Fatalf("expected per-file key, got %q", got)
	}
	if _, ok := p.FileValue("ms2.ms", "x"); ok {
		t.Fatal("per-file key leaked into another measurement set")
	}
	if _, ok := p.FileValue("ms1.ms", "directions_file"); ok {
		t.Fatal("FileValue should only fall back to [global]")
	}
}

func TestKnownKeysMatchCaseInsensitively(t *testing.T) {
	ws := testsupport.NewWorkspace(t, "ms1.ms")
	body := fmt.Sprintf("[global]\nDIR_WORKING = %s\ndir_ms = %s\nParmDB_Name = inst\n"+
		"[directions]\nflux_min_jy = 0.3\nsize_max_arcmin = 1.0\nseparation_max_arcmin = 9.0\n",
		ws.DirWorking, ws.DirMS)
	path := testsupport.WriteParset(t, ws.Root, "case.parset", body)

	p, err := parset.Load(path, parset.ResolveOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Directions.FluxMinJy != 0.3 {
		t.Fatalf("expected flux_min_jy to resolve flux_min_Jy, got %v", p.Directions.FluxMinJy)
	}
	if p.Global.DirWorking != ws.DirWorking || p.Global.ParmDBName != "inst" {
		t.Fatalf("unexpected global: %+v", p.Global)
	}
	if len(p.Global.Extra) != 0 || len(p.Directions.Extra) != 0 {
		t.Fatalf("case variants of known keys must not pass through as unknown: %v %v", p.Global.Extra, p.Directions.Extra)
	}
	if got, _ := p.FileValue("ms1.ms", "PARMDB_NAME"); got != "inst" {
		t.Fatalf("expected case-insensitive FileValue, got %q", got)
	}
}

func TestUnknownKeysPassThrough(t *testing.T) {
	ws := testsupport.NewWorkspace(t, "ms1.ms")
	body := strings.Replace(ws.SampleParset("\n[imaging]\nrobust = -0.25\n"), "[cluster]\n", "[cluster]\nqueue = long\n", 1)
	path := testsupport.WriteParset(t, ws.Root, "extra.parset", body)

	p, err := parset.Load(path, parset.ResolveOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Cluster.Extra["queue"] != "long" {
		t.Fatalf("expected unknown cluster key to pass through, got %v", p.Cluster.Extra)
	}
	if got, _ := p.Document().Section("imaging").Get("robust"); got != "-0.25" {
		t.Fatalf("expected unknown section to be kept in the document, got %q", got)
	}
	if diff := cmp.Diff([]string{"imaging"}, p.UnmatchedOverrides); diff != "" {
		t.Fatalf("unmatched overrides mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadTwiceYieldsEqualDocuments(t *testing.T) {
	ws := testsupport.NewWorkspace(t, "ms1.ms")
	path := ws.WriteSampleParset(t, "")

	first, err := parset.Load(path, parset.ResolveOptions{})
	if err != nil {
		t.Fatalf("first Load: %v", err)
	}
	second, err := parset.Load(path, parset.ResolveOptions{})
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if !first.Document().Equal(second.Document()) {
		t.Fatal("expected equal documents")
	}
	if diff := cmp.Diff(first, second, cmp.AllowUnexported(parset.Parset{})); diff != "" {
		t.Fatalf("resolved parsets differ (-first +second):\n%s", diff)
	}
}
