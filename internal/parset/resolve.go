package parset

import (
	"errors"
	"log/slog"
	"runtime"
	"sort"
	"strings"

	"factor/internal/fileutil"
	"factor/internal/logging"
)

// Global holds the resolved [global] section.
type Global struct {
	DirWorking           string            `json:"dir_working" toml:"dir_working"`
	DirMS                string            `json:"dir_ms" toml:"dir_ms"`
	ParmDBName           string            `json:"parmdb_name" toml:"parmdb_name"`
	MakeMosaic           bool              `json:"make_mosaic" toml:"make_mosaic"`
	Interactive          bool              `json:"interactive" toml:"interactive"`
	UseChgCentre         bool              `json:"use_chgcentre" toml:"use_chgcentre"`
	KeepAvgFacetData     bool              `json:"keep_avg_facet_data" toml:"keep_avg_facet_data"`
	ExitOnSelfcalFailure bool              `json:"exit_on_selfcal_failure" toml:"exit_on_selfcal_failure"`
	Extra                map[string]string `json:"extra,omitempty" toml:"extra,omitempty"`
}

// Directions holds the resolved [directions] section.
type Directions struct {
	DirectionsFile      string            `json:"directions_file,omitempty" toml:"directions_file,omitempty"`
	CheckEdges          bool              `json:"check_edges" toml:"check_edges"`
	FluxMinJy           float64           `json:"flux_min_Jy,omitempty" toml:"flux_min_Jy,omitempty"`
	SizeMaxArcmin       float64           `json:"size_max_arcmin,omitempty" toml:"size_max_arcmin,omitempty"`
	SeparationMaxArcmin float64           `json:"separation_max_arcmin,omitempty" toml:"separation_max_arcmin,omitempty"`
	MaxNum              int               `json:"max_num" toml:"max_num"` // 0 = unlimited
	NDir                int               `json:"ndir" toml:"ndir"`       // 0 = all
	Groupings           []Grouping        `json:"groupings" toml:"groupings"`
	FacetingRadiusDeg   float64           `json:"faceting_radius_deg,omitempty" toml:"faceting_radius_deg,omitempty"`
	Extra               map[string]string `json:"extra,omitempty" toml:"extra,omitempty"`
}

// SelectsAutomatically reports whether directions are chosen from the flux,
// size and separation thresholds rather than read from a file.
func (d Directions) SelectsAutomatically() bool {
	return d.DirectionsFile == ""
}

// Cluster holds the resolved [cluster] section.
type Cluster struct {
	Mode            ClusterMode       `json:"mode" toml:"mode"`
	ClusterDescFile string            `json:"clusterdesc_file,omitempty" toml:"clusterdesc_file,omitempty"`
	NCPU            int               `json:"ncpu" toml:"ncpu"`
	NDirPerNode     int               `json:"ndir_per_node" toml:"ndir_per_node"`
	Extra           map[string]string `json:"extra,omitempty" toml:"extra,omitempty"`
}

// Parset is a fully resolved and validated parset.
type Parset struct {
	Source     string     `json:"source" toml:"source"`
	Global     Global     `json:"global" toml:"global"`
	Directions Directions `json:"directions" toml:"directions"`
	Cluster    Cluster    `json:"cluster" toml:"cluster"`
	// MeasurementSets lists the filenames discovered in Global.DirMS.
	MeasurementSets []string `json:"measurement_sets" toml:"measurement_sets"`
	// FileOverrides holds the opaque per-file sections that matched a
	// measurement set, keyed by filename.
	FileOverrides map[string]map[string]string `json:"file_overrides,omitempty" toml:"file_overrides,omitempty"`
	// UnmatchedOverrides names per-file sections without a matching
	// measurement set.
	UnmatchedOverrides []string `json:"unmatched_overrides,omitempty" toml:"unmatched_overrides,omitempty"`

	doc *Document
	// globals holds the resolved [global] values as text, keyed by
	// lowercase name.
	globals map[string]string
}

// Document returns the raw document the parset was resolved from.
func (p *Parset) Document() *Document { return p.doc }

// FileParams returns a copy of the parameters scoped to one measurement set.
// Names are matched exactly; unknown names yield an empty map.
func (p *Parset) FileParams(msName string) map[string]string {
	out := map[string]string{}
	for k, v := range p.FileOverrides[msName] {
		out[k] = v
	}
	return out
}

// FileValue looks key up in the measurement set's override section first and
// falls back to the resolved [global] value, defaults and path expansion
// included. Per-file sections shadow globals without changing them.
func (p *Parset) FileValue(msName, key string) (string, bool) {
	if _, matched := p.FileOverrides[msName]; matched {
		if value, ok := p.doc.Section(msName).Get(key); ok && strings.TrimSpace(value) != "" {
			return value, true
		}
	}
	value, ok := p.globals[foldKey(key)]
	return value, ok
}

// ResolveOptions tunes Resolve.
type ResolveOptions struct {
	Logger *slog.Logger
	// NumCPU replaces runtime.NumCPU as the default for cluster.ncpu.
	NumCPU int
	// SkipDiscovery disables measurement-set discovery in dir_ms. Every
	// per-file section is then kept as an override.
	SkipDiscovery bool
}

// Load reads, resolves and validates the parset at path.
func Load(path string, opts ResolveOptions) (*Parset, error) {
	doc, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Resolve(doc, opts)
}

// Resolve applies defaults, type coercion and requirement checks to doc.
func Resolve(doc *Document, opts ResolveOptions) (*Parset, error) {
	if doc == nil {
		return nil, loadFailure("resolve parset: nil document")
	}
	logger := logging.NewComponentLogger(opts.Logger, "parset").With(slog.String(logging.FieldParset, doc.Source()))

	r := &resolver{doc: doc, logger: logger}
	if err := r.checkRequired(); err != nil {
		return nil, err
	}

	p := &Parset{Source: doc.Source(), doc: doc}
	var err error
	if p.Global, err = r.resolveGlobal(); err != nil {
		return nil, err
	}
	p.globals = r.globalValues(p.Global)
	if p.Directions, err = r.resolveDirections(); err != nil {
		return nil, err
	}
	if p.Cluster, err = r.resolveCluster(opts.NumCPU); err != nil {
		return nil, err
	}
	if err := p.scopeOverrides(doc, opts.SkipDiscovery, logger); err != nil {
		return nil, err
	}

	logger.Debug("parset resolved",
		slog.Int("measurement_sets", len(p.MeasurementSets)),
		slog.Int("file_overrides", len(p.FileOverrides)),
		slog.String("cluster_mode", p.Cluster.Mode.String()),
	)
	return p, nil
}

type resolver struct {
	doc    *Document
	logger *slog.Logger
}

func (r *resolver) checkRequired() error {
	for _, spec := range knownParameters {
		if !spec.Required {
			continue
		}
		if _, ok := r.raw(spec.Section, spec.Name); !ok {
			return &MissingRequiredParameterError{Section: spec.Section, Key: spec.Name}
		}
	}
	if _, ok := r.raw(SectionDirections, "directions_file"); ok {
		return nil
	}
	for _, key := range thresholdKeys {
		if _, ok := r.raw(SectionDirections, key); !ok {
			return &MissingRequiredParameterError{
				Section: SectionDirections,
				Key:     key,
				Reason:  "when directions_file is not set",
			}
		}
	}
	return nil
}

// raw returns a non-empty raw value. Empty assignments count as absent.
func (r *resolver) raw(section, key string) (string, bool) {
	value, ok := r.doc.Section(section).Get(key)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}

func (r *resolver) value(section, key string) (string, bool) {
	if value, ok := r.raw(section, key); ok {
		return value, true
	}
	if spec, ok := LookupSpec(section, key); ok && spec.HasDefault() {
		return spec.Default, true
	}
	return "", false
}

func (r *resolver) str(section, key string) string {
	value, _ := r.value(section, key)
	return value
}

func (r *resolver) path(section, key string) (string, error) {
	value, ok := r.value(section, key)
	if !ok {
		return "", nil
	}
	expanded, err := fileutil.ExpandPath(value)
	if err != nil {
		return "", loadFailure("%s.%s: %w", section, key, err)
	}
	return expanded, nil
}

func (r *resolver) boolean(section, key string) (bool, error) {
	value, ok := r.value(section, key)
	if !ok {
		return false, nil
	}
	b, err := ParseBool(value)
	return b, withLocation(err, section, key)
}

func (r *resolver) integer(section, key string, fallback int) (int, error) {
	value, ok := r.value(section, key)
	if !ok {
		return fallback, nil
	}
	n, err := ParseInt(value)
	return n, withLocation(err, section, key)
}

func (r *resolver) float(section, key string) (float64, error) {
	value, ok := r.value(section, key)
	if !ok {
		return 0, nil
	}
	f, err := ParseFloat(value)
	return f, withLocation(err, section, key)
}

func (r *resolver) extra(section string) map[string]string {
	var extra map[string]string
	for _, e := range r.doc.Section(section).Entries() {
		if _, known := LookupSpec(section, e.Key); known {
			continue
		}
		if extra == nil {
			extra = make(map[string]string)
		}
		extra[e.Key] = e.Value
		r.logger.Debug("passing through unknown parameter",
			slog.String(logging.FieldSection, section),
			slog.String(logging.FieldKey, e.Key),
		)
	}
	return extra
}

func (r *resolver) resolveGlobal() (Global, error) {
	var g Global
	var err error
	if g.DirWorking, err = r.path(SectionGlobal, "dir_working"); err != nil {
		return g, err
	}
	if g.DirMS, err = r.path(SectionGlobal, "dir_ms"); err != nil {
		return g, err
	}
	g.ParmDBName = r.str(SectionGlobal, "parmdb_name")
	if g.MakeMosaic, err = r.boolean(SectionGlobal, "make_mosaic"); err != nil {
		return g, err
	}
	if g.Interactive, err = r.boolean(SectionGlobal, "interactive"); err != nil {
		return g, err
	}
	if g.UseChgCentre, err = r.boolean(SectionGlobal, "use_chgcentre"); err != nil {
		return g, err
	}
	if g.KeepAvgFacetData, err = r.boolean(SectionGlobal, "keep_avg_facet_data"); err != nil {
		return g, err
	}
	if g.ExitOnSelfcalFailure, err = r.boolean(SectionGlobal, "exit_on_selfcal_failure"); err != nil {
		return g, err
	}
	g.Extra = r.extra(SectionGlobal)
	return g, nil
}

// globalValues renders the resolved [global] section back to text for
// FileValue lookups.
func (r *resolver) globalValues(g Global) map[string]string {
	values := make(map[string]string, len(knownParameters)+len(g.Extra))
	for k, v := range g.Extra {
		values[foldKey(k)] = v
	}
	for _, spec := range knownParameters {
		if spec.Section != SectionGlobal {
			continue
		}
		value, ok := r.value(SectionGlobal, spec.Name)
		if spec.Kind == KindPath && ok {
			// Already validated by resolveGlobal.
			value, _ = r.path(SectionGlobal, spec.Name)
		}
		if ok && value != "" {
			values[foldKey(spec.Name)] = value
		}
	}
	return values
}

func (r *resolver) resolveDirections() (Directions, error) {
	var d Directions
	var err error
	if d.DirectionsFile, err = r.path(SectionDirections, "directions_file"); err != nil {
		return d, err
	}
	if d.CheckEdges, err = r.boolean(SectionDirections, "check_edges"); err != nil {
		return d, err
	}
	if d.FluxMinJy, err = r.positiveFloat(SectionDirections, "flux_min_Jy"); err != nil {
		return d, err
	}
	if d.SizeMaxArcmin, err = r.positiveFloat(SectionDirections, "size_max_arcmin"); err != nil {
		return d, err
	}
	if d.SeparationMaxArcmin, err = r.positiveFloat(SectionDirections, "separation_max_arcmin"); err != nil {
		return d, err
	}
	if d.MaxNum, err = r.nonNegative(SectionDirections, "max_num", 0); err != nil {
		return d, err
	}
	if d.NDir, err = r.nonNegative(SectionDirections, "ndir", 0); err != nil {
		return d, err
	}
	if d.FacetingRadiusDeg, err = r.positiveFloat(SectionDirections, "faceting_radius_deg"); err != nil {
		return d, err
	}
	groupings, _ := r.value(SectionDirections, "groupings")
	if d.Groupings, err = ParseGroupings(groupings); err != nil {
		return d, withLocation(err, SectionDirections, "groupings")
	}
	d.Extra = r.extra(SectionDirections)
	return d, nil
}

func (r *resolver) resolveCluster(numCPU int) (Cluster, error) {
	var c Cluster
	var err error
	desc := strings.TrimSpace(r.str(SectionCluster, "clusterdesc_file"))
	switch {
	case desc == "":
		c.Mode = ClusterSingle
	case strings.EqualFold(desc, ClusterDescPBS):
		c.Mode = ClusterPBS
	default:
		c.Mode = ClusterDescriptor
		if c.ClusterDescFile, err = fileutil.ExpandPath(desc); err != nil {
			return c, loadFailure("%s.clusterdesc_file: %w", SectionCluster, err)
		}
	}

	if numCPU <= 0 {
		numCPU = runtime.NumCPU()
	}
	if c.NCPU, err = r.positive(SectionCluster, "ncpu", numCPU); err != nil {
		return c, err
	}
	if c.NDirPerNode, err = r.positive(SectionCluster, "ndir_per_node", 1); err != nil {
		return c, err
	}
	c.Extra = r.extra(SectionCluster)
	return c, nil
}

func (r *resolver) positive(section, key string, fallback int) (int, error) {
	n, err := r.integer(section, key, fallback)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, &TypeCoercionError{Section: section, Key: key, Value: r.str(section, key), Kind: KindInt, Err: errors.New("must be at least 1")}
	}
	return n, nil
}

func (r *resolver) nonNegative(section, key string, fallback int) (int, error) {
	n, err := r.integer(section, key, fallback)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, &TypeCoercionError{Section: section, Key: key, Value: r.str(section, key), Kind: KindInt, Err: errors.New("must not be negative")}
	}
	return n, nil
}

func (r *resolver) positiveFloat(section, key string) (float64, error) {
	f, err := r.float(section, key)
	if err != nil {
		return 0, err
	}
	if _, set := r.raw(section, key); set && f <= 0 {
		return 0, &TypeCoercionError{Section: section, Key: key, Value: r.str(section, key), Kind: KindFloat, Err: errors.New("must be positive")}
	}
	return f, nil
}

func (p *Parset) scopeOverrides(doc *Document, skipDiscovery bool, logger *slog.Logger) error {
	overrides := doc.OverrideSections()
	if skipDiscovery {
		for _, s := range overrides {
			p.addOverride(s)
		}
		return nil
	}

	names, err := discoverMeasurementSets(p.Global.DirMS)
	if err != nil {
		return loadFailure("%s.dir_ms: discover measurement sets: %w", SectionGlobal, err)
	}
	if len(names) == 0 {
		logger.Warn("no measurement sets found", slog.String("dir_ms", p.Global.DirMS))
	}
	p.MeasurementSets = names

	known := make(map[string]struct{}, len(names))
	for _, name := range names {
		known[name] = struct{}{}
	}
	for _, s := range overrides {
		if _, ok := known[s.Name()]; !ok {
			p.UnmatchedOverrides = append(p.UnmatchedOverrides, s.Name())
			logger.Warn("per-file section does not match any measurement set",
				slog.String(logging.FieldSection, s.Name()),
				slog.String("dir_ms", p.Global.DirMS),
			)
			continue
		}
		p.addOverride(s)
	}
	sort.Strings(p.UnmatchedOverrides)
	return nil
}

func (p *Parset) addOverride(s *Section) {
	if p.FileOverrides == nil {
		p.FileOverrides = make(map[string]map[string]string)
	}
	p.FileOverrides[s.Name()] = s.Map()
}
