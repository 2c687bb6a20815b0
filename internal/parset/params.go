package parset

import "strings"

// Kind is the expected type of a known parameter.
type Kind int

const (
	KindString Kind = iota
	KindPath
	KindInt
	KindFloat
	KindBool
	KindList
	KindGroupings
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindPath:
		return "path"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindBool:
		return "boolean"
	case KindList:
		return "list"
	case KindGroupings:
		return "groupings"
	default:
		return "unknown"
	}
}

// ParameterSpec describes one known parameter.
type ParameterSpec struct {
	Section  string
	Name     string
	Kind     Kind
	Default  string
	Required bool
	Help     string
}

// HasDefault reports whether the loader substitutes a value when the key is
// absent.
func (p ParameterSpec) HasDefault() bool { return p.Default != "" }

const (
	defaultParmDBName   = "instrument"
	defaultGroupings    = "1:0"
	defaultNDirPerNode  = "1"
	defaultMakeMosaic   = "true"
	defaultFalse        = "false"
	defaultExitOnFailed = "true"

	// ClusterDescPBS selects reserved-node mode in the cluster section.
	ClusterDescPBS = "PBS"
)

var knownParameters = []ParameterSpec{
	{Section: SectionGlobal, Name: "dir_working", Kind: KindPath, Required: true, Help: "working directory for all output"},
	{Section: SectionGlobal, Name: "dir_ms", Kind: KindPath, Required: true, Help: "directory holding the input measurement sets"},
	{Section: SectionGlobal, Name: "parmdb_name", Kind: KindString, Default: defaultParmDBName, Help: "name of the direction-independent instrument parmdb"},
	{Section: SectionGlobal, Name: "make_mosaic", Kind: KindBool, Default: defaultMakeMosaic, Help: "mosaic the facet images at the end"},
	{Section: SectionGlobal, Name: "interactive", Kind: KindBool, Default: defaultFalse, Help: "pause for user input between operations"},
	{Section: SectionGlobal, Name: "use_chgcentre", Kind: KindBool, Default: defaultFalse, Help: "use chgcentre instead of phase shifting"},
	{Section: SectionGlobal, Name: "keep_avg_facet_data", Kind: KindBool, Default: defaultFalse, Help: "keep averaged facet data after imaging"},
	{Section: SectionGlobal, Name: "exit_on_selfcal_failure", Kind: KindBool, Default: defaultExitOnFailed, Help: "stop when self calibration of a direction fails"},

	{Section: SectionDirections, Name: "directions_file", Kind: KindPath, Help: "file listing calibration directions"},
	{Section: SectionDirections, Name: "check_edges", Kind: KindBool, Default: defaultFalse, Help: "reject calibrators near facet edges"},
	{Section: SectionDirections, Name: "flux_min_Jy", Kind: KindFloat, Help: "minimum apparent calibrator flux in Jy"},
	{Section: SectionDirections, Name: "size_max_arcmin", Kind: KindFloat, Help: "maximum calibrator size in arcmin"},
	{Section: SectionDirections, Name: "separation_max_arcmin", Kind: KindFloat, Help: "maximum separation for grouping sources in arcmin"},
	{Section: SectionDirections, Name: "max_num", Kind: KindInt, Help: "maximum number of directions (0 = unlimited)"},
	{Section: SectionDirections, Name: "ndir", Kind: KindInt, Help: "number of directions to process (0 = all)"},
	{Section: SectionDirections, Name: "groupings", Kind: KindGroupings, Default: defaultGroupings, Help: "size:count pairs for grouped processing"},
	{Section: SectionDirections, Name: "faceting_radius_deg", Kind: KindFloat, Help: "radius within which facets are defined"},

	{Section: SectionCluster, Name: "clusterdesc_file", Kind: KindString, Help: "cluster description file, or PBS for reserved nodes"},
	{Section: SectionCluster, Name: "ncpu", Kind: KindInt, Help: "CPUs per node (default: all available)"},
	{Section: SectionCluster, Name: "ndir_per_node", Kind: KindInt, Default: defaultNDirPerNode, Help: "directions processed at once per node"},
}

// thresholdKeys must all be set when directions_file is absent.
var thresholdKeys = []string{"flux_min_Jy", "size_max_arcmin", "separation_max_arcmin"}

// Specs returns the table of known parameters in declaration order.
func Specs() []ParameterSpec {
	out := make([]ParameterSpec, len(knownParameters))
	copy(out, knownParameters)
	return out
}

// LookupSpec returns the spec for section.name. The name matches
// case-insensitively.
func LookupSpec(section, name string) (ParameterSpec, bool) {
	for _, p := range knownParameters {
		if p.Section == section && strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return ParameterSpec{}, false
}
