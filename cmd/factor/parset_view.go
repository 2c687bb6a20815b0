package main

import (
	"sort"
	"strconv"
	"strings"

	"factor/internal/parset"
)

const (
	sourceParset  = "parset"
	sourceDefault = "default"
	sourceUnset   = "unset"
	sourceExtra   = "parset (unknown key)"
)

type parameterRow struct {
	Section string `json:"section"`
	Key     string `json:"key"`
	Value   string `json:"value"`
	Source  string `json:"source"`
}

// parameterRows lists every known parameter with its resolved value, followed
// by unknown keys passed through from the file.
func parameterRows(ps *parset.Parset) []parameterRow {
	resolved := resolvedValues(ps)
	doc := ps.Document()

	var rows []parameterRow
	for _, spec := range parset.Specs() {
		row := parameterRow{Section: spec.Section, Key: spec.Name, Value: resolved[spec.Section+"."+spec.Name]}
		raw, present := doc.Section(spec.Section).Get(spec.Name)
		switch {
		case present && strings.TrimSpace(raw) != "":
			row.Source = sourceParset
		case spec.HasDefault() || spec.Name == "ncpu":
			row.Source = sourceDefault
		default:
			row.Source = sourceUnset
			row.Value = "-"
		}
		rows = append(rows, row)
	}

	extras := map[string]map[string]string{
		parset.SectionGlobal:     ps.Global.Extra,
		parset.SectionDirections: ps.Directions.Extra,
		parset.SectionCluster:    ps.Cluster.Extra,
	}
	for _, section := range []string{parset.SectionGlobal, parset.SectionDirections, parset.SectionCluster} {
		for _, key := range sortedKeys(extras[section]) {
			rows = append(rows, parameterRow{Section: section, Key: key, Value: extras[section][key], Source: sourceExtra})
		}
	}
	return rows
}

func resolvedValues(ps *parset.Parset) map[string]string {
	g, d, c := ps.Global, ps.Directions, ps.Cluster
	clusterDesc := c.ClusterDescFile
	if c.Mode == parset.ClusterPBS {
		clusterDesc = parset.ClusterDescPBS
	}
	return map[string]string{
		"global.dir_working":             g.DirWorking,
		"global.dir_ms":                  g.DirMS,
		"global.parmdb_name":             g.ParmDBName,
		"global.make_mosaic":             strconv.FormatBool(g.MakeMosaic),
		"global.interactive":             strconv.FormatBool(g.Interactive),
		"global.use_chgcentre":           strconv.FormatBool(g.UseChgCentre),
		"global.keep_avg_facet_data":     strconv.FormatBool(g.KeepAvgFacetData),
		"global.exit_on_selfcal_failure": strconv.FormatBool(g.ExitOnSelfcalFailure),

		"directions.directions_file":       d.DirectionsFile,
		"directions.check_edges":           strconv.FormatBool(d.CheckEdges),
		"directions.flux_min_Jy":           formatFloat(d.FluxMinJy),
		"directions.size_max_arcmin":       formatFloat(d.SizeMaxArcmin),
		"directions.separation_max_arcmin": formatFloat(d.SeparationMaxArcmin),
		"directions.max_num":               strconv.Itoa(d.MaxNum),
		"directions.ndir":                  strconv.Itoa(d.NDir),
		"directions.groupings":             formatGroupings(d.Groupings),
		"directions.faceting_radius_deg":   formatFloat(d.FacetingRadiusDeg),

		"cluster.clusterdesc_file": clusterDesc,
		"cluster.ncpu":             strconv.Itoa(c.NCPU),
		"cluster.ndir_per_node":    strconv.Itoa(c.NDirPerNode),
	}
}

type overrideRow struct {
	File  string `json:"file"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

func overrideRows(ps *parset.Parset) []overrideRow {
	var rows []overrideRow
	for _, file := range sortedKeys(ps.FileOverrides) {
		params := ps.FileParams(file)
		for _, key := range sortedKeys(params) {
			rows = append(rows, overrideRow{File: file, Key: key, Value: params[key]})
		}
	}
	return rows
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatGroupings(groups []parset.Grouping) string {
	parts := make([]string, len(groups))
	for i, g := range groups {
		parts[i] = g.String()
	}
	return strings.Join(parts, ", ")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
