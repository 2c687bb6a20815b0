package main

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"factor/internal/fileutil"
	"factor/internal/logging"
	"factor/internal/parset"
)

const defaultParsetName = "factor.parset"

func newParsetCommand(ctx *commandContext) *cobra.Command {
	parsetCmd := &cobra.Command{
		Use:   "parset",
		Short: "Inspect Factor parset files",
	}

	parsetCmd.AddCommand(newParsetValidateCommand(ctx))
	parsetCmd.AddCommand(newParsetShowCommand(ctx))
	parsetCmd.AddCommand(newParsetExportCommand(ctx))
	parsetCmd.AddCommand(newParsetKeysCommand())

	return parsetCmd
}

func parsetArg(args []string) string {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0])
	}
	return defaultParsetName
}

func (c *commandContext) loadParset(path string, noDiscover bool) (*parset.Parset, error) {
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return parset.Load(path, parset.ResolveOptions{Logger: logger, SkipDiscovery: noDiscover})
}

func newParsetValidateCommand(ctx *commandContext) *cobra.Command {
	var noDiscover bool

	cmd := &cobra.Command{
		Use:   "validate [parset]",
		Short: "Load a parset and report what the pipeline would use",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := parsetArg(args)
			status := newStatusWriter(cmd.OutOrStdout())

			ps, err := ctx.loadParset(path, noDiscover)
			if err != nil {
				status.line("Parset", statusError, "%v", err)
				return fmt.Errorf("parset %s is invalid: %w", path, err)
			}
			status.line("Parset", statusOK, "%s", ps.Source)
			reportParset(status, ps, noDiscover)

			status.verdict("Parset")
			return nil
		},
	}

	cmd.Flags().BoolVar(&noDiscover, "no-discover", false, "Do not scan dir_ms for measurement sets")
	return cmd
}

func reportParset(status *statusWriter, ps *parset.Parset, noDiscover bool) {
	switch {
	case noDiscover:
		status.line("Measurement sets", statusInfo, "discovery skipped")
	case len(ps.MeasurementSets) == 0:
		status.line("Measurement sets", statusWarn, "none found in %s", ps.Global.DirMS)
	default:
		status.line("Measurement sets", statusOK, "%d found in %s", len(ps.MeasurementSets), ps.Global.DirMS)
	}

	d := ps.Directions
	if d.SelectsAutomatically() {
		status.line("Directions", statusInfo, "automatic (flux >= %s Jy, size <= %s arcmin, separation <= %s arcmin)",
			formatFloat(d.FluxMinJy), formatFloat(d.SizeMaxArcmin), formatFloat(d.SeparationMaxArcmin))
	} else {
		status.line("Directions", statusInfo, "from %s", d.DirectionsFile)
	}
	status.line("Groupings", statusInfo, "%s", formatGroupings(d.Groupings))

	c := ps.Cluster
	status.line("Cluster", statusInfo, "%s mode, %d CPUs per node, %d directions per node", c.Mode, c.NCPU, c.NDirPerNode)
	if nodes, err := c.Nodes(); err != nil {
		status.line("Nodes", statusWarn, "%v", err)
	} else {
		status.line("Nodes", statusInfo, "%s", strings.Join(nodes, ", "))
	}

	status.line("Mosaic", statusInfo, "%s", yesNo(ps.Global.MakeMosaic))
	if len(ps.FileOverrides) > 0 {
		status.line("Per-file overrides", statusOK, "%s", strings.Join(sortedKeys(ps.FileOverrides), ", "))
	}
	if len(ps.UnmatchedOverrides) > 0 {
		status.line("Unmatched sections", statusWarn, "%s", strings.Join(ps.UnmatchedOverrides, ", "))
	}
}

func newParsetShowCommand(ctx *commandContext) *cobra.Command {
	var noDiscover bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show [parset]",
		Short: "Show resolved parameters, defaults and per-file overrides",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := ctx.loadParset(parsetArg(args), noDiscover)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, ps)
			}

			out := cmd.OutOrStdout()
			paramRows := parameterRows(ps)
			for _, section := range []string{parset.SectionGlobal, parset.SectionDirections, parset.SectionCluster} {
				var rows [][]string
				for _, row := range paramRows {
					if row.Section == section {
						rows = append(rows, []string{row.Key, row.Value, row.Source})
					}
				}
				fmt.Fprintln(out, renderTable("["+section+"]", []tableColumn{
					{header: "Parameter"},
					{header: "Value", maxWidth: 60},
					{header: "Source"},
				}, rows))
			}

			if len(ps.MeasurementSets) > 0 {
				rows := make([][]string, len(ps.MeasurementSets))
				for i, name := range ps.MeasurementSets {
					rows[i] = []string{name, strconv.Itoa(len(ps.FileParams(name)))}
				}
				fmt.Fprintln(out, renderTable("Measurement sets", []tableColumn{
					{header: "File"},
					{header: "Overrides", align: alignRight},
				}, rows))
			}

			if overrides := overrideRows(ps); len(overrides) > 0 {
				rows := make([][]string, len(overrides))
				for i, row := range overrides {
					rows[i] = []string{row.File, row.Key, row.Value}
				}
				fmt.Fprintln(out, renderTable("Per-file overrides", []tableColumn{
					{header: "File"},
					{header: "Parameter"},
					{header: "Value", maxWidth: 60},
				}, rows))
			}
			if len(ps.UnmatchedOverrides) > 0 {
				fmt.Fprintf(out, "Unmatched per-file sections: %s\n", strings.Join(ps.UnmatchedOverrides, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noDiscover, "no-discover", false, "Do not scan dir_ms for measurement sets")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newParsetExportCommand(ctx *commandContext) *cobra.Command {
	var noDiscover bool
	var format string
	var outPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "export [parset]",
		Short: "Write the parset as canonical parset text, TOML or JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := ctx.loadParset(parsetArg(args), noDiscover)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := exportParset(&buf, ps, format); err != nil {
				return err
			}

			if strings.TrimSpace(outPath) == "" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			target, err := outputPath(cfg.Render.OutputDir, outPath)
			if err != nil {
				return err
			}
			if err := fileutil.WriteFileAtomic(target, buf.Bytes(), fileutil.WriteOptions{Overwrite: overwrite || cfg.Render.Overwrite}); err != nil {
				return fmt.Errorf("export parset: %w", err)
			}
			if logger, err := ctx.componentLogger("export"); err == nil {
				logger.Info("parset exported", logging.FieldOutput, target, "format", format)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", target)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noDiscover, "no-discover", false, "Do not scan dir_ms for measurement sets")
	cmd.Flags().StringVar(&format, "format", "parset", "Output format: parset, toml or json")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write to this file instead of stdout")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace the output file if it exists")
	return cmd
}

func exportParset(w io.Writer, ps *parset.Parset, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "parset", "":
		_, err := ps.Document().WriteTo(w)
		return err
	case "toml":
		enc := toml.NewEncoder(w)
		enc.SetIndentTables(true)
		return enc.Encode(ps)
	case "json":
		return encodeJSON(w, ps)
	default:
		return fmt.Errorf("unsupported export format %q (want parset, toml or json)", format)
	}
}

// outputPath resolves name against dir unless it is already absolute.
func outputPath(dir, name string) (string, error) {
	name = strings.TrimSpace(name)
	if filepath.IsAbs(name) || strings.HasPrefix(name, "~") {
		return fileutil.ExpandPath(name)
	}
	return fileutil.ExpandPath(filepath.Join(dir, name))
}

type parameterSpecView struct {
	Section     string `json:"section"`
	Key         string `json:"key"`
	Type        string `json:"type"`
	Default     string `json:"default,omitempty"`
	Required    bool   `json:"required"`
	Description string `json:"description"`
}

func newParsetKeysCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "keys",
		Short:       "List the parameters the loader understands",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			specs := parset.Specs()
			views := make([]parameterSpecView, len(specs))
			for i, spec := range specs {
				views[i] = parameterSpecView{
					Section:     spec.Section,
					Key:         spec.Name,
					Type:        spec.Kind.String(),
					Default:     spec.Default,
					Required:    spec.Required,
					Description: spec.Help,
				}
			}
			if jsonOutput {
				return writeJSON(cmd, views)
			}

			rows := make([][]string, len(views))
			for i, v := range views {
				def := v.Default
				if def == "" {
					def = "-"
				}
				rows[i] = []string{v.Section, v.Key, v.Type, def, yesNo(v.Required), v.Description}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable("", []tableColumn{
				{header: "Section"},
				{header: "Key"},
				{header: "Type"},
				{header: "Default"},
				{header: "Required"},
				{header: "Description", maxWidth: 50},
			}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
