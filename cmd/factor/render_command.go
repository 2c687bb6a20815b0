package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"factor/internal/fileutil"
	"factor/internal/logging"
	"factor/internal/parset"
	"factor/internal/recipe"
)

type renderOptions struct {
	parsetPath string
	noDiscover bool
	sets       []string
	lists      []string
	imsize     int
	outPath    string
	overwrite  bool
}

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render <template>",
		Short: "Render a pipeline step template",
		Long: `Render a pipeline step template.

Values come from, in increasing precedence: step defaults (nterms = 1,
n_per_node from the parset cluster section, wplanes from --imsize), then
--list and --set flags. Every placeholder must end up bound.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			catalog, err := ctx.catalog()
			if err != nil {
				return err
			}
			tpl, err := catalog.Get(name)
			if err != nil {
				return err
			}

			var ps *parset.Parset
			if strings.TrimSpace(opts.parsetPath) != "" {
				if ps, err = ctx.loadParset(opts.parsetPath, opts.noDiscover); err != nil {
					return err
				}
			}
			bindings, err := buildBindings(ps, opts)
			if err != nil {
				return err
			}

			text, err := tpl.Render(bindings)
			if err != nil {
				return err
			}
			text += "\n"

			logger, err := ctx.componentLogger("recipe")
			if err != nil {
				return err
			}
			logger = logger.With(logging.FieldTemplate, name)

			if strings.TrimSpace(opts.outPath) == "" {
				logger.Debug("template rendered", "bytes", len(text))
				_, err := fmt.Fprint(cmd.OutOrStdout(), text)
				return err
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			target, err := outputPath(cfg.Render.OutputDir, opts.outPath)
			if err != nil {
				return err
			}
			writeOpts := fileutil.WriteOptions{Overwrite: opts.overwrite || cfg.Render.Overwrite}
			if err := fileutil.WriteFileAtomic(target, []byte(text), writeOpts); err != nil {
				return fmt.Errorf("write rendered template: %w", err)
			}
			logger.Info("template rendered", logging.FieldOutput, target)
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.parsetPath, "parset", "p", "", "Parset supplying cluster defaults")
	cmd.Flags().BoolVar(&opts.noDiscover, "no-discover", false, "Do not scan dir_ms for measurement sets")
	cmd.Flags().StringArrayVar(&opts.sets, "set", nil, "Bind a placeholder: name=value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.lists, "list", nil, "Bind a list placeholder: name=a,b,c (repeatable)")
	cmd.Flags().IntVar(&opts.imsize, "imsize", 0, "Image size in pixels; derives wplanes")
	cmd.Flags().StringVarP(&opts.outPath, "out", "o", "", "Write to this file (relative to render.output_dir) instead of stdout")
	cmd.Flags().BoolVar(&opts.overwrite, "overwrite", false, "Replace the output file if it exists")
	return cmd
}

func buildBindings(ps *parset.Parset, opts renderOptions) (recipe.Bindings, error) {
	bindings := recipe.FFTParams{ImSize: opts.imsize}.WithParset(ps).Bindings()

	for _, raw := range opts.lists {
		name, value, err := splitBinding("--list", raw)
		if err != nil {
			return nil, err
		}
		items := parset.ParseList(value)
		if len(items) == 0 {
			return nil, fmt.Errorf("--list %q: list for %s is empty", raw, name)
		}
		bindings[name] = items
	}
	for _, raw := range opts.sets {
		name, value, err := splitBinding("--set", raw)
		if err != nil {
			return nil, err
		}
		bindings[name] = value
	}
	return bindings, nil
}

func splitBinding(flag, raw string) (string, string, error) {
	name, value, ok := strings.Cut(raw, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("%s %q: expected name=value", flag, raw)
	}
	return name, strings.TrimSpace(value), nil
}
