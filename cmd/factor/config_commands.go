package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"factor/internal/config"
	"factor/internal/fileutil"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Tool settings utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample settings file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			var err error
			if overwrite {
				err = fileutil.WriteFileAtomic(target, []byte(config.SampleConfig()), fileutil.WriteOptions{Overwrite: true})
			} else {
				err = config.CreateSample(target)
			}
			if errors.Is(err, fs.ErrExist) {
				return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
			}
			if err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit [templates] dir to add your own pipeline step templates.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the settings file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing settings if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate the settings file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if ctx.configFlag != nil {
				path = *ctx.configFlag
			}
			cfg, resolved, exists, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			status := newStatusWriter(cmd.OutOrStdout())
			if exists {
				status.line("Config path", statusOK, "%s", resolved)
			} else {
				status.line("Config path", statusInfo, "%s (not found, defaults used)", resolved)
			}
			status.line("Logging", statusInfo, "%s format, %s level", cfg.Logging.Format, cfg.Logging.Level)
			if cfg.Templates.Dir == "" {
				status.line("Templates", statusInfo, "builtin only")
			} else {
				status.line("Templates", statusOK, "%s", cfg.Templates.Dir)
			}
			status.line("Render output", statusInfo, "%s (overwrite: %s)", cfg.Render.OutputDir, yesNo(cfg.Render.Overwrite))
			status.verdict("Configuration")
			return nil
		},
	}
}
