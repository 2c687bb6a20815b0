package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newTemplatesCommand(ctx *commandContext) *cobra.Command {
	templatesCmd := &cobra.Command{
		Use:   "templates",
		Short: "Inspect the template catalog",
	}
	templatesCmd.AddCommand(newTemplatesListCommand(ctx))
	return templatesCmd
}

type templateView struct {
	Name         string   `json:"name"`
	Origin       string   `json:"origin"`
	Placeholders []string `json:"placeholders"`
}

func newTemplatesListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List templates and the placeholders they need",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := ctx.catalog()
			if err != nil {
				return err
			}
			var views []templateView
			for _, name := range catalog.Names() {
				entry, _ := catalog.Entry(name)
				views = append(views, templateView{
					Name:         name,
					Origin:       entry.Origin,
					Placeholders: entry.Descriptor.Placeholders(),
				})
			}
			if jsonOutput {
				return writeJSON(cmd, views)
			}

			rows := make([][]string, len(views))
			for i, v := range views {
				rows[i] = []string{v.Name, v.Origin, strings.Join(v.Placeholders, ", ")}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable("", []tableColumn{
				{header: "Template"},
				{header: "Origin", maxWidth: 50},
				{header: "Placeholders", maxWidth: 60},
			}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
