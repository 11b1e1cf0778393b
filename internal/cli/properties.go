package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/osumercury/badgemaker/pkg/render"
	"github.com/osumercury/badgemaker/pkg/render/builtin"
)

// propertiesCommand creates the properties command listing renderer settings.
func (c *CLI) propertiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "properties [renderer]",
		Short: "List renderers and their properties",
		Long: `List the configurable properties of a renderer.

Without an argument every built-in renderer is listed. Property values are
set with 'render --set key=value' or in the [renderer.properties] table of a
settings file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := builtin.Registry()
			names := reg.Names()
			if len(args) == 1 {
				names = args
			}
			env := render.Env{Logger: c.Logger}
			for i, name := range names {
				r, err := reg.New(name, env)
				if err != nil {
					return err
				}
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				writeProperties(cmd.OutOrStdout(), r)
			}
			return nil
		},
	}
}

// writeProperties prints the renderer heading and its property table.
func writeProperties(w io.Writer, r render.Renderer) {
	fmt.Fprintln(w, StyleTitle.Render(r.Name())+" "+StyleDim.Render(r.Describe()))
	fmt.Fprintln(w, propertyTable(r.ListProperties()).Render())
}

// propertyTable renders properties as a Type/Key/Default/Description table.
func propertyTable(props []render.Property) *table.Table {
	rows := make([][]string, 0, len(props))
	for _, p := range props {
		def := p.Default
		if strings.ContainsAny(def, "\n\r") {
			def = strings.SplitN(def, "\n", 2)[0] + " …"
		}
		rows = append(rows, []string{p.Kind.String(), p.Key, def, p.Description})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Type", "Key", "Default", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorDim)
			case col == 1:
				return StyleHighlight
			}
			return lipgloss.NewStyle()
		})
}
