package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	bio "github.com/osumercury/badgemaker/pkg/io"
)

// convertCommand creates the convert command for roster format conversion.
func (c *CLI) convertCommand() *cobra.Command {
	var settingsPath string

	cmd := &cobra.Command{
		Use:   "convert [input] [output]",
		Short: "Convert a roster between CSV, TOML and JSON",
		Long: `Convert a roster between CSV, TOML and JSON.

Formats are chosen by file extension. Settings carried by a TOML input are
kept when the output is TOML; --settings attaches a settings file instead.
Background images are copied next to a CSV output.`,
		Example: `  badgemaker convert teams.csv teams.toml
  badgemaker convert teams.toml teams.json
  badgemaker convert teams.csv batch.toml --settings classic.toml`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(cmd.Context(), args[0], args[1], settingsPath)
		},
	}

	cmd.Flags().StringVar(&settingsPath, "settings", "", "settings file to embed in a TOML output")

	return cmd
}

// runConvert reads input and writes it back out in the output's format.
func (c *CLI) runConvert(ctx context.Context, input, output, settingsPath string) error {
	if _, err := bio.FormatOf(output); err != nil {
		return err
	}

	badges, settings, err := bio.Import(ctx, input, bio.ReadOptions{Logger: c.Logger})
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	if settingsPath != "" {
		s, err := bio.LoadSettings(settingsPath)
		if err != nil {
			return err
		}
		settings = &s
	}
	if settings != nil && settings.Size != nil {
		for _, b := range badges {
			settings.Size.Apply(b)
		}
	}

	if err := bio.Export(output, badges, settings); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Converted %d badges", len(badges))
	printFile(output)
	printNextStep("Render it", "badgemaker render "+output+" --pdf badges.pdf")
	return nil
}
