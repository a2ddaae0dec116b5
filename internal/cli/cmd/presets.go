package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pully"
	"pully/internal/preset"
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "presets",
		Short:         "List built-in and configured presets",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := newSession(cmd, false)
			if err != nil {
				return err
			}
			printPresets(cmd.OutOrStdout(), sess.client.Presets(), sess.settings.Preset)
			return nil
		},
	}
}

func printPresets(w io.Writer, ps []pully.Preset, current string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tRESOLUTION\tFPS\tAUDIO KBPS\tFORMAT")
	for _, p := range ps {
		name := p.Name
		if name == current {
			name += " *"
		}
		out := p.OutputFormat
		if out == "" {
			out = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", name,
			preset.FormatCeiling(p.MaxResolution), preset.FormatCeiling(p.MaxFPS), preset.FormatCeiling(p.MaxAudioBitrate), out)
	}
	tw.Flush()
}
