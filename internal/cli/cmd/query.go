package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pully"
	"pully/internal/analyzer"
	"pully/internal/preset"
	"pully/internal/util/format"
)

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "query <url>",
		Aliases:       []string{"info"},
		Short:         "Show metadata and the formats a preset would pick from",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd, false)
			if err != nil {
				return err
			}
			info, err := sess.client.Query(cmd.Context(), args[0])
			if err != nil {
				return exitFor(err)
			}
			out := cmd.OutOrStdout()
			printInfo(out, info)

			all, _ := cmd.Flags().GetBool("formats")
			if all {
				fmt.Fprintln(out)
				printFormats(out, info.Formats)
				return nil
			}
			p, err := sess.client.Preset(sess.settings.Preset)
			if err != nil {
				return exitFor(err)
			}
			fmt.Fprintln(out)
			printSelection(out, info, p)
			return nil
		},
	}
	cmd.Flags().Bool("formats", false, "List every format in the catalog")
	return cmd
}

func printInfo(w io.Writer, info pully.MediaInfo) {
	fmt.Fprintf(w, "Title:    %s\n", info.Title)
	fmt.Fprintf(w, "Author:   %s\n", info.Author)
	if info.Duration > 0 {
		fmt.Fprintf(w, "Duration: %s\n", format.Clock(info.Duration))
	}
	if info.Network != "" {
		fmt.Fprintf(w, "Network:  %s\n", info.Network)
	}
	fmt.Fprintf(w, "Formats:  %d\n", len(info.Formats))
}

func printFormats(w io.Writer, formats []pully.MediaFormat) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ITAG\tTYPE\tRES\tFPS\tAUDIO\tBITRATE\tSIZE")
	for _, f := range formats {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			f.Itag, mime(f.Type), dash(f.Resolution, "p"), dash(f.FPS, ""), dash(f.AudioBitrate, "k"), orDash(f.Bitrate), size(f.DownloadSize))
	}
	tw.Flush()
}

// printSelection lists the candidates the preset accepts, best first.
func printSelection(w io.Writer, info pully.MediaInfo, p preset.Preset) {
	fmt.Fprintf(w, "Preset %q:\n", p.Name)
	if fi, err := analyzer.Select(info, p); err == nil {
		if fi.Video != nil {
			fmt.Fprintf(w, "  video  %s  %dp%d  %s\n", fi.Video.Itag, fi.Video.Resolution, fi.Video.FPS, size(fi.Video.DownloadSize))
		}
		if fi.Audio != nil {
			fmt.Fprintf(w, "  audio  %s  %dkbps  %s\n", fi.Audio.Itag, fi.Audio.AudioBitrate, size(fi.Audio.DownloadSize))
		}
		fmt.Fprintf(w, "  total  %s\n", size(fi.DownloadSize))
	} else {
		fmt.Fprintf(w, "  no selection: %v\n", err)
	}
	if p.WantsVideo() {
		fmt.Fprintln(w, "\nVideo candidates:")
		printFormats(w, analyzer.Rank(info, p, true))
	}
	fmt.Fprintln(w, "\nAudio candidates:")
	printFormats(w, analyzer.Rank(info, p, false))
}

func mime(t string) string {
	if i := strings.IndexByte(t, ';'); i >= 0 {
		return strings.TrimSpace(t[:i])
	}
	return t
}

func dash(v int, unit string) string {
	if v <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d%s", v, unit)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func size(n int64) string {
	if n <= 0 {
		return "?"
	}
	return format.HumanizeBytes(n)
}
