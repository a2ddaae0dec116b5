package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"pully/internal/config"
	"pully/internal/util/deps"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "doctor",
		Short:         "Diagnose external dependencies (ffmpeg, yt-dlp)",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := config.Load()
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			out := cmd.OutOrStdout()

			ff, ferr := deps.FindFFmpeg(s.FFmpeg)
			if ferr != nil {
				return &ExitError{Code: ExitMissingDep, Err: ferr}
			}
			fmt.Fprintf(out, "FFmpeg:     %s\n", ff)

			dl, derr := deps.FindDownloader(s.DLBinary)
			switch {
			case derr == nil:
				fmt.Fprintf(out, "Downloader: %s\n", dl)
			case s.Provider == "ytdlp" || s.Provider == "yt-dlp":
				return &ExitError{Code: ExitMissingDep, Err: derr}
			default:
				fmt.Fprintln(out, "Downloader: not found (only needed with --provider ytdlp)")
			}

			if f := config.File(); f != "" {
				fmt.Fprintf(out, "Config:     %s\n", f)
			}
			return nil
		},
	}
}
