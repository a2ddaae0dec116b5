package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"pully/internal/config"
	"pully/internal/model"
)

const (
	ExitOK            = 0
	ExitCLIError      = 1
	ExitMissingDep    = 2
	ExitDownloadError = 3
	ExitMuxError      = 4
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pully [url]",
		Short:         "Download videos at the best quality a preset allows",
		Long:          "Pully picks the best audio and video streams a quality preset allows, downloads them and muxes them into a single file with embedded metadata.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Init(cmd.Root()); err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runDownload(cmd, args[0], false)
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "Config file (default is $XDG_CONFIG_HOME/pully/config.yaml)")
	pf.StringP("dir", "d", ".", "Output directory")
	pf.StringP("template", "t", "", "Filename template, e.g. '${author}/${title}'")
	pf.StringP("preset", "p", "hd", "Quality preset (see 'pully presets')")
	pf.StringP("mode", "m", "merge", "Retrieval mode: merge, sequential, parallel")
	pf.BoolP("verbose", "v", false, "Show full subprocess commands/output")
	pf.BoolP("silent", "s", false, "Print nothing but errors")
	pf.String("provider", "youtube", "Catalog provider: youtube, ytdlp")
	pf.String("dl-binary", "", "Path to yt-dlp or youtube-dl (ytdlp provider)")
	pf.String("ffmpeg", "", "Path to ffmpeg")

	// `pully <url>` behaves like `pully download <url>`.
	bindDownloadFlags(root.Flags())

	root.AddCommand(newDownloadCmd())
	root.AddCommand(newQueryCmd())
	root.AddCommand(newPresetsCmd())
	root.AddCommand(newTuiCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newCompletionCmd())

	return root
}

func bindDownloadFlags(fs *pflag.FlagSet) {
	fs.String("max-size", "", "Cancel when the selected streams exceed this size, e.g. 500MB (bare numbers are MB)")
	fs.Bool("no-ui", false, "Disable TUI; use plain textual output")
}

// Execute runs the CLI with the provided context.
func Execute(ctx context.Context) error {
	root := newRootCmd()
	return root.ExecuteContext(ctx)
}

// exitFor maps a download error to the process exit code.
func exitFor(err error) error {
	if err == nil {
		return nil
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee
	}
	switch model.KindOf(err) {
	case model.KindCatalogFetch, model.KindFormatSelection, model.KindStreamIO:
		return &ExitError{Code: ExitDownloadError, Err: err}
	case model.KindMux:
		return &ExitError{Code: ExitMuxError, Err: err}
	default:
		return &ExitError{Code: ExitCLIError, Err: err}
	}
}
