package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"pully"
	"pully/internal/config"
	"pully/internal/downloader"
	"pully/internal/progress"
	"pully/internal/ui"
	"pully/internal/util/deps"
	"pully/internal/util/format"
)

func newDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "download <url>",
		Aliases:       []string{"dl", "get"},
		Short:         "Download one video at the chosen preset",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, args[0], false)
		},
	}
	bindDownloadFlags(cmd.Flags())
	return cmd
}

// session is what every command needs to talk to pully.
type session struct {
	settings config.Settings
	client   *pully.Pully
}

// newSession loads settings and builds a client. needMuxer makes a missing
// ffmpeg fatal up front instead of after the streams were fetched.
func newSession(cmd *cobra.Command, needMuxer bool, extra ...pully.Option) (*session, error) {
	s, err := config.Load()
	if err != nil {
		return nil, &ExitError{Code: ExitCLIError, Err: err}
	}
	custom, err := s.CustomPresets()
	if err != nil {
		return nil, &ExitError{Code: ExitCLIError, Err: err}
	}

	opts := []pully.Option{
		pully.WithDir(s.Dir),
		pully.WithTemplate(s.Template),
		pully.WithPreset(s.Preset),
		pully.WithMode(pully.Mode(s.Mode)),
		pully.WithPresets(custom...),
		pully.WithVerbose(s.Verbose),
	}

	switch s.Provider {
	case "", "youtube":
	case "ytdlp", "yt-dlp":
		path, err := deps.FindDownloader(s.DLBinary)
		if err != nil {
			return nil, &ExitError{Code: ExitMissingDep, Err: err}
		}
		opts = append(opts, pully.WithProvider(downloader.New(path, s.Verbose)))
	default:
		return nil, &ExitError{Code: ExitCLIError, Err: fmt.Errorf("invalid --provider: %q (valid: youtube|ytdlp)", s.Provider)}
	}

	if needMuxer {
		path, err := deps.FindFFmpeg(s.FFmpeg)
		if err != nil {
			return nil, &ExitError{Code: ExitMissingDep, Err: err}
		}
		opts = append(opts, pully.WithFFmpeg(path))
	}

	client, err := pully.New(append(opts, extra...)...)
	if err != nil {
		return nil, exitFor(err)
	}
	return &session{settings: s, client: client}, nil
}

func runDownload(cmd *cobra.Command, url string, forceTUI bool) error {
	maxSize, err := maxSizeFlag(cmd)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	noUI, _ := cmd.Flags().GetBool("no-ui")
	silent := viper.GetBool("silent")
	useTUI := forceTUI || (!noUI && !silent && isTerminal())

	var rep progress.Reporter
	var tuiRep *ui.Reporter
	out := newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), silent, viper.GetBool("verbose"))
	if useTUI {
		tuiRep = ui.NewReporter()
		rep = tuiRep
	} else {
		rep = out
	}

	sess, err := newSession(cmd, true,
		pully.WithReporter(rep),
		pully.WithVerify(sizeGuard(maxSize)),
	)
	if err != nil {
		return err
	}
	if err := ensureDir(sess.settings.Dir); err != nil {
		return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("failed to create output dir: %v", err)}
	}

	job := func(ctx context.Context) (pully.Results, error) {
		return sess.client.Download(ctx, url)
	}

	var res pully.Results
	if useTUI {
		res, err = ui.Run(cmd.Context(), tuiRep, url, job)
	} else {
		res, err = job(cmd.Context())
	}

	switch {
	case errors.Is(err, context.Canceled):
		out.cancelled("interrupted")
		return nil
	case err != nil:
		return exitFor(err)
	case res.Cancelled:
		out.cancelled(res.Reason)
		return nil
	}
	out.saved(res)
	return nil
}

func maxSizeFlag(cmd *cobra.Command) (int64, error) {
	raw, _ := cmd.Flags().GetString("max-size")
	if raw == "" {
		return 0, nil
	}
	n, err := format.ParseSize(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid --max-size: %w", err)
	}
	return n, nil
}

// sizeGuard cancels downloads whose selected streams are larger than limit.
// A zero limit or an unknown size lets everything through.
func sizeGuard(limit int64) pully.VerifyFunc {
	return func(fi pully.FormatInfo, cancel func(string)) {
		if limit <= 0 || fi.DownloadSize <= limit {
			return
		}
		cancel(fmt.Sprintf("download size %s exceeds --max-size %s",
			format.HumanizeBytes(fi.DownloadSize), format.HumanizeBytes(limit)))
	}
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func ensureDir(path string) error {
	if path == "" {
		return nil
	}
	return os.MkdirAll(path, 0o755)
}
