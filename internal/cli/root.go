package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/commit-swipe/internal/tui"
)

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cmd := newRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:          "commit-swipe",
		Short:        "Swipe through developer profiles from your terminal",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd.Context(), setupOptions{configPath: opts.configPath, logLevel: opts.logLevel, logToFile: true})
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if a.userID() == "" {
				cmd.PrintErrln("Not signed in. Run `commit-swipe login` or `commit-swipe register` first.")
				return errNotSignedIn
			}

			deps := tui.Deps{
				Remote:        a.client,
				Locate:        a.locateProvider(),
				Fallback:      a.fallback(),
				Journal:       a.journal,
				LiveBaseURL:   a.cfg.APIBaseURL,
				StatusAddr:    a.cfg.StatusAddr,
				Decisions:     a.decisions,
				PollInterval:  a.cfg.PollInterval,
				SettleDelay:   a.cfg.SettleDelay,
				ViewportWidth: a.cfg.ViewportWidth,
				PixelsPerCell: a.cfg.PixelsPerCell,
				Logger:        a.log,
			}
			a.log.Info("client.start", "api", a.cfg.APIBaseURL, "status_addr", a.cfg.StatusAddr)
			return tui.Run(cmd.Context(), deps)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file (optional)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override LOG_LEVEL (debug|info|warn|error)")

	cmd.AddCommand(
		loginCmd(&opts),
		registerCmd(&opts),
		logoutCmd(&opts),
		whoamiCmd(&opts),
		profileCmd(&opts),
		matchesCmd(&opts),
		chatCmd(&opts),
		likesCmd(&opts),
		nearbyCmd(&opts),
		uploadCmd(&opts),
		decisionsCmd(&opts),
		replayCmd(&opts),
	)
	return cmd
}

// withApp runs fn with a wired app whose logs go to stderr.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(a *app) error) error {
	a, err := setup(cmd.Context(), setupOptions{configPath: opts.configPath, logLevel: opts.logLevel, stderr: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	return fn(a)
}
