// Package commands is the tally command tree.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tally/internal/config"
	"github.com/balkashynov/tally/internal/db"
	"github.com/balkashynov/tally/internal/logging"
	"github.com/balkashynov/tally/internal/tracker"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// clock is the time source handed to the store. Tests replace it.
var clock tracker.Clock = tracker.RealClock{}

// app is what a command needs once the home directory is known
type app struct {
	home  string
	cfg   *config.Config
	log   *slog.Logger
	repo  *db.Repository
	store *tracker.Store

	logCloser io.Closer
}

// openApp loads the configuration, opens the log and the database and
// recovers the tracker state.
func openApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	home, err := homeDir(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(home)
	if err != nil {
		return nil, err
	}
	for _, w := range cfg.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
	}

	logger, logCloser, err := logging.Open(home, logging.ParseLevel(cfg.Log.Level))
	if err != nil {
		return nil, err
	}

	repo, err := db.Open(cfg.DBPath(home))
	if err != nil {
		_ = logCloser.Close()
		return nil, err
	}

	store, err := tracker.Open(ctx, repo, tracker.Options{
		Clock:               clock,
		Logger:              logger,
		Notifier:            tracker.BellNotifier{W: cmd.ErrOrStderr()},
		Chime:               tracker.BellChime{W: cmd.ErrOrStderr()},
		InactivityThreshold: cfg.InactivityThreshold(),
	})
	if err != nil {
		_ = repo.Close()
		_ = logCloser.Close()
		return nil, err
	}

	return &app{home: home, cfg: cfg, log: logger, repo: repo, store: store, logCloser: logCloser}, nil
}

func (a *app) Close() error {
	err := a.repo.Close()
	if cerr := a.logCloser.Close(); err == nil {
		err = cerr
	}
	return err
}

// withApp wraps a command function to open the app first
func withApp(fn func(*cobra.Command, []string, *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, args, a)
	}
}

// homeDir returns the --home flag, falling back to $TALLY_HOME or ~/.tally.
func homeDir(cmd *cobra.Command) (string, error) {
	if home, _ := cmd.Flags().GetString("home"); home != "" {
		return home, nil
	}
	return config.Home()
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// NewRootCommand builds the full command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "tally",
		Short: "A single-user task timer that scores finished work",
		Long: `tally tracks time on tasks and turns finished work into points.
One timer runs at a time; starting a task pauses the one that was running.
Points are the tracked minutes multiplied by the task difficulty.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			showGuide(cmd.OutOrStdout())
			return nil
		},
	}
	root.PersistentFlags().String("home", "", "Data directory (default $"+config.HomeEnv+" or ~/.tally)")

	root.AddCommand(
		newAddCommand(),
		newListCommand(),
		newSearchCommand(),
		newStartCommand(),
		newPauseCommand(),
		newResumeCommand(),
		newToggleCommand(),
		newStatusCommand(),
		newFinishCommand(),
		newEditCommand(),
		newRemoveCommand(),
		newStatsCommand(),
		newExportCommand(),
		newWeekCommand(),
		newWatchCommand(),
		newBoardCommand(),
		newRemindCommand(),
		newMuteCommand(),
		newImportCommand(),
		newConfigCommand(),
		newVersionCommand(),
	)
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tally %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
