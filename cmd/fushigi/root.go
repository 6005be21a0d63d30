package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/bunkbed-tech/fushigi-sub000/internal/config"
	"github.com/bunkbed-tech/fushigi-sub000/internal/di"
	"github.com/bunkbed-tech/fushigi-sub000/internal/logger"
	"github.com/bunkbed-tech/fushigi-sub000/internal/session"
	"github.com/bunkbed-tech/fushigi-sub000/internal/study"
)

// app is what a command body works with once the container is up.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	study   *study.Service
	session *session.Service
}

func newRootCmd() *cobra.Command {
	var flags config.Flags

	root := &cobra.Command{
		Use:           "fushigi",
		Short:         "Study Japanese grammar with spaced repetition",
		Long:          `Fushigi keeps a local copy of your grammar concepts, journal, and review schedule in step with the record service.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.EnvFile, "env-file", "", "Path to .env file (default: .env)")
	pf.StringVar(&flags.Env, "env", "", "Environment: development, staging, production")
	pf.StringVar(&flags.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&flags.LogFile, "log-file", "", "Also write JSON logs to this rotated file")
	pf.StringVar(&flags.DataPath, "data", "", "Directory holding the local cache")
	pf.StringVar(&flags.RemoteURL, "remote", "", "Record service base URL")
	pf.StringVar(&flags.PerPage, "per-page", "", "Records requested per page")
	pf.StringVar(&flags.Timeout, "timeout", "", "Per-request timeout, e.g. 30s")
	pf.StringVar(&flags.DailyCap, "daily-cap", "", "Concepts in the daily study set")
	pf.StringVar(&flags.SelectionZone, "zone", "", "Calendar day for the daily set: local or utc")
	pf.StringVar(&flags.UserID, "user", "", "User id that owns new records")

	root.AddCommand(
		newSyncCmd(&flags),
		newStatusCmd(&flags),
		newStudyCmd(&flags),
		newSearchCmd(&flags),
		newEnrollCmd(&flags),
		newJournalCmd(&flags),
		newLoginCmd(&flags),
		newLogoutCmd(&flags),
	)

	return root
}

// run builds the container, loads the local cache, and hands fn a ready app.
// Services are shut down in reverse order when fn returns.
func run(cmd *cobra.Command, flags *config.Flags, fn func(ctx context.Context, a *app) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	injector := di.NewContainer(*flags)
	if err := di.Bootstrap(ctx, injector); err != nil {
		return err
	}

	a := &app{
		cfg:     do.MustInvoke[*config.Config](injector),
		log:     do.MustInvoke[*logger.Logger](injector),
		study:   do.MustInvoke[*study.Service](injector),
		session: do.MustInvoke[*session.Service](injector),
	}

	runErr := fn(ctx, a)

	if err := injector.Shutdown(); err != nil {
		a.log.Error("Shutdown error", "error", err)
	}
	_ = a.log.Close()

	return runErr
}
