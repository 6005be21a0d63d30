// Package main runs a small record service for local development and tests.
// It speaks the same paged collection API the client syncs against.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bunkbed-tech/fushigi-sub000/internal/devremote"
	"github.com/bunkbed-tech/fushigi-sub000/internal/logger"
)

const shutdownTimeout = 10 * time.Second

type options struct {
	addr     string
	dataPath string
	seedFile string
	token    string
	rps      float64
	burst    int
	logLevel string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "fushigi-devremote",
		Short:         "Run a local record service for development",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "127.0.0.1:8090", "Listen address")
	cmd.Flags().StringVar(&opts.dataPath, "data", "", "Badger directory (in-memory when empty)")
	cmd.Flags().StringVar(&opts.seedFile, "seed", "", "JSON file of records to load at startup")
	cmd.Flags().StringVar(&opts.token, "token", "", "Require this bearer token")
	cmd.Flags().Float64Var(&opts.rps, "rate-limit", 0, "Requests per second per client (0 disables)")
	cmd.Flags().IntVar(&opts.burst, "burst", 20, "Request burst per client")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	return cmd
}

func serve(ctx context.Context, opts options) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.New(logger.Config{Level: logger.ParseLevel(opts.logLevel)})
	defer log.Close()

	store, err := devremote.OpenStore(devremote.StoreOptions{Path: opts.dataPath, Logger: log.Logger})
	if err != nil {
		return err
	}
	defer store.Close()

	if opts.seedFile != "" {
		f, err := os.Open(opts.seedFile) //#nosec G304 -- seed path is operator input
		if err != nil {
			return fmt.Errorf("open seed file: %w", err)
		}
		_, err = devremote.Seed(ctx, store, f)
		f.Close()
		if err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           devremote.NewServer(store, devremote.ServerOptions{
			Token:     opts.token,
			RateLimit: opts.rps,
			Burst:     opts.burst,
			Logger:    log.Logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Dev record service listening", "addr", opts.addr, "auth", opts.token != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down dev record service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
