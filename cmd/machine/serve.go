package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"github.com/aretw0/machine"
	"github.com/aretw0/machine/internal/builtins"
	httpAdapter "github.com/aretw0/machine/pkg/adapters/http"
	"github.com/aretw0/machine/pkg/adapters/memory"
	"github.com/aretw0/machine/pkg/adapters/redis"
	"github.com/aretw0/machine/pkg/definition"
	"github.com/aretw0/machine/pkg/observability"
	"github.com/aretw0/machine/pkg/persistence/middleware"
	"github.com/aretw0/machine/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <manifest>...",
		Short: "Expose machines over HTTP",
		Long:  `Starts an HTTP server exposing every manifest as POST /machines/{identity}, with Prometheus metrics on /metrics.`,
		Args:  cobra.MinimumNArgs(1),
		RunE:  runServe,
	}
	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().String("redis", "", "Redis address for the execution journal (in-memory when empty)")
	cmd.Flags().Duration("journal-ttl", 24*time.Hour, "How long journal records are kept in Redis")
	cmd.Flags().StringSlice("redact", nil, "Regular expressions of result keys to mask in the journal")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := loggerFor(cmd)
	if err != nil {
		return err
	}

	var journal ports.Journal = memory.NewJournal()
	if addr, _ := cmd.Flags().GetString("redis"); addr != "" {
		ttl, _ := cmd.Flags().GetDuration("journal-ttl")
		journal = redis.New(addr, redis.WithTTL(ttl))
	}
	if patterns, _ := cmd.Flags().GetStringSlice("redact"); len(patterns) > 0 {
		for _, p := range patterns {
			if _, err := regexp.Compile(p); err != nil {
				return fmt.Errorf("invalid --redact pattern: %w", err)
			}
		}
		journal = middleware.Chain(journal, middleware.NewRedactMiddleware(patterns))
	}

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	opts := []machine.Option{
		machine.WithLogger(logger),
		machine.WithJournal(journal),
		machine.WithLifecycleHooks(metrics.Hooks()),
		machine.WithLifecycleHooks(observability.LogHooks(logger)),
	}

	reg := builtins.Registry()
	machines := make([]*machine.Machine, 0, len(args))
	for _, path := range args {
		def, err := definition.LoadFile(path, reg)
		if err != nil {
			return err
		}
		m, err := machine.Build(def, opts...)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		machines = append(machines, m)
	}

	port, _ := cmd.Flags().GetString("port")
	srv := &http.Server{
		Addr: ":" + port,
		Handler: httpAdapter.NewHandler(machines,
			httpAdapter.WithJournal(journal),
			httpAdapter.WithLogger(logger),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "machines", len(machines))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		_ = srv.Close()
		return fmt.Errorf("graceful shutdown did not complete in %v: %w", shutdownTimeout, err)
	}
	return nil
}
