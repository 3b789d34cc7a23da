package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/CodexForgeBR/async-demos/internal/cli"
	"github.com/CodexForgeBR/async-demos/internal/config"
	"github.com/CodexForgeBR/async-demos/internal/exitcode"
	"github.com/CodexForgeBR/async-demos/internal/logging"
	"github.com/CodexForgeBR/async-demos/internal/metrics"
	"github.com/CodexForgeBR/async-demos/internal/placeholder"
	"github.com/CodexForgeBR/async-demos/internal/render"
	sighandler "github.com/CodexForgeBR/async-demos/internal/signal"
	"github.com/CodexForgeBR/async-demos/internal/store"
)

// version vars injected via ldflags at build time
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// app carries the merged configuration and shared collaborators for every
// subcommand.
type app struct {
	cfg     *config.Config
	metrics *metrics.Metrics
	out     io.Writer
	in      io.Reader

	// globalConfigPath and projectConfigPath are swapped out in tests.
	globalConfigPath  string
	projectConfigPath string
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := sighandler.SetupSignalHandler(ctx, cancel, func(sig os.Signal) {
		logging.Warn(fmt.Sprintf("Received %v, stopping...", sig))
	})

	a := &app{
		cfg:               config.NewDefaultConfig(),
		metrics:           metrics.New(),
		out:               os.Stdout,
		in:                os.Stdin,
		globalConfigPath:  config.GlobalConfigPath(),
		projectConfigPath: config.ProjectConfigPath(),
	}

	err := a.rootCmd().ExecuteContext(ctx)
	if interrupt.Interrupted() {
		os.Exit(exitcode.Interrupted)
	}
	if err != nil {
		logging.Error(err.Error())
		os.Exit(exitcode.FromError(err))
	}
}

func (a *app) rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "async-demos",
		Short:   "Retry, persistence and batching demos against a placeholder JSON API",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Bind all CLI flags to the config
	cli.BindFlags(rootCmd, a.cfg)
	cli.SetCustomHelp(rootCmd)

	rootCmd.AddCommand(
		a.retryCmd(),
		a.visitsCmd(),
		a.fetchCmd(),
		a.postCmd(),
		a.batchCmd(),
		a.searchCmd(),
	)
	return rootCmd
}

// loadConfig merges config files under the explicitly set flags, validates
// the result and starts the metrics server when requested.
func (a *app) loadConfig(cmd *cobra.Command) error {
	if err := cli.ValidateConfigFile(a.cfg); err != nil {
		return err
	}

	overrides := cli.BuildOverrides(cmd, a.cfg)
	finalCfg, err := config.LoadWithPrecedence(a.globalConfigPath, a.projectConfigPath, a.cfg.ConfigFile, overrides)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cli.ValidateConfig(finalCfg); err != nil {
		return err
	}
	*a.cfg = *finalCfg

	logging.SetVerbose(a.cfg.Verbose)
	logging.Debug(fmt.Sprintf("Store: %s at %s, retry: %d attempts every %dms",
		a.cfg.StoreBackend, a.cfg.StorePath, a.cfg.MaxAttempts, a.cfg.RetryDelayMs))

	if a.cfg.MetricsAddr != "" {
		ctx := cmd.Context()
		go func() {
			if err := a.metrics.Serve(ctx, a.cfg.MetricsAddr); err != nil {
				logging.Warn(err.Error())
			}
		}()
		logging.Info("Serving metrics on " + a.cfg.MetricsAddr + "/metrics")
	}
	return nil
}

func (a *app) openStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, a.cfg.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

func (a *app) client() *placeholder.Client {
	c := placeholder.NewClient(a.cfg.APIBaseURL, a.cfg.HTTPTimeoutDuration(), a.cfg.RetryConfig())
	c.Metrics = a.metrics
	return c
}

func (a *app) render(v any) error {
	return render.Write(a.out, a.cfg.OutputFormat, v)
}
