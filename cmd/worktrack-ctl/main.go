package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"worktrack/internal/cli"
)

func main() {
	cli.LoadEnvFile()

	var cleanup func() error
	load := func(cmd *cobra.Command) (*App, error) {
		cfg, err := cli.LoadAndValidateConfig()
		if err != nil {
			return nil, fmt.Errorf("configuration error:\n%w", err)
		}
		logger := cli.SetupLogger(cfg.LogLevel, cmd.ErrOrStderr())
		svc, done, err := cli.InitService(cmd.Context(), logger, cfg, false)
		if err != nil {
			return nil, err
		}
		cleanup = done
		return NewApp(svc, cmd.OutOrStdout()), nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := SetupCommands(load).ExecuteContext(ctx)
	stop()

	if cleanup != nil {
		if cerr := cleanup(); cerr != nil {
			fmt.Fprintln(os.Stderr, "cleanup:", cerr)
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
