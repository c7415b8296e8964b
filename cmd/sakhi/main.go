package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sakhi-health/sakhi/internal/cli"
	"github.com/sakhi-health/sakhi/internal/config"
	"github.com/sakhi-health/sakhi/internal/logging"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "sakhi",
		Short:         "Menstrual cycle tracking service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(newServeCommand(), newImportLegacyCommand(), newResetPasswordCommand())
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the daily digest",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func newImportLegacyCommand() *cobra.Command {
	var email, file string
	cmd := &cobra.Command{
		Use:   "import-legacy",
		Short: "Import a browser storage export into an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadForCLI()
			if err != nil {
				return err
			}
			logger := logging.New(cfg.LogLevel, cfg.Environment)
			return cli.RunImportLegacyCommand(cfg.DBPath, email, file, logger)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&file, "file", "", "path to the exported JSON")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newResetPasswordCommand() *cobra.Command {
	var email string
	var prompt bool
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Reset an account password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadForCLI()
			if err != nil {
				return err
			}
			logger := logging.New(cfg.LogLevel, cfg.Environment)
			return cli.RunResetPasswordCommand(cfg.DBPath, email, prompt, logger)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().BoolVar(&prompt, "prompt", false, "read the new password from the terminal instead of generating one")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
