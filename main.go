package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fifo-tools/jadm/cmd"
	"github.com/fifo-tools/jadm/pkg/logger"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	var verbosity int

	rootCmd := &cobra.Command{
		Use:   "jadm",
		Short: "vmadm compatible jail manager",
		Long:  `jadm manages the lifecycle of FreeBSD jails: their configuration, storage, network interfaces and resource limits`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Setup(os.Stderr, verbosity)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity, repeatable")
	rootCmd.PersistentFlags().Bool("simulate", false, "Do not run host commands")
	rootCmd.PersistentFlags().MarkHidden("simulate")

	rootCmd.AddCommand(cmd.NewListCommand())
	rootCmd.AddCommand(cmd.NewCreateCommand())
	rootCmd.AddCommand(cmd.NewDestroyCommand())
	rootCmd.AddCommand(cmd.NewStartCommand())
	rootCmd.AddCommand(cmd.NewStopCommand())
	rootCmd.AddCommand(cmd.NewGetCommand())
	rootCmd.AddCommand(cmd.NewUpdateCommand())
	rootCmd.AddCommand(cmd.NewStartupCommand())
	rootCmd.AddCommand(cmd.NewValidateCommand())
	rootCmd.AddCommand(cmd.NewGenSchemaCommand())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.Version = version
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		stop()
		os.Exit(1)
	}
}
