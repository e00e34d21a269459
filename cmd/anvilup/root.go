package main

import (
	"github.com/spf13/cobra"

	"github.com/anvil-lang/anvilup/internal/logging"
)

// version is stamped at build time via -ldflags. A non-release build keeps
// "dev", which self-update treats as always outdated.
var version = "dev"

func newRootCommand() *cobra.Command {
	var verboseFlag bool

	ctx := newCommandContext(&verboseFlag)

	rootCmd := &cobra.Command{
		Use:           "anvilup",
		Short:         "Manage installed Anvil toolchains",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(logging.WithLogger(cmd.Context(), ctx.log()))
			_, err := ctx.ensureSettings()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newInstallCommand(ctx))
	rootCmd.AddCommand(newUseCommand(ctx))
	rootCmd.AddCommand(newUninstallCommand(ctx))
	rootCmd.AddCommand(newUpdateCommand(ctx))
	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newListAvailableCommand(ctx))
	rootCmd.AddCommand(newSelfUpdateCommand(ctx))

	return rootCmd
}
