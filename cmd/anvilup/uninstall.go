package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anvil-lang/anvilup/internal/shell"
)

func newUninstallCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "uninstall <version>",
		Short: "Remove an installed Anvil toolchain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version := args[0]
			return ctx.withLock(cmd.Context(), func() error {
				store := ctx.store()
				isDefault := ctx.settings.DefaultToolchain == version
				if isDefault && !force {
					return fmt.Errorf("anvil %s is the default toolchain; pick another with `anvilup use` or pass --force", version)
				}

				if err := store.Remove(version); err != nil {
					return err
				}
				if isDefault {
					if err := store.Unlink(); err != nil {
						return err
					}
					ctx.settings.DefaultToolchain = ""
					if err := ctx.saveSettings(); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "no default toolchain remains; run `anvilup use` to pick one")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed anvil %s\n", version)

				remaining, err := store.List()
				if err != nil {
					return err
				}
				if len(remaining) == 0 {
					return removeShellIntegration(ctx, cmd)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Allow removing the default toolchain")
	return cmd
}

// removeShellIntegration strips anvilup source lines from rc files once no
// toolchain is left to put on PATH.
func removeShellIntegration(ctx *commandContext, cmd *cobra.Command) error {
	cfg, err := ctx.shellConfig()
	if err != nil {
		return err
	}
	manager, err := shell.NewManager(cfg)
	if err != nil {
		return err
	}

	modified, err := manager.Remove()
	for _, rc := range modified {
		fmt.Fprintf(cmd.OutOrStdout(), "removed anvilup from %s\n", rc)
	}
	return err
}
