package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anvil-lang/anvilup/internal/toolchain"
)

func newUseCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "use <version>",
		Short: "Select the default Anvil toolchain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version := args[0]
			return ctx.withLock(cmd.Context(), func() error {
				store := ctx.store()
				if _, err := store.Get(version); err != nil {
					if errors.Is(err, toolchain.ErrNotInstalled) {
						return fmt.Errorf("anvil %s is not installed; run `anvilup install %s` first", version, version)
					}
					return err
				}
				if err := store.Link(version); err != nil {
					return err
				}
				ctx.settings.DefaultToolchain = version
				if err := ctx.saveSettings(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "anvil %s is now the default toolchain\n", version)
				return nil
			})
		},
	}
}
