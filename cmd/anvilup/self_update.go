package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anvil-lang/anvilup/internal/selfupdate"
)

func newSelfUpdateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "self-update",
		Short: "Update anvilup itself to the latest release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := ctx.detectPlatform(cmd.Context())
			if err != nil {
				return err
			}

			updater := selfupdate.NewUpdater(ctx.settings.EffectiveDistServer(), version)
			update, err := updater.Check(cmd.Context(), info.Target())
			if err != nil {
				if errors.Is(err, selfupdate.ErrUpToDate) {
					fmt.Fprintf(cmd.OutOrStdout(), "anvilup %s is up to date\n", version)
					return nil
				}
				return err
			}

			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("locate running binary: %w", err)
			}
			if err := updater.Apply(cmd.Context(), update, exe); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated anvilup %s -> %s\n", version, update.Version)
			return nil
		},
	}
}
