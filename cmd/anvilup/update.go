package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anvil-lang/anvilup/internal/dist"
	"github.com/anvil-lang/anvilup/internal/selfupdate"
)

func newUpdateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "update [version]",
		Short: "Update toolchains installed as \"latest\" to the newest release",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			only := ""
			if len(args) == 1 {
				only = args[0]
			}
			if ctx.settings.AutoSelfUpdate {
				notifyNewerAnvilup(ctx, cmd)
			}

			info, err := ctx.detectPlatform(cmd.Context())
			if err != nil {
				return err
			}

			return ctx.withLock(cmd.Context(), func() error {
				installed, err := ctx.store().List()
				if err != nil {
					return err
				}

				manifest, err := ctx.distClient().Manifest(cmd.Context())
				if err != nil {
					return err
				}
				latest, err := manifest.Latest()
				if err != nil {
					return err
				}

				updated := false
				for _, inst := range installed {
					if only != "" && inst.Version != only {
						continue
					}
					if inst.Requested != dist.LatestAlias {
						continue
					}
					if !latest.NewerThan(inst.Version) {
						continue
					}
					newVersion, err := installToolchain(ctx, cmd, dist.LatestAlias, info.Target())
					if err != nil {
						return err
					}
					if ctx.settings.DefaultToolchain == inst.Version {
						if err := ctx.store().Link(newVersion); err != nil {
							return err
						}
						ctx.settings.DefaultToolchain = newVersion
						if err := ctx.saveSettings(); err != nil {
							return err
						}
					}
					// Retire the superseded install so the next update is a
					// no-op instead of re-reporting the same move.
					if err := ctx.store().Remove(inst.Version); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "updated anvil %s -> %s\n", inst.Version, newVersion)
					updated = true
				}
				if !updated {
					fmt.Fprintln(cmd.OutOrStdout(), "all toolchains are up to date")
				}
				return nil
			})
		},
	}
}

// notifyNewerAnvilup prints a hint when a newer anvilup is published. Any
// failure here is silent; updates must not break on a flaky check.
func notifyNewerAnvilup(ctx *commandContext, cmd *cobra.Command) {
	info, err := ctx.detectPlatform(cmd.Context())
	if err != nil {
		return
	}
	updater := selfupdate.NewUpdater(ctx.settings.EffectiveDistServer(), version)
	update, err := updater.Check(cmd.Context(), info.Target())
	if err != nil {
		if !errors.Is(err, selfupdate.ErrUpToDate) {
			ctx.log().Debug("self-update check failed", "error", err)
		}
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "anvilup %s is available; run `anvilup self-update` to install it\n", update.Version)
}
