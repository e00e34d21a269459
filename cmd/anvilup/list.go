package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installed Anvil toolchains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if ctx.verbose() {
				if info, err := ctx.detectPlatform(cmd.Context()); err == nil {
					fmt.Fprintf(out, "host: %s\n", info)
				}
			}

			installed, err := ctx.store().List()
			if err != nil {
				return err
			}
			if len(installed) == 0 {
				fmt.Fprintln(out, "no toolchains installed; run `anvilup install` to get started")
				return nil
			}

			if !isTerminal(out) {
				for _, inst := range installed {
					marker := ""
					if inst.Version == ctx.settings.DefaultToolchain {
						marker = " (default)"
					}
					fmt.Fprintf(out, "%s%s\n", inst.Version, marker)
				}
				return nil
			}

			rows := make([][]string, 0, len(installed))
			for _, inst := range installed {
				marker := ""
				if inst.Version == ctx.settings.DefaultToolchain {
					marker = "*"
				}
				rows = append(rows, []string{
					marker,
					inst.Version,
					inst.Target,
					humanize.Time(inst.InstalledAt),
					inst.Verified,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"", "Version", "Target", "Installed", "Verified"},
				rows,
			))
			return nil
		},
	}
}

func newListAvailableCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list-available",
		Short: "List toolchain versions published on the dist server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, err := ctx.distClient().Manifest(cmd.Context())
			if err != nil {
				return err
			}

			store := ctx.store()
			out := cmd.OutOrStdout()
			if !isTerminal(out) {
				for _, release := range manifest.Releases {
					fmt.Fprintln(out, release.Version)
				}
				return nil
			}

			rows := make([][]string, 0, len(manifest.Releases))
			for _, release := range manifest.Releases {
				status := ""
				switch {
				case release.Version == ctx.settings.DefaultToolchain:
					status = "default"
				case store.IsInstalled(release.Version):
					status = "installed"
				}
				rows = append(rows, []string{release.Version, release.Date, status})
			}
			fmt.Fprintln(out, renderTable([]string{"Version", "Released", ""}, rows))
			return nil
		},
	}
}
