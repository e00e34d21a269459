package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/anvil-lang/anvilup/internal/dist"
	"github.com/anvil-lang/anvilup/internal/shell"
	"github.com/anvil-lang/anvilup/internal/toolchain"
)

func newInstallCommand(ctx *commandContext) *cobra.Command {
	var noModifyPath bool

	cmd := &cobra.Command{
		Use:   "install [version]",
		Short: "Download and install an Anvil toolchain",
		Long: `Download, verify, and install an Anvil toolchain.

With no argument the latest published version is installed. The first
installed toolchain becomes the default.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := dist.LatestAlias
			if len(args) == 1 {
				spec = args[0]
			}
			return runInstall(ctx, cmd, spec, noModifyPath)
		},
	}

	cmd.Flags().BoolVar(&noModifyPath, "no-modify-path", false, "Skip shell PATH setup")
	return cmd
}

func runInstall(ctx *commandContext, cmd *cobra.Command, spec string, noModifyPath bool) error {
	info, err := ctx.detectPlatform(cmd.Context())
	if err != nil {
		return err
	}

	err = ctx.withLock(cmd.Context(), func() error {
		version, err := installToolchain(ctx, cmd, spec, info.Target())
		if err != nil {
			return err
		}

		if ctx.settings.DefaultToolchain == "" {
			if err := ctx.store().Link(version); err != nil {
				return err
			}
			ctx.settings.DefaultToolchain = version
			if err := ctx.saveSettings(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "anvil %s is now the default toolchain\n", version)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if noModifyPath {
		return nil
	}
	return setupShellIntegration(ctx, cmd)
}

// installToolchain resolves, downloads, verifies, and installs one
// toolchain. Returns the concrete version installed.
func installToolchain(ctx *commandContext, cmd *cobra.Command, spec, target string) (string, error) {
	cmdCtx := cmd.Context()
	errOut := cmd.ErrOrStderr()

	client := ctx.distClient()
	if isTerminal(errOut) {
		client.Downloader().Progress = errOut
	}

	manifest, err := client.Manifest(cmdCtx)
	if err != nil {
		return "", err
	}
	release, err := manifest.Resolve(spec)
	if err != nil {
		return "", err
	}
	artifact, err := release.ArtifactFor(target)
	if err != nil {
		return "", err
	}

	store := ctx.store()
	if store.IsInstalled(release.Version) {
		fmt.Fprintf(errOut, "anvil %s is already installed\n", release.Version)
		return release.Version, nil
	}

	ctx.log().Debug("installing toolchain", "version", release.Version, "target", target)

	archivePath, sigPath, err := client.FetchArtifact(cmdCtx, release, target)
	if err != nil {
		return "", err
	}
	method, err := ctx.verifier().VerifyArtifact(archivePath, artifact, sigPath)
	if err != nil {
		return "", err
	}

	staging, err := stageArchive(ctx.root, archivePath)
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(staging)

	root, err := extractedRoot(staging)
	if err != nil {
		return "", err
	}
	_, err = store.Install(root, toolchain.Record{
		Version:   release.Version,
		Target:    target,
		Requested: spec,
		Verified:  method.String(),
	})
	if err != nil {
		return "", err
	}

	fmt.Fprintf(errOut, "installed anvil %s (%s, verified: %s)\n", release.Version, target, method)
	return release.Version, nil
}

// stageArchive extracts an archive into a fresh staging directory under the
// anvilup root so the final install is a same-filesystem rename.
func stageArchive(root, archivePath string) (string, error) {
	tmpRoot := filepath.Join(root, "tmp")
	if err := os.MkdirAll(tmpRoot, 0o755); err != nil {
		return "", fmt.Errorf("create staging area: %w", err)
	}
	staging, err := os.MkdirTemp(tmpRoot, "install-")
	if err != nil {
		return "", fmt.Errorf("create staging directory: %w", err)
	}
	if err := dist.NewExtractor().ExtractTarGz(archivePath, staging); err != nil {
		os.RemoveAll(staging)
		return "", err
	}
	return staging, nil
}

// extractedRoot locates the toolchain tree inside a staging directory.
// Release archives wrap their contents in one top-level directory; accept a
// bare tree as well.
func extractedRoot(staging string) (string, error) {
	entries, err := os.ReadDir(staging)
	if err != nil {
		return "", err
	}
	if len(entries) == 1 && entries[0].IsDir() {
		return filepath.Join(staging, entries[0].Name()), nil
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("archive is empty")
	}
	return staging, nil
}

func setupShellIntegration(ctx *commandContext, cmd *cobra.Command) error {
	cfg, err := ctx.shellConfig()
	if err != nil {
		return err
	}
	manager, err := shell.NewManager(cfg)
	if err != nil {
		return err
	}

	results, err := manager.Setup(shell.SetupOptions{Backup: true})
	for _, res := range results {
		if res.Added {
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s (%s)\n", res.RCFile, res.Shell)
		}
	}
	if err != nil {
		return err
	}

	for _, res := range results {
		if res.Added {
			fmt.Fprintln(cmd.OutOrStdout(), "restart your shell or source the updated files to pick up anvil")
			break
		}
	}
	return nil
}
