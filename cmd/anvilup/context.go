package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/anvil-lang/anvilup/internal/config"
	"github.com/anvil-lang/anvilup/internal/dist"
	"github.com/anvil-lang/anvilup/internal/logging"
	"github.com/anvil-lang/anvilup/internal/platform"
	"github.com/anvil-lang/anvilup/internal/shell"
	"github.com/anvil-lang/anvilup/internal/toolchain"
	"github.com/anvil-lang/anvilup/internal/transaction"
)

// commandContext carries lazily constructed state shared by all
// subcommands. Settings load exactly once, before the first command body
// runs, so a broken settings file fails every command the same way.
type commandContext struct {
	verboseFlag *bool

	settingsOnce sync.Once
	root         string
	settings     *config.Settings
	settingsErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(verboseFlag *bool) *commandContext {
	return &commandContext{verboseFlag: verboseFlag}
}

func (c *commandContext) ensureSettings() (*config.Settings, error) {
	c.settingsOnce.Do(func() {
		root, err := config.Root()
		if err != nil {
			c.settingsErr = err
			return
		}
		settings, err := config.Load(root)
		if err != nil {
			c.settingsErr = err
			return
		}
		c.root = root
		c.settings = settings
	})
	return c.settings, c.settingsErr
}

func (c *commandContext) verbose() bool {
	return c.verboseFlag != nil && *c.verboseFlag
}

func (c *commandContext) log() *slog.Logger {
	c.loggerOnce.Do(func() {
		c.logger = logging.New(c.verbose())
	})
	return c.logger
}

func (c *commandContext) store() *toolchain.Store {
	return toolchain.NewStore(c.root)
}

func (c *commandContext) distClient() *dist.Client {
	return dist.NewClient(c.settings.EffectiveDistServer(), filepath.Join(c.root, "cache"))
}

func (c *commandContext) verifier() *dist.Verifier {
	return dist.NewVerifier(filepath.Join(c.root, "keyrings"))
}

func (c *commandContext) shellConfig() (shell.Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return shell.Config{}, err
	}
	return shell.Config{Home: home, Root: c.root}, nil
}

func (c *commandContext) detectPlatform(ctx context.Context) (*platform.Info, error) {
	return platform.NewDetector().Detect(ctx)
}

// withLock runs fn while holding the root-wide operation lock. Commands
// that mutate the store or settings go through here.
func (c *commandContext) withLock(ctx context.Context, fn func() error) error {
	lock, err := transaction.Acquire(ctx, c.root)
	if err != nil {
		return err
	}
	defer lock.Release()
	return fn()
}

// saveSettings persists the in-memory settings back to disk.
func (c *commandContext) saveSettings() error {
	return c.settings.Save(c.root)
}
