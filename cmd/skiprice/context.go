package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"skiprice/internal/config"
	"skiprice/internal/ledger"
	"skiprice/internal/logging"
	"skiprice/internal/pipeline"
	"skiprice/internal/safesave"
)

type rootFlags struct {
	config    string
	yes       bool
	noClobber bool
}

type commandContext struct {
	flags *rootFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(flags *rootFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// overwritePolicy resolves the command line flags against the configured policy.
func (c *commandContext) overwritePolicy(cfg *config.Config) string {
	switch {
	case c.flags.yes:
		return safesave.PolicyAlways
	case c.flags.noClobber:
		return safesave.PolicyNever
	default:
		return cfg.Save.Overwrite
	}
}

func (c *commandContext) withLedger(fn func(*ledger.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.Ledger.Enabled {
		return errors.New("save ledger is disabled (set ledger.enabled = true)")
	}
	store, err := ledger.Open(cfg.Ledger.Path)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer store.Close()
	return fn(store)
}

// withRunner wires the saver, prompt, ledger, and logger for a stage command.
func (c *commandContext) withRunner(cmd *cobra.Command, fn func(*pipeline.Runner) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := logging.NewFromConfig(cfg, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	confirmer, err := safesave.PolicyConfirmer(c.overwritePolicy(cfg), cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	opts := []safesave.Option{
		safesave.WithConfirmer(confirmer),
		safesave.WithLogger(logger),
	}
	if cfg.Ledger.Enabled {
		store, err := ledger.Open(cfg.Ledger.Path)
		if err != nil {
			return fmt.Errorf("open ledger: %w", err)
		}
		defer store.Close()
		opts = append(opts, safesave.WithRecorder(store))
	}

	runner, err := pipeline.NewRunner(cfg, safesave.New(opts...), logger)
	if err != nil {
		return err
	}
	return fn(runner)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// describeError adds a next step to errors the user can act on.
func describeError(w io.Writer, err error) {
	switch {
	case errors.Is(err, pipeline.ErrLocked):
		fmt.Fprintln(w, "Another skiprice command is running in this workspace; wait for it to finish.")
	case errors.Is(err, pipeline.ErrNotFound):
		fmt.Fprintln(w, "Run the earlier stages first, or use `skiprice run` to execute the whole pipeline.")
	}
}
