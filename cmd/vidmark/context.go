package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/vidmark/internal/app"
	"github.com/MrSnakeDoc/vidmark/internal/config"
	"github.com/MrSnakeDoc/vidmark/internal/logger"
)

// commandContext opens the application lazily, once per invocation.
type commandContext struct {
	envFileFlag *string

	app    *app.App
	logger logger.Logger
}

func newCommandContext(envFileFlag *string) *commandContext {
	return &commandContext{envFileFlag: envFileFlag}
}

// ensureApp loads the configuration and opens the backends. quiet raises the
// log level to warn unless debug logging was asked for, so command output is
// not drowned in startup logs.
func (c *commandContext) ensureApp(cmd *cobra.Command, quiet bool) (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}

	if c.envFileFlag != nil && strings.TrimSpace(*c.envFileFlag) != "" {
		if err := os.Setenv("VIDMARK_ENV_FILE", strings.TrimSpace(*c.envFileFlag)); err != nil {
			return nil, err
		}
	}
	cfg := config.Load()

	level := cfg.LogLevel
	if quiet && level != "debug" {
		level = "warn"
	}
	c.logger = logger.New(level, cfg.PrettyLog)

	a, err := app.Open(cmd.Context(), cfg, c.logger)
	if err != nil {
		return nil, err
	}
	c.app = a
	return a, nil
}

func (c *commandContext) close() error {
	if c.logger != nil {
		_ = c.logger.Sync()
	}
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}
