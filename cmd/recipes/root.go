package main

import (
	"context"
	"errors"
	"io"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/recipelib/recipes-go/internal/app"
	"github.com/recipelib/recipes-go/internal/config"
	"github.com/recipelib/recipes-go/internal/logging"
)

// cli carries what the persistent pre-run resolves for every subcommand.
type cli struct {
	out        io.Writer
	configPath string
	logLevel   string

	cfg     config.Config
	log     *zap.Logger
	appOpts []app.Option
}

func newRootCmd(out io.Writer, opts ...app.Option) *cobra.Command {
	c := &cli{out: out, appOpts: opts}

	root := &cobra.Command{
		Use:   "recipes",
		Short: "Manage your recipes from the terminal",
		Long: `recipes talks to the recipe API on your behalf.

Log in once and the access token is kept in the configured session backend
(file, sqlite, mysql or memory) until you log out or the server rejects it.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
	}
	root.SetOut(out)

	root.PersistentFlags().StringVar(&c.configPath, "config", "recipes.yaml", "path to YAML config file")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	root.AddCommand(
		c.registerCmd(),
		c.loginCmd(),
		c.logoutCmd(),
		c.listCmd(),
		c.getCmd(),
		c.createCmd(),
		c.whoamiCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}

	c.cfg = cfg
	c.log = log.With(zap.String("env", cfg.Env))
	return nil
}

// open builds the client for one command. The caller closes it.
func (c *cli) open(ctx context.Context) (*app.App, error) {
	return app.New(ctx, c.cfg, c.log, c.appOpts...)
}
