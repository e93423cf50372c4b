package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/metcalfc/trustfall/internal/config"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// commandContext loads the configuration once per invocation.
type commandContext struct {
	configFlag *string
	assetsFlag *string

	once sync.Once
	cfg  *config.Config
	path string
	err  error
}

func (c *commandContext) config() (*config.Config, error) {
	c.once.Do(func() {
		cfg, path, _, err := config.Load(strings.TrimSpace(*c.configFlag))
		if err != nil {
			c.err = fmt.Errorf("load config: %w", err)
			return
		}
		if dir := strings.TrimSpace(*c.assetsFlag); dir != "" {
			cfg.Site.AssetsDir = dir
		}
		c.cfg, c.path = cfg, path
	})
	return c.cfg, c.err
}

// logger builds the program logger. The terminal player owns the screen, so
// it passes console=false and logs to the configured file only.
func (c *commandContext) logger(console bool) (*zap.Logger, func(), error) {
	cfg, err := c.config()
	if err != nil {
		return nil, nil, err
	}
	return cfg.Logging.Prepare(console)
}

func newRootCommand() *cobra.Command {
	var configFlag, assetsFlag string
	ctx := &commandContext{configFlag: &configFlag, assetsFlag: &assetsFlag}

	play := newPlayCommand(ctx)
	rootCmd := &cobra.Command{
		Use:   "trustfall",
		Short: "Trustfall: Vault Wars, an interactive story",
		Long: `Trustfall tells the story of Earth-0 one typed line at a time, then asks
which faction you stand with. Run without a command to play.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          play.RunE,
	}
	rootCmd.Flags().AddFlagSet(play.Flags())

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&assetsFlag, "assets", "a", "", "Directory holding images/ and audio/ (overrides site.assets_dir)")

	rootCmd.AddCommand(play)
	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newSlidesCommand(ctx))
	rootCmd.AddCommand(newTracksCommand())
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "trustfall %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
