package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docmcp/internal/config"
	"docmcp/internal/logger"
)

const serverName = "docmcp"

// version is overridden at build time with -ldflags "-X docmcp/internal/cli.version=...".
var version = "dev"

type rootOptions struct {
	driver    string
	transport string
}

// load reads the environment configuration and applies command line overrides.
func (o *rootOptions) load() (*config.AppConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if o.driver != "" {
		cfg.Driver = o.driver
	}
	if o.transport != "" {
		cfg.Transport = o.transport
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.AppConfig, output string) (*zap.Logger, error) {
	log, err := logger.New(logger.Options{
		Development: cfg.IsDevelopment(),
		Level:       cfg.LogLevel,
		Output:      output,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// NewRootCmd builds the docmcp command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "docmcp",
		Short: "MCP document storage server",
		Example: `docmcp serve --transport http
docmcp serve --transport stdio --driver memory
docmcp migrate --driver postgres
docmcp scan ./docs
docmcp seed ./docs --documents`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.driver, "driver", "", "document store driver: mongo, postgres or memory (overrides DOCSTORE_DRIVER)")

	cmd.AddCommand(serveCmd(opts))
	cmd.AddCommand(migrateCmd(opts))
	cmd.AddCommand(scanCmd(opts))
	cmd.AddCommand(seedCmd(opts))

	cmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	cmd.CompletionOptions.HiddenDefaultCmd = true
	return cmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
