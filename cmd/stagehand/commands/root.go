// Package commands implements the CLI commands for stagehand.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/stagehand/internal/adapters/telemetry" //nolint:depguard // Tracing is opt-in from the CLI
	"go.trai.ch/stagehand/internal/app"
	"go.trai.ch/stagehand/internal/build"
	"go.trai.ch/stagehand/internal/core/domain"
	"go.trai.ch/stagehand/internal/core/ports"
)

// CLI represents the command line interface for stagehand.
type CLI struct {
	app      Application
	logger   ports.Logger
	rootCmd  *cobra.Command
	shutdown func(context.Context) error

	configPath string
	jsonLogs   bool
	trace      bool
}

// Application represents the application logic interface.
type Application interface {
	Generate(ctx context.Context, opts app.GenerateOptions) (*domain.Pipeline, error)
	Check(ctx context.Context, configPath string) error
	Stages(ctx context.Context, configPath string) ([]domain.Stage, error)
}

// jsonSwitcher is implemented by loggers that can switch to JSON output.
type jsonSwitcher interface {
	SetJSON(enabled bool)
}

// New creates a new CLI instance with the given app and logger.
func New(a Application, log ports.Logger) *CLI {
	rootCmd := &cobra.Command{
		Use:           "stagehand",
		Short:         "Generate staged CI build pipelines from a variant matrix",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		logger:  log,
		rootCmd: rootCmd,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&c.configPath, "config", "c", domain.ConfigFileName, "Path to the configuration file or a directory containing it")
	pf.BoolVar(&c.jsonLogs, "json-logs", false, "Write logs as JSON")
	pf.BoolVar(&c.trace, "trace", false, "Log the duration of every generation phase")

	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		c.setup()
	}
	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, _ []string) error {
		return c.teardown(cmd.Context())
	}

	rootCmd.AddCommand(c.newGenerateCmd())
	rootCmd.AddCommand(c.newCheckCmd())
	rootCmd.AddCommand(c.newStagesCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

func (c *CLI) setup() {
	if s, ok := c.logger.(jsonSwitcher); ok {
		s.SetJSON(c.jsonLogs)
	}
	if c.trace && c.shutdown == nil {
		c.shutdown = telemetry.InstallBridge(c.logger)
	}
}

func (c *CLI) teardown(ctx context.Context) error {
	if c.shutdown == nil {
		return nil
	}
	shutdown := c.shutdown
	c.shutdown = nil
	return shutdown(ctx)
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	err := c.rootCmd.Execute()
	// PersistentPostRun is skipped when a command fails.
	if shutdownErr := c.teardown(ctx); err == nil {
		err = shutdownErr
	}
	return err
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
