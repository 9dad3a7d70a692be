// Package commands implements the CLI commands for twin.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/twin/internal/app"
	"go.trai.ch/twin/internal/build"
)

// CLI represents the command line interface for twin.
type CLI struct {
	app     Application
	rootCmd *cobra.Command

	configPath string
}

// Application represents the application logic interface.
type Application interface {
	ConfigureLogging(format string, verbose bool)
	Run(ctx context.Context, typeName, op string, args []string, opts app.RunOptions) error
	Metrics(ctx context.Context, configPath string, asJSON bool) error
	ResetMetrics(ctx context.Context, configPath string) error
	Clean(ctx context.Context, configPath string) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "twin",
		Short:         "Run and compare two implementations of the same operations",
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
		rootCmd: rootCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("log-format", "auto", "Log format: auto, pretty, or json")
	flags.BoolP("verbose", "v", false, "Enable debug logging")
	flags.StringVarP(&c.configPath, "config", "c", "", "Path to the twinfile (default: discover twin.yaml upwards)")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		format, _ := cmd.Flags().GetString("log-format")
		verbose, _ := cmd.Flags().GetBool("verbose")
		c.app.ConfigureLogging(format, verbose)
	}

	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newMetricsCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
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
