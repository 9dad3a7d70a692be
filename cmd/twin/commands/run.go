package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/twin/internal/app"
	"go.trai.ch/twin/internal/core/domain"
	"go.trai.ch/zerr"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <type> <operation> [args...]",
		Short: "Execute an operation of a configured type",
		Long: "Execute an operation of a configured type.\n\n" +
			"Each argument is decoded as a YAML value, so 42, true, [1, 2] and {a: 1}\n" +
			"arrive typed. Flags must precede the type name.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			if len(args) < 2 {
				return zerr.With(zerr.New("an operation name is required"), "type", args[0])
			}

			modeFlag, _ := cmd.Flags().GetString("mode")
			mode, err := domain.ParseMode(modeFlag)
			if err != nil {
				return err
			}
			repeat, _ := cmd.Flags().GetInt("repeat")
			noCache, _ := cmd.Flags().GetBool("no-cache")
			trace, _ := cmd.Flags().GetBool("trace")
			asJSON, _ := cmd.Flags().GetBool("json")

			return c.app.Run(cmd.Context(), args[0], args[1], args[2:], app.RunOptions{
				Mode:       mode,
				Repeat:     repeat,
				NoCache:    noCache,
				Trace:      trace,
				JSON:       asJSON,
				ConfigPath: c.configPath,
			})
		},
	}
	// Arguments such as -1 belong to the operation, not to twin.
	cmd.Flags().SetInterspersed(false)

	cmd.Flags().StringP("mode", "m", string(domain.ModeAdaptive), "Execution mode: adaptive or parallel")
	cmd.Flags().IntP("repeat", "r", 1, "Execute the operation this many times and report the last outcome")
	cmd.Flags().BoolP("no-cache", "n", false, "Bypass the result cache")
	cmd.Flags().BoolP("trace", "t", false, "Print a span trace of the execution to stderr")
	cmd.Flags().Bool("json", false, "Print the full outcome as JSON")
	return cmd
}
