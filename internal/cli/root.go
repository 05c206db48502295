package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

// Exit codes. The review command maps issue severity onto 1 and 2 via
// the --fail-on threshold so hooks and CI can gate on the result.
const (
	ExitClean         = 0
	ExitWarningIssues = 1
	ExitErrorIssues   = 2
	ExitConfigError   = 3
	ExitRuntimeError  = 4
)

var rootCmd = &cobra.Command{
	Use:   "redline",
	Short: "Incremental document review CLI",
	Long:  "Redline reviews LaTeX documents with style, spelling, grammar, and layout checkers plus an optional LLM pass, caching results so unchanged content is never rechecked.",
}

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(checkersCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitConfigError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitClean

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print redline version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "redline version %s\n", version)
	},
}
