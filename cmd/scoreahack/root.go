package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"scoreahack/pkg/logger"
	"scoreahack/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	logFile    string
	noColor    bool
	quiet      bool
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scoreahack",
	Short: "Rate how original a hackathon project is",
	Long: `Score a Hack compares a hackathon project or idea with similar projects on
Devpost and rates its originality.

For each analysis it:
  - Fetches the project page or takes your idea text
  - Summarises it and extracts search keywords with a language model
  - Searches Devpost for up to 20 similar projects
  - Scores each one on theme, approach and target user
  - Ranks them and derives a 0 to 100 originality score

The model provider is configurable (openai, ollama, claude, gemini). Store an
API key once with 'scoreahack auth login'.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ui.SetColor(!noColor)
		ui.SetQuiet(quiet)

		switch cmd.Name() {
		case "version", "help", "mcp", "show":
		default:
			if !quiet && verbose {
				ui.PrintLogo()
			}
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	logger.Version = version

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.scoreahack.yaml or ~/.config/scoreahack/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write JSON logs to this file")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors and the report")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show the logo, info logs and per-candidate progress")

	rootCmd.SetVersionTemplate(`Score a Hack {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
