package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"scoreahack/pkg/auth"
	"scoreahack/pkg/config"
	"scoreahack/pkg/ui"
)

// defaultConfigPath is where 'config init' writes when --config is not given
const defaultConfigPath = ".scoreahack.yaml"

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage Score a Hack configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (SCOREAHACK_*, OPENAI_API_KEY, ...)
  - .env files
  - Configuration file (YAML or TOML)
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file with every option",
	Long: `Write the default configuration to .scoreahack.yaml, or to the path given
with --config. A .toml extension writes TOML instead of YAML.`,
	Args: cobra.NoArgs,
	Run:  runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  `Show the configuration after merging every source. The API key is masked.`,
	Args:  cobra.NoArgs,
	Run:   runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load a configuration file and check every value.

This command checks:
  - YAML or TOML syntax
  - Value types and ranges
  - Provider, retry strategy, rate limit algorithm and output format names
  - Log file accessibility`,
	Args: cobra.NoArgs,
	Run:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Fprintf(os.Stderr, "\nTo overwrite, first remove the existing file:\n  rm %s\n", configPath)
		os.Exit(1)
	}

	if err := config.DefaultConfig().Save(configPath); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Pick a model provider in the llm section")
	fmt.Println("2. Store its API key with 'scoreahack auth login'")
	fmt.Println("3. Run 'scoreahack config validate' to check the configuration")
	fmt.Println("4. Analyze a project with 'scoreahack analyze <project-id>'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	display := *cfg
	if display.LLM.APIKey != "" {
		display.LLM.APIKey = auth.MaskKey(display.LLM.APIKey)
	}

	data, err := yaml.Marshal(&display)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}
	fmt.Print(string(data))

	source := configFile
	if source == "" {
		source = config.FindConfigFile()
	}
	if source == "" {
		source = "(none found)"
	}
	ui.PrintInfo("\nConfiguration file", source)
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	path := configFile
	if path == "" {
		path = config.FindConfigFile()
	}
	if path == "" {
		ui.PrintError("No configuration file found", "Specify a file with --config flag")
		os.Exit(1)
	}

	ui.PrintInfo("Validating configuration", path)

	cfg, err := config.Load(path, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	var warnings, problems []string
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			problems = append(problems, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}
	if cfg.LLM.APIKey != "" {
		warnings = append(warnings, "API key is set in plain text; prefer 'scoreahack auth login'")
	}
	if cfg.Search.MaxResults > 20 {
		warnings = append(warnings, "max_results above 20 makes every analysis slower and costlier")
	}

	if len(problems) > 0 {
		ui.PrintError("Configuration has errors:")
		for _, p := range problems {
			fmt.Fprintf(os.Stderr, "  - %s\n", p)
		}
		os.Exit(1)
	}

	for _, w := range warnings {
		ui.PrintWarning(w)
	}

	ui.PrintSuccess("Configuration is valid")
	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Provider: %s (%s)\n", cfg.LLM.Provider, cfg.LLM.Model)
	fmt.Printf("  Search: up to %d results, page limit %d (exclusive)\n", cfg.Search.MaxResults, cfg.Search.PageLimit)
	fmt.Printf("  Concurrency: %d\n", cfg.Analysis.Concurrency)
	fmt.Printf("  Rate limit: %d requests/minute\n", cfg.RateLimit.RequestsPerMinute)
	fmt.Printf("  Max attempts: %d\n", cfg.Retry.MaxAttempts)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}
