package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"scoreahack/pkg/auth"
	"scoreahack/pkg/config"
	"scoreahack/pkg/devpost"
	"scoreahack/pkg/logger"
	"scoreahack/pkg/pipeline"
	"scoreahack/pkg/report"
	"scoreahack/pkg/ui"
)

// flagKeys are the flags config.MergeCommandLineFlags understands
var (
	stringFlagKeys = []string{"provider", "model", "api-key", "llm-base-url", "devpost-url", "format", "output", "addr", "log-level", "log-file"}
	intFlagKeys    = []string{"concurrency", "max-results"}
)

// addModelFlags registers the flags shared by commands that call the model
func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().String("provider", "", "model provider (openai, ollama, claude, gemini)")
	cmd.Flags().String("model", "", "model name")
	cmd.Flags().String("api-key", "", "model API key (prefer 'scoreahack auth login')")
	cmd.Flags().String("llm-base-url", "", "override the model endpoint, e.g. http://localhost:11434 for ollama")
}

// addSourceFlags registers the Devpost flags
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("devpost-url", "", "Devpost base URL")
	cmd.Flags().Int("max-results", 0, "maximum number of search results")
}

// addOutputFlags registers the report flags
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "", "output format (text, json, yaml)")
	cmd.Flags().StringP("output", "o", "", "write the report to this file instead of stdout")
}

// collectFlags gathers every changed flag into the map config.Load expects
func collectFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	fs := cmd.Flags()
	for _, key := range stringFlagKeys {
		if f := fs.Lookup(key); f != nil && f.Changed {
			flags[key] = f.Value.String()
		}
	}
	for _, key := range intFlagKeys {
		if f := fs.Lookup(key); f != nil && f.Changed {
			if v, err := fs.GetInt(key); err == nil {
				flags[key] = v
			}
		}
	}
	return flags
}

// loadConfig loads configuration or exits. Interactive commands keep logs to
// warnings unless a level was asked for, so the progress view stays readable.
func loadConfig(cmd *cobra.Command, interactive bool) *config.Config {
	cfg, err := config.Load(configFile, collectFlags(cmd))
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	levelSet := cmd.Flags().Changed("log-level") || os.Getenv(config.EnvPrefix+"LOG_LEVEL") != ""
	switch {
	case levelSet:
	case verbose:
		cfg.Logging.Level = "info"
	case interactive:
		cfg.Logging.Level = "warn"
	}
	return cfg
}

// setupLogger initialises the global logger from cfg or exits
func setupLogger(cfg *config.Config) logger.Logger {
	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}
	return logger.GetLogger()
}

// resolveCredentials fills the model API key from the credential stores
func resolveCredentials(cfg *config.Config, log logger.Logger) {
	if cfg.LLM.APIKey != "" {
		return
	}
	manager, err := auth.NewManager()
	if err != nil {
		log.WithError(err).Warn("Credential stores unavailable")
		return
	}
	if manager.ResolveAPIKey(&cfg.LLM) {
		log.WithField("provider", cfg.LLM.Provider).Debug("Using stored API key")
	}
}

// newService wires the full pipeline or exits
func newService(ctx context.Context, cfg *config.Config, log logger.Logger) *pipeline.Service {
	resolveCredentials(cfg, log)
	svc, err := pipeline.NewFromConfig(ctx, cfg, log)
	if err != nil {
		ui.PrintError("Failed to initialize analyzer", err.Error())
		os.Exit(1)
	}
	return svc
}

// newDevpostClient builds a client for commands that never call the model
func newDevpostClient(cfg *config.Config, log logger.Logger) *devpost.Client {
	return devpost.NewClient(cfg.Devpost, cfg.Search, log)
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// writeReport renders v to the configured file, or stdout
func writeReport(cfg *config.Config, v interface{}) error {
	if cfg.Output.File != "" {
		r, err := report.NewRenderer(report.FormatForPath(cfg.Output.File, cfg.Output.Format), false)
		if err != nil {
			return err
		}
		if err := r.WriteFile(cfg.Output.File, v); err != nil {
			return err
		}
		ui.PrintSuccess("Report written to " + cfg.Output.File)
		return nil
	}

	color := !noColor && os.Getenv("NO_COLOR") == "" && term.IsTerminal(int(os.Stdout.Fd()))
	r, err := report.NewRenderer(cfg.Output.Format, color)
	if err != nil {
		return err
	}
	return r.Render(os.Stdout, v)
}

// stderrIsTerminal reports whether live progress can be drawn
func stderrIsTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}
