package main

import (
	"context"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"scoreahack/pkg/logger"
	"scoreahack/pkg/models"
	"scoreahack/pkg/pipeline"
	"scoreahack/pkg/ui"
	"scoreahack/pkg/ui/tui"
)

var (
	ideaText      string
	ideaFile      string
	useTUI        bool
	notifications bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [project-id|url]",
	Short: "Rate the originality of a Devpost project or an idea",
	Long: `Analyze a Devpost project, or a free-text idea, against similar projects.

The report lists the structured summary, the search keywords, every similar
project ranked by overall similarity and the resulting originality score.`,
	Example: `  # Analyze by project id
  scoreahack analyze fridge-friend

  # Analyze by URL and save a JSON report
  scoreahack analyze https://devpost.com/software/fridge-friend -o report.json

  # Analyze an idea that has no Devpost page yet
  scoreahack analyze --idea-file idea.txt

  # Use a local model through ollama
  scoreahack analyze fridge-friend --provider ollama --model llama3`,
	Args: cobra.MaximumNArgs(1),
	Run:  runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&ideaText, "idea", "", "analyze this idea text instead of a project (300 to 1200 characters)")
	analyzeCmd.Flags().StringVar(&ideaFile, "idea-file", "", "read the idea text from a file")
	analyzeCmd.Flags().BoolVar(&useTUI, "tui", false, "show a live full-screen view while analyzing")
	analyzeCmd.Flags().BoolVar(&notifications, "notify", false, "send a desktop notification when the analysis finishes")
	analyzeCmd.Flags().Int("concurrency", 0, "number of candidates scored at once")
	addModelFlags(analyzeCmd)
	addSourceFlags(analyzeCmd)
	addOutputFlags(analyzeCmd)
}

// analysisInput is what the user asked to analyze
type analysisInput struct {
	label string
	id    string
	idea  string
}

func parseAnalysisInput(args []string, idea, file string) (analysisInput, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return analysisInput{}, err
		}
		idea = string(data)
	}

	hasIdea := strings.TrimSpace(idea) != ""
	switch {
	case hasIdea && len(args) > 0:
		return analysisInput{}, errUsage("give either a project or --idea, not both")
	case hasIdea:
		if err := pipeline.ValidateIdea(idea); err != nil {
			return analysisInput{}, err
		}
		return analysisInput{label: "your idea", idea: idea}, nil
	case len(args) == 0:
		return analysisInput{}, errUsage("a project id, URL or --idea is required")
	}

	id, err := pipeline.ProjectID(args[0])
	if err != nil {
		return analysisInput{}, err
	}
	return analysisInput{label: id, id: id}, nil
}

func runAnalyze(cmd *cobra.Command, args []string) {
	in, err := parseAnalysisInput(args, ideaText, ideaFile)
	if err != nil {
		ui.PrintError("Invalid input", err.Error())
		os.Exit(1)
	}

	cfg := loadConfig(cmd, true)
	log := setupLogger(cfg)

	ctx, stop := signalContext()
	defer stop()

	svc := newService(ctx, cfg, log)
	defer svc.Close()

	ui.PrintInfo("Analyzing", in.label)
	ui.PrintInfo("Model", svc.Model.Provider()+"/"+svc.Model.Model())

	var notifier pipeline.Observer
	if notifications {
		notifier = ui.NewNotifier(in.label)
	}

	run := func(ctx context.Context) (*models.Analysis, error) {
		if in.idea != "" {
			return svc.AnalyzeText(ctx, in.idea)
		}
		return svc.Analyze(ctx, in.id)
	}

	var result *models.Analysis
	if useTUI && !quiet && stderrIsTerminal() {
		result, err = analyzeWithTUI(ctx, svc, in.label, notifier, run, log)
	} else {
		var progress pipeline.Observer
		if !quiet {
			progress = ui.NewProgressDisplay(ui.Output(), in.label, verbose)
		}
		svc.SetObserver(ui.Observers(progress, notifier))
		result, err = run(ctx)
	}

	if err != nil {
		logger.WithError(err).WithField("input", in.label).Error("Analysis failed")
		ui.PrintError("Analysis failed", err.Error())
		os.Exit(1)
	}

	if err := writeReport(cfg, result); err != nil {
		ui.PrintError("Failed to write report", err.Error())
		os.Exit(1)
	}
}

// analyzeWithTUI runs the analysis in the background while the live view
// owns the terminal. Quitting the view cancels the run.
func analyzeWithTUI(ctx context.Context, svc *pipeline.Service, label string, notifier pipeline.Observer,
	run func(context.Context) (*models.Analysis, error), log logger.Logger) (*models.Analysis, error) {

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	view := tui.New(label, cancel, tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	svc.SetObserver(ui.Observers(view, notifier))

	type outcome struct {
		result *models.Analysis
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := run(ctx)
		done <- outcome{result, err}
	}()

	if err := view.Run(); err != nil {
		log.WithError(err).Debug("Live view stopped")
	}
	out := <-done
	return out.result, out.err
}

type errUsage string

func (e errUsage) Error() string { return string(e) }
