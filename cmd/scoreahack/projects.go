package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"scoreahack/pkg/analysis"
	"scoreahack/pkg/pipeline"
	"scoreahack/pkg/ui"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch <project-id|url>",
	Short: "Fetch and parse one Devpost project page",
	Long: `Fetch a Devpost project page and print what was scraped from it: title,
tagline, images, description, built-with tags, links and team members.

No model is called, so no API key is needed.`,
	Example: `  scoreahack fetch fridge-friend
  scoreahack fetch https://devpost.com/software/fridge-friend -f json`,
	Args: cobra.ExactArgs(1),
	Run:  runFetch,
}

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <keywords...>",
	Short: "Search Devpost projects by keywords",
	Long: `Run the same paginated search the analyzer uses to find candidates.

Pages are requested until enough results are collected, a page comes back
empty or fails, or the page limit is reached.`,
	Example: `  scoreahack search smart fridge recipes
  scoreahack search "food waste" --max-results 5 -f yaml`,
	Args: cobra.MinimumNArgs(1),
	Run:  runSearch,
}

// keywordsCmd represents the keywords command
var keywordsCmd = &cobra.Command{
	Use:   "keywords [project-id|url]",
	Short: "Extract search keywords from a project or idea",
	Long: `Ask the model for the search keywords the analyzer would use. Prints
"None" when the description is too vague to search.`,
	Example: `  scoreahack keywords fridge-friend
  scoreahack keywords --idea-file idea.txt`,
	Args: cobra.MaximumNArgs(1),
	Run:  runKeywords,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(keywordsCmd)

	addSourceFlags(fetchCmd)
	addOutputFlags(fetchCmd)

	addSourceFlags(searchCmd)
	addOutputFlags(searchCmd)

	keywordsCmd.Flags().StringVar(&ideaText, "idea", "", "extract keywords from this idea text")
	keywordsCmd.Flags().StringVar(&ideaFile, "idea-file", "", "read the idea text from a file")
	addModelFlags(keywordsCmd)
	addSourceFlags(keywordsCmd)
	addOutputFlags(keywordsCmd)
}

func runFetch(cmd *cobra.Command, args []string) {
	id, err := pipeline.ProjectID(args[0])
	if err != nil {
		ui.PrintError("Invalid input", err.Error())
		os.Exit(1)
	}

	cfg := loadConfig(cmd, true)
	log := setupLogger(cfg)
	ctx, stop := signalContext()
	defer stop()

	project, err := newDevpostClient(cfg, log).FetchProject(ctx, id)
	if err != nil {
		ui.PrintError("Failed to fetch project", err.Error())
		os.Exit(1)
	}

	if err := writeReport(cfg, project); err != nil {
		ui.PrintError("Failed to write report", err.Error())
		os.Exit(1)
	}
}

func runSearch(cmd *cobra.Command, args []string) {
	query := strings.Join(args, " ")

	cfg := loadConfig(cmd, true)
	log := setupLogger(cfg)
	ctx, stop := signalContext()
	defer stop()

	ui.PrintInfo("Searching", query)
	candidates := newDevpostClient(cfg, log).Search(ctx, query)
	if len(candidates) == 0 {
		ui.PrintWarning("No projects found")
	}

	if err := writeReport(cfg, candidates); err != nil {
		ui.PrintError("Failed to write report", err.Error())
		os.Exit(1)
	}
}

func runKeywords(cmd *cobra.Command, args []string) {
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

	description := in.idea
	if in.id != "" {
		project, err := svc.Devpost.FetchProject(ctx, in.id)
		if err != nil {
			ui.PrintError("Failed to fetch project", err.Error())
			os.Exit(1)
		}
		description = project.Description
	}
	if strings.TrimSpace(description) == "" {
		ui.PrintError("Project has no description", in.label)
		os.Exit(1)
	}

	keywords := svc.Keywords.Extract(ctx, description)
	if analysis.IsNone(keywords) {
		ui.PrintWarning("The description is too vague to search")
	}

	if err := writeReport(cfg, keywords); err != nil {
		ui.PrintError("Failed to write report", err.Error())
		os.Exit(1)
	}
}
