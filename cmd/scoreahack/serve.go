package main

import (
	"os"

	"github.com/spf13/cobra"

	"scoreahack/internal/mcpserver"
	"scoreahack/internal/server"
	"scoreahack/pkg/logger"
	"scoreahack/pkg/ui"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analyzer over HTTP",
	Long: `Start a JSON HTTP API.

Endpoints:
  POST /api/analyze        {"id": "..."} | {"url": "..."} | {"idea": "..."}
  GET  /api/projects/{id}  scraped project page
  GET  /api/search?q=...   search candidates
  GET  /healthz            liveness`,
	Example: `  scoreahack serve --addr :9090`,
	Args:    cobra.NoArgs,
	Run:     runServe,
}

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the analyzer as MCP tools over stdio",
	Long: `Run a Model Context Protocol server on stdin and stdout exposing the
analyze_project, search_projects and fetch_project tools.

Logs go to stderr; stdout carries only protocol messages.`,
	Args: cobra.NoArgs,
	Run:  runMCP,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)

	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	serveCmd.Flags().Int("concurrency", 0, "number of candidates scored at once per analysis")
	addModelFlags(serveCmd)
	addSourceFlags(serveCmd)

	mcpCmd.Flags().Int("concurrency", 0, "number of candidates scored at once per analysis")
	addModelFlags(mcpCmd)
	addSourceFlags(mcpCmd)
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd, false)
	log := setupLogger(cfg)

	ctx, stop := signalContext()
	defer stop()

	svc := newService(ctx, cfg, log)
	defer svc.Close()

	logger.LogComponentStart("server", map[string]interface{}{
		"addr":     cfg.Server.Addr,
		"provider": svc.Model.Provider(),
		"model":    svc.Model.Model(),
	})
	ui.PrintInfo("Listening", cfg.Server.Addr)

	srv := server.New(cfg.Server, svc, svc.Devpost, log)
	if err := srv.Start(ctx); err != nil {
		ui.PrintError("Server failed", err.Error())
		os.Exit(1)
	}
	logger.LogComponentStop("server", "shutdown")
}

func runMCP(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd, false)
	log := setupLogger(cfg)

	ctx, stop := signalContext()
	defer stop()

	svc := newService(ctx, cfg, log)
	defer svc.Close()

	tools := mcpserver.New(svc, svc.Devpost, log)
	if err := tools.Serve(ctx); err != nil && ctx.Err() == nil {
		log.WithError(err).Error("MCP server stopped")
		os.Exit(1)
	}
}
