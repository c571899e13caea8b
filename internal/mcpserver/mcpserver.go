// Package mcpserver exposes analysis, fetch and search as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"scoreahack/internal/server"
	"scoreahack/pkg/logger"
	"scoreahack/pkg/pipeline"
)

// Implementation identifies the server to MCP clients
var Implementation = &mcp.Implementation{Name: "scoreahack", Version: "1.0.0"}

type endpoint func(ctx context.Context, args json.RawMessage) (any, error)

// Tools registers the scoreahack tools on an MCP server
type Tools struct {
	analyzer server.Analyzer
	source   server.ProjectSource
	logger   logger.Logger
}

// New creates the tool set
func New(analyzer server.Analyzer, source server.ProjectSource, log logger.Logger) *Tools {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Tools{analyzer: analyzer, source: source, logger: log.WithField("component", "mcp")}
}

// NewServer creates an MCP server with every tool registered
func (t *Tools) NewServer() *mcp.Server {
	srv := mcp.NewServer(Implementation, nil)
	t.RegisterMCP(srv)
	return srv
}

// Serve runs the tools over stdin and stdout until ctx is cancelled or the
// client disconnects.
func (t *Tools) Serve(ctx context.Context) error {
	t.logger.Info("MCP server starting on stdio")
	return t.NewServer().Run(ctx, &mcp.StdioTransport{})
}

// RegisterMCP adds the tools to srv
func (t *Tools) RegisterMCP(srv *mcp.Server) {
	t.register(srv, &mcp.Tool{
		Name:        "analyze_project",
		Description: "Rate how original a hackathon project or idea is by comparing it with similar Devpost projects. Pass exactly one of id, url or idea.",
		InputSchema: inputSchema(map[string]any{
			"id":   map[string]any{"type": "string", "description": "Devpost project id, e.g. fridge-friend"},
			"url":  map[string]any{"type": "string", "description": "Devpost project URL"},
			"idea": map[string]any{"type": "string", "description": "Free-text idea, 300 to 1200 characters, no links"},
		}, nil),
	}, t.analyze)

	t.register(srv, &mcp.Tool{
		Name:        "search_projects",
		Description: "Search Devpost projects by keywords. Returns at most 20 candidates without descriptions.",
		InputSchema: inputSchema(map[string]any{
			"query": map[string]any{"type": "string", "description": "Space-separated keywords"},
		}, []string{"query"}),
	}, t.search)

	t.register(srv, &mcp.Tool{
		Name:        "fetch_project",
		Description: "Fetch and parse one Devpost project page.",
		InputSchema: inputSchema(map[string]any{
			"id": map[string]any{"type": "string", "description": "Devpost project id or URL"},
		}, []string{"id"}),
	}, t.fetch)
}

func (t *Tools) register(srv *mcp.Server, tool *mcp.Tool, fn endpoint) {
	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log := t.logger.WithField("tool", tool.Name)
		resp, err := fn(ctx, req.Params.Arguments)
		if err != nil {
			log.WithError(err).Warn("Tool call failed")
			var res mcp.CallToolResult
			res.SetError(err)
			return &res, nil
		}

		data, err := json.Marshal(resp)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("marshal: %w", err))
			return &res, nil
		}
		log.Debug("Tool call completed")
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	})
}

func (t *Tools) analyze(ctx context.Context, args json.RawMessage) (any, error) {
	var req server.AnalyzeRequest
	if err := decode(args, &req); err != nil {
		return nil, err
	}
	return server.Dispatch(ctx, t.analyzer, req)
}

type searchReq struct {
	Query string `json:"query"`
}

func (t *Tools) search(ctx context.Context, args json.RawMessage) (any, error) {
	var req searchReq
	if err := decode(args, &req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("query is required")
	}
	return t.source.Search(ctx, req.Query), nil
}

type fetchReq struct {
	ID string `json:"id"`
}

func (t *Tools) fetch(ctx context.Context, args json.RawMessage) (any, error) {
	var req fetchReq
	if err := decode(args, &req); err != nil {
		return nil, err
	}
	id, err := pipeline.ProjectID(req.ID)
	if err != nil {
		return nil, err
	}
	return t.source.FetchProject(ctx, id)
}

func decode(args json.RawMessage, v any) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}
