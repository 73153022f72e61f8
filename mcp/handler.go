package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/janvogt/notion-qa-mcp/index"
	"github.com/janvogt/notion-qa-mcp/service"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const Version = "0.1.0"

type AskRequest struct {
	URL      string `json:"url"`      // Notion page URL or bare page ID
	Question string `json:"question"` // The question to answer about the page
}

type AskResponse struct {
	Answer    string `json:"answer"`              // The model's answer
	NoContent bool   `json:"noContent,omitempty"` // Page produced an empty corpus
	Indexed   int    `json:"indexed"`             // Nested pages and entries visited
}

type IndexRequest struct {
	URL string `json:"url"` // Notion page URL or bare page ID
}

type IndexResponse struct {
	Corpus  string `json:"corpus"` // The flattened page content
	Indexed int    `json:"indexed"`
}

// NewServer creates a new MCP server with the ask and index tools.
func NewServer(serviceInstance service.Service) *server.MCPServer {
	s := server.NewMCPServer(
		"Notion QA MCP",
		Version,
		server.WithToolCapabilities(false),
	)

	askTool := mcp.NewTool("ask",
		mcp.WithDescription("Recursively index a Notion page (including subpages and databases) and answer a question about its content"),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The Notion page URL or bare 32-character page ID"),
		),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question to answer about the page content"),
		),
	)
	s.AddTool(askTool, mcp.NewTypedToolHandler(getAskHandler(serviceInstance)))

	indexTool := mcp.NewTool("index",
		mcp.WithDescription("Recursively index a Notion page and return its flattened text content"),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The Notion page URL or bare 32-character page ID"),
		),
	)
	s.AddTool(indexTool, mcp.NewTypedToolHandler(getIndexHandler(serviceInstance)))

	return s
}

func getAskHandler(serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args AskRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args AskRequest) (*mcp.CallToolResult, error) {
		if args.URL == "" {
			return mcp.NewToolResultError("url is required"), nil
		}
		if args.Question == "" {
			return mcp.NewToolResultError("question is required"), nil
		}

		answer, err := serviceInstance.Ask(ctx, args.URL, args.Question, progressReporter(ctx, request))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to answer question: %v", err)), nil
		}

		response := AskResponse{
			Answer:    answer.Text,
			NoContent: answer.NoContent,
			Indexed:   answer.Indexed,
		}
		responseBytes, err := json.Marshal(response)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
		}
		return mcp.NewToolResultText(string(responseBytes)), nil
	}
}

func getIndexHandler(serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args IndexRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args IndexRequest) (*mcp.CallToolResult, error) {
		if args.URL == "" {
			return mcp.NewToolResultError("url is required"), nil
		}

		document, err := serviceInstance.Index(ctx, args.URL, progressReporter(ctx, request))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to index page: %v", err)), nil
		}

		response := IndexResponse{
			Corpus:  string(document.Corpus),
			Indexed: document.Indexed,
		}
		responseBytes, err := json.Marshal(response)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
		}
		return mcp.NewToolResultText(string(responseBytes)), nil
	}
}

// progressReporter forwards traversal progress as MCP progress notifications
// when the caller supplied a progress token. Returns nil otherwise; the
// traversal treats a nil callback as no reporting.
func progressReporter(ctx context.Context, request mcp.CallToolRequest) index.Progress {
	meta := request.Params.Meta
	if meta == nil || meta.ProgressToken == nil {
		return nil
	}
	mcpServer := server.ServerFromContext(ctx)
	if mcpServer == nil {
		return nil
	}
	total := 0
	return func(n int) {
		total += n
		_ = mcpServer.SendNotificationToClient(ctx, "notifications/progress", map[string]any{
			"progressToken": meta.ProgressToken,
			"progress":      total,
		})
	}
}
