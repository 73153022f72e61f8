package cmd

import (
	"fmt"
	"net/http"

	"github.com/janvogt/notion-qa-mcp/config"
	"github.com/janvogt/notion-qa-mcp/index"
	"github.com/janvogt/notion-qa-mcp/llm"
	"github.com/janvogt/notion-qa-mcp/mcp"
	"github.com/janvogt/notion-qa-mcp/notion"
	"github.com/janvogt/notion-qa-mcp/service"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var httpAddr string
var withSSE bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server (stdio by default, HTTP with --http)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if httpAddr != "" {
			cfg.Server.HTTPAddr = httpAddr
		}

		logger, err := zap.NewProduction()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		svc, err := buildService(cmd, cfg, logger)
		if err != nil {
			return err
		}
		s := mcp.NewServer(svc)

		if cfg.Server.HTTPAddr != "" {
			logger.Info("starting MCP server",
				zap.String("addr", cfg.Server.HTTPAddr),
				zap.String("endpoint", cfg.Server.Endpoint),
				zap.Bool("sse", withSSE))
			if withSSE {
				handler := mcp.NewMcpHTTPSSEServer(logger, s, svc, cfg.Server.Endpoint, nil)
				return http.ListenAndServe(cfg.Server.HTTPAddr, handler)
			}
			return mcp.NewMcpHTTPServer(s, cfg.Server.Endpoint).Start(cfg.Server.HTTPAddr)
		}

		logger.Info("starting MCP server in stdio mode")
		return server.ServeStdio(s)
	},
}

// buildService wires store, indexer and model into the QA service.
func buildService(cmd *cobra.Command, cfg *config.Config, logger *zap.Logger) (service.Service, error) {
	storeOpts := []notion.Option{}
	if cfg.Notion.BaseURL != "" {
		storeOpts = append(storeOpts, notion.WithBaseURL(cfg.Notion.BaseURL))
	}
	store := notion.NewClient(cfg.Notion.Token, storeOpts...)

	indexOpts := []index.Option{}
	if cfg.Index.ClipBookmarks {
		indexOpts = append(indexOpts, index.WithBookmarkClips(http.DefaultClient))
	}
	indexer := index.New(store, logger, indexOpts...)

	model, err := llm.NewFromConfig(cmd.Context(), cfg, http.DefaultClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}

	return service.NewService(indexer, model, logger), nil
}

func init() {
	serveCmd.Flags().StringVar(&httpAddr, "http", "", "HTTP server address (e.g., ':8080'); stdio when empty")
	serveCmd.Flags().BoolVar(&withSSE, "sse", false, "Expose SSE progress endpoints alongside the HTTP transport")
	rootCmd.AddCommand(serveCmd)
}
