// Package mcpserver exposes the cBioPortal operations as MCP tools
// over stdio. It is the adapter boundary: validation errors pass
// through as protocol errors, transport and operation failures are
// folded into "Failed to <operation>" tool results.
package mcpserver

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pickleton89/cbioportal-mcp/pkg/pagination"
	"github.com/pickleton89/cbioportal-mcp/pkg/tools"
)

// Server wraps an MCP server around the tool service.
type Server struct {
	svc    *tools.Service
	mcp    *server.MCPServer
	logger zerolog.Logger
}

// New builds the MCP server and registers every tool.
func New(svc *tools.Service, version string) *Server {
	s := &Server{
		svc:    svc,
		logger: log.With().Str("component", "mcpserver").Logger(),
	}

	s.mcp = server.NewMCPServer(
		"cBioPortal",
		version,
		server.WithInstructions("This server provides tools to access and analyze cancer genomics data from cBioPortal."),
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	s.registerTools()
	return s
}

// ServeStdio runs the server over stdin/stdout until the client
// disconnects or the process is signalled.
func (s *Server) ServeStdio() error {
	s.logger.Info().Msg("serving MCP over stdio")
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server, mainly for tests.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// pageOptions are the tool schema options shared by all paginated
// tools.
func pageOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithNumber("page_number",
			mcp.Description("Page number to retrieve, 0-based"),
		),
		mcp.WithNumber("page_size",
			mcp.Description("Number of items per page"),
		),
		mcp.WithString("sort_by",
			mcp.Description("Field to sort by"),
		),
		mcp.WithString("direction",
			mcp.Description("Sort direction, ASC or DESC"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum total items to return; 0 fetches all results"),
		),
	}
}

// pageArgs extracts the shared pagination arguments from a request.
// limit is only set when the caller passed it, so absence and explicit
// zero (fetch-all) stay distinguishable.
func pageArgs(request mcp.CallToolRequest) tools.PageArgs {
	args := tools.PageArgs{
		PageNumber: request.GetInt("page_number", pagination.DefaultPageNumber),
		PageSize:   request.GetInt("page_size", pagination.DefaultPageSize),
		SortBy:     request.GetString("sort_by", ""),
		Direction:  request.GetString("direction", string(pagination.Ascending)),
	}
	if raw, ok := request.GetArguments()["limit"]; ok && raw != nil {
		limit := request.GetInt("limit", 0)
		args.Limit = &limit
	}
	return args
}

// result converts an operation outcome into a tool result. Validation
// errors become protocol errors, everything else is wrapped into the
// "Failed to <operation>" envelope the tools have always returned.
func (s *Server) result(operation string, v any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		var verr *tools.ValidationError
		if errors.As(err, &verr) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("operation", operation).Msg("tool call failed")
		return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: %v", operation, err)), nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s result: %w", operation, err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
