// Package mcp provides Model Context Protocol server functionality.
package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/diffscope/diffscope/application/service"
)

// serverName identifies this server to MCP clients.
const serverName = "diffscope"

// Reviewer provides the git comparison operations for MCP tools.
type Reviewer interface {
	BranchDiff(ctx context.Context, base, target string) (string, error)
	DiffStats(ctx context.Context, base, target string) (string, error)
	BranchList(ctx context.Context) (string, error)
	CommitRange(ctx context.Context, base, target string) (string, error)
}

// Server wraps the MCP server with the git comparison tools.
type Server struct {
	mcpServer *server.MCPServer
	review    Reviewer
	logger    *slog.Logger
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(review Reviewer, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		review: review,
		logger: logger,
	}

	mcpServer := server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(true),
	)
	s.registerTools(mcpServer)

	s.mcpServer = mcpServer
	return s
}

// registerTools registers all comparison tools with the MCP server.
func (s *Server) registerTools(mcpServer *server.MCPServer) {
	branchDiffTool := mcp.NewTool("get_branch_diff",
		mcp.WithDescription("Get the git diff between two branches, chunked for review"),
		mcp.WithString("base_branch",
			mcp.Description("Base branch to compare against (default: main)"),
		),
		mcp.WithString("target_branch",
			mcp.Description("Target branch to compare (default: HEAD)"),
		),
	)
	mcpServer.AddTool(branchDiffTool, s.handleBranchDiff)

	diffStatsTool := mcp.NewTool("get_diff_stats",
		mcp.WithDescription("Get diff statistics between two branches"),
		mcp.WithString("base_branch",
			mcp.Description("Base branch to compare against (default: main)"),
		),
		mcp.WithString("target_branch",
			mcp.Description("Target branch to compare (default: HEAD)"),
		),
	)
	mcpServer.AddTool(diffStatsTool, s.handleDiffStats)

	branchListTool := mcp.NewTool("get_branch_list",
		mcp.WithDescription("List local and remote branches in the repository"),
	)
	mcpServer.AddTool(branchListTool, s.handleBranchList)

	commitRangeTool := mcp.NewTool("get_commit_range",
		mcp.WithDescription("Get one-line commit summaries present in target but not in base"),
		mcp.WithString("base_branch",
			mcp.Description("Base branch to compare against (default: main)"),
		),
		mcp.WithString("target_branch",
			mcp.Description("Target branch to compare (default: HEAD)"),
		),
	)
	mcpServer.AddTool(commitRangeTool, s.handleCommitRange)
}

func (s *Server) handleBranchDiff(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	base, target := rangeArgs(request)

	out, err := s.review.BranchDiff(ctx, base, target)
	if err != nil {
		s.logger.Error("branch diff failed", slog.Any("error", err))
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) handleDiffStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	base, target := rangeArgs(request)

	out, err := s.review.DiffStats(ctx, base, target)
	if err != nil {
		s.logger.Error("diff stats failed", slog.Any("error", err))
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) handleBranchList(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := s.review.BranchList(ctx)
	if err != nil {
		s.logger.Error("branch list failed", slog.Any("error", err))
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) handleCommitRange(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	base, target := rangeArgs(request)

	out, err := s.review.CommitRange(ctx, base, target)
	if err != nil {
		s.logger.Error("commit range failed", slog.Any("error", err))
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

// rangeArgs extracts the branch range arguments with their defaults.
func rangeArgs(request mcp.CallToolRequest) (base, target string) {
	base = request.GetString("base_branch", service.DefaultBaseBranch)
	target = request.GetString("target_branch", service.DefaultTargetBranch)
	return base, target
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio runs the MCP server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeHTTP runs the MCP server over the streamable HTTP transport.
func (s *Server) ServeHTTP(addr string) error {
	return server.NewStreamableHTTPServer(s.mcpServer).Start(addr)
}
