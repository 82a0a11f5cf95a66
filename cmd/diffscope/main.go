// Package main is the entry point for the diffscope CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/diffscope/diffscope/application/service"
	"github.com/diffscope/diffscope/domain/diff"
	"github.com/diffscope/diffscope/infrastructure/git"
	"github.com/diffscope/diffscope/internal/config"
	"github.com/diffscope/diffscope/internal/log"
	"github.com/diffscope/diffscope/internal/mcp"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diffscope",
		Short: "Git comparison tools over MCP",
		Long:  `Diffscope exposes read-only git branch comparison operations (diff, stats, branches, commit range) as MCP tools for AI-assisted code review.`,
	}

	cmd.AddCommand(stdioCmd())
	cmd.AddCommand(serveCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads configuration from a .env file and environment
// variables, then applies non-zero flag overrides.
func loadConfig(envFile, repoPath string, chunkSize int) (config.AppConfig, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}

	if repoPath != "" {
		cfg = cfg.Apply(config.WithRepoPath(repoPath))
	}
	if chunkSize != 0 {
		cfg = cfg.Apply(config.WithChunkSize(chunkSize))
	}

	if err := cfg.Validate(); err != nil {
		return config.AppConfig{}, err
	}
	return cfg, nil
}

// buildServer wires the repository, review service, and MCP server.
func buildServer(cfg config.AppConfig, logger *log.Logger) *mcp.Server {
	slogger := logger.Slog()

	repo := git.NewRepository(cfg.RepoPath(), cfg.GitTimeout(), slogger)
	if !repo.IsRepository() {
		logger.Warn("repository path has no git metadata, operations will fail until one is mounted",
			"repo_path", repo.Root())
	}

	review := service.NewReview(repo, diff.ChunkParams{Size: cfg.ChunkSize()}, cfg.FetchOnCompare(), slogger)
	return mcp.NewServer(review, version, slogger)
}
