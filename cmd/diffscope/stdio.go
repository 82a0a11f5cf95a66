package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/diffscope/diffscope/internal/log"
)

func stdioCmd() *cobra.Command {
	var (
		envFile   string
		repoPath  string
		chunkSize int
	)

	cmd := &cobra.Command{
		Use:   "stdio",
		Short: "Start the MCP server on stdio",
		Long: `Start the MCP (Model Context Protocol) server on stdio.

This lets AI assistants invoke the git comparison tools against the
configured repository. Configuration is loaded from environment variables
and an optional .env file:

  REPO_PATH         Git repository root (default: /repo)
  CHUNK_SIZE        Maximum diff chunk length in bytes (default: 2000)
  GIT_TIMEOUT       Git subprocess timeout in seconds (default: 30)
  FETCH_ON_COMPARE  Refresh remotes before comparing (default: true)
  LOG_LEVEL         DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT        pretty, json (default: pretty)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStdio(envFile, repoPath, chunkSize)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")
	cmd.Flags().StringVar(&repoPath, "repo-path", "", "Git repository root (overrides REPO_PATH)")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "Maximum diff chunk length in bytes (overrides CHUNK_SIZE)")

	return cmd
}

func runStdio(envFile, repoPath string, chunkSize int) error {
	cfg, err := loadConfig(envFile, repoPath, chunkSize)
	if err != nil {
		return err
	}

	logger := log.Configure(cfg)
	logger.Info("starting MCP server on stdio",
		slog.String("version", version),
		slog.String("repo_path", cfg.RepoPath()),
		slog.Int("chunk_size", cfg.ChunkSize()),
	)

	return buildServer(cfg, logger).ServeStdio()
}
