package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/diffscope/diffscope/internal/config"
	"github.com/diffscope/diffscope/internal/log"
)

func serveCmd() *cobra.Command {
	var (
		envFile   string
		repoPath  string
		chunkSize int
		host      string
		port      int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over streamable HTTP",
		Long: `Start the MCP server on the streamable HTTP transport.

Useful when the assistant connects over the network instead of spawning
the server as a stdio subprocess. The tool surface is identical to the
stdio transport.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile, repoPath, chunkSize, host, port)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")
	cmd.Flags().StringVar(&repoPath, "repo-path", "", "Git repository root (overrides REPO_PATH)")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "Maximum diff chunk length in bytes (overrides CHUNK_SIZE)")
	cmd.Flags().StringVar(&host, "host", "", "Host to bind to (overrides HOST)")
	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (overrides PORT)")

	return cmd
}

func runServe(envFile, repoPath string, chunkSize int, host string, port int) error {
	cfg, err := loadConfig(envFile, repoPath, chunkSize)
	if err != nil {
		return err
	}
	if host != "" {
		cfg = cfg.Apply(config.WithHost(host))
	}
	if port != 0 {
		cfg = cfg.Apply(config.WithPort(port))
	}

	logger := log.Configure(cfg)
	logger.Info("starting MCP server over HTTP",
		slog.String("version", version),
		slog.String("addr", cfg.Addr()),
		slog.String("repo_path", cfg.RepoPath()),
	)

	return buildServer(cfg, logger).ServeHTTP(cfg.Addr())
}
