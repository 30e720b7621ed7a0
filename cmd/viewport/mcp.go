package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mcpserver "github.com/viewport-app/viewport/internal/mcp"
)

// newMCPServeCmd returns the "mcp-serve" subcommand.
// It starts an MCP server over stdin/stdout exposing the catalog as tools.
func newMCPServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-serve",
		Short: "Start MCP server over stdio",
		RunE: func(_ *cobra.Command, _ []string) error {
			_, logger, svc, err := setup()
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			srv := mcpserver.NewServer(mcpserver.Deps{
				Catalog: svc.Catalog(),
				Version: version,
			}, logger)
			return srv.Start(ctx)
		},
	}
}
