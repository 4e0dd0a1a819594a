package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/collage-mcp/internal/layout"
	"github.com/ironsheep/collage-mcp/internal/server"
)

func newMCPCmd(a *app) *cobra.Command {
	var analyzer string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdio",
		Long: `Runs the collage tools as an MCP (Model Context Protocol) server, reading
JSON-RPC requests from stdin and writing responses to stdout.`,
		Example: `  # Register with an MCP client
  collage-mcp mcp

  # Use the local saliency analyzer instead of Gemini
  collage-mcp mcp --analyze saliency`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			if analyzer == "" {
				analyzer = a.cfg.Analysis.Analyzer
			}
			sess, err := newSession(a.cfg, analyzer, nil, logger)
			if err != nil {
				return err
			}
			reg, err := layout.Builtin()
			if err != nil {
				return err
			}

			srv := server.New(sess, reg, nil, a.cfg, logger)
			logger.Info("MCP server ready", "templates", reg.Len(), "analyzer", analyzer)
			return srv.Run(cmd.Context(), os.Stdin, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&analyzer, "analyze", "", "fixed image analyzer: gemini, saliency or none (default from config)")

	return cmd
}
