package cli

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ironsheep/collage-mcp/internal/config"
)

// app carries the state shared by every command once flags are parsed.
type app struct {
	verbose    bool
	configPath string
	cfg        config.Config
}

// NewRootCmd builds the collage-mcp command tree.
func NewRootCmd() *cobra.Command {
	a := &app{cfg: config.Default()}

	cmd := &cobra.Command{
		Use:   "collage-mcp",
		Short: "Photo collage generator with smart cropping",
		Long: `collage-mcp composes photos into collage templates. A fixed hero image is
analyzed for its focal point and scene, the remaining slots are filled from a
pool of photos, and every image is cropped around its focal point.

It runs as an MCP server for AI assistants, as an HTTP API, or as a batch
command.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, logLevel(a.verbose)))
			cmd.SetContext(ctx)

			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")
	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", os.Getenv("COLLAGE_MCP_CONFIG"), "TOML configuration file")

	cmd.AddCommand(newMCPCmd(a))
	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newGenerateCmd(a))
	cmd.AddCommand(newTemplatesCmd(a))

	return cmd
}
