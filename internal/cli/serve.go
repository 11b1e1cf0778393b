package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/osumercury/badgemaker/internal/server"
	"github.com/osumercury/badgemaker/pkg/render/builtin"
)

// serveCommand creates the serve command for the HTTP preview server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		assetDir string
		cf       cacheFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP preview server",
		Long: `Run an HTTP server that renders single badges on demand.

  GET  /healthz          liveness probe
  GET  /renderers        renderer names and property schemas
  POST /render/{name}    render a JSON badge to PNG

Requests may only reference background images, logos and scripts inside
--assets. The server shuts down gracefully on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, assetDir, cf)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&assetDir, "assets", "", "directory requests may load images and scripts from")
	cf.register(cmd)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, assetDir string, cf cacheFlags) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, cf)
	if err != nil {
		return err
	}
	defer runner.Close()

	var opts []server.Option
	if assetDir != "" {
		opts = append(opts, server.WithAssetDir(assetDir))
		logger.Info("serving assets", "dir", assetDir)
	}
	srv := server.New(builtin.Registry(), runner, opts...)
	printKeyValue("Address", "http://"+addr)
	printKeyValue("Renderers", strings.Join(builtin.Registry().Names(), ", "))
	return srv.ListenAndServe(ctx, addr)
}
