package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/jsterling/ownerchart/internal/web"
)

// serveCommand creates the command that runs the local web UI.
func (c *CLI) serveCommand() *cobra.Command {
	var listenAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser UI",
		Long: `Serve starts a local HTTP server hosting the ownership browser: a search
form, the rendered diagram, the expandable list and print-to-PDF export.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if listenAddr != "" {
				cfg.Web.ListenAddr = listenAddr
			}

			ctx := cmd.Context()
			client, err := c.newClient(ctx, cfg, false)
			if err != nil {
				return err
			}
			store := c.newHistory(ctx, cfg)
			if store != nil {
				defer func() { _ = store.Close(context.Background()) }()
			}

			server := &http.Server{
				Addr:              cfg.Web.ListenAddr,
				Handler:           web.NewServer(client, store, c.Logger).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.ListenAndServe()
			}()
			c.Logger.Info("serving ownership browser", "addr", "http://"+cfg.Web.ListenAddr)

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			c.Logger.Info("shutting down")
			return server.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (default from config, localhost:8080)")
	return cmd
}
