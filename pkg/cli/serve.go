package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/pedrokiefer/exposure/pkg/fetch"
	"github.com/pedrokiefer/exposure/pkg/server"
	"github.com/spf13/cobra"
)

type serveApp struct {
	Addr string
}

// listenAndServe is a seam so tests do not bind a port.
var listenAndServe = func(srv *http.Server) error {
	return srv.ListenAndServe()
}

func (a *serveApp) Run(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if a.Addr != "" {
		cfg.Server.Addr = a.Addr
	}

	var st server.ResultStore
	if !dryRun {
		st, err = newStore(ctx, cfg)
		if err != nil {
			return err
		}
	}

	go fetch.RefreshCache(ctx, 5*time.Minute)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.NewRouter(newScanner(cfg), st, cfg.Server.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Listening on %s\n", cfg.Server.Addr)
		errCh <- listenAndServe(srv)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Printf("Shutting down\n")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.Scan.Timeout+5*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}

func newServeCmd() *cobra.Command {
	a := serveApp{}

	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scan API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Run(cmd.Context())
		},
	}
	c.Flags().StringVar(&a.Addr, "addr", "", "Listen address, overrides server.addr")
	return c
}
