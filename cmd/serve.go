package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/pldiff/internal/server"
	"github.com/desertthunder/pldiff/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve starts the HTTP API and blocks until interrupted.
//
// A credential is acquired up front so that its refresh timer keeps it valid for the lifetime of the server.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}

	if err := r.ensureToken(ctx); err != nil {
		return err
	}
	defer r.tokens.Stop()

	router := server.NewBasicRouter()
	router.Use(server.Standard(shared.WithLogger(r.logger, "component", "http"))...)
	router.Handler(server.NewAPI(r.engine, r.tokens, r.logger))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return server.Serve(ctx, srv, r.logger)
}
