package main

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/desertthunder/wpx/internal/server"
	"github.com/desertthunder/wpx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve exposes the migration pipeline over HTTP until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	host := r.config.Server.Host
	if cmd.IsSet("host") {
		host = cmd.String("host")
	}
	port := r.config.Server.Port
	if cmd.IsSet("port") {
		port = int(cmd.Int("port"))
	}
	if port <= 0 || port > 65535 {
		return fmt.Errorf("%w: port %d out of range", shared.ErrInvalidFlag, port)
	}

	store, closeStore, err := r.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	processor, err := r.newProcessor(store)
	if err != nil {
		return err
	}
	m, err := r.recorder()
	if err != nil {
		return err
	}

	srv := server.New(server.Options{
		Runner:           processor,
		Connection:       r.connector(),
		Previewer:        r.extractor(),
		Ledger:           store.Ledger,
		Metrics:          m,
		LockPath:         r.lockPath(),
		DefaultBatchSize: r.config.Migration.BatchSize,
		Logger:           r.logger,
	})

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	r.writePlain("Serving on http://%s (Ctrl+C to stop)\n", addr)
	return srv.ListenAndServe(ctx, addr)
}
