package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dyluth/commviz/internal/printer"
	"github.com/dyluth/commviz/internal/server"
	"github.com/dyluth/commviz/internal/session"
	"github.com/dyluth/commviz/internal/watch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the artifact browser API over HTTP",
	Long: `Serve the artifact store as a JSON API.

Each client gets a session cookie; page selections are kept per session in the
configured backend (memory, or redis for several replicas).

With --watch, changes under the artifact root are pushed to clients as
server-sent events on GET /api/events.

Examples:
  # Default address from commviz.yml (":8501")
  commviz serve

  # Another port, with live change events
  commviz serve --addr 127.0.0.1:9000 --watch`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Watch the artifact root and stream changes on /api/events")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	sessions, err := session.New(cfg, logger)
	if err != nil {
		return printer.Error("failed to create session store", err.Error(), []string{
			"Check 'sessions:' in commviz.yml",
		})
	}
	defer sessions.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sessions.Ping(ctx); err != nil {
		return printer.Error("session store is unreachable", err.Error(), []string{
			fmt.Sprintf("Check that redis is running at %s", cfg.Sessions.RedisURL),
			"Or use the in-memory backend: sessions.backend: memory",
		})
	}

	srv := server.New(newStore(), sessions, logger, server.Options{
		Addr:         addr,
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
		Events:       serveWatch,
	})

	g, gctx := errgroup.WithContext(ctx)

	if serveWatch {
		w, err := watch.New(cfg.Layout(), cfg.Debounce(), logger)
		if err != nil {
			return printer.Error("failed to start watcher", err.Error(), nil)
		}
		g.Go(func() error {
			return w.Run(gctx)
		})
		g.Go(func() error {
			forward(w.Events(), srv)
			return nil
		})
	}

	g.Go(func() error {
		return srv.Run(gctx)
	})

	printer.Success("Serving %s on %s\n", cfg.Root, addr)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return printer.Error("server stopped", err.Error(), nil)
	}
	printer.Info("Server stopped\n")
	return nil
}

// forward publishes watcher events until the channel closes.
func forward(events <-chan watch.Event, srv *server.Server) {
	for ev := range events {
		logger.Info("artifact changed",
			zap.String("view", ev.View),
			zap.String("op", string(ev.Op)),
			zap.String("path", ev.Path))
		srv.Publish(ev)
	}
}
