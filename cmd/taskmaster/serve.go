package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Joseda-hg/taskmaster/internal/app"
	"github.com/Joseda-hg/taskmaster/internal/tui"
	"github.com/Joseda-hg/taskmaster/internal/web"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the web view without the terminal UI",
		Long: `Serve the web view and JSON API on the configured port.

Examples:
  taskmaster serve
  taskmaster serve --port 9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			env, err := setup(ctx, opts)
			if err != nil {
				return err
			}
			defer env.close()

			server := newHTTPServer(env.state, env.cfg.WebPort)
			fmt.Fprintf(cmd.OutOrStdout(), "Web server running at http://localhost%s\n", server.Addr)
			return serveUntilDone(ctx, server)
		},
	}
}

func runTUI(ctx context.Context, opts *rootOptions) error {
	env, err := setup(ctx, opts)
	if err != nil {
		return err
	}
	defer env.close()

	if env.cfg.WebEnabled {
		stop := serveInBackground(ctx, newHTTPServer(env.state, env.cfg.WebPort))
		defer stop()
	}

	return tui.Run(env.state)
}

// serveInBackground starts server on its own goroutine. The returned function
// shuts it down and blocks until in-flight requests are done, so the store can
// be closed safely afterwards.
func serveInBackground(ctx context.Context, server *http.Server) func() {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Infof("Web server running at http://localhost%s", server.Addr)
		if err := serveUntilDone(ctx, server); err != nil {
			log.WithError(err).Error("web server error")
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

func newHTTPServer(state *app.State, port int) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           web.NewServer(state).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// serveUntilDone runs server until it fails or ctx is cancelled, then shuts
// it down.
func serveUntilDone(ctx context.Context, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
