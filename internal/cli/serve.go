package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tasktree/internal/api"
	"github.com/mesh-intelligence/tasktree/internal/engine"
)

const shutdownTimeout = 10 * time.Second

func (a *app) newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API over HTTP",
		Long:  "Serve the REST API. Requests name their owner with the " + api.OwnerHeader + " header.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.settings.ListenAddr
			}
			log := newLogger(a.settings.LogLevel, true, a.stderr)

			store, err := a.attach()
			if err != nil {
				return err
			}
			defer store.Detach()

			eng := engine.New(store, engine.WithLogger(log))
			srv := &http.Server{
				Addr:              addr,
				Handler:           api.NewRouter(api.NewHandler(eng, log)),
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				log.Info("listening", "addr", addr, "data_dir", a.settings.DataDir)
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					return sysError(fmt.Errorf("serve: %w", err))
				}
				return nil
			case <-ctx.Done():
			}

			log.Info("shutting down")
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				return sysError(fmt.Errorf("shutdown: %w", err))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from listen_addr in config)")
	return cmd
}
