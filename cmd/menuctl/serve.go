package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chero-kobuleti/menu/internal/auth"
	"github.com/chero-kobuleti/menu/internal/httpapi"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the public menu and the admin API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.ServerAddr
			}
			st, err := a.openStore()
			if err != nil {
				return err
			}
			if a.cfg.Auth.Secret == "" {
				a.log.Warn("admin secret not set; admin API will reject every session")
			}

			api := httpapi.New(st, auth.NewManager(a.cfg.Auth), httpapi.Options{
				LoginRate:      a.cfg.loginLimit(),
				SecureCookies:  a.cfg.SecureCookies,
				TrustedProxies: a.cfg.TrustedProxies,
			}, a.log)
			srv := &http.Server{
				Addr:              addr,
				Handler:           api.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				a.log.Info("listening", zap.String("addr", addr), zap.String("data_dir", st.Config().DataDir))
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			a.log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr from config)")
	return cmd
}
