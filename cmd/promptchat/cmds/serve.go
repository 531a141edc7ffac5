package cmds

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zhouzirui/prompt-chat/backend/internal/handler"
	"github.com/zhouzirui/prompt-chat/backend/internal/service/chat"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser chat widget and its API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			chatSvc := chat.NewService(a.webhookClient())
			router := handler.NewRouter(chatSvc, a.cfg.Server.CORSOrigins)

			srv := &http.Server{
				Addr:              a.cfg.Server.Addr,
				Handler:           router,
				ReadHeaderTimeout: 5 * time.Second,
				IdleTimeout:       120 * time.Second,
			}

			log.Info().Str("addr", srv.Addr).Str("webhook", a.cfg.Webhook.URL).Msg("prompt chat listening")
			return runServer(cmd.Context(), srv)
		},
	}

	cmd.Flags().String("port", "", "listen port or address, e.g. 8080 or 127.0.0.1:8080 (env PORT)")
	cmd.Flags().String("cors-origins", "", "comma separated allowed origins, * for any (env CORS_ORIGINS)")
	return cmd
}

func runServer(ctx context.Context, srv *http.Server) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
