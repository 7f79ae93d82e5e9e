// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mwhitten/cardshark/internal/config"
	"github.com/mwhitten/cardshark/internal/coordinator"
	"github.com/mwhitten/cardshark/internal/handlers"
	"github.com/mwhitten/cardshark/internal/server"
)

func main() {
	cfg := config.FromEnv()

	var (
		port     string
		diagPort string
		verbose  bool
	)

	root := &cobra.Command{
		Use:   "cardshark",
		Short: "Authoritative TCP server for multiplayer card game lobbies",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				cfg.GameAddr = ":" + port
			}
			if diagPort != "" {
				cfg.StatusAddr = ":" + diagPort
				if diagPort == "0" {
					cfg.StatusAddr = ""
				}
			}
			if verbose {
				cfg.LogLevel = logrus.DebugLevel
			}
			return run(cmd.Context(), cfg)
		},
		SilenceUsage: true,
	}
	root.Flags().StringVar(&port, "port", "", "game protocol TCP port (overrides PORT)")
	root.Flags().StringVar(&diagPort, "diag-port", "", "diagnostics HTTP port, 0 disables (overrides DIAG_PORT)")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		logrus.WithError(err).Fatal("server exited")
	}
}

func run(ctx context.Context, cfg config.Config) error {
	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)

	coord := coordinator.New(logger)
	go coord.Run(ctx)

	g, ctx := errgroup.WithContext(ctx)

	srv := server.New(logger, coord.Inbox())
	ln, err := srv.Listen(ctx, cfg.GameAddr)
	if err != nil {
		return err
	}

	g.Go(func() error {
		return srv.Serve(ctx, ln)
	})

	if cfg.StatusAddr != "" {
		status := &http.Server{
			Addr:    cfg.StatusAddr,
			Handler: handlers.NewStatusServer(logger, coord.Inbox()).Routes(),
		}
		g.Go(func() error {
			logger.WithField("addr", cfg.StatusAddr).Info("serving diagnostics")
			err := status.ListenAndServe()
			if err == http.ErrServerClosed {
				return nil
			}
			return err
		})
		g.Go(func() error {
			<-ctx.Done()
			return status.Close()
		})
	}

	return g.Wait()
}
