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
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vector76/wordwall/internal/config"
	"github.com/vector76/wordwall/internal/logging"
	"github.com/vector76/wordwall/internal/server"
	"github.com/vector76/wordwall/internal/store"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var configPath string
	var port int
	var backend string
	var dataFile string
	var logLevel string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the word wall HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Resolve config file: flag > env
			if configPath == "" {
				configPath = os.Getenv("WW_CONFIG")
			}

			// Defaults, then file, then WW_* env.
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			// Flags win over everything.
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("store") {
				cfg.Store.Backend = backend
			}
			if cmd.Flags().Changed("data-file") {
				cfg.Store.DataFile = dataFile
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			defer log.Sync()

			st, err := store.Open(cfg.Store.Backend, cfg.Store.DataFile)
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}
			defer st.Close()

			srv, err := server.New(server.Config{
				Port:          cfg.Port,
				Version:       version,
				Logger:        log,
				Secret:        []byte(cfg.Secret),
				SecureCookies: cfg.SecureCookies,
				MaxBodyBytes:  cfg.MaxBodyBytes,
				CreateLimit:   cfg.Limit.Create,
				LikeLimit:     cfg.Limit.Like,
				CloudWidth:    cfg.Cloud.Width,
				CloudHeight:   cfg.Cloud.Height,
				Padding:       cfg.Cloud.Padding,
				FontFamily:    cfg.Cloud.FontFamily,
				Intro:         cfg.Intro,
			}, st)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "listening on %s\n", srv.ListenAddr())
			return listenAndServe(cmd.Context(), srv, log)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to YAML config file")
	cmd.Flags().IntVar(&port, "port", 9999, "port to listen on")
	cmd.Flags().StringVar(&backend, "store", store.BackendJSON, "comment store backend (json, sqlite)")
	cmd.Flags().StringVar(&dataFile, "data-file", "comments.json", "path to data file")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}

// listenAndServe runs srv until ctx is cancelled or SIGINT/SIGTERM arrives,
// then shuts down gracefully.
func listenAndServe(ctx context.Context, srv *server.Server, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpSrv := &http.Server{
		Addr:              srv.ListenAddr(),
		Handler:           srv.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server started", zap.String("addr", httpSrv.Addr), zap.String("version", version))
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listening: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
