package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nextrole/internal/application"
	"nextrole/internal/auth"
	"nextrole/internal/config"
	"nextrole/internal/db"
	httpx "nextrole/internal/http"
	mw "nextrole/internal/http/middleware"
	"nextrole/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "nextrole",
		Short:        "Job application tracker API",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logging.New(cfg.LogLevel, cfg.LogFormat)
			return serve(cmd.Context(), cfg, log)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update tables and indexes, then exit",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Store != config.StorePostgres {
				return errors.New("migrate requires STORE=postgres")
			}
			log := logging.New(cfg.LogLevel, cfg.LogFormat)

			gdb, err := db.Connect(cfg.Database, log)
			if err != nil {
				return err
			}
			if err := db.AutoMigrateAndIndexes(gdb, cfg.Database.UniqueIndex); err != nil {
				return err
			}
			log.Info("migrations applied")
			return nil
		},
	}
}

func serve(ctx context.Context, cfg config.Config, log *logrus.Logger) error {
	var (
		store application.Store
		users auth.Users
	)
	switch cfg.Store {
	case config.StorePostgres:
		gdb, err := db.Connect(cfg.Database, log)
		if err != nil {
			return err
		}
		if err := db.AutoMigrateAndIndexes(gdb, cfg.Database.UniqueIndex); err != nil {
			return err
		}
		store = application.NewGormStore(gdb)
		users = &auth.GormUsers{DB: gdb}
	default:
		log.Warn("using in-memory store; data is lost on restart")
		mem := application.NewMemStore()
		mem.Unique = cfg.Database.UniqueIndex
		store = mem
		users = auth.NewMemUsers()
	}

	var jwtSvc *auth.JWT
	if cfg.TokenAuth() {
		jwtSvc = auth.NewJWT(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)
	}

	var metrics *mw.Metrics
	if cfg.Metrics.Enabled {
		metrics = mw.NewMetrics()
	}

	r := httpx.NewRouter(httpx.Deps{
		Config:       cfg,
		Log:          log,
		Applications: application.NewService(store),
		Users:        users,
		JWT:          jwtSvc,
		Metrics:      metrics,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr":      cfg.HTTPAddr,
			"store":     cfg.Store,
			"auth_mode": cfg.Auth.Mode,
		}).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
