package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/maxviazov/tracker-dashboard/internal/config"
	"github.com/maxviazov/tracker-dashboard/internal/handler"
	"github.com/maxviazov/tracker-dashboard/internal/model"
	"github.com/maxviazov/tracker-dashboard/internal/repository"
	"github.com/maxviazov/tracker-dashboard/internal/service"
	"github.com/maxviazov/tracker-dashboard/pkg/auth"
)

const shutdownTimeout = 5 * time.Second

func newSandboxCmd(opts *rootOptions) *cobra.Command {
	var addr string
	var noSeed bool
	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Serve an in-memory tracker backend",
		Long: `Serve the tracker HTTP API from memory. The admin account from the
sandbox config section is created on start; nothing survives a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Sandbox.Addr = addr
			}
			if noSeed {
				cfg.Sandbox.SeedDemo = false
			}
			log, err := cliLogger(cfg)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runSandbox(ctx, cfg.Sandbox, log)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides sandbox.addr")
	cmd.Flags().BoolVar(&noSeed, "no-seed", false, "start without the demo tracker")
	return cmd
}

// sandbox is a ready-to-serve in-memory backend.
type sandbox struct {
	store    *repository.MemoryStore
	trackers service.TrackerService
	users    service.UserService
	engine   *gin.Engine
}

// newSandbox builds the store, the services and the routes, then creates
// the system objects and the hidden admin account.
func newSandbox(ctx context.Context, cfg config.SandboxConfig, clock *demoClock, log zerolog.Logger) (*sandbox, error) {
	store := repository.NewMemoryStore(log, repository.WithClock(clock.Now))
	sb := &sandbox{
		store:    store,
		trackers: service.NewTrackerService(store, log),
		users:    service.NewUserService(store, log),
	}
	if err := sb.trackers.Bootstrap(ctx); err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	admin := model.User{Name: cfg.AdminName, Email: cfg.AdminEmail, Password: cfg.AdminPassword, IsAdmin: true}
	if err := sb.users.EnsureUser(ctx, admin, true); err != nil {
		return nil, fmt.Errorf("create admin %s: %w", cfg.AdminEmail, err)
	}

	gin.SetMode(gin.ReleaseMode)
	sb.engine = gin.New()
	sb.engine.Use(gin.Recovery())
	handler.Register(sb.engine, handler.Deps{
		Pinger:   store,
		Signer:   auth.NewSigner(cfg.JWTSecret),
		Trackers: sb.trackers,
		Users:    sb.users,
		Logger:   log,
	})
	return sb, nil
}

func runSandbox(ctx context.Context, cfg config.SandboxConfig, log zerolog.Logger) error {
	log = log.With().Str("module", "sandbox").Logger()
	clock := &demoClock{}
	sb, err := newSandbox(ctx, cfg, clock, log)
	if err != nil {
		return err
	}
	if cfg.SeedDemo {
		if err := seedDemo(ctx, sb.trackers, clock); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
		log.Info().Str("tracker", demoTracker).Msg("demo data seeded")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           sb.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("admin", cfg.AdminEmail).Msg("🚀 sandbox listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("✅ sandbox stopped")
	return nil
}
