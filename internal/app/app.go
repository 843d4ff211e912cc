// Package app assembles the bookshelf server from its configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/sirupsen/logrus"

	"bookshelf/internal/accounts"
	"bookshelf/internal/catalog"
	"bookshelf/internal/config"
	"bookshelf/internal/delivery"
	"bookshelf/internal/domain"
	"bookshelf/internal/health"
	"bookshelf/internal/middleware"
	"bookshelf/internal/storage/memory"
	"bookshelf/internal/storage/sqlite"
)

// Store is what every storage driver provides.
type Store interface {
	catalog.Store
	accounts.Store
	io.Closer
}

type App struct {
	Config config.Config
	Log    *logrus.Logger
	Store  Store
	Router http.Handler
	Health *health.Server
}

// OpenStore opens the configured driver and seeds it with the fixed catalog.
func OpenStore(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return memory.New(domain.SeedBooks()), nil
	case "sqlite":
		s, err := sqlite.Open(ctx, cfg.DSN, domain.SeedBooks())
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

func New(ctx context.Context, cfg config.Config, log *logrus.Logger) (*App, error) {
	store, err := OpenStore(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	sanitizer, err := catalog.SanitizerFor(cfg.Reviews.Sanitize)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	var opts []catalog.Option
	if sanitizer != nil {
		opts = append(opts, catalog.WithSanitizer(sanitizer))
	}

	srv := &delivery.Server{
		Log:      log,
		Catalog:  catalog.New(store, opts...),
		Accounts: accounts.New(store),
	}

	mws := []func(http.Handler) http.Handler{
		middleware.Recover(log),
		middleware.RequestID,
		middleware.RequestLogger(log),
		middleware.CORS,
	}
	if cfg.RateLimit.RPS > 0 {
		rl := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, log)
		mws = append(mws, rl.Handler)
	}

	a := &App{
		Config: cfg,
		Log:    log,
		Store:  store,
		Router: middleware.Chain(srv.Router(), mws...),
	}
	if cfg.GRPC.Enabled {
		a.Health = health.New(log)
	}
	return a, nil
}

// Run listens on the configured addresses and serves until ctx is done.
func (a *App) Run(ctx context.Context) error {
	httpLis, err := net.Listen("tcp", a.Config.HTTP.Address())
	if err != nil {
		return fmt.Errorf("listen http: %w", err)
	}
	var grpcLis net.Listener
	if a.Health != nil {
		grpcLis, err = net.Listen(a.Config.GRPC.Protocol, a.Config.GRPC.Address())
		if err != nil {
			_ = httpLis.Close()
			return fmt.Errorf("listen grpc: %w", err)
		}
	}
	return a.Serve(ctx, httpLis, grpcLis)
}

// Serve runs the HTTP API on httpLis and, when configured, the gRPC health
// service on grpcLis. It returns after a graceful shutdown once ctx is done,
// or as soon as either server fails.
func (a *App) Serve(ctx context.Context, httpLis, grpcLis net.Listener) error {
	srv := &http.Server{Handler: a.Router}
	errs := make(chan error, 2)

	go func() {
		a.Log.WithField("addr", httpLis.Addr().String()).Info("http.listening")
		if err := srv.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("http serve: %w", err)
			return
		}
		errs <- nil
	}()
	running := 1

	if a.Health != nil && grpcLis != nil {
		running++
		go func() { errs <- a.Health.Serve(grpcLis) }()
		a.Health.SetServing(true)
	}

	var firstErr error
	select {
	case <-ctx.Done():
	case firstErr = <-errs:
		running--
	}

	a.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.HTTP.ShutdownTimeout)
	defer cancel()

	if a.Health != nil {
		a.Health.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("http shutdown: %w", err)
	}
	for ; running > 0; running-- {
		if err := <-errs; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (a *App) Close() error {
	return a.Store.Close()
}
