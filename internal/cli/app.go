package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/tabula"
	"github.com/aretw0/tabula/internal/config"
	"github.com/aretw0/tabula/internal/demo"
	"github.com/aretw0/tabula/internal/logging"
	"github.com/aretw0/tabula/pkg/adapters/file"
	"github.com/aretw0/tabula/pkg/adapters/memory"
	"github.com/aretw0/tabula/pkg/adapters/redis"
	"github.com/aretw0/tabula/pkg/adapters/sqlite"
	"github.com/aretw0/tabula/pkg/observability"
	"github.com/aretw0/tabula/pkg/persistence/middleware"
	"github.com/aretw0/tabula/pkg/ports"
	"github.com/aretw0/tabula/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// App bundles everything a command needs to host games.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Engine   *tabula.Engine
	Store    ports.StateStore
	Sessions *session.Manager
	Registry *prometheus.Registry

	closers []io.Closer
}

// AppOption tweaks how an App is assembled.
type AppOption func(*appOptions)

type appOptions struct {
	logOutput io.Writer
	debug     bool
}

// WithLogOutput redirects the application log.
func WithLogOutput(w io.Writer) AppOption {
	return func(o *appOptions) {
		o.logOutput = w
	}
}

// WithDebug logs every flow node the engine enters.
func WithDebug(debug bool) AppOption {
	return func(o *appOptions) {
		o.debug = debug
	}
}

// NewApp wires the engine, store and session manager described by cfg.
func NewApp(cfg config.Config, opts ...AppOption) (*App, error) {
	o := appOptions{logOutput: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if o.debug {
		level = slog.LevelDebug
	}
	logger := logging.NewWithFormat(o.logOutput, level, cfg.Log.Format)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := observability.NewMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	hooks := metrics.Hooks()
	if o.debug {
		hooks = hooks.Merge(observability.LogHooks(logger))
	}

	engine, err := tabula.New(demo.Definition(cfg.Game.ConfirmPolicy()),
		tabula.WithLogger(logger),
		tabula.WithLifecycleHooks(hooks),
	)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}

	app := &App{Config: cfg, Logger: logger, Engine: engine, Registry: registry}
	store, locker, err := app.openStore()
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = store

	sessionOpts := []session.Option{session.WithLogger(logger)}
	if locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(locker))
	}
	app.Sessions = session.NewManager(engine, store, sessionOpts...)
	return app, nil
}

func (a *App) openStore() (ports.StateStore, ports.DistributedLocker, error) {
	cfg := a.Config
	var (
		store  ports.StateStore
		locker ports.DistributedLocker
	)
	switch cfg.Store.Kind {
	case config.StoreMemory:
		store = memory.NewStore()
	case config.StoreFile:
		store = file.New(cfg.Store.Path)
	case config.StoreSQLite:
		s, err := sqlite.Open(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, s)
		store = s
	case config.StoreRedis:
		var opts []redis.Option
		if cfg.Redis.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.Redis.TTL))
		}
		s := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		if err := s.Client().Ping(context.Background()).Err(); err != nil {
			s.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		a.closers = append(a.closers, s)
		store = s
		if cfg.Redis.Lock {
			locker = redis.NewLocker(s.Client(), redis.DefaultPrefix+"lock:")
		}
	default:
		return nil, nil, fmt.Errorf("unknown store kind %q", cfg.Store.Kind)
	}
	a.Logger.Debug("store opened", "kind", cfg.Store.Kind)

	var sealed middleware.Middleware
	if cfg.Crypt.Key != "" {
		active, fallback, err := cfg.Crypt.Keys()
		if err != nil {
			return nil, nil, err
		}
		sealed = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		})
	}

	var mws []middleware.Middleware
	if cfg.Audit.Path != "" {
		auditMws := []middleware.Middleware{middleware.NewPIIMiddleware(cfg.Audit.Mask)}
		if cfg.Audit.Encrypt && sealed != nil {
			auditMws = append(auditMws, sealed)
		}
		mws = append(mws, middleware.NewMirrorMiddleware(middleware.Chain(file.New(cfg.Audit.Path), auditMws...)))
	}
	if sealed != nil {
		mws = append(mws, sealed)
	}
	return middleware.Chain(store, mws...), locker, nil
}

// Close releases store connections.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}
