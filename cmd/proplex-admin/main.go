package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/proplex/proplex-admin/config"
	"github.com/proplex/proplex-admin/internal/api"
	"github.com/proplex/proplex-admin/internal/backend"
	"github.com/proplex/proplex-admin/internal/crud"
	"github.com/proplex/proplex-admin/internal/db"
	"github.com/proplex/proplex-admin/internal/i18n"
	"github.com/proplex/proplex-admin/internal/metrics"
	"github.com/proplex/proplex-admin/internal/session"
	"github.com/proplex/proplex-admin/internal/store"
	"github.com/proplex/proplex-admin/internal/toast"
	"github.com/proplex/proplex-admin/internal/web"
)

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. INFO/WARN go to stdout, ERROR goes
// to stderr. If logPath is non-empty, all levels are also written to that file.
// Returns a cleanup function that closes the log file (if opened).
func setupLogger(logPath string) (func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

func main() {
	fs := flag.NewFlagSet("proplex-admin", flag.ContinueOnError)

	var configPath string
	fs.StringVar(&configPath, "config", "", "")
	fs.StringVar(&configPath, "c", "", "")

	var addr string
	fs.StringVar(&addr, "addr", "", "")
	fs.StringVar(&addr, "a", "", "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: proplex-admin [flags]

Flags:
  -c, -config <path>      config file (default: config.yaml in ./config, . or /etc/proplex-admin/)
  -a, -addr <host:port>   listen address (overrides server.addr, default :8080)
  -l, -log <path>         log file path (overrides log.path, default stdout/stderr only)
  -h, -help               show this help and exit
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if logPath != "" {
		cfg.Log.Path = logPath
	}

	closeLog, err := setupLogger(cfg.Log.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	if err := run(cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()
	m := metrics.New()

	client, err := backend.New(cfg.Backend.BaseURL,
		backend.WithTimeout(cfg.Backend.Timeout),
		backend.WithObserver(m),
	)
	if err != nil {
		return fmt.Errorf("configuring backend client: %w", err)
	}

	sessionStore, secret, cleanup, err := openSessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	sessions := session.NewService(sessionStore, client, session.Config{Secret: secret, TTL: cfg.Session.TTL})
	client.Authorize(sessions)
	sessions.OnAuthChange(func(ev session.Event) {
		m.ObserveAuth(string(ev.Kind))
	})

	registry := crud.DefaultRegistry()
	cache := crud.NewListCache(cfg.Cache.Size, cfg.Cache.TTL)
	bundle := i18n.New(cfg.Locale.Default)

	apiRouter := api.NewRouter(api.Deps{
		Sessions: sessions,
		Backend:  client,
		Registry: registry,
		Cache:    cache,
		I18n:     bundle,
		Started:  time.Now(),
	})
	webRouter, err := web.NewRouter(web.Deps{
		Sessions:     sessions,
		Backend:      client,
		Registry:     registry,
		Cache:        cache,
		Toasts:       toast.NewQueue(cfg.Toast.TTL),
		I18n:         bundle,
		Limiter:      web.NewLoginLimiter(cfg.Login.RatePerMin),
		Bulk:         m,
		Integrations: cfg.Integrations,
	})
	if err != nil {
		return fmt.Errorf("setting up web router: %w", err)
	}

	// Combine: API and metrics take priority, pages handle the rest.
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("GET /metrics", m.Handler())
	mux.Handle("/", webRouter)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.LoggingMiddleware(m.Middleware(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Server.Addr, "backend", cfg.Backend.BaseURL, "session_store", cfg.Session.Store)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	slog.Info("server stopped")
	return nil
}

// openSessionStore opens the configured session store and resolves the
// cookie signing secret. SQLite also holds a generated secret when none
// is configured.
func openSessionStore(ctx context.Context, cfg *config.Config) (session.Store, string, func(), error) {
	if cfg.Session.Store == config.StoreRedis {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, "", nil, fmt.Errorf("connecting to redis: %w", err)
		}
		slog.Info("redis session store ready", "addr", cfg.Redis.Addr)
		return session.NewRedisStore(rdb, "proplex-admin:"), cfg.Session.Secret, func() { rdb.Close() }, nil
	}

	database, err := db.Open(cfg.Session.DBPath)
	if err != nil {
		return nil, "", nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(database); err != nil {
		database.Close()
		return nil, "", nil, fmt.Errorf("migrating database: %w", err)
	}
	slog.Info("database ready", "path", cfg.Session.DBPath)

	secret := cfg.Session.Secret
	if secret == "" {
		secret, err = store.GetJWTSecret(ctx, database)
		if err != nil {
			database.Close()
			return nil, "", nil, fmt.Errorf("loading session secret: %w", err)
		}
	}
	return session.NewSQLStore(database), secret, func() { database.Close() }, nil
}
