// Package app wires the Noor server runtime: config, logging, stores, HTTP
// routes and the operations commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RayenHanafi/Mosque-Noor/cmd/identity"
	"github.com/RayenHanafi/Mosque-Noor/cmd/internal/auth/api"
	"github.com/RayenHanafi/Mosque-Noor/cmd/internal/auth/session"
	"github.com/RayenHanafi/Mosque-Noor/cmd/internal/content"
	"github.com/RayenHanafi/Mosque-Noor/cmd/internal/metrics"
	"github.com/RayenHanafi/Mosque-Noor/cmd/security/password"
)

// App is the Noor server runtime. It owns the database pool and every
// service built on it.
type App struct {
	cfg Config
	log Logger

	dbPool  *pgxpool.Pool
	metrics *metrics.Collectors

	verifier *identity.Verifier
	sessions *session.Service
	content  *content.Service

	auth        *authapi.Handler
	contentHTTP *content.Handler
}

type stores struct {
	identity identity.Store
	sessions session.Store
	content  content.Store
	// seedable is set in memory mode only.
	seedable bool
}

// New constructs a fully wired App from config and logger.
func New(ctx context.Context, cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	hasher, err := ValidateSecurityConfig(cfg)
	if err != nil {
		return nil, err
	}
	pwCfg, err := password.FromEnv()
	if err != nil {
		return nil, fmt.Errorf("password config: %w", err)
	}
	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	authCfg := authapi.LoadConfigFromEnv()
	if cfg.Production() {
		authCfg.CookieSecure = true
	}

	a := &App{cfg: cfg, log: log}
	if cfg.MetricsEnabled {
		a.metrics = metrics.New()
	}

	st, err := a.openStores(ctx)
	if err != nil {
		return nil, err
	}

	a.verifier, err = identity.NewVerifier(st.identity, pwCfg, identity.WithLogger(log))
	if err != nil {
		a.Close()
		return nil, err
	}
	a.sessions, err = session.NewService(sessCfg, st.sessions,
		session.WithHasher(hasher),
		session.WithReapObserver(a.observeReap),
	)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.content, err = content.NewService(st.content, content.WithLogger(log))
	if err != nil {
		a.Close()
		return nil, err
	}

	var authOpts []authapi.HandlerOption
	if a.metrics != nil {
		authOpts = append(authOpts, authapi.WithLoginObserver(a.metrics))
	}
	a.auth, err = authapi.NewHandler(log, authCfg, a.verifier, a.sessions, authOpts...)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.contentHTTP, err = content.NewHandler(log, a.content, authCfg.Locale, authCfg.MaxBodyBytes)
	if err != nil {
		a.Close()
		return nil, err
	}

	if st.seedable {
		if err := a.seedDevAdmin(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}

	log.Info("app.ready",
		"db_enabled", a.dbPool != nil,
		"token_hmac", hasher.Keyed(),
		"session_ttl", sessCfg.TTL.String(),
		"cookie_secure", authCfg.CookieSecure,
	)
	return a, nil
}

// openStores picks Postgres-backed persistence when NOOR_DATABASE_URL is set
// and in-memory stores otherwise.
func (a *App) openStores(ctx context.Context) (stores, error) {
	if a.cfg.DatabaseURL == "" {
		a.log.Warn("db.disabled.inmemory_store")
		admins := identity.NewMemoryStore()
		return stores{
			identity: admins,
			sessions: session.NewMemoryStore(admins),
			content:  content.NewMemoryStore(),
			seedable: true,
		}, nil
	}

	pool, err := NewDBPool(ctx, a.cfg)
	if err != nil {
		return stores{}, err
	}
	a.dbPool = pool
	a.log.Info("db.enabled.postgres_store", "schema", a.cfg.DBSchema)

	idStore, err := identity.NewPostgresStore(pool, identity.WithSchema(a.cfg.DBSchema))
	if err != nil {
		a.Close()
		return stores{}, err
	}
	sessStore, err := session.NewPostgresStore(pool, session.WithSchema(a.cfg.DBSchema))
	if err != nil {
		a.Close()
		return stores{}, err
	}
	contentStore, err := content.NewPostgresStore(pool, content.WithSchema(a.cfg.DBSchema))
	if err != nil {
		a.Close()
		return stores{}, err
	}
	return stores{identity: idStore, sessions: sessStore, content: contentStore}, nil
}

func (a *App) seedDevAdmin(ctx context.Context) error {
	if a.cfg.DevAdminPassword == "" {
		a.log.Warn("dev.admin.not_seeded", "hint", "set NOOR_DEV_ADMIN_PASSWORD to create an admin")
		return nil
	}
	admin, err := a.verifier.CreateAdmin(ctx, a.cfg.DevAdminUsername, a.cfg.DevAdminPassword)
	if err != nil {
		return fmt.Errorf("seed dev admin: %w", err)
	}
	a.log.Info("dev.admin.seeded", "admin_id", admin.ID, "username", admin.Username)
	return nil
}

func (a *App) observeReap(mode string, n int) {
	a.metrics.ObserveReap(mode, n)
	a.log.Debug("session.reap", "mode", mode, "count", n)
}

// Handler returns the HTTP handler serving every route.
func (a *App) Handler() http.Handler {
	return newRouter(routes{
		log:     a.log,
		cfg:     a.cfg,
		dbPool:  a.dbPool,
		metrics: a.metrics,
		auth:    a.auth,
		content: a.contentHTTP,
	})
}

// Verifier exposes the credential verifier to the operations commands.
func (a *App) Verifier() *identity.Verifier { return a.verifier }

// Sessions exposes the session service to the operations commands.
func (a *App) Sessions() *session.Service { return a.sessions }

// Serve starts the HTTP server and blocks until context cancellation or a
// fatal server error.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "db_enabled", a.dbPool != nil)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	a.log.Info("server.stopped")
	return nil
}

// Close releases the database pool. It is safe to call more than once.
func (a *App) Close() {
	if a.dbPool != nil {
		a.dbPool.Close()
		a.dbPool = nil
	}
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
