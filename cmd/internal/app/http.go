package app

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RayenHanafi/Mosque-Noor/cmd/internal/auth/api"
	"github.com/RayenHanafi/Mosque-Noor/cmd/internal/content"
	"github.com/RayenHanafi/Mosque-Noor/cmd/internal/metrics"
)

type routes struct {
	log     Logger
	cfg     Config
	dbPool  *pgxpool.Pool
	metrics *metrics.Collectors
	auth    *authapi.Handler
	content *content.Handler
}

func newRouter(rt routes) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(WithRequestLogging(rt.log, rt.metrics))
	r.Use(middleware.Recoverer)
	r.Use(WithSecurityHeaders)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if rt.cfg.ReadinessRequireDB && rt.dbPool == nil {
			http.Error(w, "db not configured", http.StatusServiceUnavailable)
			return
		}
		if rt.dbPool != nil {
			if err := PingDB(r.Context(), rt.dbPool, 2*time.Second); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				rt.log.Info("readyz.db.not_ready", "err", err)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready\n"))
	})

	if rt.metrics != nil {
		r.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	if rt.auth != nil {
		rt.auth.Register(r)
	}
	if rt.content != nil {
		rt.content.RegisterPublic(r)
		if rt.auth != nil {
			r.Group(func(r chi.Router) {
				r.Use(rt.auth.RequireSession)
				rt.content.RegisterAdmin(r)
			})
		}
	}

	return r
}
