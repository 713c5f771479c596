// nextfit web-service
//
// Server-rendered front end of Next Fit:
//   - landing page with a public preview of the job feed
//   - user dashboard with the full, tag-filterable feed
//   - admin panel for the job titles and sources the scraper works from
//
// All data lives in the jobs backend and is reached over HTTP. Sessions are
// kept server-side (Redis, or Postgres with SESSION_STORE=postgres) behind an
// opaque cookie. A cron job sweeps idle feed pagers and warms the tag cache.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nextfit/web-service/internal/backend"
	"nextfit/web-service/internal/config"
	"nextfit/web-service/internal/db"
	"nextfit/web-service/internal/feed"
	"nextfit/web-service/internal/logger"
	"nextfit/web-service/internal/scheduler"
	"nextfit/web-service/internal/session"
	"nextfit/web-service/internal/web"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[web-service] Config error: %v", err)
	}
	logger.Init(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[web-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[web-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[web-service] Redis connected ✓")

	// ── Sessions ─────────────────────────────────────────────────────────────
	var (
		sessions session.Store
		purger   scheduler.Purger
		pool     *pgxpool.Pool
	)
	switch cfg.SessionStore {
	case config.SessionStorePostgres:
		log.Println("[web-service] Connecting to PostgreSQL…")
		pool, err = db.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("[web-service] PostgreSQL: %v", err)
		}
		defer pool.Close()
		log.Println("[web-service] PostgreSQL connected ✓")

		pg := session.NewPostgresStore(pool, max(int(cfg.SessionTTL.Hours()), 1))
		if err := pg.Migrate(ctx); err != nil {
			log.Fatalf("[web-service] Session table: %v", err)
		}
		sessions, purger = pg, pg
	default:
		sessions = session.NewRedisStore(rdb, cfg.SessionTTL)
	}
	log.Printf("[web-service] Session store: %s", cfg.SessionStore)

	// ── Feed ─────────────────────────────────────────────────────────────────
	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout)
	pagers := feed.NewRegistry(client)
	tags := feed.NewTagLoader(client, feed.NewRedisTagCache(rdb, cfg.TagCacheTTL))
	limiter := web.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	// ── Scheduler ────────────────────────────────────────────────────────────
	sched := scheduler.New(scheduler.Jobs{
		Pagers:    pagers,
		PagerIdle: cfg.PagerIdleTTL,
		Tags:      tags,
		Sessions:  purger,
		Limiter:   limiter,
	}, cfg.SweepInterval)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[web-service] Scheduler: %v", err)
	}

	// ── HTTP server ──────────────────────────────────────────────────────────
	site, err := web.NewServer(web.Options{
		Backend:      client,
		Sessions:     sessions,
		Pagers:       pagers,
		Tags:         tags,
		Limiter:      limiter,
		SessionTTL:   cfg.SessionTTL,
		CookieSecure: cfg.CookieSecure,
	})
	if err != nil {
		log.Fatalf("[web-service] %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.Handle("GET /metrics", promhttp.Handler())
	site.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.BackendTimeout + 10*time.Second,
	}

	go func() {
		log.Printf("[web-service] v%s listening on :%s (backend %s)", version, cfg.Port, cfg.BackendURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[web-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[web-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[web-service] Shutdown error: %v", err)
	}
	sched.Stop()
	cancel()
	log.Println("[web-service] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "web-service",
		"version": version,
	})
}
