package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "github.com/mind-engage/prepared/internal/api/http"
	"github.com/mind-engage/prepared/internal/catalog"
	"github.com/mind-engage/prepared/internal/config"
	"github.com/mind-engage/prepared/internal/db"
	"github.com/mind-engage/prepared/internal/results"
	"github.com/mind-engage/prepared/internal/storage"
	syncx "github.com/mind-engage/prepared/internal/sync"
	"github.com/mind-engage/prepared/internal/workspace"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg := config.FromEnv()

	// --- Catalog ---
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		var ce *catalog.ConfigurationError
		if errors.As(err, &ce) {
			log.Fatalf("invalid catalog: %v", ce)
		}
		log.Fatalf("catalog load failed: %v", err)
	}

	// --- Results (DB when history is enabled) ---
	ws := workspace.New(cat)
	deps := api.Deps{Workspace: ws}
	if cfg.EnableHistory {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		driver, err := db.ParseDriver(cfg.DBDriver)
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		dbh, err := db.Open(ctx, driver, cfg.DBDSN)
		if err != nil {
			log.Fatalf("db open failed: %v", err)
		}
		defer dbh.Close()
		deps.Results = results.NewSQLStore(dbh)
		deps.Events = syncx.NewEventRepo(dbh, cfg.SiteID)
		deps.DB = dbh
	} else {
		deps.Results = results.NewInMemoryStore()
	}

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}
	deps.Blobs = bs

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	api.Mount(r, deps)

	// --- Idle learner sweep ---
	sched := cron.New()
	if err := ws.ScheduleSweep(sched, cfg.SessionSweep, cfg.SessionIdleTTL); err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	sched.Start()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() {
		log.Printf("listening on %s (mode=%s, modules=%d, history=%t, db=%s)",
			cfg.HTTPAddr, cfg.Mode, cat.Len(), cfg.EnableHistory, cfg.DBDriver)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server: %v", err)
		}
	case <-ctx.Done():
		log.Printf("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	<-sched.Stop().Done()
}
