package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/studyflowhq/studyflow/internal/catalog"
	"github.com/studyflowhq/studyflow/internal/planner"
	"github.com/studyflowhq/studyflow/internal/platform/cache"
	"github.com/studyflowhq/studyflow/internal/platform/config"
	"github.com/studyflowhq/studyflow/internal/platform/database"
)

const maxSnapshotBody = 1 << 20 // 1 MiB

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	app, err := buildApp(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer app.close()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      newMux(app),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// app bundles the wired service and the connections behind it.
type app struct {
	service *planner.Service
	db      *database.DB
	cache   *cache.Cache
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.cache != nil {
		a.cache.Close()
	}
}

// buildApp connects storage per the configured catalog source and
// wires the plan service.
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}

	var source planner.SnapshotSource
	var store planner.PlanStore

	switch cfg.Catalog.Source {
	case "postgres":
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, fmt.Errorf("connecting database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		a.db = db

		source, err = catalog.NewPostgresSource(db.Pool)
		if err != nil {
			return nil, err
		}
		store, err = planner.NewPostgresStore(db.Pool)
		if err != nil {
			return nil, err
		}
	case "yaml":
		loader, err := catalog.NewLoader(cfg.Catalog.FixturesPath)
		if err != nil {
			return nil, err
		}
		source = loader
		store = planner.NewMemoryStore()
	}

	var lock planner.RunLock
	if c, err := cache.New(ctx, cfg.Cache.URL); err != nil {
		// Run without the distributed lock; fine for a single node.
		slog.Warn("cache unavailable, plan runs are not serialized across nodes", "error", err)
	} else {
		a.cache = c
		lock = cache.NewPlanLock(c, time.Duration(cfg.Planner.LockTTLSeconds)*time.Second)
	}

	a.service = planner.NewService(planner.ServiceConfig{
		Engine: planner.NewEngine(planner.EngineConfig{
			DefaultDailyHours: cfg.Planner.DefaultDailyHours,
		}),
		Snapshots: source,
		Store:     store,
		Lock:      lock,
	})
	return a, nil
}

// newMux creates the HTTP router.
func newMux(a *app) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", a.handleReadyz)
	mux.HandleFunc("POST /v1/students/{id}/plan", a.handleGeneratePlan)
	mux.HandleFunc("GET /v1/students/{id}/plan", a.handleGetPlan)
	mux.HandleFunc("POST /v1/plan/preview", a.handlePreview)
	return mux
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (a *app) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if a.db != nil {
		if err := a.db.HealthCheck(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if a.cache != nil {
		if err := a.cache.HealthCheck(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "cache unavailable")
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

func (a *app) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("id")
	mode := planner.Mode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = planner.ModeFull
	}
	if mode != planner.ModeFull && mode != planner.ModeRecreate {
		writeError(w, http.StatusBadRequest, "mode must be 'full' or 'recreate'")
		return
	}

	plan, err := a.service.GeneratePlan(r.Context(), studentID, mode)
	if err != nil {
		writePlanError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (a *app) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := a.service.LatestPlan(r.Context(), r.PathValue("id"))
	if errors.Is(err, planner.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no plan for student")
		return
	}
	if err != nil {
		slog.Error("loading plan failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (a *app) handlePreview(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSnapshotBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading body failed")
		return
	}

	plan, err := a.service.Preview(r.Context(), body)
	if err != nil {
		writePlanError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func writePlanError(w http.ResponseWriter, err error) {
	var inputErr *planner.InputError
	switch {
	case errors.Is(err, planner.ErrLocked):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &inputErr):
		writeError(w, http.StatusUnprocessableEntity, inputErr.Error())
	default:
		slog.Error("plan generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
