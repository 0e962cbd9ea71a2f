// Command gitpulsed is the GitPulse platform service.
// It serves the GitHub webhook endpoint, the rendered streak badge,
// a health check, and Prometheus metrics.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gitpulse/gitpulse/internal/activity"
	"github.com/gitpulse/gitpulse/internal/platform"
	"github.com/gitpulse/gitpulse/internal/render"
	"github.com/gitpulse/gitpulse/internal/webhook"
	"github.com/gitpulse/gitpulse/pkg/streak"
)

type config struct {
	Port          string
	DatabaseURL   string
	WebhookSecret string
	WindowDays    int
}

func loadConfig() config {
	window := 365
	if v := os.Getenv("BADGE_WINDOW_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			log.Fatalf("invalid BADGE_WINDOW_DAYS %q", v)
		}
		window = n
	}
	return config{
		Port:          envOrDefault("PORT", "8080"),
		DatabaseURL:   envOrDefault("DATABASE_URL", "postgres://localhost:5432/gitpulse?sslmode=disable"),
		WebhookSecret: os.Getenv("WEBHOOK_SECRET"),
		WindowDays:    window,
	}
}

func main() {
	_ = godotenv.Load()

	cfg := loadConfig()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("ping database: %v", err)
	}

	if err := platform.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	store := activity.NewStore(db)
	webhookHandler := webhook.NewHandler([]byte(cfg.WebhookSecret), store)

	initMetrics()

	mux := http.NewServeMux()
	mux.Handle("POST /v1/webhooks/github", webhookHandler)
	mux.HandleFunc("GET /badge/{login}", badgeHandler(store, cfg.WindowDays))
	mux.HandleFunc("GET /healthz", healthHandler(db))
	mux.Handle("GET /metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: monitor(mux),
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("starting gitpulsed on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// loginPattern matches GitHub usernames: alphanumeric and hyphens, no
// leading hyphen, at most 39 characters. Anything else is rejected before
// it can reach the renderer.
var loginPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]{0,38}$`)

// badgeHandler serves GET /badge/{login}. The login may carry a ".svg"
// suffix so the raw URL works as an <img> source.
func badgeHandler(store *activity.Store, windowDays int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		login := strings.TrimSuffix(r.PathValue("login"), ".svg")
		if !loginPattern.MatchString(login) {
			http.Error(w, "invalid login", http.StatusBadRequest)
			return
		}

		today := time.Now().UTC()
		since := today.AddDate(0, 0, -(windowDays - 1))

		series, total, err := store.Series(r.Context(), login, since, today)
		if err != nil {
			log.Printf("load series for %s: %v", login, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		svg, err := render.Badge(render.BadgeStats{
			Login:      login,
			Total:      total,
			Current:    streak.Current(series, total, today),
			Longest:    streak.Longest(series),
			Today:      today,
			WindowDays: windowDays,
		})
		if err != nil {
			log.Printf("render badge for %s: %v", login, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "max-age=300")
		w.Write(svg)
	}
}

func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
