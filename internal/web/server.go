package web

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dockstats/internal/db"
	"dockstats/internal/metrics"
)

// Scraper produces one exposition document per call.
type Scraper interface {
	Scrape(ctx context.Context) (string, error)
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	scraper     Scraper
	source      Pinger
	repo        *db.Repository
	gatherer    prometheus.Gatherer
	metricsPath string
	log         *slog.Logger
}

// NewServer builds the HTTP transport. repo is nil when the journal is
// disabled.
func NewServer(scraper Scraper, source Pinger, repo *db.Repository, gatherer prometheus.Gatherer, metricsPath string, logger *slog.Logger) *Server {
	return &Server{
		scraper:     scraper,
		source:      source,
		repo:        repo,
		gatherer:    gatherer,
		metricsPath: metricsPath,
		log:         logger,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.metricsPath, s.handleMetrics)
	if s.metricsPath != "/metrics" {
		mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	mux.HandleFunc("/api/scrapes", s.handleScrapesAPI)
	mux.HandleFunc("/api/scrapes/summary", s.handleScrapeSummaryAPI)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/readyz", s.handleReadyz)
	return logMiddleware(mux, s.log)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := s.scraper.Scrape(r.Context())
	if err != nil {
		http.Error(w, "scrape failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", metrics.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	if r.Method == http.MethodHead {
		return
	}
	_, _ = io.WriteString(w, body)
}

func (s *Server) handleScrapesAPI(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		http.Error(w, "scrape journal disabled", http.StatusNotFound)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}
	outcome := strings.TrimSpace(r.URL.Query().Get("outcome"))
	recs, err := s.repo.RecentScrapes(r.Context(), outcome, limit)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, recs)
}

func (s *Server) handleScrapeSummaryAPI(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		http.Error(w, "scrape journal disabled", http.StatusNotFound)
		return
	}
	rng := parseRange(r.URL.Query().Get("range"))
	sum, err := s.repo.Summary(r.Context(), time.Now().Add(-rng))
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, sum)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.repo != nil {
		if err := s.repo.DB().PingContext(r.Context()); err != nil {
			http.Error(w, "journal not ready", 503)
			return
		}
	}
	if err := s.source.Ping(r.Context()); err != nil {
		s.log.Warn("readiness check failed", "err", err)
		http.Error(w, "docker not ready", 503)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func parseRange(v string) time.Duration {
	if v == "" {
		return 24 * time.Hour
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}
