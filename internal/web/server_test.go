package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"dockstats/internal/db"
	"dockstats/internal/metrics"
	"dockstats/internal/models"
)

type stubScraper struct {
	body string
	err  error
}

func (s stubScraper) Scrape(ctx context.Context) (string, error) { return s.body, s.err }

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func newTestServer(t *testing.T, sc Scraper, p Pinger, repo *db.Repository) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "dockstats_test_total", Help: "test"}))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(sc, p, repo, reg, "/docker-stats/metrics", logger).Routes()
}

func TestMetricsEndpoint(t *testing.T) {
	body := "# HELP a_cpu_usage x\n# TYPE a_cpu_usage gauge\na_cpu_usage 1\n"
	h := newTestServer(t, stubScraper{body: body}, stubPinger{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docker-stats/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != metrics.ContentType {
		t.Fatalf("content type = %q", ct)
	}
	if rec.Body.String() != body {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestMetricsEndpointFailureIsServerError(t *testing.T) {
	h := newTestServer(t, stubScraper{body: "partial", err: errors.New("scrape failed at build: bad")}, stubPinger{}, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docker-stats/metrics", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "partial") || strings.Contains(rec.Body.String(), "# TYPE") {
		t.Fatalf("failure leaked metrics: %q", rec.Body.String())
	}
}

func TestMetricsEndpointRejectsPost(t *testing.T) {
	h := newTestServer(t, stubScraper{}, stubPinger{}, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/docker-stats/metrics", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSelfMetricsEndpoint(t *testing.T) {
	h := newTestServer(t, stubScraper{}, stubPinger{}, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "dockstats_test_total 0") {
		t.Fatalf("status = %d body = %q", rec.Code, rec.Body.String())
	}
}

func TestReadyz(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(t, stubScraper{}, stubPinger{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	newTestServer(t, stubScraper{}, stubPinger{err: errors.New("down")}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestScrapesAPI(t *testing.T) {
	h := newTestServer(t, stubScraper{}, stubPinger{}, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scrapes", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("journal disabled status = %d", rec.Code)
	}

	sqldb, err := db.Open(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })
	if err := db.Migrate(sqldb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repo := db.NewRepository(sqldb)
	now := time.Now().UTC()
	for i, outcome := range []string{models.OutcomeOK, models.OutcomeFailed, models.OutcomeOK} {
		rec := models.ScrapeRecord{StartedAt: now.Add(time.Duration(i) * time.Second), Source: "cli", Outcome: outcome}
		if err := repo.InsertScrape(context.Background(), rec); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	h = newTestServer(t, stubScraper{}, stubPinger{}, repo)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scrapes?limit=2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got []models.ScrapeRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0].Outcome != models.OutcomeOK || got[1].Outcome != models.OutcomeFailed {
		t.Fatalf("unexpected rows: %+v", got)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scrapes/summary?range=1h", nil))
	var sum db.ScrapeSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.Total != 3 || sum.Failed != 1 {
		t.Fatalf("summary = %+v", sum)
	}
}
