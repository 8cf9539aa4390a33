package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"dockstats/internal/collector"
	"dockstats/internal/config"
	"dockstats/internal/db"
	"dockstats/internal/docker"
	"dockstats/internal/retention"
	"dockstats/internal/web"
)

const retentionInterval = 6 * time.Hour

type App struct {
	cfg config.Config
	log *slog.Logger

	source    docker.Source
	db        *db.Repository
	scraper   *collector.Scraper
	retention *retention.Service

	httpSrv *http.Server
}

func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	src, err := newSource(cfg, logger.With("module", "docker"))
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, log: logger, source: src}
	var journal collector.Journal
	if cfg.Journal {
		sqldb, err := db.Open(cfg.DBPath)
		if err != nil {
			a.closeSource()
			return nil, err
		}
		if err := db.Migrate(sqldb); err != nil {
			_ = sqldb.Close()
			a.closeSource()
			return nil, err
		}
		a.db = db.NewRepository(sqldb)
		a.retention = retention.NewService(a.db, cfg.RetentionDays, logger.With("module", "retention"))
		journal = a.db
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	inst := collector.NewInstrumentation(reg)
	a.scraper = collector.NewScraper(src, cfg.SourceTimeout, journal, inst, logger.With("module", "collector"))

	w := web.NewServer(a.scraper, src, a.db, reg, cfg.MetricsPath, logger.With("module", "web"))
	a.httpSrv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           w.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

func newSource(cfg config.Config, logger *slog.Logger) (docker.Source, error) {
	if cfg.Source == config.SourceAPI {
		return docker.NewAPISource(cfg.DockerHost, logger)
	}
	return docker.NewCLISource(cfg.DockerBin, logger), nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http server listening", "addr", a.cfg.Addr, "metrics_path", a.cfg.MetricsPath, "source", a.source.Name())
		if err := a.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	var retentionC <-chan time.Time
	if a.retention != nil {
		retentionTicker := time.NewTicker(retentionInterval)
		defer retentionTicker.Stop()
		retentionC = retentionTicker.C
		a.retention.Run(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return a.shutdown()
		case err := <-errCh:
			a.log.Error("http server failed", "err", err)
			_ = a.shutdown()
			return err
		case <-retentionC:
			a.retention.Run(ctx)
		}
	}
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := a.httpSrv.Shutdown(ctx)
	a.closeSource()
	if a.db != nil {
		if cerr := a.db.DB().Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (a *App) closeSource() {
	if c, ok := a.source.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			a.log.Warn("close docker client", "err", err)
		}
	}
}
