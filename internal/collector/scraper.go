package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dockstats/internal/docker"
	"dockstats/internal/metrics"
	"dockstats/internal/models"
)

// Stages at which a scrape can fail.
const (
	StageSource   = "source"
	StageBuild    = "build"
	StageRegister = "register"
	StageRender   = "render"
)

const journalTimeout = 5 * time.Second

// ScrapeError wraps the failure that aborted a scrape.
type ScrapeError struct {
	Stage string
	Err   error
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("scrape failed at %s: %v", e.Stage, e.Err)
}

func (e *ScrapeError) Unwrap() error { return e.Err }

// Journal records the outcome of every scrape.
type Journal interface {
	InsertScrape(ctx context.Context, rec models.ScrapeRecord) error
}

// Scraper turns one source read into an exposition document. Every call
// builds its own registry, so concurrent scrapes share nothing but the
// instrumentation and the journal.
type Scraper struct {
	source  docker.Source
	timeout time.Duration
	journal Journal
	inst    *Instrumentation
	log     *slog.Logger
	now     func() time.Time
}

// NewScraper returns a Scraper reading from source. journal and inst may be
// nil.
func NewScraper(source docker.Source, timeout time.Duration, journal Journal, inst *Instrumentation, logger *slog.Logger) *Scraper {
	return &Scraper{
		source:  source,
		timeout: timeout,
		journal: journal,
		inst:    inst,
		log:     logger,
		now:     time.Now,
	}
}

// Scrape returns the full metrics body, or an error if any container could
// not be read, parsed or registered.
func (s *Scraper) Scrape(ctx context.Context) (string, error) {
	start := s.now()
	rec := models.ScrapeRecord{StartedAt: start.UTC(), Source: s.source.Name(), Outcome: models.OutcomeOK}

	body, err := s.scrape(ctx, &rec)
	elapsed := s.now().Sub(start)
	rec.DurationMS = elapsed.Milliseconds()
	if err != nil {
		rec.Outcome = models.OutcomeFailed
		rec.Error = err.Error()
		var se *ScrapeError
		if errors.As(err, &se) {
			rec.Stage = se.Stage
		}
		s.log.Error("scrape failed", "source", rec.Source, "stage", rec.Stage, "err", err)
	} else {
		s.log.Debug("scrape completed", "containers", rec.Containers, "samples", rec.Samples, "duration_ms", rec.DurationMS)
	}

	s.inst.observe(rec, elapsed)
	s.record(ctx, rec)
	if err != nil {
		return "", err
	}
	return body, nil
}

func (s *Scraper) scrape(ctx context.Context, rec *models.ScrapeRecord) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	stats, err := s.source.Stats(ctx)
	if err != nil {
		return "", &ScrapeError{Stage: StageSource, Err: err}
	}
	rec.Containers = len(stats)

	reg := metrics.NewRegistry()
	for _, st := range stats {
		samples, err := metrics.Build(st)
		if err != nil {
			return "", &ScrapeError{Stage: StageBuild, Err: err}
		}
		if err := reg.RegisterAll(samples); err != nil {
			return "", &ScrapeError{Stage: StageRegister, Err: err}
		}
	}
	rec.Samples = reg.Len()

	body, err := reg.Render()
	if err != nil {
		return "", &ScrapeError{Stage: StageRender, Err: err}
	}
	return body, nil
}

func (s *Scraper) record(ctx context.Context, rec models.ScrapeRecord) {
	if s.journal == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalTimeout)
	defer cancel()
	if err := s.journal.InsertScrape(ctx, rec); err != nil {
		s.log.Warn("journal scrape", "err", err)
	}
}
